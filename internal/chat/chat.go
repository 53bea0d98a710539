// Package chat is the conversation every transport shares: it turns an
// owner's messages and button tokens into lifecycle calls and answers with
// text plus follow-up buttons.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sandeepkv93/remindme/internal/commands"
	"github.com/sandeepkv93/remindme/internal/lifecycle"
	"github.com/sandeepkv93/remindme/internal/model"
	"github.com/sandeepkv93/remindme/internal/scheduler"
	"github.com/sandeepkv93/remindme/internal/session"
	"github.com/sandeepkv93/remindme/internal/views"
)

// Reply is one bot answer. Replace asks the transport to rewrite the message
// whose button produced the reply instead of sending a new one. Menu asks it
// to show the main keyboard.
type Reply struct {
	Text    string
	Choices [][]commands.Choice
	Replace bool
	Menu    bool
}

func (r Reply) Empty() bool {
	return r.Text == ""
}

type Option func(*Conversation)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Conversation) {
		c.logger = logger
	}
}

type Conversation struct {
	core     *lifecycle.Service
	sessions session.Store
	logger   *slog.Logger
}

func New(core *lifecycle.Service, sessions session.Store, opts ...Option) *Conversation {
	c := &Conversation{
		core:     core,
		sessions: sessions,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) Start(name string) Reply {
	return Reply{Text: views.Greeting(name), Menu: true}
}

// HandleText answers a typed message: a main keyboard label, a slash
// command, or task text.
func (c *Conversation) HandleText(ctx context.Context, owner int64, text string) Reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}
	}

	switch text {
	case views.ButtonShowTasks:
		return c.listActive(ctx, owner)
	case views.ButtonArchive:
		return c.listArchive(ctx, owner)
	case views.ButtonDeleteTask:
		return c.picker(ctx, owner, views.NothingToDelete, views.PickDelete, "❌ ", commands.DeleteTask)
	case views.ButtonMarkDone:
		return c.picker(ctx, owner, views.NothingToComplete, views.PickComplete, "✅ ", commands.CompleteTask)
	}

	if strings.HasPrefix(text, "/") {
		switch strings.ToLower(strings.Fields(text)[0]) {
		case "/start":
			return c.Start("")
		case "/edit":
			return c.picker(ctx, owner, views.NoTasks, views.PickEdit, "✏️ ", commands.EditTask)
		case "/cancel":
			return c.cancelEdit(ctx, owner)
		default:
			return Reply{Text: views.UnknownCommand, Menu: true}
		}
	}

	return c.saveText(ctx, owner, text)
}

// HandleToken answers a button press. ok is false when the token is
// malformed; the transport drops it without telling the user.
func (c *Conversation) HandleToken(ctx context.Context, owner int64, token string) (Reply, bool) {
	cmd, err := commands.Parse(token)
	if err != nil {
		c.logger.Debug("dropping malformed token", "owner", owner, "token", token, "error", err)
		return Reply{}, false
	}

	res, err := commands.Execute(ctx, cmd, c.handlers(owner))
	if err != nil {
		var cmdErr *commands.CommandError
		if errors.As(err, &cmdErr) {
			c.logger.Debug("dropping unroutable token", "owner", owner, "token", token, "error", err)
			return Reply{}, false
		}
		return Reply{Text: c.failure("handle token", owner, err), Replace: true}, true
	}
	return Reply{Text: res.Message, Choices: res.Choices, Replace: true}, true
}

// ReminderReply is the message sent when a reminder fires.
func ReminderReply(ev scheduler.ReminderEvent) Reply {
	return Reply{Text: views.Reminder(ev.Text), Choices: ReminderChoices(ev.TaskID)}
}

func (c *Conversation) DigestReply(tasks []model.Task) Reply {
	return Reply{Text: views.Digest(tasks, c.core.Location()), Menu: true}
}

func (c *Conversation) saveText(ctx context.Context, owner int64, text string) Reply {
	sess, err := c.sessions.Load(ctx, owner)
	if err != nil {
		c.logger.Warn("load session failed", "owner", owner, "error", err)
		sess = session.Session{Owner: owner}
	}

	out, next, err := c.core.HandleText(ctx, sess, text)
	if next != sess {
		if saveErr := c.sessions.Save(ctx, next); saveErr != nil {
			c.logger.Warn("save session failed", "owner", owner, "error", saveErr)
		}
	}
	if err != nil {
		return Reply{Text: c.failure("save text", owner, err), Menu: true}
	}

	loc := c.core.Location()
	reply := Reply{Menu: true}
	switch out.Kind {
	case lifecycle.OutcomeEdited:
		reply.Text = views.TaskEdited(out.Task, loc)
	default:
		reply.Text = views.TaskSaved(out.Task, loc)
	}
	if out.Task.DueAt != nil {
		reply.Choices = OffsetChoices(out.Task.ID)
	}
	return reply
}

func (c *Conversation) handlers(owner int64) commands.Handlers {
	loc := c.core.Location()
	return commands.Handlers{
		DeleteTask: func(ctx context.Context, id int64) (commands.Result, error) {
			if err := c.core.Delete(ctx, owner, id); err != nil {
				return commands.Result{}, err
			}
			remaining, err := c.core.Active(ctx, owner)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: views.AfterDelete(remaining, loc)}, nil
		},
		CompleteTask: func(ctx context.Context, id int64) (commands.Result, error) {
			if _, err := c.core.Complete(ctx, owner, id); err != nil {
				return notFoundOr(err)
			}
			remaining, err := c.core.Active(ctx, owner)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: views.AfterComplete(remaining, loc)}, nil
		},
		EditTask: func(ctx context.Context, id int64) (commands.Result, error) {
			task, sess, err := c.core.BeginEdit(ctx, owner, id)
			if err != nil {
				return notFoundOr(err)
			}
			if err := c.sessions.Save(ctx, sess); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{
				Message: views.EditPrompt(task),
				Choices: [][]commands.Choice{{{Label: views.ButtonCancel, Command: commands.CancelEdit()}}},
			}, nil
		},
		PickOffset: func(ctx context.Context, id int64, args commands.OffsetArgs) (commands.Result, error) {
			at, err := c.core.RemindAt(ctx, owner, id, args.Mode)
			switch {
			case errors.Is(err, scheduler.ErrNoDeadline):
				return commands.Result{Message: views.NoDeadline}, nil
			case err != nil:
				return notFoundOr(err)
			}
			return commands.Result{Message: views.RemindAtConfirmation(args.Mode, at)}, nil
		},
		Snooze: func(ctx context.Context, id int64, args commands.SnoozeArgs) (commands.Result, error) {
			next, err := c.core.Snooze(ctx, owner, id, args.Minutes)
			if err != nil {
				return notFoundOr(err)
			}
			return commands.Result{Message: views.Snoozed(args.Minutes, next)}, nil
		},
		SnoozeMenu: func(ctx context.Context, id int64) (commands.Result, error) {
			task, err := c.core.Get(ctx, owner, id)
			if err != nil {
				return notFoundOr(err)
			}
			return commands.Result{Message: views.Reminder(task.Text), Choices: SnoozeChoices(id)}, nil
		},
		ReminderMenu: func(ctx context.Context, id int64) (commands.Result, error) {
			task, err := c.core.Get(ctx, owner, id)
			if err != nil {
				return notFoundOr(err)
			}
			return commands.Result{Message: views.Reminder(task.Text), Choices: ReminderChoices(id)}, nil
		},
		CancelEdit: func(ctx context.Context) (commands.Result, error) {
			if err := c.sessions.Clear(ctx, owner); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: views.EditCancelled}, nil
		},
	}
}

func (c *Conversation) cancelEdit(ctx context.Context, owner int64) Reply {
	if err := c.sessions.Clear(ctx, owner); err != nil {
		return Reply{Text: c.failure("cancel edit", owner, err), Menu: true}
	}
	return Reply{Text: views.EditCancelled, Menu: true}
}

func (c *Conversation) listActive(ctx context.Context, owner int64) Reply {
	tasks, err := c.core.Active(ctx, owner)
	if err != nil {
		return Reply{Text: c.failure("list tasks", owner, err), Menu: true}
	}
	return Reply{Text: views.ActiveTasks(tasks, c.core.Location()), Menu: true}
}

func (c *Conversation) listArchive(ctx context.Context, owner int64) Reply {
	tasks, err := c.core.Archive(ctx, owner)
	if err != nil {
		return Reply{Text: c.failure("list archive", owner, err), Menu: true}
	}
	return Reply{Text: views.Archive(tasks, c.core.Location()), Menu: true}
}

func (c *Conversation) picker(ctx context.Context, owner int64, empty, prompt, marker string, build func(int64) commands.Command) Reply {
	tasks, err := c.core.Active(ctx, owner)
	if err != nil {
		return Reply{Text: c.failure("list tasks", owner, err), Menu: true}
	}
	if len(tasks) == 0 {
		return Reply{Text: empty, Menu: true}
	}
	return Reply{Text: prompt, Choices: PickerChoices(tasks, marker, build)}
}

// failure maps err to the text shown to the user. Anything other than a
// missing or finished task is logged.
func (c *Conversation) failure(op string, owner int64, err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrTaskNotFound):
		return views.TaskNotFound
	case errors.Is(err, lifecycle.ErrTaskDone):
		return views.TaskAlreadyDone
	}
	c.logger.Error(op+" failed", "owner", owner, "error", err)
	return views.GenericFailure
}

func notFoundOr(err error) (commands.Result, error) {
	switch {
	case errors.Is(err, lifecycle.ErrTaskNotFound):
		return commands.Result{Message: views.TaskNotFound}, nil
	case errors.Is(err, lifecycle.ErrTaskDone):
		return commands.Result{Message: views.TaskAlreadyDone}, nil
	}
	return commands.Result{}, err
}

// Package lifecycle is the task state machine: it decides what each user
// action does to the stored task and which reminder timers it arms or drops.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
	"github.com/sandeepkv93/remindme/internal/scheduler"
	"github.com/sandeepkv93/remindme/internal/session"
	"github.com/sandeepkv93/remindme/internal/storage"
	"github.com/sandeepkv93/remindme/internal/timeparse"
)

var (
	ErrTaskNotFound = errors.New("lifecycle: task not found")
	ErrTaskDone     = errors.New("lifecycle: task already done")
)

// Store is the slice of the task store the lifecycle needs.
type Store interface {
	CreateTask(ctx context.Context, in storage.NewTask) (int64, error)
	GetTask(ctx context.Context, owner, id int64) (model.Task, error)
	ListActive(ctx context.Context, owner int64) ([]model.Task, error)
	ListDone(ctx context.Context, owner int64) ([]model.Task, error)
	UpdateDueAt(ctx context.Context, owner, id int64, dueAt *time.Time) error
	UpdateText(ctx context.Context, owner, id int64, text string) error
	MarkDone(ctx context.Context, owner, id int64, at time.Time) error
	DeleteTask(ctx context.Context, owner, id int64) error
}

// Reminders is implemented by *scheduler.Service.
type Reminders interface {
	Schedule(taskID, owner int64, fireAt time.Time, text string) (scheduler.ReminderEvent, error)
	ScheduleAtOffset(ctx context.Context, owner, taskID int64, mode model.ReminderMode) (time.Time, error)
	Snooze(ctx context.Context, owner, taskID int64, minutes int) (time.Time, error)
	Cancel(owner, taskID int64) int
}

type OutcomeKind int

const (
	OutcomeCreated OutcomeKind = iota + 1
	OutcomeEdited
)

// Outcome reports what HandleText did. Armed is true when a reminder timer
// was armed for the task's new deadline.
type Outcome struct {
	Kind  OutcomeKind
	Task  model.Task
	Armed bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

type Service struct {
	store     Store
	reminders Reminders
	parser    *timeparse.Parser
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, reminders Reminders, parser *timeparse.Parser, opts ...Option) *Service {
	s := &Service{
		store:     store,
		reminders: reminders,
		parser:    parser,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.parser.Location()
}

// HandleText routes one free-form message. With an edit pending in sess the
// text replaces that task; otherwise it creates a new task. The returned
// session is what the caller should store for the owner's next message.
func (s *Service) HandleText(ctx context.Context, sess session.Session, raw string) (Outcome, session.Session, error) {
	if !sess.Editing() {
		task, armed, err := s.Create(ctx, sess.Owner, raw)
		if err != nil {
			return Outcome{}, sess, err
		}
		return Outcome{Kind: OutcomeCreated, Task: task, Armed: armed}, sess, nil
	}

	cleared := session.Session{Owner: sess.Owner}
	task, armed, err := s.Edit(ctx, sess.Owner, sess.EditTaskID, raw)
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrTaskDone):
		return Outcome{}, cleared, err
	case err != nil:
		return Outcome{}, sess, err
	}
	return Outcome{Kind: OutcomeEdited, Task: task, Armed: armed}, cleared, nil
}

// Create parses raw into a new active task. A deadline that is not strictly
// in the future is dropped and the task is stored without one.
func (s *Service) Create(ctx context.Context, owner int64, raw string) (model.Task, bool, error) {
	now := s.now()
	parsed := s.parser.Parse(raw, now)
	if strings.TrimSpace(parsed.Text) == "" {
		return model.Task{}, false, model.ErrTaskTextMissing
	}
	due := futureOnly(parsed.DueAt, now)

	id, err := s.store.CreateTask(ctx, storage.NewTask{Owner: owner, Text: parsed.Text, DueAt: due, CreatedAt: now})
	if err != nil {
		return model.Task{}, false, fmt.Errorf("create task: %w", err)
	}
	task := model.Task{
		ID:        id,
		Owner:     owner,
		Text:      parsed.Text,
		DueAt:     due,
		Status:    model.TaskStatusActive,
		CreatedAt: now,
	}
	s.logger.Info("task created", "task_id", id, "owner", owner, "has_deadline", due != nil)
	return task, s.arm(task), nil
}

// Edit replaces the task's text and, when raw carries a future deadline, its
// due time. Raw without a temporal phrase keeps the old deadline; a phrase
// that resolves to the past clears it. Timers armed before the edit are left
// in place. Only active tasks can be edited.
func (s *Service) Edit(ctx context.Context, owner, id int64, raw string) (model.Task, bool, error) {
	task, err := s.getActive(ctx, owner, id)
	if err != nil {
		return model.Task{}, false, err
	}
	now := s.now()
	parsed := s.parser.Parse(raw, now)
	if strings.TrimSpace(parsed.Text) == "" {
		return model.Task{}, false, model.ErrTaskTextMissing
	}

	// A message that was nothing but a date only moves the deadline.
	text := parsed.Text
	if parsed.DueAt != nil && text == timeparse.DefaultTaskText {
		text = task.Text
	}
	if text != task.Text {
		if err := s.store.UpdateText(ctx, owner, id, text); err != nil {
			return model.Task{}, false, s.mapErr("update text", err)
		}
		task.Text = text
	}

	armed := false
	if parsed.DueAt != nil {
		due := futureOnly(parsed.DueAt, now)
		if err := s.store.UpdateDueAt(ctx, owner, id, due); err != nil {
			return model.Task{}, false, s.mapErr("update due time", err)
		}
		task.DueAt = due
		armed = s.arm(task)
	}
	s.logger.Info("task edited", "task_id", id, "owner", owner, "rearmed", armed)
	return task, armed, nil
}

// Complete marks the task done. Completing a task that is already done
// changes nothing.
func (s *Service) Complete(ctx context.Context, owner, id int64) (model.Task, error) {
	task, err := s.get(ctx, owner, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.Status == model.TaskStatusDone {
		return task, nil
	}
	at := s.now()
	if err := s.store.MarkDone(ctx, owner, id, at); err != nil {
		return model.Task{}, s.mapErr("mark done", err)
	}
	task.Status = model.TaskStatusDone
	task.CompletedAt = &at
	s.logger.Info("task completed", "task_id", id, "owner", owner)
	return task, nil
}

// Delete removes the task and drops its queued timers. Deleting a task that
// no longer exists is not an error.
func (s *Service) Delete(ctx context.Context, owner, id int64) error {
	err := s.store.DeleteTask(ctx, owner, id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("delete task: %w", err)
	}
	cancelled := s.reminders.Cancel(owner, id)
	s.logger.Info("task deleted", "task_id", id, "owner", owner, "existed", err == nil, "timers_cancelled", cancelled)
	return nil
}

// BeginEdit checks that the task exists and is still active, and returns the
// session that routes the owner's next message into Edit.
func (s *Service) BeginEdit(ctx context.Context, owner, id int64) (model.Task, session.Session, error) {
	task, err := s.getActive(ctx, owner, id)
	if err != nil {
		return model.Task{}, session.Session{Owner: owner}, err
	}
	return task, session.Session{Owner: owner, EditTaskID: id}, nil
}

func (s *Service) Snooze(ctx context.Context, owner, id int64, minutes int) (time.Time, error) {
	at, err := s.reminders.Snooze(ctx, owner, id, minutes)
	if err != nil {
		return time.Time{}, s.mapErr("snooze", err)
	}
	return at.In(s.Location()), nil
}

func (s *Service) RemindAt(ctx context.Context, owner, id int64, mode model.ReminderMode) (time.Time, error) {
	at, err := s.reminders.ScheduleAtOffset(ctx, owner, id, mode)
	if err != nil {
		return time.Time{}, s.mapErr("schedule reminder", err)
	}
	return at.In(s.Location()), nil
}

func (s *Service) Get(ctx context.Context, owner, id int64) (model.Task, error) {
	return s.get(ctx, owner, id)
}

func (s *Service) Active(ctx context.Context, owner int64) ([]model.Task, error) {
	tasks, err := s.store.ListActive(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) Archive(ctx context.Context, owner int64) ([]model.Task, error) {
	tasks, err := s.store.ListDone(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list done tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) get(ctx context.Context, owner, id int64) (model.Task, error) {
	task, err := s.store.GetTask(ctx, owner, id)
	if err != nil {
		return model.Task{}, s.mapErr("load task", err)
	}
	return task, nil
}

func (s *Service) getActive(ctx context.Context, owner, id int64) (model.Task, error) {
	task, err := s.get(ctx, owner, id)
	if err != nil {
		return model.Task{}, err
	}
	if task.Status == model.TaskStatusDone {
		return model.Task{}, ErrTaskDone
	}
	return task, nil
}

// arm schedules a reminder at the task's deadline. A scheduling failure is
// logged; the task itself is already stored.
func (s *Service) arm(task model.Task) bool {
	if task.DueAt == nil {
		return false
	}
	if _, err := s.reminders.Schedule(task.ID, task.Owner, *task.DueAt, task.Text); err != nil {
		s.logger.Error("arm reminder failed", "task_id", task.ID, "owner", task.Owner, "error", err)
		return false
	}
	return true
}

func (s *Service) mapErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrTaskNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func futureOnly(due *time.Time, now time.Time) *time.Time {
	if due == nil || !due.After(now) {
		return nil
	}
	return due
}

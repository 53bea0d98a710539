package commands

import (
	"context"
	"fmt"
)

// Result is what a handler reports back to the transport: a message and the
// follow-up buttons to show with it, row by row.
type Result struct {
	Message string
	Choices [][]Choice
}

// Choice is one button. Pressing it sends Command back as its token.
type Choice struct {
	Label   string
	Command Command
}

func (c Choice) Token() string {
	return c.Command.Encode()
}

type Handlers struct {
	DeleteTask   func(ctx context.Context, taskID int64) (Result, error)
	CompleteTask func(ctx context.Context, taskID int64) (Result, error)
	EditTask     func(ctx context.Context, taskID int64) (Result, error)
	PickOffset   func(ctx context.Context, taskID int64, args OffsetArgs) (Result, error)
	Snooze       func(ctx context.Context, taskID int64, args SnoozeArgs) (Result, error)
	SnoozeMenu   func(ctx context.Context, taskID int64) (Result, error)
	ReminderMenu func(ctx context.Context, taskID int64) (Result, error)
	CancelEdit   func(ctx context.Context) (Result, error)
}

func Execute(ctx context.Context, cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeDeleteTask:
		return callTask(ctx, cmd, handlers.DeleteTask)
	case TypeCompleteTask:
		return callTask(ctx, cmd, handlers.CompleteTask)
	case TypeEditTask:
		return callTask(ctx, cmd, handlers.EditTask)
	case TypeSnoozeMenu:
		return callTask(ctx, cmd, handlers.SnoozeMenu)
	case TypeReminderMenu:
		return callTask(ctx, cmd, handlers.ReminderMenu)
	case TypePickOffset:
		if handlers.PickOffset == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Offset == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "reminder mode is missing"}
		}
		return handlers.PickOffset(ctx, cmd.TaskID, *cmd.Offset)
	case TypeSnooze:
		if handlers.Snooze == nil {
			return Result{}, missing(cmd.Type)
		}
		if cmd.Snooze == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "snooze minutes are missing"}
		}
		return handlers.Snooze(ctx, cmd.TaskID, *cmd.Snooze)
	case TypeCancelEdit:
		if handlers.CancelEdit == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.CancelEdit(ctx)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func callTask(ctx context.Context, cmd Command, fn func(context.Context, int64) (Result, error)) (Result, error) {
	if fn == nil {
		return Result{}, missing(cmd.Type)
	}
	return fn(ctx, cmd.TaskID)
}

func missing(t Type) *CommandError {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

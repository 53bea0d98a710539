package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/remindme/internal/model"
)

// Type names one interaction token. Tokens travel as "type:taskId[:param]".
type Type string

const (
	TypeDeleteTask   Type = "delete-task"
	TypeCompleteTask Type = "complete-task"
	TypeEditTask     Type = "edit-task"
	TypePickOffset   Type = "pick-reminder-offset"
	TypeSnooze       Type = "snooze"
	TypeSnoozeMenu   Type = "snooze-menu"
	TypeReminderMenu Type = "reminder-menu"
	TypeCancelEdit   Type = "cancel-edit"
)

// MaxSnoozeMinutes bounds the minutes a snooze token may carry.
const MaxSnoozeMinutes = 24 * 60

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type OffsetArgs struct {
	Mode model.ReminderMode
}

type SnoozeArgs struct {
	Minutes int
}

// Command is a decoded token. Offset is set only for TypePickOffset and
// Snooze only for TypeSnooze.
type Command struct {
	Type   Type
	Raw    string
	TaskID int64
	Offset *OffsetArgs
	Snooze *SnoozeArgs
}

func DeleteTask(id int64) Command   { return Command{Type: TypeDeleteTask, TaskID: id} }
func CompleteTask(id int64) Command { return Command{Type: TypeCompleteTask, TaskID: id} }
func EditTask(id int64) Command     { return Command{Type: TypeEditTask, TaskID: id} }
func SnoozeMenu(id int64) Command   { return Command{Type: TypeSnoozeMenu, TaskID: id} }
func ReminderMenu(id int64) Command { return Command{Type: TypeReminderMenu, TaskID: id} }
func CancelEdit() Command           { return Command{Type: TypeCancelEdit} }

func PickOffset(id int64, mode model.ReminderMode) Command {
	return Command{Type: TypePickOffset, TaskID: id, Offset: &OffsetArgs{Mode: mode}}
}

func Snooze(id int64, minutes int) Command {
	return Command{Type: TypeSnooze, TaskID: id, Snooze: &SnoozeArgs{Minutes: minutes}}
}

// Encode renders the command in its wire form.
func (c Command) Encode() string {
	base := string(c.Type) + ":" + strconv.FormatInt(c.TaskID, 10)
	switch {
	case c.Type == TypePickOffset && c.Offset != nil:
		return base + ":" + string(c.Offset.Mode)
	case c.Type == TypeSnooze && c.Snooze != nil:
		return base + ":" + strconv.Itoa(c.Snooze.Minutes)
	default:
		return base
	}
}

// Parse decodes a token. Any malformed input yields a *CommandError; callers
// at the transport edge drop such tokens silently.
func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "token is empty"}
	}

	parts := strings.Split(raw, ":")
	head := Type(strings.ToLower(parts[0]))
	args := parts[1:]

	switch head {
	case TypeDeleteTask, TypeCompleteTask, TypeEditTask, TypeSnoozeMenu, TypeReminderMenu:
		return parseTaskOnly(raw, head, args)
	case TypeCancelEdit:
		if len(args) > 1 {
			return Command{}, invalid("%s takes no parameter", head)
		}
		return Command{Type: TypeCancelEdit, Raw: raw}, nil
	case TypePickOffset:
		return parsePickOffset(raw, args)
	case TypeSnooze:
		return parseSnooze(raw, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported token: %s", head)}
	}
}

func parseTaskOnly(raw string, t Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("%s requires exactly a task id", t)
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return Command{}, err
	}
	return Command{Type: t, Raw: raw, TaskID: id}, nil
}

func parsePickOffset(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("%s requires a task id and a mode", TypePickOffset)
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return Command{}, err
	}
	mode, err := model.ParseReminderMode(args[1])
	if err != nil {
		return Command{}, invalid("unknown reminder mode %q", args[1])
	}
	return Command{Type: TypePickOffset, Raw: raw, TaskID: id, Offset: &OffsetArgs{Mode: mode}}, nil
}

func parseSnooze(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("%s requires a task id and minutes", TypeSnooze)
	}
	id, err := parseTaskID(args[0])
	if err != nil {
		return Command{}, err
	}
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes <= 0 || minutes > MaxSnoozeMinutes {
		return Command{}, invalid("snooze minutes must be between 1 and %d, got %q", MaxSnoozeMinutes, args[1])
	}
	return Command{Type: TypeSnooze, Raw: raw, TaskID: id, Snooze: &SnoozeArgs{Minutes: minutes}}, nil
}

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid task id %q", raw)
	}
	return id, nil
}

func invalid(format string, args ...any) *CommandError {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

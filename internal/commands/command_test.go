package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/sandeepkv93/remindme/internal/model"
)

func TestParseSupportedTokens(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
		idWant   int64
	}{
		{"delete-task:12", TypeDeleteTask, 12},
		{"complete-task:3", TypeCompleteTask, 3},
		{"edit-task:7", TypeEditTask, 7},
		{"pick-reminder-offset:7:exact", TypePickOffset, 7},
		{"pick-reminder-offset:7:60", TypePickOffset, 7},
		{"snooze:9:10", TypeSnooze, 9},
		{"snooze-menu:9", TypeSnoozeMenu, 9},
		{"reminder-menu:9", TypeReminderMenu, 9},
		{"cancel-edit:0", TypeCancelEdit, 0},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant || cmd.TaskID != tc.idWant {
			t.Fatalf("parse %q = %s/%d, want %s/%d", tc.in, cmd.Type, cmd.TaskID, tc.typeWant, tc.idWant)
		}
		if cmd.Raw != tc.in {
			t.Fatalf("parse %q kept raw %q", tc.in, cmd.Raw)
		}
	}
}

func TestParseArguments(t *testing.T) {
	cmd, err := Parse("pick-reminder-offset:4:10")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Offset == nil || cmd.Offset.Mode != model.ReminderMode10mBefore {
		t.Fatalf("unexpected offset args: %+v", cmd.Offset)
	}

	cmd, err = Parse("snooze:4:60")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Snooze == nil || cmd.Snooze.Minutes != 60 {
		t.Fatalf("unexpected snooze args: %+v", cmd.Snooze)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, cmd := range []Command{
		DeleteTask(1),
		CompleteTask(2),
		EditTask(3),
		PickOffset(4, model.ReminderModeExact),
		Snooze(5, 10),
		SnoozeMenu(6),
		ReminderMenu(7),
		CancelEdit(),
	} {
		token := cmd.Encode()
		got, err := Parse(token)
		if err != nil {
			t.Fatalf("parse %q failed: %v", token, err)
		}
		if got.Encode() != token {
			t.Fatalf("round trip changed %q into %q", token, got.Encode())
		}
	}
	if got := CancelEdit().Encode(); got != "cancel-edit:0" {
		t.Fatalf("unexpected cancel token %q", got)
	}
}

func TestParseMalformedTokens(t *testing.T) {
	cases := []struct {
		in   string
		code ErrorCode
	}{
		{"", ErrCodeEmptyInput},
		{"   ", ErrCodeEmptyInput},
		{"unknown:1", ErrCodeUnknownCommand},
		{"delete_task:1", ErrCodeUnknownCommand},
		{"delete-task", ErrCodeInvalidArgument},
		{"delete-task:abc", ErrCodeInvalidArgument},
		{"delete-task:-4", ErrCodeInvalidArgument},
		{"delete-task:1:2", ErrCodeInvalidArgument},
		{"pick-reminder-offset:1", ErrCodeInvalidArgument},
		{"pick-reminder-offset:1:15", ErrCodeInvalidArgument},
		{"snooze:1:0", ErrCodeInvalidArgument},
		{"snooze:1:soon", ErrCodeInvalidArgument},
		{"snooze:1:100000", ErrCodeInvalidArgument},
		{"cancel-edit:0:1", ErrCodeInvalidArgument},
	}
	for _, tc := range cases {
		_, err := Parse(tc.in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != tc.code {
			t.Fatalf("parse %q: expected %s, got %v", tc.in, tc.code, err)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("snooze:8:5")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(context.Background(), cmd, Handlers{
		Snooze: func(_ context.Context, taskID int64, a SnoozeArgs) (Result, error) {
			called = true
			if taskID != 8 || a.Minutes != 5 {
				t.Fatalf("unexpected snooze args: %d %+v", taskID, a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, token := range []string{"delete-task:1", "pick-reminder-offset:1:5", "cancel-edit:0"} {
		cmd, err := Parse(token)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(context.Background(), cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%s: expected missing handler error, got %v", token, err)
		}
	}
}

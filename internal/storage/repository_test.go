package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/remindme/internal/model"
)

// runRepositoryContract drives the behaviour every store has to share.
func runRepositoryContract(t *testing.T, repo Repository, owner int64) {
	t.Helper()
	ctx := context.Background()
	loc := time.FixedZone("+05", 5*3600)
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	due := time.Date(2024, 1, 1, 16, 0, 0, 0, loc)

	milkID, err := repo.CreateTask(ctx, NewTask{Owner: owner, Text: "buy milk", DueAt: &due, CreatedAt: created})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	noteID, err := repo.CreateTask(ctx, NewTask{Owner: owner, Text: "just a note", CreatedAt: created})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if milkID <= 0 || noteID <= milkID {
		t.Fatalf("expected increasing store ids, got %d then %d", milkID, noteID)
	}

	got, err := repo.GetTask(ctx, owner, milkID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("stored task does not validate: %v", err)
	}
	if got.Text != "buy milk" || got.Status != model.TaskStatusActive || got.CompletedAt != nil {
		t.Fatalf("unexpected task: %#v", got)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("due time drifted: %v", got.DueAt)
	}
	if _, err := repo.GetTask(ctx, owner+1, milkID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}

	active, err := repo.ListActive(ctx, owner)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[0].ID != noteID || active[1].ID != milkID {
		t.Fatalf("expected newest first, got %#v", active)
	}

	owners, err := repo.ListOwnersWithActiveTasks(ctx)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if !containsOwner(owners, owner) {
		t.Fatalf("expected owner %d in %v", owner, owners)
	}

	if err := repo.UpdateText(ctx, owner, noteID, "a better note"); err != nil {
		t.Fatalf("update text: %v", err)
	}
	if err := repo.UpdateDueAt(ctx, owner, milkID, nil); err != nil {
		t.Fatalf("clear due: %v", err)
	}
	got, err = repo.GetTask(ctx, owner, milkID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.DueAt != nil {
		t.Fatalf("expected due time to be cleared, got %v", got.DueAt)
	}

	doneAt := created.Add(time.Hour)
	if err := repo.MarkDone(ctx, owner, milkID, doneAt); err != nil {
		t.Fatalf("mark done: %v", err)
	}
	active, err = repo.ListActive(ctx, owner)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || active[0].ID != noteID || active[0].Text != "a better note" {
		t.Fatalf("unexpected active list after completion: %#v", active)
	}
	done, err := repo.ListDone(ctx, owner)
	if err != nil {
		t.Fatalf("list done: %v", err)
	}
	if len(done) != 1 || done[0].ID != milkID || done[0].CompletedAt == nil || !done[0].CompletedAt.Equal(doneAt) {
		t.Fatalf("unexpected done list: %#v", done)
	}

	if err := repo.DeleteTask(ctx, owner, milkID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := repo.DeleteTask(ctx, owner, noteID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	for _, list := range []func(context.Context, int64) ([]model.Task, error){repo.ListActive, repo.ListDone} {
		items, err := list(ctx, owner)
		if err != nil {
			t.Fatalf("list after delete: %v", err)
		}
		if len(items) != 0 {
			t.Fatalf("expected no tasks after delete, got %#v", items)
		}
	}
	if err := repo.DeleteTask(ctx, owner, milkID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := repo.MarkDone(ctx, owner, milkID, doneAt); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on missing task, got %v", err)
	}
}

func containsOwner(owners []int64, owner int64) bool {
	for _, o := range owners {
		if o == owner {
			return true
		}
	}
	return false
}

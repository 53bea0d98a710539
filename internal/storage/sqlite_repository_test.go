package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "remindme-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	runRepositoryContract(t, setupRepo(t), 42)
}

func TestSQLiteDueAtRoundTripKeepsInstantAndZone(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	loc := time.FixedZone("+05", 5*3600)
	due := time.Date(2024, 1, 1, 16, 0, 0, 123456789, loc)

	id, err := repo.CreateTask(ctx, NewTask{Owner: 1, Text: "buy milk", DueAt: &due, CreatedAt: due.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	got, err := repo.GetTask(ctx, 1, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Fatalf("expected %s, got %v", due.Format(time.RFC3339Nano), got.DueAt)
	}
	if _, offset := got.DueAt.Zone(); offset != 5*3600 {
		t.Fatalf("expected +05 offset to survive, got %d", offset)
	}
}

func TestSQLiteReadsLegacyRows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// Rows from the first schema carry CURRENT_TIMESTAMP and no status.
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO tasks (owner, text, created_at, due_at, status) VALUES (?, ?, ?, ?, ?)`,
		7, "legacy", "2023-12-31 10:00:00", sql.NullString{}, "",
	); err != nil {
		t.Fatalf("insert legacy row: %v", err)
	}

	active, err := repo.ListActive(ctx, 7)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 1 || !active[0].IsActive() {
		t.Fatalf("expected legacy row to count as active, got %#v", active)
	}
	want := time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC)
	if !active[0].CreatedAt.Equal(want) {
		t.Fatalf("unexpected legacy created_at %s", active[0].CreatedAt)
	}
}

func TestSQLiteOwnersAreIsolated(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	for _, owner := range []int64{3, 1, 3} {
		if _, err := repo.CreateTask(ctx, NewTask{Owner: owner, Text: "task", CreatedAt: now}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	doneID, err := repo.CreateTask(ctx, NewTask{Owner: 9, Text: "finished", CreatedAt: now})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := repo.MarkDone(ctx, 9, doneID, now); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	owners, err := repo.ListOwnersWithActiveTasks(ctx)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if len(owners) != 2 || owners[0] != 1 || owners[1] != 3 {
		t.Fatalf("unexpected owners: %v", owners)
	}

	if err := repo.UpdateText(ctx, 1, doneID, "stolen"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound when editing another owner's task, got %v", err)
	}
}

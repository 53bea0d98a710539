package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/remindme/internal/model"
)

const taskColumns = `id, owner, text, created_at, due_at, status, completed_at`

// activeClause also matches rows written before the status column had a default.
const activeClause = `(status IS NULL OR status = '' OR status = 'active')`

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteRepository{db: db}, nil
}

// OpenSQLite opens the database at path and brings its schema up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer keeps go-sqlite3 from returning SQLITE_BUSY under the
	// concurrent reminder fires.
	db.SetMaxOpenConns(1)
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in NewTask) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (owner, text, created_at, due_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		in.Owner, in.Text, formatTime(in.CreatedAt), nullTime(in.DueAt), string(model.TaskStatusActive),
	)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert task id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, owner, id int64) (model.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND owner = ?`, id, owner)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) ListActive(ctx context.Context, owner int64) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE owner = ? AND `+activeClause+`
		ORDER BY id DESC`, owner)
}

func (r *SQLiteRepository) ListDone(ctx context.Context, owner int64) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE owner = ? AND status = 'done'
		ORDER BY completed_at DESC, id DESC`, owner)
}

func (r *SQLiteRepository) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListOwnersWithActiveTasks(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner FROM tasks WHERE `+activeClause+` ORDER BY owner`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var owner int64
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		out = append(out, owner)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateDueAt(ctx context.Context, owner, id int64, dueAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET due_at = ? WHERE id = ? AND owner = ?`, nullTime(dueAt), id, owner)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) UpdateText(ctx context.Context, owner, id int64, text string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET text = ? WHERE id = ? AND owner = ?`, text, id, owner)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) MarkDone(ctx context.Context, owner, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, completed_at = ?
		WHERE id = ? AND owner = ?`,
		string(model.TaskStatusDone), formatTime(at), id, owner,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, owner, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandeepkv93/remindme/internal/model"
)

// PostgresRepository is the task store used when DATABASE_URL is set.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("storage: nil pool")
	}
	return &PostgresRepository{pool: pool}, nil
}

// OpenPostgres connects to url, verifies the connection and applies migrations.
func OpenPostgres(ctx context.Context, url string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := MigratePostgresUp(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, in NewTask) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (owner, text, created_at, due_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		in.Owner, in.Text, formatTime(in.CreatedAt), nullTime(in.DueAt), string(model.TaskStatusActive),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, owner, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner = $2`, id, owner)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, owner int64) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE owner = $1 AND `+activeClause+`
		ORDER BY id DESC`, owner)
}

func (r *PostgresRepository) ListDone(ctx context.Context, owner int64) ([]model.Task, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE owner = $1 AND status = 'done'
		ORDER BY completed_at DESC, id DESC`, owner)
}

func (r *PostgresRepository) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
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

func (r *PostgresRepository) ListOwnersWithActiveTasks(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT owner FROM tasks WHERE `+activeClause+` ORDER BY owner`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *PostgresRepository) UpdateDueAt(ctx context.Context, owner, id int64, dueAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET due_at = $1 WHERE id = $2 AND owner = $3`, nullTime(dueAt), id, owner)
	return checkCommandTag(tag, err)
}

func (r *PostgresRepository) UpdateText(ctx context.Context, owner, id int64, text string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET text = $1 WHERE id = $2 AND owner = $3`, text, id, owner)
	return checkCommandTag(tag, err)
}

func (r *PostgresRepository) MarkDone(ctx context.Context, owner, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET status = $1, completed_at = $2
		WHERE id = $3 AND owner = $4`,
		string(model.TaskStatusDone), formatTime(at), id, owner,
	)
	return checkCommandTag(tag, err)
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, owner, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner = $2`, id, owner)
	return checkCommandTag(tag, err)
}

func checkCommandTag(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

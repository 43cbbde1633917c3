package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// Ensure Queue implements TaskQueue
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using PostgreSQL with SKIP LOCKED.
// This is the fallback queue when Redis is not available.
type Queue struct {
	db *sql.DB
}

// NewQueue creates a new PostgreSQL-backed task queue.
// Assumes the tasks table has been created via InitSchema.
func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

// Enqueue adds a task to the queue
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	query := `
		INSERT INTO tasks (
			id, type, payload, status, attempts, max_attempts, error,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.db.ExecContext(ctx, query,
		task.ID,
		task.Type,
		payload,
		task.Status,
		task.Attempts,
		task.MaxAttempts,
		task.Error,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Dequeue retrieves the next available task using FOR UPDATE SKIP LOCKED
// so only one worker gets each task. Returns nil, nil when the queue is
// empty.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Task, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		SELECT id, type, payload, status, attempts, max_attempts, error,
		       created_at, updated_at, started_at, completed_at
		FROM tasks
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	task, err := scanTask(tx.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	update := `
		UPDATE tasks
		SET status = 'processing', attempts = attempts + 1,
		    started_at = $2, updated_at = $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update, task.ID, now); err != nil {
		return nil, fmt.Errorf("mark task processing: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	task.Status = domain.TaskStatusProcessing
	task.Attempts++
	task.StartedAt = &now
	task.UpdatedAt = now
	return task, nil
}

// DequeueWithTimeout polls for a task, waiting up to timeout seconds.
// Postgres has no blocking pop, so this polls once per second.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)

	for {
		task, err := q.Dequeue(ctx)
		if err != nil || task != nil {
			return task, err
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(time.Second):
		}
	}
}

// Ack acknowledges successful completion of a task
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	query := `
		UPDATE tasks
		SET status = 'completed', completed_at = now(), updated_at = now()
		WHERE id = $1
	`
	result, err := q.db.ExecContext(ctx, query, taskID)
	if err != nil {
		return fmt.Errorf("ack task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Nack indicates task processing failed.
// The task returns to pending until its attempts are exhausted, then it is
// marked failed.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	query := `
		UPDATE tasks
		SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
		    error = $2, updated_at = now()
		WHERE id = $1
	`
	result, err := q.db.ExecContext(ctx, query, taskID, reason)
	if err != nil {
		return fmt.Errorf("nack task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetTask retrieves a task by ID
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `
		SELECT id, type, payload, status, attempts, max_attempts, error,
		       created_at, updated_at, started_at, completed_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(q.db.QueryRowContext(ctx, query, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return task, err
}

// Stats returns queue statistics
func (q *Queue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processing')
		FROM tasks
	`
	stats := &driven.QueueStats{}
	err := q.db.QueryRowContext(ctx, query).Scan(&stats.PendingCount, &stats.ProcessingCount)
	if err != nil {
		return nil, fmt.Errorf("queue stats: %w", err)
	}
	return stats, nil
}

// Ping checks if the queue backend is healthy
func (q *Queue) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

// Close cleans up resources.
// The database handle is shared and is not closed here.
func (q *Queue) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task      domain.Task
		payload   []byte
		errMsg    sql.NullString
		startedAt sql.NullTime
		doneAt    sql.NullTime
	)
	err := row.Scan(
		&task.ID,
		&task.Type,
		&payload,
		&task.Status,
		&task.Attempts,
		&task.MaxAttempts,
		&errMsg,
		&task.CreatedAt,
		&task.UpdatedAt,
		&startedAt,
		&doneAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &task.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload for task %s: %w", task.ID, err)
	}
	if errMsg.Valid {
		task.Error = errMsg.String
	}
	if startedAt.Valid {
		task.StartedAt = &startedAt.Time
	}
	if doneAt.Valid {
		task.CompletedAt = &doneAt.Time
	}
	return &task, nil
}

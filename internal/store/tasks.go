// ABOUTME: Task store methods for the SQLite backend
// ABOUTME: Covers CRUD, assignee/ID listings, filtered listing, and partial update

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateTask persists a new task. Objectives are stored as a JSON array.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	objectives, err := json.Marshal(task.Objectives)
	if err != nil {
		return fmt.Errorf("encoding objectives: %w", err)
	}

	query := `
		INSERT INTO tasks (id, title, description, objectives, status, due_date, assignee, created_at, priority, type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(objectives),
		task.Status,
		task.DueDate,
		task.Assignee,
		task.CreatedAt,
		task.Priority,
		task.Type,
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

const taskColumns = "id, title, description, objectives, status, due_date, assignee, created_at, priority, type"

// GetTask retrieves a task by ID. Returns ErrNotFound if it does not exist.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}

	return task, nil
}

// ListTasksByAssignee returns all tasks assigned to the given username,
// oldest first.
func (s *SQLiteStore) ListTasksByAssignee(ctx context.Context, username string) ([]*Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE assignee = ? ORDER BY created_at", username)
}

// ListTasksByIDs returns the tasks whose IDs appear in ids, preserving
// the order of ids. Unknown IDs are skipped.
func (s *SQLiteStore) ListTasksByIDs(ctx context.Context, ids []string) ([]*Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tasks, err := s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	ordered := make([]*Task, 0, len(tasks))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

// ListTasks returns tasks matching the filter, oldest first. Status,
// assignee, and priority match the raw stored values exactly; the
// created-at range applies only when both ends are set.
func (s *SQLiteStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks"
	var conds []string
	var args []any

	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Assignee != "" {
		conds = append(conds, "assignee = ?")
		args = append(args, filter.Assignee)
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil {
		conds = append(conds, "created_at >= ? AND created_at <= ?")
		args = append(args, *filter.CreatedFrom, *filter.CreatedTo)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	return s.queryTasks(ctx, query, args...)
}

// UpdateTask merges the patch into the stored task and returns the
// post-update task. Nil patch fields retain their prior values.
// Returns ErrNotFound if the task does not exist.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Objectives != nil {
		task.Objectives = *patch.Objectives
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Assignee != nil {
		task.Assignee = *patch.Assignee
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Type != nil {
		task.Type = *patch.Type
	}

	objectives, err := json.Marshal(task.Objectives)
	if err != nil {
		return nil, fmt.Errorf("encoding objectives: %w", err)
	}

	query := `
		UPDATE tasks
		SET title = ?, description = ?, objectives = ?, status = ?, due_date = ?, assignee = ?, priority = ?, type = ?
		WHERE id = ?
	`

	_, err = s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(objectives),
		task.Status,
		task.DueDate,
		task.Assignee,
		task.Priority,
		task.Type,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}

	return task, nil
}

// DeleteTask removes a task and returns the deleted record. Task-set
// references held by users and organisations are intentionally left in
// place; cleanup is the caller's concern.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) (*Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("deleting task: %w", err)
	}

	return task, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTask
type scanner interface {
	Scan(dest ...any) error
}

// scanTask scans a task row, decoding the objectives JSON array
func scanTask(row scanner) (*Task, error) {
	var t Task
	var objectives string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &objectives, &t.Status,
		&t.DueDate, &t.Assignee, &t.CreatedAt, &t.Priority, &t.Type,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(objectives), &t.Objectives); err != nil {
		return nil, fmt.Errorf("decoding objectives: %w", err)
	}

	return &t, nil
}

// queryTasks runs a multi-row task query
func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...any) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ABOUTME: User and Admin store methods for the SQLite backend
// ABOUTME: Covers identity creation, lookup by username, and task-set bookkeeping

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateUser creates a new user. Returns ErrDuplicateIdentity if the
// username or email is already taken within the user namespace.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, username, password_hash, email, gender, organisation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Gender,
		user.Organisation,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: user %s", ErrDuplicateIdentity, user.Username)
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a user and its ordered task ID list.
// Returns ErrNotFound if no user has the given username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, password_hash, email, gender, COALESCE(organisation, ''), created_at
		FROM users WHERE username = ?
	`

	var u User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.Gender, &u.Organisation, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	u.Tasks, err = s.listRefs(ctx, "SELECT task_id FROM user_tasks WHERE user_id = ? ORDER BY rowid", u.ID)
	if err != nil {
		return nil, fmt.Errorf("querying user tasks: %w", err)
	}

	return &u, nil
}

// AppendUserTask appends a task reference to the user's task set.
// Returns ErrNotFound if the user does not exist.
func (s *SQLiteStore) AppendUserTask(ctx context.Context, username, taskID string) error {
	userID, err := s.lookupID(ctx, "SELECT id FROM users WHERE username = ?", username)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO user_tasks (user_id, task_id) VALUES (?, ?)", userID, taskID)
	if err != nil {
		return fmt.Errorf("appending user task: %w", err)
	}

	return nil
}

// RemoveUserTask removes a task reference from the user's task set.
// Removing a reference that is not present is not an error.
func (s *SQLiteStore) RemoveUserTask(ctx context.Context, username, taskID string) error {
	userID, err := s.lookupID(ctx, "SELECT id FROM users WHERE username = ?", username)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM user_tasks WHERE user_id = ? AND task_id = ?", userID, taskID)
	if err != nil {
		return fmt.Errorf("removing user task: %w", err)
	}

	return nil
}

// CreateAdmin creates a new admin. Returns ErrDuplicateIdentity if the
// username or email is already taken within the admin namespace.
// Cross-namespace collisions with users are permitted.
func (s *SQLiteStore) CreateAdmin(ctx context.Context, admin *Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO admins (id, username, password_hash, email, gender, organisation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		admin.ID,
		admin.Username,
		admin.PasswordHash,
		admin.Email,
		admin.Gender,
		admin.Organisation,
		admin.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: admin %s", ErrDuplicateIdentity, admin.Username)
	}
	if err != nil {
		return fmt.Errorf("inserting admin: %w", err)
	}

	return nil
}

// GetAdminByUsername retrieves an admin and its ordered task ID list.
// Returns ErrNotFound if no admin has the given username.
func (s *SQLiteStore) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	query := `
		SELECT id, username, password_hash, email, gender, organisation, created_at
		FROM admins WHERE username = ?
	`

	var a Admin
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Email, &a.Gender, &a.Organisation, &a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying admin: %w", err)
	}

	a.Tasks, err = s.listRefs(ctx, "SELECT task_id FROM admin_tasks WHERE admin_id = ? ORDER BY rowid", a.ID)
	if err != nil {
		return nil, fmt.Errorf("querying admin tasks: %w", err)
	}

	return &a, nil
}

// AppendAdminTask appends a task reference to the admin's created-task set.
func (s *SQLiteStore) AppendAdminTask(ctx context.Context, username, taskID string) error {
	adminID, err := s.lookupID(ctx, "SELECT id FROM admins WHERE username = ?", username)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO admin_tasks (admin_id, task_id) VALUES (?, ?)", adminID, taskID)
	if err != nil {
		return fmt.Errorf("appending admin task: %w", err)
	}

	return nil
}

// lookupID resolves a single-column ID query, mapping no-rows to ErrNotFound
func (s *SQLiteStore) lookupID(ctx context.Context, query string, args ...any) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("looking up id: %w", err)
	}
	return id, nil
}

// listRefs collects a single-column reference list in rowid order
func (s *SQLiteStore) listRefs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ABOUTME: Organisation store methods for the SQLite backend
// ABOUTME: Covers creation, lookup by name, membership sets, and pending requests

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateOrganisation creates a new organisation together with any
// initial admin/user/request references carried on the struct.
func (s *SQLiteStore) CreateOrganisation(ctx context.Context, org *Organisation) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO organisations (id, name, created_at) VALUES (?, ?, ?)",
		org.ID, org.Name, org.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting organisation: %w", err)
	}

	for _, adminID := range org.Admins {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO organisation_admins (org_id, admin_id) VALUES (?, ?)", org.ID, adminID); err != nil {
			return fmt.Errorf("inserting organisation admin: %w", err)
		}
	}
	for _, userID := range org.Users {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO organisation_users (org_id, user_id) VALUES (?, ?)", org.ID, userID); err != nil {
			return fmt.Errorf("inserting organisation user: %w", err)
		}
	}
	for _, userID := range org.Requests {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO organisation_requests (org_id, user_id, created_at) VALUES (?, ?, ?)",
			org.ID, userID, org.CreatedAt); err != nil {
			return fmt.Errorf("inserting organisation request: %w", err)
		}
	}

	return nil
}

// GetOrganisationByName retrieves an organisation and its reference sets.
// Name is treated as a lookup key; if multiple organisations share a name
// the oldest wins. Returns ErrOrganisationNotFound if none exists.
func (s *SQLiteStore) GetOrganisationByName(ctx context.Context, name string) (*Organisation, error) {
	var o Organisation
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM organisations WHERE name = ? ORDER BY created_at LIMIT 1",
		name).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrganisationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying organisation: %w", err)
	}

	if o.Admins, err = s.listRefs(ctx, "SELECT admin_id FROM organisation_admins WHERE org_id = ? ORDER BY rowid", o.ID); err != nil {
		return nil, fmt.Errorf("querying organisation admins: %w", err)
	}
	if o.Users, err = s.listRefs(ctx, "SELECT user_id FROM organisation_users WHERE org_id = ? ORDER BY rowid", o.ID); err != nil {
		return nil, fmt.Errorf("querying organisation users: %w", err)
	}
	if o.Tasks, err = s.listRefs(ctx, "SELECT task_id FROM organisation_tasks WHERE org_id = ? ORDER BY rowid", o.ID); err != nil {
		return nil, fmt.Errorf("querying organisation tasks: %w", err)
	}
	if o.Requests, err = s.listRefs(ctx, "SELECT user_id FROM organisation_requests WHERE org_id = ? ORDER BY rowid", o.ID); err != nil {
		return nil, fmt.Errorf("querying organisation requests: %w", err)
	}

	return &o, nil
}

// AppendOrganisationAdmin appends an admin reference to the organisation
func (s *SQLiteStore) AppendOrganisationAdmin(ctx context.Context, orgName, adminID string) error {
	return s.appendOrgRef(ctx, orgName,
		"INSERT INTO organisation_admins (org_id, admin_id) VALUES (?, ?)", adminID)
}

// AppendOrganisationUser appends a user reference to the organisation
func (s *SQLiteStore) AppendOrganisationUser(ctx context.Context, orgName, userID string) error {
	return s.appendOrgRef(ctx, orgName,
		"INSERT INTO organisation_users (org_id, user_id) VALUES (?, ?)", userID)
}

// AppendOrganisationTask appends a task reference to the organisation
func (s *SQLiteStore) AppendOrganisationTask(ctx context.Context, orgName, taskID string) error {
	return s.appendOrgRef(ctx, orgName,
		"INSERT INTO organisation_tasks (org_id, task_id) VALUES (?, ?)", taskID)
}

// RemoveOrganisationTask removes a task reference from the organisation.
// Removing a reference that is not present is not an error.
func (s *SQLiteStore) RemoveOrganisationTask(ctx context.Context, orgName, taskID string) error {
	orgID, err := s.orgID(ctx, orgName)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM organisation_tasks WHERE org_id = ? AND task_id = ?", orgID, taskID)
	if err != nil {
		return fmt.Errorf("removing organisation task: %w", err)
	}

	return nil
}

// AppendOrganisationRequest enqueues a pending membership request
func (s *SQLiteStore) AppendOrganisationRequest(ctx context.Context, orgName, userID string) error {
	orgID, err := s.orgID(ctx, orgName)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO organisation_requests (org_id, user_id, created_at) VALUES (?, ?, ?)",
		orgID, userID, time.Now().UTC())
	if isUniqueViolation(err) {
		// already pending, keep the original request
		return nil
	}
	if err != nil {
		return fmt.Errorf("appending organisation request: %w", err)
	}

	return nil
}

// ListOrganisationRequests lists pending membership requests in enqueue order
func (s *SQLiteStore) ListOrganisationRequests(ctx context.Context, orgName string) ([]string, error) {
	orgID, err := s.orgID(ctx, orgName)
	if err != nil {
		return nil, err
	}

	refs, err := s.listRefs(ctx,
		"SELECT user_id FROM organisation_requests WHERE org_id = ? ORDER BY rowid", orgID)
	if err != nil {
		return nil, fmt.Errorf("querying organisation requests: %w", err)
	}
	return refs, nil
}

// RemoveOrganisationRequest removes a pending membership request
func (s *SQLiteStore) RemoveOrganisationRequest(ctx context.Context, orgName, userID string) error {
	orgID, err := s.orgID(ctx, orgName)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM organisation_requests WHERE org_id = ? AND user_id = ?", orgID, userID)
	if err != nil {
		return fmt.Errorf("removing organisation request: %w", err)
	}

	return nil
}

// orgID resolves an organisation name to its ID
func (s *SQLiteStore) orgID(ctx context.Context, name string) (string, error) {
	id, err := s.lookupID(ctx,
		"SELECT id FROM organisations WHERE name = ? ORDER BY created_at LIMIT 1", name)
	if errors.Is(err, ErrNotFound) {
		return "", ErrOrganisationNotFound
	}
	return id, err
}

// appendOrgRef resolves the organisation and inserts a reference row
func (s *SQLiteStore) appendOrgRef(ctx context.Context, orgName, query, ref string) error {
	orgID, err := s.orgID(ctx, orgName)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, orgID, ref); err != nil {
		return fmt.Errorf("appending organisation reference: %w", err)
	}

	return nil
}

// ABOUTME: Task registry enforcing assignment and organisation-visibility rules
// ABOUTME: Create/list/update/delete with two-step cross-collection bookkeeping

package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/typicallhavok/task-manager/internal/store"
)

// ErrUnknownAssignee is returned when a task names an assignee that is
// not an existing user.
var ErrUnknownAssignee = errors.New("unknown assignee")

// ErrOrganisationNotFound is returned when an organisation listing or
// append names a missing organisation.
var ErrOrganisationNotFound = store.ErrOrganisationNotFound

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = store.ErrNotFound

// ErrInvalidField is returned when a task carries a status, priority, or
// type outside the recognized enums.
var ErrInvalidField = errors.New("invalid task field")

// Registry owns Task records and the bookkeeping that keeps user and
// organisation task sets consistent with them.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

// NewRegistry creates a Registry backed by the given store
func NewRegistry(st store.Store) *Registry {
	return &Registry{
		store:  st,
		logger: slog.Default().With("component", "tasks"),
	}
}

// validateEnums checks status/priority/type membership. Comparison is
// case-insensitive because producers disagree on casing; the stored
// value keeps the producer's raw casing.
func validateEnums(t *store.Task) error {
	switch strings.ToLower(t.Status) {
	case store.StatusPending, store.StatusInProgress, store.StatusCompleted:
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidField, t.Status)
	}
	switch strings.ToLower(t.Priority) {
	case store.PriorityLow, store.PriorityMedium, store.PriorityHigh:
	default:
		return fmt.Errorf("%w: priority %q", ErrInvalidField, t.Priority)
	}
	switch strings.ToLower(t.Type) {
	case store.TypePersonal, store.TypeWork:
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidField, t.Type)
	}
	return nil
}

// Create validates and persists a task, then appends its reference to
// the assignee's task set. Admin-created tasks are additionally
// appended to the issuing organisation's task set.
//
// The appends are not transactional in the backing store. A failure
// after the task row is written triggers compensating cleanup; if the
// cleanup itself fails, the partially-applied state is surfaced in the
// returned error rather than silently kept.
func (r *Registry) Create(ctx context.Context, task *store.Task, byRole store.Role, orgName string) (*store.Task, error) {
	if err := validateEnums(task); err != nil {
		return nil, err
	}

	if _, err := r.store.GetUserByUsername(ctx, task.Assignee); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAssignee, task.Assignee)
		}
		return nil, fmt.Errorf("resolving assignee: %w", err)
	}

	if byRole == store.RoleAdmin && orgName == "" {
		return nil, fmt.Errorf("admin task creation requires an organisation")
	}

	if err := r.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if err := r.store.AppendUserTask(ctx, task.Assignee, task.ID); err != nil {
		if _, cerr := r.store.DeleteTask(ctx, task.ID); cerr != nil {
			return nil, fmt.Errorf("appending assignee task (cleanup also failed: %v): %w", cerr, err)
		}
		return nil, fmt.Errorf("appending assignee task: %w", err)
	}

	if byRole == store.RoleAdmin {
		err := r.store.AppendOrganisationTask(ctx, orgName, task.ID)
		if err != nil && !errors.Is(err, store.ErrOrganisationNotFound) {
			// One optimistic retry; the store offers no transactions.
			err = r.store.AppendOrganisationTask(ctx, orgName, task.ID)
		}
		if err != nil {
			if cerr := r.compensateCreate(ctx, task); cerr != nil {
				return nil, fmt.Errorf("appending organisation task (cleanup also failed: %v): %w", cerr, err)
			}
			return nil, fmt.Errorf("appending organisation task: %w", err)
		}
	}

	r.logger.Info("task created",
		"task", task.ID, "assignee", task.Assignee, "by_role", string(byRole))
	return task, nil
}

// compensateCreate undoes the task row and assignee reference written
// before a failed organisation append.
func (r *Registry) compensateCreate(ctx context.Context, task *store.Task) error {
	if err := r.store.RemoveUserTask(ctx, task.Assignee, task.ID); err != nil {
		return err
	}
	_, err := r.store.DeleteTask(ctx, task.ID)
	return err
}

// ListForUser returns all tasks assigned to the given username
func (r *Registry) ListForUser(ctx context.Context, username string) ([]*store.Task, error) {
	return r.store.ListTasksByAssignee(ctx, username)
}

// ListForOrganisation returns the tasks referenced by the organisation's
// task set. Returns ErrOrganisationNotFound if the organisation does not exist.
func (r *Registry) ListForOrganisation(ctx context.Context, orgName string) ([]*store.Task, error) {
	org, err := r.store.GetOrganisationByName(ctx, orgName)
	if err != nil {
		return nil, err
	}
	return r.store.ListTasksByIDs(ctx, org.Tasks)
}

// Update merges the patch into the stored task and returns the
// post-update task. Unspecified fields retain their prior values.
func (r *Registry) Update(ctx context.Context, taskID string, patch store.TaskPatch) (*store.Task, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return r.store.UpdateTask(ctx, taskID, patch)
}

// validatePatch checks the enum fields a patch actually sets
func validatePatch(patch store.TaskPatch) error {
	probe := store.Task{
		Status:   store.StatusPending,
		Priority: store.PriorityLow,
		Type:     store.TypePersonal,
	}
	if patch.Status != nil {
		probe.Status = *patch.Status
	}
	if patch.Priority != nil {
		probe.Priority = *patch.Priority
	}
	if patch.Type != nil {
		probe.Type = *patch.Type
	}
	return validateEnums(&probe)
}

// Delete removes a task by ID and returns the deleted record. The
// reference in the owning user's and organisation's task sets is NOT
// cascade-removed; that cleanup belongs to an external collaborator.
func (r *Registry) Delete(ctx context.Context, taskID string) (*store.Task, error) {
	task, err := r.store.DeleteTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	r.logger.Info("task deleted", "task", taskID)
	return task, nil
}

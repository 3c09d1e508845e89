// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	users      map[string]*User         // keyed by username
	admins     map[string]*Admin        // keyed by username
	orgs       map[string]*Organisation // keyed by name
	tasks      map[string]*Task         // keyed by task ID
	emails     map[string]bool          // "users:email" / "admins:email"
	taskOrder  []string                 // task IDs in insertion order

	// FailAppendUserTask and friends let tests force partial failures
	// in multi-step bookkeeping.
	FailAppendUserTask        bool
	FailAppendOrgTask         bool
	FailAppendOrgTaskAttempts int // fail this many attempts, then succeed
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:  make(map[string]*User),
		admins: make(map[string]*Admin),
		orgs:   make(map[string]*Organisation),
		tasks:  make(map[string]*Task),
		emails: make(map[string]bool),
	}
}

// CreateUser stores a new user, enforcing username and email uniqueness
// within the user namespace.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Username]; exists {
		return fmt.Errorf("%w: user %s", ErrDuplicateIdentity, user.Username)
	}
	if m.emails["users:"+user.Email] {
		return fmt.Errorf("%w: email %s", ErrDuplicateIdentity, user.Email)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	u := *user
	u.Tasks = append([]string(nil), user.Tasks...)
	m.users[u.Username] = &u
	m.emails["users:"+u.Email] = true
	return nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *u
	cp.Tasks = append([]string(nil), u.Tasks...)
	return &cp, nil
}

// AppendUserTask appends a task reference to the user's task set.
func (m *MockStore) AppendUserTask(ctx context.Context, username, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppendUserTask {
		return fmt.Errorf("mock: append user task failed")
	}

	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u.Tasks = append(u.Tasks, taskID)
	return nil
}

// RemoveUserTask removes a task reference from the user's task set.
func (m *MockStore) RemoveUserTask(ctx context.Context, username, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u.Tasks = removeRef(u.Tasks, taskID)
	return nil
}

// CreateAdmin stores a new admin, enforcing uniqueness within the admin namespace.
func (m *MockStore) CreateAdmin(ctx context.Context, admin *Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.admins[admin.Username]; exists {
		return fmt.Errorf("%w: admin %s", ErrDuplicateIdentity, admin.Username)
	}
	if m.emails["admins:"+admin.Email] {
		return fmt.Errorf("%w: email %s", ErrDuplicateIdentity, admin.Email)
	}

	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now().UTC()
	}

	a := *admin
	a.Tasks = append([]string(nil), admin.Tasks...)
	m.admins[a.Username] = &a
	m.emails["admins:"+a.Email] = true
	return nil
}

// GetAdminByUsername retrieves an admin by username.
func (m *MockStore) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.admins[username]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *a
	cp.Tasks = append([]string(nil), a.Tasks...)
	return &cp, nil
}

// AppendAdminTask appends a task reference to the admin's created-task set.
func (m *MockStore) AppendAdminTask(ctx context.Context, username, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.admins[username]
	if !ok {
		return ErrNotFound
	}
	a.Tasks = append(a.Tasks, taskID)
	return nil
}

// CreateOrganisation stores a new organisation.
func (m *MockStore) CreateOrganisation(ctx context.Context, org *Organisation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	o := *org
	o.Admins = append([]string(nil), org.Admins...)
	o.Users = append([]string(nil), org.Users...)
	o.Tasks = append([]string(nil), org.Tasks...)
	o.Requests = append([]string(nil), org.Requests...)
	m.orgs[o.Name] = &o
	return nil
}

// GetOrganisationByName retrieves an organisation by name.
func (m *MockStore) GetOrganisationByName(ctx context.Context, name string) (*Organisation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orgs[name]
	if !ok {
		return nil, ErrOrganisationNotFound
	}

	cp := *o
	cp.Admins = append([]string(nil), o.Admins...)
	cp.Users = append([]string(nil), o.Users...)
	cp.Tasks = append([]string(nil), o.Tasks...)
	cp.Requests = append([]string(nil), o.Requests...)
	return &cp, nil
}

// AppendOrganisationAdmin appends an admin reference.
func (m *MockStore) AppendOrganisationAdmin(ctx context.Context, orgName, adminID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	o.Admins = append(o.Admins, adminID)
	return nil
}

// AppendOrganisationUser appends a user reference.
func (m *MockStore) AppendOrganisationUser(ctx context.Context, orgName, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	o.Users = append(o.Users, userID)
	return nil
}

// AppendOrganisationTask appends a task reference.
func (m *MockStore) AppendOrganisationTask(ctx context.Context, orgName, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppendOrgTask {
		return fmt.Errorf("mock: append organisation task failed")
	}
	if m.FailAppendOrgTaskAttempts > 0 {
		m.FailAppendOrgTaskAttempts--
		return fmt.Errorf("mock: append organisation task failed (transient)")
	}

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	o.Tasks = append(o.Tasks, taskID)
	return nil
}

// RemoveOrganisationTask removes a task reference.
func (m *MockStore) RemoveOrganisationTask(ctx context.Context, orgName, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	o.Tasks = removeRef(o.Tasks, taskID)
	return nil
}

// AppendOrganisationRequest enqueues a pending membership request.
func (m *MockStore) AppendOrganisationRequest(ctx context.Context, orgName, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	for _, id := range o.Requests {
		if id == userID {
			return nil
		}
	}
	o.Requests = append(o.Requests, userID)
	return nil
}

// ListOrganisationRequests lists pending membership requests.
func (m *MockStore) ListOrganisationRequests(ctx context.Context, orgName string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return nil, ErrOrganisationNotFound
	}
	return append([]string(nil), o.Requests...), nil
}

// RemoveOrganisationRequest removes a pending membership request.
func (m *MockStore) RemoveOrganisationRequest(ctx context.Context, orgName, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orgs[orgName]
	if !ok {
		return ErrOrganisationNotFound
	}
	o.Requests = removeRef(o.Requests, userID)
	return nil
}

// CreateTask stores a new task.
func (m *MockStore) CreateTask(ctx context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	t := *task
	t.Objectives = append([]string(nil), task.Objectives...)
	m.tasks[t.ID] = &t
	m.taskOrder = append(m.taskOrder, t.ID)
	return nil
}

// GetTask retrieves a task by ID.
func (m *MockStore) GetTask(ctx context.Context, id string) (*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	cp.Objectives = append([]string(nil), t.Objectives...)
	return &cp, nil
}

// ListTasksByAssignee returns tasks assigned to the username, oldest first.
func (m *MockStore) ListTasksByAssignee(ctx context.Context, username string) ([]*Task, error) {
	return m.ListTasks(ctx, TaskFilter{Assignee: username})
}

// ListTasksByIDs returns tasks for the given IDs, preserving ID order.
func (m *MockStore) ListTasksByIDs(ctx context.Context, ids []string) ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*Task
	for _, id := range ids {
		if t, ok := m.tasks[id]; ok {
			cp := *t
			cp.Objectives = append([]string(nil), t.Objectives...)
			tasks = append(tasks, &cp)
		}
	}
	return tasks, nil
}

// ListTasks returns tasks matching the filter, oldest first.
func (m *MockStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*Task
	for _, id := range m.taskOrder {
		t, ok := m.tasks[id]
		if !ok {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Assignee != "" && t.Assignee != filter.Assignee {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.CreatedFrom != nil && filter.CreatedTo != nil {
			if t.CreatedAt.Before(*filter.CreatedFrom) || t.CreatedAt.After(*filter.CreatedTo) {
				continue
			}
		}
		cp := *t
		cp.Objectives = append([]string(nil), t.Objectives...)
		tasks = append(tasks, &cp)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// UpdateTask merges the patch into the stored task.
func (m *MockStore) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Objectives != nil {
		t.Objectives = append([]string(nil), *patch.Objectives...)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}

	cp := *t
	cp.Objectives = append([]string(nil), t.Objectives...)
	return &cp, nil
}

// DeleteTask removes a task. References in user and organisation task
// sets are left behind, matching the SQLite implementation.
func (m *MockStore) DeleteTask(ctx context.Context, id string) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.tasks, id)
	m.taskOrder = removeRef(m.taskOrder, id)

	cp := *t
	return &cp, nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}

// removeRef removes the first occurrence of ref from refs
func removeRef(refs []string, ref string) []string {
	for i, r := range refs {
		if r == ref {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

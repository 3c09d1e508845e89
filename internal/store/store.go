// ABOUTME: Store interface and data types for task-manager persistence
// ABOUTME: Defines User, Admin, Organisation, Task structs and the Store interface

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateIdentity is returned when a username or email is already
// taken within its namespace (users and admins are separate namespaces)
var ErrDuplicateIdentity = errors.New("identity already exists")

// ErrOrganisationNotFound is returned when a named organisation does not exist
var ErrOrganisationNotFound = errors.New("organisation not found")

// Role selects the identity namespace. The values match the role header
// sent by clients.
type Role string

const (
	RoleUser  Role = "users"
	RoleAdmin Role = "admins"
)

// Task status constants. Producers disagree on casing; the stored value
// keeps whatever casing the producer sent.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// Task priority constants
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task type constants
const (
	TypePersonal = "personal"
	TypeWork     = "work"
)

// User represents a plain user account. Users are never hard-deleted.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	Gender       string
	Organisation string   // empty if the user belongs to no organisation
	Tasks        []string // task IDs in assignment order
	CreatedAt    time.Time
}

// Admin represents an admin account. Admins live in their own namespace:
// an admin and a user may share a username and remain distinct identities.
type Admin struct {
	ID           string
	Username     string
	PasswordHash string
	Email        string
	Gender       string
	Organisation string   // mandatory
	Tasks        []string // task IDs the admin created
	CreatedAt    time.Time
}

// Organisation groups admins, users, org-created tasks, and pending
// membership requests. Name is the lookup key.
type Organisation struct {
	ID        string
	Name      string
	Admins    []string // admin IDs
	Users     []string // user IDs
	Tasks     []string // task IDs created by admins of this organisation
	Requests  []string // user IDs awaiting membership approval
	CreatedAt time.Time
}

// Task is the unit of work tracked by the system. Assignee is the
// assignee's username, not an ID.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Objectives  []string  `json:"objectives"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	Assignee    string    `json:"assignee"`
	CreatedAt   time.Time `json:"createdAt"`
	Priority    string    `json:"priority"`
	Type        string    `json:"type"`
}

// TaskPatch carries a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Objectives  *[]string
	Status      *string
	DueDate     *time.Time
	Assignee    *string
	Priority    *string
	Type        *string
}

// TaskFilter narrows a task listing. Empty string fields impose no
// constraint. The created-at range is inclusive and applied only when
// both ends are set.
type TaskFilter struct {
	Status      string
	Assignee    string
	Priority    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Store defines the interface for identity, organisation, and task persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	AppendUserTask(ctx context.Context, username, taskID string) error
	RemoveUserTask(ctx context.Context, username, taskID string) error

	// Admins
	CreateAdmin(ctx context.Context, admin *Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)
	AppendAdminTask(ctx context.Context, username, taskID string) error

	// Organisations
	CreateOrganisation(ctx context.Context, org *Organisation) error
	GetOrganisationByName(ctx context.Context, name string) (*Organisation, error)
	AppendOrganisationAdmin(ctx context.Context, orgName, adminID string) error
	AppendOrganisationUser(ctx context.Context, orgName, userID string) error
	AppendOrganisationTask(ctx context.Context, orgName, taskID string) error
	RemoveOrganisationTask(ctx context.Context, orgName, taskID string) error

	// Pending membership requests
	AppendOrganisationRequest(ctx context.Context, orgName, userID string) error
	ListOrganisationRequests(ctx context.Context, orgName string) ([]string, error)
	RemoveOrganisationRequest(ctx context.Context, orgName, userID string) error

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasksByAssignee(ctx context.Context, username string) ([]*Task, error)
	ListTasksByIDs(ctx context.Context, ids []string) ([]*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, id string) (*Task, error)

	Close() error
}

// ABOUTME: TOML fixture loader for seeding demo users, admins, and tasks
// ABOUTME: Backs the tasker seed command; applies fixtures through the service layer

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/typicallhavok/task-manager/internal/credential"
	"github.com/typicallhavok/task-manager/internal/directory"
	"github.com/typicallhavok/task-manager/internal/store"
	"github.com/typicallhavok/task-manager/internal/tasks"
)

// Fixture is the parsed content of a seed file
type Fixture struct {
	Admins []IdentityFixture `toml:"admins"`
	Users  []IdentityFixture `toml:"users"`
	Tasks  []TaskFixture     `toml:"tasks"`
}

// IdentityFixture describes a user or admin to register. Password is
// plaintext in the fixture and hashed during apply.
type IdentityFixture struct {
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Email        string `toml:"email"`
	Gender       string `toml:"gender"`
	Organisation string `toml:"organisation"`
}

// TaskFixture describes a task to create. Organisation selects the
// admin creation path when set.
type TaskFixture struct {
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	Objectives   []string `toml:"objectives"`
	Status       string   `toml:"status"`
	DueDate      string   `toml:"due_date"` // RFC 3339 or YYYY-MM-DD
	Assignee     string   `toml:"assignee"`
	Priority     string   `toml:"priority"`
	Type         string   `toml:"type"`
	Organisation string   `toml:"organisation"`
}

// Load parses a fixture file
func Load(path string) (*Fixture, error) {
	var f Fixture
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decoding fixture file: %w", err)
	}
	return &f, nil
}

// Apply registers the fixture's identities and creates its tasks
// through the same service paths the HTTP handlers use. Admins are
// applied before users so user membership requests can land on
// organisations the admins found.
func Apply(ctx context.Context, st store.Store, f *Fixture) error {
	logger := slog.Default().With("component", "seed")
	dir := directory.New(st)
	registry := tasks.NewRegistry(st)

	for _, a := range f.Admins {
		hash, err := credential.Hash(a.Password)
		if err != nil {
			return fmt.Errorf("hashing password for admin %s: %w", a.Username, err)
		}
		if _, err := dir.RegisterAdmin(ctx, directory.RegisterParams{
			Username:     a.Username,
			PasswordHash: hash,
			Email:        a.Email,
			Gender:       a.Gender,
			Organisation: a.Organisation,
		}); err != nil {
			return fmt.Errorf("registering admin %s: %w", a.Username, err)
		}
	}

	for _, u := range f.Users {
		hash, err := credential.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hashing password for user %s: %w", u.Username, err)
		}
		if _, err := dir.RegisterUser(ctx, directory.RegisterParams{
			Username:     u.Username,
			PasswordHash: hash,
			Email:        u.Email,
			Gender:       u.Gender,
			Organisation: u.Organisation,
		}); err != nil {
			return fmt.Errorf("registering user %s: %w", u.Username, err)
		}
	}

	for _, t := range f.Tasks {
		dueDate, err := parseFixtureDate(t.DueDate)
		if err != nil {
			return fmt.Errorf("task %q: %w", t.Title, err)
		}

		task := &store.Task{
			Title:       t.Title,
			Description: t.Description,
			Objectives:  t.Objectives,
			Status:      t.Status,
			DueDate:     dueDate,
			Assignee:    t.Assignee,
			Priority:    t.Priority,
			Type:        t.Type,
		}

		role := store.RoleUser
		if t.Organisation != "" {
			role = store.RoleAdmin
		}
		if _, err := registry.Create(ctx, task, role, t.Organisation); err != nil {
			return fmt.Errorf("creating task %q: %w", t.Title, err)
		}
	}

	logger.Info("fixture applied",
		"admins", len(f.Admins), "users", len(f.Users), "tasks", len(f.Tasks))
	return nil
}

// parseFixtureDate accepts RFC 3339 timestamps or bare dates
func parseFixtureDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("due_date is required")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due_date %q: %w", v, err)
	}
	return t, nil
}

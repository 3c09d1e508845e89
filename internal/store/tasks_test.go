// ABOUTME: Tests for task store operations against the SQLite backend
// ABOUTME: Covers CRUD, patch merge, filtering, ID ordering, and delete semantics

package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestTask(title, assignee string) *Task {
	return &Task{
		Title:       title,
		Description: "a test task",
		Objectives:  []string{"first", "second"},
		Status:      StatusPending,
		DueDate:     time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Assignee:    assignee,
		Priority:    PriorityMedium,
		Type:        TypeWork,
	}
}

func TestCreateAndGetTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	task := newTestTask("Ship release", "alice")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if task.ID == "" {
		t.Error("CreateTask() did not assign an ID")
	}
	if task.CreatedAt.IsZero() {
		t.Error("CreateTask() did not set CreatedAt")
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Title != "Ship release" || got.Assignee != "alice" {
		t.Errorf("GetTask() = %+v, want title and assignee preserved", got)
	}
	if len(got.Objectives) != 2 || got.Objectives[0] != "first" {
		t.Errorf("Objectives = %v, want [first second]", got.Objectives)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetTask(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask() error = %v, want ErrNotFound", err)
	}
}

func TestListTasksByAssignee(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		if err := store.CreateTask(ctx, newTestTask(title, "alice")); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
	}
	if err := store.CreateTask(ctx, newTestTask("other", "bob")); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	tasks, err := store.ListTasksByAssignee(ctx, "alice")
	if err != nil {
		t.Fatalf("ListTasksByAssignee() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("got %d tasks, want 2", len(tasks))
	}
}

func TestListTasksByIDsPreservesOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		task := newTestTask(title, "alice")
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask(%q) error = %v", title, err)
		}
		ids = append(ids, task.ID)
	}

	// Request in reversed order with an unknown ID in the middle
	want := []string{ids[2], ids[0]}
	tasks, err := store.ListTasksByIDs(ctx, []string{ids[2], "missing", ids[0]})
	if err != nil {
		t.Fatalf("ListTasksByIDs() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	for i, task := range tasks {
		if task.ID != want[i] {
			t.Errorf("tasks[%d].ID = %s, want %s", i, task.ID, want[i])
		}
	}
}

func TestListTasksByIDsEmpty(t *testing.T) {
	store := setupTestStore(t)

	tasks, err := store.ListTasksByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTasksByIDs() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks, want 0", len(tasks))
	}
}

func TestListTasksFiltered(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	done := newTestTask("done", "alice")
	done.Status = StatusCompleted
	pending := newTestTask("pending", "bob")
	for _, task := range []*Task{done, pending} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	tasks, err := store.ListTasks(ctx, TaskFilter{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "done" {
		t.Errorf("filtered tasks = %v, want the completed task only", tasks)
	}

	// Status matching is exact on stored values
	tasks, err = store.ListTasks(ctx, TaskFilter{Status: "Completed"})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks for mismatched casing, want 0", len(tasks))
	}
}

func TestListTasksDateRangeRequiresBothEnds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	old := newTestTask("old", "alice")
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := newTestTask("recent", "alice")
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, task := range []*Task{old, recent} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	tasks, err := store.ListTasks(ctx, TaskFilter{CreatedFrom: &from, CreatedTo: &to})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "recent" {
		t.Errorf("ranged tasks = %v, want the recent task only", tasks)
	}

	// A lone range bound is ignored
	tasks, err = store.ListTasks(ctx, TaskFilter{CreatedFrom: &from})
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("got %d tasks with only a start bound, want 2", len(tasks))
	}
}

func TestUpdateTaskMergesPatch(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	task := newTestTask("original", "alice")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	status := StatusCompleted
	title := "renamed"
	updated, err := store.UpdateTask(ctx, task.ID, TaskPatch{Status: &status, Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}
	if updated.Status != StatusCompleted || updated.Title != "renamed" {
		t.Errorf("updated = %+v, want patched status and title", updated)
	}
	if updated.Assignee != "alice" || updated.Priority != PriorityMedium {
		t.Errorf("updated = %+v, want unpatched fields preserved", updated)
	}

	got, err := store.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status != StatusCompleted || got.Title != "renamed" {
		t.Errorf("stored = %+v, want patch persisted", got)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	store := setupTestStore(t)

	title := "renamed"
	_, err := store.UpdateTask(context.Background(), "missing", TaskPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTask() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTaskLeavesReferences(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user := &User{Username: "alice", Email: "alice@example.com", PasswordHash: "x", Gender: "female"}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	task := newTestTask("doomed", "alice")
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if err := store.AppendUserTask(ctx, "alice", task.ID); err != nil {
		t.Fatalf("AppendUserTask() error = %v", err)
	}

	deleted, err := store.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if deleted.Title != "doomed" {
		t.Errorf("deleted.Title = %s, want doomed", deleted.Title)
	}

	if _, err := store.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask() after delete error = %v, want ErrNotFound", err)
	}

	// The user's task set still carries the dangling reference
	got, err := store.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0] != task.ID {
		t.Errorf("user tasks = %v, want dangling [%s]", got.Tasks, task.ID)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DeleteTask(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask() error = %v, want ErrNotFound", err)
	}
}

// ABOUTME: Tests for organisation store operations
// ABOUTME: Covers creation, membership sets, task sets, and pending requests

package store

import (
	"context"
	"errors"
	"testing"
)

func TestCreateOrganisationWithFounders(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	org := &Organisation{
		Name:   "Acme",
		Admins: []string{"admin-1"},
		Users:  []string{"user-1"},
	}
	if err := store.CreateOrganisation(ctx, org); err != nil {
		t.Fatalf("CreateOrganisation() error = %v", err)
	}

	got, err := store.GetOrganisationByName(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetOrganisationByName() error = %v", err)
	}
	if len(got.Admins) != 1 || got.Admins[0] != "admin-1" {
		t.Errorf("Admins = %v, want [admin-1]", got.Admins)
	}
	if len(got.Users) != 1 || got.Users[0] != "user-1" {
		t.Errorf("Users = %v, want [user-1]", got.Users)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", got.Tasks)
	}
}

func TestGetOrganisationByNameNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetOrganisationByName(context.Background(), "Ghost Corp")
	if !errors.Is(err, ErrOrganisationNotFound) {
		t.Errorf("GetOrganisationByName() error = %v, want ErrOrganisationNotFound", err)
	}
}

func TestAppendOrganisationReferences(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateOrganisation(ctx, &Organisation{Name: "Acme"}); err != nil {
		t.Fatalf("CreateOrganisation() error = %v", err)
	}

	if err := store.AppendOrganisationAdmin(ctx, "Acme", "admin-1"); err != nil {
		t.Fatalf("AppendOrganisationAdmin() error = %v", err)
	}
	if err := store.AppendOrganisationUser(ctx, "Acme", "user-1"); err != nil {
		t.Fatalf("AppendOrganisationUser() error = %v", err)
	}
	if err := store.AppendOrganisationTask(ctx, "Acme", "task-1"); err != nil {
		t.Fatalf("AppendOrganisationTask() error = %v", err)
	}

	got, err := store.GetOrganisationByName(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetOrganisationByName() error = %v", err)
	}
	if len(got.Admins) != 1 || len(got.Users) != 1 || len(got.Tasks) != 1 {
		t.Errorf("sets = admins %v users %v tasks %v, want one each", got.Admins, got.Users, got.Tasks)
	}
}

func TestAppendOrganisationTaskUnknownOrg(t *testing.T) {
	store := setupTestStore(t)

	err := store.AppendOrganisationTask(context.Background(), "Ghost Corp", "task-1")
	if !errors.Is(err, ErrOrganisationNotFound) {
		t.Errorf("AppendOrganisationTask() error = %v, want ErrOrganisationNotFound", err)
	}
}

func TestRemoveOrganisationTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateOrganisation(ctx, &Organisation{Name: "Acme"}); err != nil {
		t.Fatalf("CreateOrganisation() error = %v", err)
	}
	if err := store.AppendOrganisationTask(ctx, "Acme", "task-1"); err != nil {
		t.Fatalf("AppendOrganisationTask() error = %v", err)
	}

	if err := store.RemoveOrganisationTask(ctx, "Acme", "task-1"); err != nil {
		t.Fatalf("RemoveOrganisationTask() error = %v", err)
	}

	got, err := store.GetOrganisationByName(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetOrganisationByName() error = %v", err)
	}
	if len(got.Tasks) != 0 {
		t.Errorf("Tasks = %v, want empty after removal", got.Tasks)
	}
}

func TestOrganisationRequests(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateOrganisation(ctx, &Organisation{Name: "Acme"}); err != nil {
		t.Fatalf("CreateOrganisation() error = %v", err)
	}

	if err := store.AppendOrganisationRequest(ctx, "Acme", "user-1"); err != nil {
		t.Fatalf("AppendOrganisationRequest() error = %v", err)
	}
	if err := store.AppendOrganisationRequest(ctx, "Acme", "user-2"); err != nil {
		t.Fatalf("AppendOrganisationRequest() error = %v", err)
	}

	// Re-enqueueing the same user keeps the original request
	if err := store.AppendOrganisationRequest(ctx, "Acme", "user-1"); err != nil {
		t.Fatalf("AppendOrganisationRequest() duplicate error = %v", err)
	}

	requests, err := store.ListOrganisationRequests(ctx, "Acme")
	if err != nil {
		t.Fatalf("ListOrganisationRequests() error = %v", err)
	}
	if len(requests) != 2 || requests[0] != "user-1" || requests[1] != "user-2" {
		t.Errorf("requests = %v, want [user-1 user-2]", requests)
	}

	if err := store.RemoveOrganisationRequest(ctx, "Acme", "user-1"); err != nil {
		t.Fatalf("RemoveOrganisationRequest() error = %v", err)
	}

	requests, err = store.ListOrganisationRequests(ctx, "Acme")
	if err != nil {
		t.Fatalf("ListOrganisationRequests() error = %v", err)
	}
	if len(requests) != 1 || requests[0] != "user-2" {
		t.Errorf("requests = %v, want [user-2]", requests)
	}
}

func TestOrganisationRequestsUnknownOrg(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.ListOrganisationRequests(context.Background(), "Ghost Corp")
	if !errors.Is(err, ErrOrganisationNotFound) {
		t.Errorf("ListOrganisationRequests() error = %v, want ErrOrganisationNotFound", err)
	}
}

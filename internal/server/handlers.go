// ABOUTME: HTTP handlers for credentials, registration, tasks, and summaries
// ABOUTME: Business failures are 200 with success:false; store errors are generic 500s

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/typicallhavok/task-manager/internal/auth"
	"github.com/typicallhavok/task-manager/internal/credential"
	"github.com/typicallhavok/task-manager/internal/directory"
	"github.com/typicallhavok/task-manager/internal/store"
	"github.com/typicallhavok/task-manager/internal/tasks"
)

// apiResponse is the common JSON envelope for business endpoints
type apiResponse struct {
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Token   string      `json:"token,omitempty"`
	Task    *store.Task `json:"task,omitempty"`
	TaskID  string      `json:"taskId,omitempty"`
}

// credentialsRequest is the JSON request body for POST /validateCreds.
// The formData envelope matches what the login form submits.
type credentialsRequest struct {
	FormData struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	} `json:"formData"`
}

// registerRequest is the JSON request body for POST /api/register
type registerRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	Gender       string `json:"gender"`
	Role         string `json:"role"`
	Organisation string `json:"organisation"`
}

// taskRequest is the JSON request body for the addTask endpoints
type taskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Objectives  []string  `json:"objectives"`
	Status      string    `json:"status"`
	DueDate     time.Time `json:"dueDate"`
	Assignee    string    `json:"assignee"`
	Priority    string    `json:"priority"`
	Type        string    `json:"type"`
}

// updateTaskRequest is the JSON request body for PUT /api/users/updateTask/{id}.
// Absent fields stay nil and leave the stored value unchanged.
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Objectives  *[]string  `json:"objectives"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    *string    `json:"assignee"`
	Priority    *string    `json:"priority"`
	Type        *string    `json:"type"`
}

// protectedResponse is the JSON response for GET /protected
type protectedResponse struct {
	Success bool          `json:"success"`
	User    identityView  `json:"user"`
	Tasks   []*store.Task `json:"tasks,omitempty"`
}

// identityView is the caller-visible slice of an identity
type identityView struct {
	Username     string `json:"username"`
	Gender       string `json:"gender"`
	Organisation string `json:"organisation,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// writeFailure writes the 200 success:false envelope used for expected
// business failures
func (s *Server) writeFailure(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusOK, apiResponse{Message: message, Success: false})
}

// writeServerError logs full detail server-side and returns a generic 500
func (s *Server) writeServerError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, apiResponse{Message: "Server error", Success: false})
}

// handleValidateCreds verifies a credential and issues a token
func (s *Server) handleValidateCreds(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, "Invalid request body")
		return
	}

	role := store.RoleUser
	if store.Role(req.FormData.Role) == store.RoleAdmin {
		role = store.RoleAdmin
	}

	identity, err := s.directory.FindIdentity(r.Context(), req.FormData.Username, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeFailure(w, "User does not exist")
			return
		}
		s.writeServerError(w, err)
		return
	}

	ok, err := credential.Verify(identity.PasswordHash, req.FormData.Password)
	if err != nil {
		// Corrupt stored digest: unexpected, never caller-visible detail.
		s.writeServerError(w, err)
		return
	}
	if !ok {
		s.writeFailure(w, "Invalid password")
		return
	}

	token, err := s.tokens.Issue(identity.Username)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Login successful", Success: true, Token: token})
}

// handleProtected resolves the caller's identity and optionally attaches
// its task list. Auth failures here are bare status codes: 401 when no
// token was sent, 403 when verification rejected it, 404 when the
// declared role does not hold the identity.
func (s *Server) handleProtected(w http.ResponseWriter, r *http.Request) {
	role := requestRole(r)

	authCtx, err := s.gateway.Authenticate(r.Context(), r.Header.Get("Authorization"), role)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingToken):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, ErrIdentityNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrMissingClaim):
			w.WriteHeader(http.StatusForbidden)
		default:
			s.logger.Error("protected lookup failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	resp := protectedResponse{
		Success: true,
		User: identityView{
			Username: authCtx.Username,
			Gender:   authCtx.Gender,
		},
	}
	if authCtx.IsAdmin() {
		resp.User.Organisation = authCtx.Organisation
	}

	if r.Header.Get("tasks") == "true" {
		var list []*store.Task
		if authCtx.IsAdmin() {
			list, err = s.registry.ListForOrganisation(r.Context(), authCtx.Organisation)
		} else {
			list, err = s.registry.ListForUser(r.Context(), authCtx.Username)
		}
		if err != nil && !errors.Is(err, tasks.ErrOrganisationNotFound) {
			s.logger.Error("attaching tasks failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []*store.Task{}
		}
		resp.Tasks = list
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleRegister creates a user, or an admin plus organisation
// bookkeeping when role is admins, and issues a token
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" || req.Email == "" {
		s.writeFailure(w, "Username, password, and email are required")
		return
	}

	hash, err := credential.Hash(req.Password)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	params := directory.RegisterParams{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Gender:       req.Gender,
		Organisation: req.Organisation,
	}

	if store.Role(req.Role) == store.RoleAdmin {
		_, err = s.directory.RegisterAdmin(r.Context(), params)
	} else {
		_, err = s.directory.RegisterUser(r.Context(), params)
	}
	if err != nil {
		if errors.Is(err, directory.ErrDuplicateIdentity) {
			s.writeFailure(w, "User already exists")
			return
		}
		s.writeServerError(w, err)
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Registration successful", Success: true, Token: token})
}

// handleUserAddTask creates a personal task for the authenticated user
func (s *Server) handleUserAddTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.decodeTask(w, r)
	if !ok {
		return
	}

	created, err := s.registry.Create(r.Context(), task, store.RoleUser, "")
	if err != nil {
		s.writeTaskCreateError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Task added successfully", Success: true, Task: created})
}

// handleAdminAddTask creates an organisational task; the reference is
// appended to the issuing admin's organisation task set
func (s *Server) handleAdminAddTask(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())

	task, ok := s.decodeTask(w, r)
	if !ok {
		return
	}

	created, err := s.registry.Create(r.Context(), task, store.RoleAdmin, authCtx.Organisation)
	if err != nil {
		s.writeTaskCreateError(w, err)
		return
	}

	if err := s.store.AppendAdminTask(r.Context(), authCtx.Username, created.ID); err != nil {
		s.logger.Warn("recording admin created-task reference failed",
			"admin", authCtx.Username, "task", created.ID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Task added successfully", Success: true, Task: created})
}

// decodeTask parses the addTask request body into a store.Task
func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request) (*store.Task, bool) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, "Invalid request body")
		return nil, false
	}

	return &store.Task{
		Title:       req.Title,
		Description: req.Description,
		Objectives:  req.Objectives,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Type:        req.Type,
	}, true
}

// writeTaskCreateError maps registry creation failures to responses
func (s *Server) writeTaskCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tasks.ErrUnknownAssignee):
		s.writeFailure(w, "Assignee not found")
	case errors.Is(err, tasks.ErrInvalidField):
		s.writeFailure(w, "Invalid task field")
	case errors.Is(err, tasks.ErrOrganisationNotFound):
		s.writeFailure(w, "Organisation not found")
	default:
		s.writeServerError(w, err)
	}
}

// handleDeleteTask deletes a task by ID. Task-set references held by
// users and organisations are not cascade-removed.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	if _, err := s.registry.Delete(r.Context(), taskID); err != nil {
		if errors.Is(err, tasks.ErrNotFound) {
			s.writeFailure(w, "Task not found")
			return
		}
		s.writeServerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Task deleted successfully", Success: true, TaskID: taskID})
}

// handleUpdateTask merges provided fields into the stored task
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeFailure(w, "Invalid request body")
		return
	}

	patch := store.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Objectives:  req.Objectives,
		Status:      req.Status,
		DueDate:     req.DueDate,
		Assignee:    req.Assignee,
		Priority:    req.Priority,
		Type:        req.Type,
	}

	updated, err := s.registry.Update(r.Context(), taskID, patch)
	if err != nil {
		switch {
		case errors.Is(err, tasks.ErrNotFound):
			s.writeFailure(w, "Task not found")
		case errors.Is(err, tasks.ErrInvalidField):
			s.writeFailure(w, "Invalid task field")
		default:
			s.writeServerError(w, err)
		}
		return
	}

	s.writeJSON(w, http.StatusOK, apiResponse{Message: "Task updated successfully", Success: true, Task: updated})
}

// handleTaskSummary runs the aggregation engine over query-string filters
func (s *Server) handleTaskSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := tasks.Filters{
		Status:   q.Get("status"),
		Assignee: q.Get("assignee"),
		Priority: q.Get("priority"),
	}

	if start, ok := parseDate(q.Get("startDate")); ok {
		filters.StartDate = &start
	}
	if end, ok := parseDate(q.Get("endDate")); ok {
		filters.EndDate = &end
	}

	summary, err := s.registry.Summarize(r.Context(), filters)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, summary)
}

// handleHealthz reports liveness
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseDate accepts RFC 3339 timestamps or bare dates
func parseDate(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

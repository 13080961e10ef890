package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/skillstage/server/internal/api/middleware"
	"github.com/skillstage/server/internal/api/respond"
	"github.com/skillstage/server/internal/audit"
	"github.com/skillstage/server/internal/domain/users"
)

// AdminUsersHandler serves the administrative user management endpoints.
// All of its routes are gated to the tech-expert role by the router.
type AdminUsersHandler struct {
	users    *users.Service
	env      string
	audit    *audit.Logger
	validate *validator.Validate
}

func NewAdminUsersHandler(service *users.Service, env string, auditLog *audit.Logger) *AdminUsersHandler {
	return &AdminUsersHandler{
		users:    service,
		env:      env,
		audit:    auditLog,
		validate: validator.New(),
	}
}

// actor names the authenticated caller for audit records.
func actor(r *http.Request) string {
	if claims := middleware.Claims(r); claims != nil {
		return claims.Subject
	}
	return "unknown"
}

type createUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type deleteUserRequest struct {
	UserID string `json:"userId" validate:"required"`
}

// CreateChiefExpert handles POST /api/admin/chief-experts.
func (h *AdminUsersHandler) CreateChiefExpert(w http.ResponseWriter, r *http.Request) {
	h.createWithRole(w, r, h.users.CreateChiefExpert, "Chief expert created successfully", "user.chief-expert.create")
}

// CreateParticipant handles POST /api/admin/participants.
func (h *AdminUsersHandler) CreateParticipant(w http.ResponseWriter, r *http.Request) {
	h.createWithRole(w, r, h.users.CreateParticipant, "Participant created successfully", "user.participant.create")
}

func (h *AdminUsersHandler) createWithRole(
	w http.ResponseWriter,
	r *http.Request,
	create func(ctx context.Context, email, password, firstName, lastName string) (users.User, error),
	message string,
	auditAction string,
) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please fill in all fields", err, h.env)
		return
	}

	user, err := create(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	h.audit.Success(r, actor(r), auditAction, "user", user.ID)
	respond.JSON(w, http.StatusCreated, message, respond.Envelope{"user": user.Public()})
}

// DeleteUser handles DELETE /api/admin/users. The target id rides in the
// body, matching the clients this replaced.
func (h *AdminUsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide userId", err, h.env)
		return
	}

	if err := h.users.Delete(r.Context(), req.UserID); err != nil {
		if errors.Is(err, users.ErrProtectedRole) {
			h.audit.Failure(r, actor(r), "user.delete", map[string]string{
				"target": req.UserID,
				"reason": "protected role",
			})
		}
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	h.audit.Success(r, actor(r), "user.delete", "user", req.UserID)
	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/skillstage/server/internal/api/middleware"
	"github.com/skillstage/server/internal/api/respond"
	"github.com/skillstage/server/internal/audit"
	"github.com/skillstage/server/internal/domain/users"
)

// AuthHandler serves registration, login, profile, and role management.
type AuthHandler struct {
	users    *users.Service
	env      string
	audit    *audit.Logger
	validate *validator.Validate
}

func NewAuthHandler(service *users.Service, env string, auditLog *audit.Logger) *AuthHandler {
	return &AuthHandler{
		users:    service,
		env:      env,
		audit:    auditLog,
		validate: validator.New(),
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Role      string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateRoleRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please fill in all fields", err, h.env)
		return
	}

	user, token, err := h.users.Register(r.Context(), users.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	respond.JSON(w, http.StatusCreated, "User registered successfully", respond.Envelope{
		"token": token,
		"user":  user.Public(),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide email and password", err, h.env)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, nil, h.env)
		return
	}

	respond.JSON(w, http.StatusOK, "Logged in successfully", respond.Envelope{
		"token": token,
		"user":  user.Public(),
	})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	if claims == nil {
		respond.Error(w, r, http.StatusUnauthorized, "Token not provided", nil, h.env)
		return
	}

	user, err := h.users.Profile(r.Context(), claims.Subject)
	if err != nil {
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	respond.JSON(w, http.StatusOK, "", respond.Envelope{"user": user.Public()})
}

// ListUsers handles GET /api/auth/users and GET /api/admin/users.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		respond.Error(w, r, http.StatusInternalServerError, "Server error", err, h.env)
		return
	}

	public := make([]users.PublicUser, 0, len(list))
	for _, user := range list {
		public = append(public, user.Public())
	}

	respond.JSON(w, http.StatusOK, "", respond.Envelope{
		"count": len(public),
		"users": public,
	})
}

// UpdateRole handles POST /api/auth/users/update-role.
func (h *AuthHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request body", err, h.env)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Please provide userId and role", err, h.env)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), req.UserID, req.Role)
	if err != nil {
		status, message := mapUserError(err)
		respond.Error(w, r, status, message, err, h.env)
		return
	}

	h.audit.Success(r, actor(r), "user.role.update", "user", user.ID)
	respond.JSON(w, http.StatusOK, "User role updated successfully", respond.Envelope{
		"user": user.Public(),
	})
}

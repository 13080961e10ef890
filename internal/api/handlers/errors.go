package handlers

import (
	"errors"
	"net/http"

	"github.com/skillstage/server/internal/auth"
	"github.com/skillstage/server/internal/domain/events"
	"github.com/skillstage/server/internal/domain/users"
)

// mapUserError translates user service sentinels into an HTTP status and a
// client-facing message. Unknown errors fall through to a 500.
func mapUserError(err error) (int, string) {
	switch {
	case errors.Is(err, users.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role. Valid roles: " + auth.RoleList()
	case errors.Is(err, users.ErrEmailTaken):
		return http.StatusBadRequest, "A user with this email already exists"
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, users.ErrProtectedRole):
		return http.StatusForbidden, "Users with this role cannot be deleted"
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

func mapEventError(err error) (int, string) {
	switch {
	case errors.Is(err, events.ErrEventNotFound):
		return http.StatusNotFound, "Event not found"
	case errors.Is(err, events.ErrModuleNotFound):
		return http.StatusNotFound, "Module not found"
	default:
		return http.StatusInternalServerError, "Server error"
	}
}

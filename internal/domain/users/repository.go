package users

import (
	"context"
	"errors"
	"time"

	"github.com/skillstage/server/internal/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrProtectedRole      = errors.New("only chief experts and participants can be deleted")
)

// User is a stored account. PasswordHash never leaves the service layer;
// handlers serialize Public views only.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         auth.Role
	CreatedAt    time.Time
}

// PublicUser is the externally visible projection of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public strips credentials from the user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// CreateParams carries the fields for inserting a new user.
type CreateParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         auth.Role
}

// Repository is the credential store. Email uniqueness is enforced by the
// store; Create returns ErrEmailTaken when violated.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	UpdateRole(ctx context.Context, id string, role auth.Role) (User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
}

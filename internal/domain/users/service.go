package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/skillstage/server/internal/auth"
)

// Service orchestrates registration, login, and account management on top of
// the credential store and the token manager.
type Service struct {
	repo   Repository
	tokens *auth.JWTManager
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *auth.JWTManager, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// RegisterParams carries a self-registration request. Role is optional and
// defaults to participant.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// Register hashes the password, stores the new user, and issues a token.
func (s *Service) Register(ctx context.Context, params RegisterParams) (User, string, error) {
	role := auth.DefaultRole
	if params.Role != "" {
		parsed, err := auth.ParseRole(params.Role)
		if err != nil {
			return User{}, "", fmt.Errorf("%w: valid roles: %s", ErrInvalidRole, auth.RoleList())
		}
		role = parsed
	}

	user, err := s.create(ctx, params.Email, params.Password, params.FirstName, params.LastName, role)
	if err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return user, token, nil
}

// Login verifies credentials and issues a fresh token. Unknown email and bad
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, token, nil
}

// Profile resolves the account referenced by a verified identity. Returns
// ErrNotFound when the token outlived the account.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.repo.GetByID(ctx, userID)
}

// List returns every account, public fields only at the handler boundary.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateRole validates the new role against the enumerated set and persists
// it. The change takes effect in tokens only after the target re-logs in.
func (s *Service) UpdateRole(ctx context.Context, userID, role string) (User, error) {
	parsed, err := auth.ParseRole(role)
	if err != nil {
		return User{}, fmt.Errorf("%w: valid roles: %s", ErrInvalidRole, auth.RoleList())
	}

	user, err := s.repo.UpdateRole(ctx, userID, parsed)
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(parsed)).Msg("user role updated")
	return user, nil
}

// CreateChiefExpert provisions an account with the chief-expert role.
func (s *Service) CreateChiefExpert(ctx context.Context, email, password, firstName, lastName string) (User, error) {
	return s.create(ctx, email, password, firstName, lastName, auth.RoleChiefExpert)
}

// CreateParticipant provisions an account with the participant role.
func (s *Service) CreateParticipant(ctx context.Context, email, password, firstName, lastName string) (User, error) {
	return s.create(ctx, email, password, firstName, lastName, auth.RoleParticipant)
}

// Delete removes an account. Tech-expert and expert accounts are protected
// and yield ErrProtectedRole regardless of the caller.
func (s *Service) Delete(ctx context.Context, userID string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.Role.Deletable() {
		return ErrProtectedRole
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", userID).Str("role", string(user.Role)).Msg("user deleted")
	return nil
}

func (s *Service) create(ctx context.Context, email, password, firstName, lastName string, role auth.Role) (User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	user, err := s.repo.Create(ctx, CreateParams{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

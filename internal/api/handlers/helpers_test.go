package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/skillstage/server/internal/api/middleware"
	"github.com/skillstage/server/internal/audit"
	"github.com/skillstage/server/internal/auth"
	"github.com/skillstage/server/internal/domain/events"
	"github.com/skillstage/server/internal/domain/users"
)

const testEnv = "test"

// stubUserRepo is an in-memory users.Repository for handler tests.
type stubUserRepo struct {
	byEmail map[string]users.User
	byID    map[string]users.User
	seq     int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: make(map[string]users.User),
		byID:    make(map[string]users.User),
	}
}

func (s *stubUserRepo) Create(_ context.Context, params users.CreateParams) (users.User, error) {
	if _, ok := s.byEmail[params.Email]; ok {
		return users.User{}, users.ErrEmailTaken
	}
	s.seq++
	user := users.User{
		ID:           fmt.Sprintf("user-%d", s.seq),
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Role:         params.Role,
		CreatedAt:    time.Now(),
	}
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (users.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (users.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateRole(_ context.Context, id string, role auth.Role) (users.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	user.Role = role
	s.byID[id] = user
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) Delete(_ context.Context, id string) error {
	user, ok := s.byID[id]
	if !ok {
		return users.ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, user.Email)
	return nil
}

func (s *stubUserRepo) List(_ context.Context) ([]users.User, error) {
	list := make([]users.User, 0, len(s.byID))
	for _, user := range s.byID {
		list = append(list, user)
	}
	return list, nil
}

// stubEventRepo is an in-memory events.Repository for handler tests.
type stubEventRepo struct {
	events  map[string]events.Event
	modules map[string]events.Module
	seq     int
}

func newStubEventRepo() *stubEventRepo {
	return &stubEventRepo{
		events:  make(map[string]events.Event),
		modules: make(map[string]events.Module),
	}
}

func (s *stubEventRepo) CreateEvent(_ context.Context, params events.CreateEventParams) (events.Event, error) {
	s.seq++
	event := events.Event{
		ID:        fmt.Sprintf("event-%d", s.seq),
		Name:      params.Name,
		Count:     params.Count,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now(),
		Modules:   []events.Module{},
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubEventRepo) GetEvent(_ context.Context, id string) (events.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrEventNotFound
	}
	for _, module := range s.modules {
		if module.EventID == id {
			event.Modules = append(event.Modules, module)
		}
	}
	return event, nil
}

func (s *stubEventRepo) ListEvents(_ context.Context) ([]events.Event, error) {
	list := make([]events.Event, 0, len(s.events))
	for _, event := range s.events {
		list = append(list, event)
	}
	return list, nil
}

func (s *stubEventRepo) DeleteEvent(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return events.ErrEventNotFound
	}
	delete(s.events, id)
	for moduleID, module := range s.modules {
		if module.EventID == id {
			delete(s.modules, moduleID)
		}
	}
	return nil
}

func (s *stubEventRepo) CreateModule(_ context.Context, params events.CreateModuleParams) (events.Module, error) {
	if _, ok := s.events[params.EventID]; !ok {
		return events.Module{}, events.ErrEventNotFound
	}
	s.seq++
	module := events.Module{
		ID:        fmt.Sprintf("module-%d", s.seq),
		Name:      params.Name,
		EventID:   params.EventID,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now(),
	}
	s.modules[module.ID] = module
	return module, nil
}

func (s *stubEventRepo) DeleteModule(_ context.Context, id string) error {
	if _, ok := s.modules[id]; !ok {
		return events.ErrModuleNotFound
	}
	delete(s.modules, id)
	return nil
}

func testTokenManager() *auth.JWTManager {
	return auth.NewJWTManager([]byte("handler-test-secret"), time.Hour, "skillstage")
}

func newUserService(repo users.Repository) *users.Service {
	return users.NewService(repo, testTokenManager(), zerolog.Nop())
}

func newEventService(repo events.Repository) *events.Service {
	return events.NewService(repo, zerolog.Nop())
}

func testAudit() *audit.Logger {
	return audit.NewLogger(zerolog.Nop())
}

// requestWithClaims simulates a request that already passed Authenticate.
func requestWithClaims(r *http.Request, userID, email string, role auth.Role) *http.Request {
	claims := &auth.Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
		},
	}
	return r.WithContext(middleware.ContextWithClaims(r.Context(), claims))
}

package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	events  map[string]Event
	modules map[string]Module
	nextID  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		events:  make(map[string]Event),
		modules: make(map[string]Module),
	}
}

func (s *stubRepo) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *stubRepo) CreateEvent(_ context.Context, params CreateEventParams) (Event, error) {
	event := Event{
		ID:        s.id("event"),
		Name:      params.Name,
		Count:     params.Count,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now(),
		Modules:   []Module{},
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubRepo) GetEvent(_ context.Context, id string) (Event, error) {
	event, ok := s.events[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	for _, module := range s.modules {
		if module.EventID == id {
			event.Modules = append(event.Modules, module)
		}
	}
	return event, nil
}

func (s *stubRepo) ListEvents(_ context.Context) ([]Event, error) {
	items := make([]Event, 0, len(s.events))
	for id := range s.events {
		event, _ := s.GetEvent(context.Background(), id)
		items = append(items, event)
	}
	return items, nil
}

func (s *stubRepo) DeleteEvent(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(s.events, id)
	for moduleID, module := range s.modules {
		if module.EventID == id {
			delete(s.modules, moduleID)
		}
	}
	return nil
}

func (s *stubRepo) CreateModule(_ context.Context, params CreateModuleParams) (Module, error) {
	module := Module{
		ID:        s.id("module"),
		Name:      params.Name,
		EventID:   params.EventID,
		CreatedBy: params.CreatedBy,
		CreatedAt: time.Now(),
	}
	s.modules[module.ID] = module
	return module, nil
}

func (s *stubRepo) DeleteModule(_ context.Context, id string) error {
	if _, ok := s.modules[id]; !ok {
		return ErrModuleNotFound
	}
	delete(s.modules, id)
	return nil
}

func newTestService() (*Service, *stubRepo) {
	repo := newStubRepo()
	return NewService(repo, zerolog.Nop()), repo
}

func TestCreateAndGetEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, "Regional Finals", 30, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)
	require.Equal(t, 30, event.Count)

	fetched, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, event.Name, fetched.Name)

	_, err = svc.GetEvent(ctx, "missing")
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateModuleRequiresEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateModule(ctx, "Module A", "missing", "user-1")
	require.ErrorIs(t, err, ErrEventNotFound)

	event, err := svc.CreateEvent(ctx, "Regional Finals", 30, "user-1")
	require.NoError(t, err)

	module, err := svc.CreateModule(ctx, "Module A", event.ID, "user-1")
	require.NoError(t, err)
	require.Equal(t, event.ID, module.EventID)

	fetched, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Modules, 1)
}

func TestDeleteEventCascadesModules(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, "Regional Finals", 30, "user-1")
	require.NoError(t, err)
	_, err = svc.CreateModule(ctx, "Module A", event.ID, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEvent(ctx, event.ID))
	require.Empty(t, repo.modules)

	require.ErrorIs(t, svc.DeleteEvent(ctx, event.ID), ErrEventNotFound)
}

func TestDeleteModule(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, "Regional Finals", 30, "user-1")
	require.NoError(t, err)
	module, err := svc.CreateModule(ctx, "Module A", event.ID, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteModule(ctx, module.ID))
	require.ErrorIs(t, svc.DeleteModule(ctx, module.ID), ErrModuleNotFound)
}

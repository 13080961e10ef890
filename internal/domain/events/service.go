package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) CreateEvent(ctx context.Context, name string, count int, createdBy string) (Event, error) {
	event, err := s.repo.CreateEvent(ctx, CreateEventParams{
		Name:      name,
		Count:     count,
		CreatedBy: createdBy,
	})
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info().Str("event_id", event.ID).Str("name", event.Name).Msg("event created")
	return event, nil
}

// CreateModule attaches a module to an existing event. Returns
// ErrEventNotFound when the referenced event is absent.
func (s *Service) CreateModule(ctx context.Context, name, eventID, createdBy string) (Module, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return Module{}, err
	}

	module, err := s.repo.CreateModule(ctx, CreateModuleParams{
		Name:      name,
		EventID:   eventID,
		CreatedBy: createdBy,
	})
	if err != nil {
		return Module{}, fmt.Errorf("create module: %w", err)
	}

	s.logger.Info().Str("module_id", module.ID).Str("event_id", eventID).Msg("module created")
	return module, nil
}

func (s *Service) GetEvent(ctx context.Context, id string) (Event, error) {
	return s.repo.GetEvent(ctx, id)
}

func (s *Service) ListEvents(ctx context.Context) ([]Event, error) {
	return s.repo.ListEvents(ctx)
}

// DeleteEvent removes an event and, through the store's cascade, its modules.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info().Str("event_id", id).Msg("event deleted")
	return nil
}

func (s *Service) DeleteModule(ctx context.Context, id string) error {
	if err := s.repo.DeleteModule(ctx, id); err != nil {
		if errors.Is(err, ErrModuleNotFound) {
			return err
		}
		return fmt.Errorf("delete module: %w", err)
	}

	s.logger.Info().Str("module_id", id).Msg("module deleted")
	return nil
}

package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrModuleNotFound = errors.New("module not found")
)

// Event is a championship with a planned participant count. Modules and
// Creator are populated on reads.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Modules   []Module  `json:"modules"`
	Creator   *Contact  `json:"creator,omitempty"`
}

// Module is a scored unit belonging to exactly one event.
type Module struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventID   string    `json:"eventId"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contact identifies the user who created an event.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type CreateEventParams struct {
	Name      string
	Count     int
	CreatedBy string
}

type CreateModuleParams struct {
	Name      string
	EventID   string
	CreatedBy string
}

// Repository persists events and modules. Deleting an event cascades to its
// modules in the store.
type Repository interface {
	CreateEvent(ctx context.Context, params CreateEventParams) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateModule(ctx context.Context, params CreateModuleParams) (Module, error)
	DeleteModule(ctx context.Context, id string) error
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/skillstage/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

// EventRepository persists events and their modules. Rows carry a uuid
// primary key internally; the API-facing identifier is the ULID.
type EventRepository struct {
	pool *pgxpool.Pool
}

func (r *EventRepository) CreateEvent(ctx context.Context, params events.CreateEventParams) (events.Event, error) {
	id := ulid.Make().String()

	row := r.pool.QueryRow(ctx, `
INSERT INTO events (ulid, name, count, created_by)
VALUES ($1, $2, $3, $4::uuid)
RETURNING ulid, name, count, COALESCE(created_by::text, ''), created_at`,
		id, params.Name, params.Count, nullIfEmpty(params.CreatedBy),
	)

	event, err := scanEventRow(row)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	event.Modules = []events.Module{}
	return event, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (events.Event, error) {
	row := r.pool.QueryRow(ctx, `
SELECT e.ulid, e.name, e.count, COALESCE(e.created_by::text, ''), e.created_at,
       u.email, u.first_name, u.last_name
  FROM events e
  LEFT JOIN users u ON u.id = e.created_by
 WHERE e.ulid = $1`,
		id,
	)

	event, err := scanEventWithCreator(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrEventNotFound
		}
		return events.Event{}, fmt.Errorf("get event: %w", err)
	}

	modules, err := r.modulesForEvents(ctx, []string{event.ID})
	if err != nil {
		return events.Event{}, err
	}
	event.Modules = modules[event.ID]
	if event.Modules == nil {
		event.Modules = []events.Module{}
	}
	return event, nil
}

func (r *EventRepository) ListEvents(ctx context.Context) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT e.ulid, e.name, e.count, COALESCE(e.created_by::text, ''), e.created_at,
       u.email, u.first_name, u.last_name
  FROM events e
  LEFT JOIN users u ON u.id = e.created_by
 ORDER BY e.created_at, e.ulid`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	ids := make([]string, 0)
	for rows.Next() {
		event, err := scanEventWithCreator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		event.Modules = []events.Module{}
		items = append(items, event)
		ids = append(ids, event.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	modules, err := r.modulesForEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if attached, ok := modules[items[i].ID]; ok {
			items[i].Modules = attached
		}
	}
	return items, nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	// Modules cascade through the event_id foreign key.
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE ulid = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) CreateModule(ctx context.Context, params events.CreateModuleParams) (events.Module, error) {
	id := ulid.Make().String()

	row := r.pool.QueryRow(ctx, `
INSERT INTO modules (ulid, name, event_id, created_by)
SELECT $1, $2, e.id, $4::uuid
  FROM events e
 WHERE e.ulid = $3
RETURNING modules.ulid, modules.name, $3::text, COALESCE(modules.created_by::text, ''), modules.created_at`,
		id, params.Name, params.EventID, nullIfEmpty(params.CreatedBy),
	)

	module, err := scanModuleRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Module{}, events.ErrEventNotFound
		}
		return events.Module{}, fmt.Errorf("insert module: %w", err)
	}
	return module, nil
}

func (r *EventRepository) DeleteModule(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM modules WHERE ulid = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrModuleNotFound
	}
	return nil
}

func (r *EventRepository) modulesForEvents(ctx context.Context, eventIDs []string) (map[string][]events.Module, error) {
	result := make(map[string][]events.Module)
	if len(eventIDs) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT m.ulid, m.name, e.ulid, COALESCE(m.created_by::text, ''), m.created_at
  FROM modules m
  JOIN events e ON e.id = m.event_id
 WHERE e.ulid = ANY($1)
 ORDER BY m.created_at, m.ulid`,
		eventIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		module, err := scanModuleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		result[module.EventID] = append(result[module.EventID], module)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate modules: %w", err)
	}
	return result, nil
}

func scanEventRow(row pgx.Row) (events.Event, error) {
	var event events.Event
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&event.ID, &event.Name, &event.Count, &event.CreatedBy, &createdAt); err != nil {
		return events.Event{}, err
	}
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	return event, nil
}

func scanEventWithCreator(row pgx.Row) (events.Event, error) {
	var event events.Event
	var createdAt pgtype.Timestamptz
	var email, firstName, lastName *string
	if err := row.Scan(
		&event.ID,
		&event.Name,
		&event.Count,
		&event.CreatedBy,
		&createdAt,
		&email,
		&firstName,
		&lastName,
	); err != nil {
		return events.Event{}, err
	}
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	if email != nil {
		event.Creator = &events.Contact{
			Email:     deref(email),
			FirstName: deref(firstName),
			LastName:  deref(lastName),
		}
	}
	return event, nil
}

func scanModuleRow(row pgx.Row) (events.Module, error) {
	var module events.Module
	var createdAt pgtype.Timestamptz
	if err := row.Scan(&module.ID, &module.Name, &module.EventID, &module.CreatedBy, &createdAt); err != nil {
		return events.Module{}, err
	}
	if createdAt.Valid {
		module.CreatedAt = createdAt.Time
	}
	return module, nil
}

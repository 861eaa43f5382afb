package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventOrganizerInvalid = errors.New("event organizer conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter ListEventsFilter) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EventStatus) error
	Delete(ctx context.Context, id int) error
	ListForAutoStatusUpdate(ctx context.Context, now time.Time) ([]*models.Event, error)
}

// ListEventsFilter narrows List results; nil fields are ignored.
type ListEventsFilter struct {
	Sport       *string
	Status      *models.EventStatus
	OrganizerID *int
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, title, sport, location, starts_at, ends_at, registration_deadline, max_teams, status, organizer_id, created_at`

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, sport, location, starts_at, ends_at, registration_deadline, max_teams, status, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Sport,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Deadline,
		event.MaxTeams,
		event.Status,
		event.OrganizerID,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" && pqErr.Constraint == "events_organizer_id_fkey" {
				return ErrEventOrganizerInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e := &models.Event{}
	err := r.scanEvent(r.db.QueryRowContext(ctx, query, id), e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter ListEventsFilter) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE 1=1`
	args := []interface{}{}

	if filter.Sport != nil {
		args = append(args, *filter.Sport)
		query += fmt.Sprintf(" AND sport = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.OrganizerID != nil {
		args = append(args, *filter.OrganizerID)
		query += fmt.Sprintf(" AND organizer_id = $%d", len(args))
	}
	query += " ORDER BY starts_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := r.scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, sport = $2, location = $3, starts_at = $4, ends_at = $5,
		    registration_deadline = $6, max_teams = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Sport,
		event.Location,
		event.StartsAt,
		event.EndsAt,
		event.Deadline,
		event.MaxTeams,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.EventStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE events SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

// ListForAutoStatusUpdate returns events whose status lags their dates:
// upcoming events that have started, and in-progress events that have ended.
func (r *postgresEventRepository) ListForAutoStatusUpdate(ctx context.Context, now time.Time) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE (status = 'upcoming' AND starts_at <= $1)
		   OR (status = 'in_progress' AND ends_at IS NOT NULL AND ends_at <= $1)`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for status update: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		var e models.Event
		if err := r.scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (r *postgresEventRepository) scanEvent(rowScanner interface {
	Scan(dest ...interface{}) error
}, e *models.Event) error {
	return rowScanner.Scan(
		&e.ID,
		&e.Title,
		&e.Sport,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.Deadline,
		&e.MaxTeams,
		&e.Status,
		&e.OrganizerID,
		&e.CreatedAt,
	)
}

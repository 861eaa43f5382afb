package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound     = errors.New("registration not found")
	ErrRegistrationConflict     = errors.New("registration conflict: team already registered for this event")
	ErrRegistrationEventInvalid = errors.New("registration event conflict or invalid")
	ErrRegistrationTeamInvalid  = errors.New("registration team conflict or invalid")
)

// RegistrationRepository stores (event, team) registration rows. A partial
// unique index guarantees at most one non-cancelled row per pair. Withdrawal
// hard-deletes the row; a 'cancelled' status is retained and is excluded from
// the capacity count.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindActive(ctx context.Context, eventID, teamID int) (*models.Registration, error)
	FindByEventAndTeam(ctx context.Context, eventID, teamID int) (*models.Registration, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error
	ResetToPending(ctx context.Context, id int) error
	CountActiveByEvent(ctx context.Context, eventID int) (int, error)
	ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error)
	ListByTeam(ctx context.Context, teamID int) ([]*models.Registration, error)
	ListByManager(ctx context.Context, managerID int) ([]*models.Registration, error)
	DeleteByEventAndTeam(ctx context.Context, eventID, teamID int) error
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (event_id, team_id, status, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.EventID,
		reg.TeamID,
		reg.Status,
		reg.Notes,
	).Scan(&reg.ID, &reg.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "registrations_active_pair_key" {
					return ErrRegistrationConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "registrations_event_id_fkey":
					return ErrRegistrationEventInvalid
				case "registrations_team_id_fkey":
					return ErrRegistrationTeamInvalid
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// FindActive returns the single non-cancelled registration for the pair.
func (r *postgresRegistrationRepository) FindActive(ctx context.Context, eventID, teamID int) (*models.Registration, error) {
	query := `
		SELECT id, event_id, team_id, status, notes, created_at
		FROM registrations
		WHERE event_id = $1 AND team_id = $2 AND status <> 'cancelled'`
	return r.findOne(ctx, query, eventID, teamID)
}

// FindByEventAndTeam returns the most recent registration for the pair, any status.
func (r *postgresRegistrationRepository) FindByEventAndTeam(ctx context.Context, eventID, teamID int) (*models.Registration, error) {
	query := `
		SELECT id, event_id, team_id, status, notes, created_at
		FROM registrations
		WHERE event_id = $1 AND team_id = $2
		ORDER BY created_at DESC
		LIMIT 1`
	return r.findOne(ctx, query, eventID, teamID)
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus) error {
	query := `UPDATE registrations SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// ResetToPending reuses a cancelled registration instead of inserting a
// duplicate row, refreshing the timestamp.
func (r *postgresRegistrationRepository) ResetToPending(ctx context.Context, id int) error {
	query := `UPDATE registrations SET status = 'pending', created_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// CountActiveByEvent counts registrations occupying event capacity. Cancelled
// rows do not occupy a slot.
func (r *postgresRegistrationRepository) CountActiveByEvent(ctx context.Context, eventID int) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status <> 'cancelled'`
	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.team_id, reg.status, reg.notes, reg.created_at,
		       t.id, t.name, t.sport, t.manager_id, t.member_capacity, t.description, t.created_at
		FROM registrations reg
		JOIN teams t ON reg.team_id = t.id
		WHERE reg.event_id = $1
		ORDER BY reg.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()
	return r.collectWithTeam(rows)
}

func (r *postgresRegistrationRepository) ListByTeam(ctx context.Context, teamID int) ([]*models.Registration, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.team_id, reg.status, reg.notes, reg.created_at,
		       e.id, e.title, e.sport, e.location, e.starts_at, e.ends_at,
		       e.registration_deadline, e.max_teams, e.status, e.organizer_id, e.created_at
		FROM registrations reg
		JOIN events e ON reg.event_id = e.id
		WHERE reg.team_id = $1
		ORDER BY e.starts_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for team %d: %w", teamID, err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var e models.Event
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.Notes, &reg.CreatedAt,
			&e.ID, &e.Title, &e.Sport, &e.Location, &e.StartsAt, &e.EndsAt,
			&e.Deadline, &e.MaxTeams, &e.Status, &e.OrganizerID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		reg.Event = &e
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

// ListByManager returns registrations of any status across every team the
// manager owns, enriched with both event and team display data.
func (r *postgresRegistrationRepository) ListByManager(ctx context.Context, managerID int) ([]*models.Registration, error) {
	query := `
		SELECT reg.id, reg.event_id, reg.team_id, reg.status, reg.notes, reg.created_at,
		       t.id, t.name, t.sport, t.manager_id, t.member_capacity, t.description, t.created_at,
		       e.id, e.title, e.sport, e.location, e.starts_at, e.ends_at,
		       e.registration_deadline, e.max_teams, e.status, e.organizer_id, e.created_at
		FROM registrations reg
		JOIN teams t ON reg.team_id = t.id
		JOIN events e ON reg.event_id = e.id
		WHERE t.manager_id = $1
		ORDER BY e.starts_at ASC, reg.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for manager %d: %w", managerID, err)
	}
	defer rows.Close()

	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var t models.Team
		var e models.Event
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.Notes, &reg.CreatedAt,
			&t.ID, &t.Name, &t.Sport, &t.ManagerID, &t.MemberCapacity, &t.Description, &t.CreatedAt,
			&e.ID, &e.Title, &e.Sport, &e.Location, &e.StartsAt, &e.EndsAt,
			&e.Deadline, &e.MaxTeams, &e.Status, &e.OrganizerID, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		reg.Team = &t
		reg.Event = &e
		registrations = append(registrations, &reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

// DeleteByEventAndTeam implements withdrawal: removes exactly the pair's rows
// and frees the slot immediately.
func (r *postgresRegistrationRepository) DeleteByEventAndTeam(ctx context.Context, eventID, teamID int) error {
	query := `DELETE FROM registrations WHERE event_id = $1 AND team_id = $2`
	result, err := r.db.ExecContext(ctx, query, eventID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Registration, error) {
	reg := &models.Registration{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.Notes, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) collectWithTeam(rows *sql.Rows) ([]*models.Registration, error) {
	registrations := make([]*models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		var t models.Team
		if err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.TeamID, &reg.Status, &reg.Notes, &reg.CreatedAt,
			&t.ID, &t.Name, &t.Sport, &t.ManagerID, &t.MemberCapacity, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		reg.Team = &t
		registrations = append(registrations, &reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return registrations, nil
}

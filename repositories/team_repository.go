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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name conflict")
	ErrTeamManagerInvalid = errors.New("team manager conflict or invalid")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByManager(ctx context.Context, managerID int) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (name, sport, manager_id, member_capacity, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		team.Name,
		team.Sport,
		team.ManagerID,
		team.MemberCapacity,
		team.Description,
	).Scan(&team.ID, &team.CreatedAt)

	if err != nil {
		return r.handleTeamError(err, "failed to create team")
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, name, sport, manager_id, member_capacity, description, created_at
		FROM teams
		WHERE id = $1`

	t := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.Sport,
		&t.ManagerID,
		&t.MemberCapacity,
		&t.Description,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return t, nil
}

func (r *postgresTeamRepository) ListByManager(ctx context.Context, managerID int) ([]*models.Team, error) {
	query := `
		SELECT id, name, sport, manager_id, member_capacity, description, created_at
		FROM teams
		WHERE manager_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by manager %d: %w", managerID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Sport,
			&t.ManagerID,
			&t.MemberCapacity,
			&t.Description,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, sport = $2, member_capacity = $3, description = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		team.Name,
		team.Sport,
		team.MemberCapacity,
		team.Description,
		team.ID,
	)
	if err != nil {
		return r.handleTeamError(err, "failed to update team")
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM teams WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error, msg string) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "teams_name_key" {
				return ErrTeamNameConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "teams_manager_id_fkey" {
				return ErrTeamManagerInvalid
			}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

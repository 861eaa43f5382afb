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
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrMembershipConflict      = errors.New("membership conflict: player already in team")
	ErrMembershipTeamInvalid   = errors.New("membership team conflict or invalid")
	ErrMembershipPlayerInvalid = errors.New("membership player conflict or invalid")
)

// MembershipRepository stores (team, player) membership rows. A partial unique
// index guarantees at most one active row per pair; the service layer relies
// on that for idempotent adds.
type MembershipRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Membership) error
	FindByTeamAndPlayer(ctx context.Context, teamID, playerID int) (*models.Membership, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MembershipStatus) error
	ListActiveByTeam(ctx context.Context, teamID int) ([]*models.Membership, error)
	ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.Membership, error)
	FilterActiveTeams(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error)
	CountActiveByTeam(ctx context.Context, teamID int) (int, error)
	DeleteByTeamAndPlayer(ctx context.Context, exec SQLExecutor, teamID, playerID int) error
}

type postgresMembershipRepository struct {
	db *sql.DB
}

func NewPostgresMembershipRepository(db *sql.DB) MembershipRepository {
	return &postgresMembershipRepository{db: db}
}

func (r *postgresMembershipRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMembershipRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Membership) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO memberships (team_id, player_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := executor.QueryRowContext(ctx, query,
		m.TeamID,
		m.PlayerID,
		m.Status,
	).Scan(&m.ID, &m.JoinedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "memberships_active_pair_key" ||
					pqErr.Constraint == "memberships_pair_key" {
					return ErrMembershipConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "memberships_team_id_fkey":
					return ErrMembershipTeamInvalid
				case "memberships_player_id_fkey":
					return ErrMembershipPlayerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}
	return nil
}

// FindByTeamAndPlayer returns the membership row for the pair regardless of
// status. The pair is unique, active or not.
func (r *postgresMembershipRepository) FindByTeamAndPlayer(ctx context.Context, teamID, playerID int) (*models.Membership, error) {
	query := `
		SELECT id, team_id, player_id, status, joined_at
		FROM memberships
		WHERE team_id = $1 AND player_id = $2`

	m := &models.Membership{}
	err := r.db.QueryRowContext(ctx, query, teamID, playerID).Scan(
		&m.ID, &m.TeamID, &m.PlayerID, &m.Status, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return m, nil
}

func (r *postgresMembershipRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.MembershipStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE memberships SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update membership status: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

func (r *postgresMembershipRepository) ListActiveByTeam(ctx context.Context, teamID int) ([]*models.Membership, error) {
	query := `
		SELECT m.id, m.team_id, m.player_id, m.status, m.joined_at,
		       u.id, u.first_name, u.last_name, u.email, u.role, u.created_at
		FROM memberships m
		JOIN users u ON m.player_id = u.id
		WHERE m.team_id = $1 AND m.status = 'active'
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of team %d: %w", teamID, err)
	}
	defer rows.Close()

	members := make([]*models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var u models.User
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.PlayerID, &m.Status, &m.JoinedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		m.Player = &u
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return members, nil
}

func (r *postgresMembershipRepository) ListActiveByPlayer(ctx context.Context, playerID int) ([]*models.Membership, error) {
	query := `
		SELECT m.id, m.team_id, m.player_id, m.status, m.joined_at,
		       t.id, t.name, t.sport, t.manager_id, t.member_capacity, t.description, t.created_at
		FROM memberships m
		JOIN teams t ON m.team_id = t.id
		WHERE m.player_id = $1 AND m.status = 'active'
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships of player %d: %w", playerID, err)
	}
	defer rows.Close()

	memberships := make([]*models.Membership, 0)
	for rows.Next() {
		var m models.Membership
		var t models.Team
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.PlayerID, &m.Status, &m.JoinedAt,
			&t.ID, &t.Name, &t.Sport, &t.ManagerID, &t.MemberCapacity, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		m.Team = &t
		memberships = append(memberships, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return memberships, nil
}

// FilterActiveTeams returns the subset of teamIDs in which the player has an
// active membership. The caller fills in false for the rest.
func (r *postgresMembershipRepository) FilterActiveTeams(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error) {
	result := make(map[int]bool, len(teamIDs))
	if len(teamIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT team_id
		FROM memberships
		WHERE player_id = $1 AND status = 'active' AND team_id = ANY($2)`

	rows, err := r.db.QueryContext(ctx, query, playerID, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to filter memberships of player %d: %w", playerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var teamID int
		if err := rows.Scan(&teamID); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		result[teamID] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return result, nil
}

func (r *postgresMembershipRepository) CountActiveByTeam(ctx context.Context, teamID int) (int, error) {
	query := `SELECT COUNT(*) FROM memberships WHERE team_id = $1 AND status = 'active'`
	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members of team %d: %w", teamID, err)
	}
	return count, nil
}

func (r *postgresMembershipRepository) DeleteByTeamAndPlayer(ctx context.Context, exec SQLExecutor, teamID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM memberships WHERE team_id = $1 AND player_id = $2`
	result, err := executor.ExecContext(ctx, query, teamID, playerID)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	return checkAffectedRows(result, ErrMembershipNotFound)
}

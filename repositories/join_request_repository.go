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
	ErrJoinRequestNotFound      = errors.New("join request not found")
	ErrJoinRequestConflict      = errors.New("join request conflict: pending request already exists")
	ErrJoinRequestTeamInvalid   = errors.New("join request team conflict or invalid")
	ErrJoinRequestPlayerInvalid = errors.New("join request player conflict or invalid")
)

type JoinRequestRepository interface {
	Create(ctx context.Context, jr *models.JoinRequest) error
	FindByTeamAndPlayer(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error)
	FindPending(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinRequestStatus) error
	ResetToPending(ctx context.Context, id int) error
	ListPendingByManager(ctx context.Context, managerID int) ([]*models.JoinRequest, error)
	DeleteByTeamAndPlayer(ctx context.Context, exec SQLExecutor, teamID, playerID int) error
}

type postgresJoinRequestRepository struct {
	db *sql.DB
}

func NewPostgresJoinRequestRepository(db *sql.DB) JoinRequestRepository {
	return &postgresJoinRequestRepository{db: db}
}

func (r *postgresJoinRequestRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresJoinRequestRepository) Create(ctx context.Context, jr *models.JoinRequest) error {
	query := `
		INSERT INTO join_requests (team_id, player_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, requested_at`

	err := r.db.QueryRowContext(ctx, query,
		jr.TeamID,
		jr.PlayerID,
		jr.Status,
	).Scan(&jr.ID, &jr.RequestedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "join_requests_pending_pair_key" {
					return ErrJoinRequestConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "join_requests_team_id_fkey":
					return ErrJoinRequestTeamInvalid
				case "join_requests_player_id_fkey":
					return ErrJoinRequestPlayerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

// FindByTeamAndPlayer returns the most recent request for the pair, any status.
func (r *postgresJoinRequestRepository) FindByTeamAndPlayer(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error) {
	query := `
		SELECT id, team_id, player_id, status, requested_at
		FROM join_requests
		WHERE team_id = $1 AND player_id = $2
		ORDER BY requested_at DESC
		LIMIT 1`
	return r.findOne(ctx, query, teamID, playerID)
}

func (r *postgresJoinRequestRepository) FindPending(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error) {
	query := `
		SELECT id, team_id, player_id, status, requested_at
		FROM join_requests
		WHERE team_id = $1 AND player_id = $2 AND status = 'pending'`
	return r.findOne(ctx, query, teamID, playerID)
}

func (r *postgresJoinRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.JoinRequestStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE join_requests SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update join request status: %w", err)
	}
	return checkAffectedRows(result, ErrJoinRequestNotFound)
}

// ResetToPending reuses a rejected request for resubmission, refreshing the
// request timestamp.
func (r *postgresJoinRequestRepository) ResetToPending(ctx context.Context, id int) error {
	query := `UPDATE join_requests SET status = 'pending', requested_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset join request: %w", err)
	}
	return checkAffectedRows(result, ErrJoinRequestNotFound)
}

func (r *postgresJoinRequestRepository) ListPendingByManager(ctx context.Context, managerID int) ([]*models.JoinRequest, error) {
	query := `
		SELECT jr.id, jr.team_id, jr.player_id, jr.status, jr.requested_at,
		       u.id, u.first_name, u.last_name, u.email, u.role, u.created_at,
		       t.id, t.name, t.sport, t.manager_id, t.member_capacity, t.description, t.created_at
		FROM join_requests jr
		JOIN teams t ON jr.team_id = t.id
		JOIN users u ON jr.player_id = u.id
		WHERE t.manager_id = $1 AND jr.status = 'pending'
		ORDER BY jr.requested_at ASC`

	rows, err := r.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending join requests for manager %d: %w", managerID, err)
	}
	defer rows.Close()

	requests := make([]*models.JoinRequest, 0)
	for rows.Next() {
		var jr models.JoinRequest
		var u models.User
		var t models.Team
		if err := rows.Scan(
			&jr.ID, &jr.TeamID, &jr.PlayerID, &jr.Status, &jr.RequestedAt,
			&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.CreatedAt,
			&t.ID, &t.Name, &t.Sport, &t.ManagerID, &t.MemberCapacity, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan join request row: %w", err)
		}
		jr.Player = &u
		jr.Team = &t
		requests = append(requests, &jr)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating join request rows: %w", err)
	}
	return requests, nil
}

// DeleteByTeamAndPlayer purges every request for the pair. Deleting zero rows
// is not an error: removal must succeed whether or not requests exist.
func (r *postgresJoinRequestRepository) DeleteByTeamAndPlayer(ctx context.Context, exec SQLExecutor, teamID, playerID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM join_requests WHERE team_id = $1 AND player_id = $2`
	if _, err := executor.ExecContext(ctx, query, teamID, playerID); err != nil {
		return fmt.Errorf("failed to purge join requests: %w", err)
	}
	return nil
}

func (r *postgresJoinRequestRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.JoinRequest, error) {
	jr := &models.JoinRequest{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&jr.ID, &jr.TeamID, &jr.PlayerID, &jr.Status, &jr.RequestedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to find join request: %w", err)
	}
	return jr, nil
}

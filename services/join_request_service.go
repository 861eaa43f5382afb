package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

// JoinRequestService manages the pending/approved/rejected lifecycle of a
// player's request to join a team.
type JoinRequestService interface {
	RequestJoin(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error)
	Decide(ctx context.Context, teamID, playerID int, approve bool, currentUserID int) error
	ListPendingForManager(ctx context.Context, managerID int) ([]*models.JoinRequest, error)
}

type joinRequestService struct {
	joinRequestRepo repositories.JoinRequestRepository
	membershipRepo  repositories.MembershipRepository
	teamRepo        repositories.TeamRepository
	rosterService   RosterService
	publisher       notify.Publisher
}

func NewJoinRequestService(
	joinRequestRepo repositories.JoinRequestRepository,
	membershipRepo repositories.MembershipRepository,
	teamRepo repositories.TeamRepository,
	rosterService RosterService,
	publisher notify.Publisher,
) JoinRequestService {
	return &joinRequestService{
		joinRequestRepo: joinRequestRepo,
		membershipRepo:  membershipRepo,
		teamRepo:        teamRepo,
		rosterService:   rosterService,
		publisher:       publisher,
	}
}

func (s *joinRequestService) RequestJoin(ctx context.Context, teamID, playerID int) (*models.JoinRequest, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.FindByTeamAndPlayer(ctx, teamID, playerID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if membership != nil && membership.Status == models.MembershipActive {
		return nil, ErrAlreadyMember
	}

	existing, err := s.joinRequestRepo.FindByTeamAndPlayer(ctx, teamID, playerID)
	if err != nil && !errors.Is(err, repositories.ErrJoinRequestNotFound) {
		return nil, fmt.Errorf("failed to check join requests: %w", err)
	}

	if existing != nil {
		switch existing.Status {
		case models.JoinRequestPending:
			return nil, ErrDuplicateRequest
		case models.JoinRequestRejected:
			// Resubmission: reuse the rejected row with a fresh timestamp.
			if err := s.joinRequestRepo.ResetToPending(ctx, existing.ID); err != nil {
				return nil, fmt.Errorf("failed to resubmit join request: %w", err)
			}
			return s.joinRequestRepo.FindPending(ctx, teamID, playerID)
		}
		// An approved request without an active membership is a leftover from
		// an interrupted removal; a fresh request starts a new cycle.
	}

	request := &models.JoinRequest{
		TeamID:   teamID,
		PlayerID: playerID,
		Status:   models.JoinRequestPending,
	}
	if err := s.joinRequestRepo.Create(ctx, request); err != nil {
		switch {
		case errors.Is(err, repositories.ErrJoinRequestConflict):
			return nil, ErrDuplicateRequest
		case errors.Is(err, repositories.ErrJoinRequestPlayerInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrJoinRequestTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return request, nil
}

// Decide approves or rejects the pending request for the pair. Approval is a
// two-step saga: the membership write happens first, the request status flip
// second. A crash in between leaves a pending request whose player is already
// a member — retrying Decide converges because AddMember is idempotent.
func (s *joinRequestService) Decide(ctx context.Context, teamID, playerID int, approve bool, currentUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.ManagerID != currentUserID {
		return ErrManagerActionRequired
	}

	request, err := s.joinRequestRepo.FindPending(ctx, teamID, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrJoinRequestNotFound) {
			return ErrJoinRequestNotFound
		}
		return fmt.Errorf("failed to find pending join request: %w", err)
	}

	status := models.JoinRequestRejected
	if approve {
		if _, err := s.rosterService.AddMember(ctx, teamID, playerID); err != nil {
			return err
		}
		status = models.JoinRequestApproved
	}

	if err := s.joinRequestRepo.UpdateStatus(ctx, nil, request.ID, status); err != nil {
		return fmt.Errorf("failed to update join request status: %w", err)
	}

	s.publisher.Publish(playerID, notify.Event{
		Type: notify.EventJoinRequestDecided,
		Payload: map[string]interface{}{
			"team_id": teamID,
			"status":  status,
		},
	})
	return nil
}

func (s *joinRequestService) ListPendingForManager(ctx context.Context, managerID int) ([]*models.JoinRequest, error) {
	requests, err := s.joinRequestRepo.ListPendingByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending join requests: %w", err)
	}
	for _, jr := range requests {
		if jr.Player != nil {
			jr.Player.PasswordHash = ""
		}
	}
	return requests, nil
}

func (s *joinRequestService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

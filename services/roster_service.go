package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

// RosterService owns a team's confirmed members.
//
// AddMember is deliberately idempotent: it is the second half of the
// approve-join-request saga and must converge to the same end state when
// retried after a partial failure.
type RosterService interface {
	AddMember(ctx context.Context, teamID, playerID int) (*models.Membership, error)
	AddMemberByManager(ctx context.Context, teamID, playerID, currentUserID int) (*models.Membership, error)
	RemoveMember(ctx context.Context, teamID, playerID, currentUserID int) error
	ListMembers(ctx context.Context, teamID int) ([]*models.Membership, error)
	IsMember(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error)
}

type rosterService struct {
	membershipRepo  repositories.MembershipRepository
	joinRequestRepo repositories.JoinRequestRepository
	teamRepo        repositories.TeamRepository
	publisher       notify.Publisher
}

func NewRosterService(
	membershipRepo repositories.MembershipRepository,
	joinRequestRepo repositories.JoinRequestRepository,
	teamRepo repositories.TeamRepository,
	publisher notify.Publisher,
) RosterService {
	return &rosterService{
		membershipRepo:  membershipRepo,
		joinRequestRepo: joinRequestRepo,
		teamRepo:        teamRepo,
		publisher:       publisher,
	}
}

func (s *rosterService) AddMember(ctx context.Context, teamID, playerID int) (*models.Membership, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	existing, err := s.membershipRepo.FindByTeamAndPlayer(ctx, teamID, playerID)
	if err != nil && !errors.Is(err, repositories.ErrMembershipNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	if existing != nil {
		if existing.Status == models.MembershipActive {
			return existing, nil // already a member, nothing to do
		}
		// Reactivate the inactive row instead of inserting a second one.
		if err := s.checkTeamCapacity(ctx, team); err != nil {
			return nil, err
		}
		if err := s.membershipRepo.UpdateStatus(ctx, nil, existing.ID, models.MembershipActive); err != nil {
			return nil, fmt.Errorf("failed to reactivate membership: %w", err)
		}
		existing.Status = models.MembershipActive
		return existing, nil
	}

	if err := s.checkTeamCapacity(ctx, team); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		TeamID:   teamID,
		PlayerID: playerID,
		Status:   models.MembershipActive,
	}
	err = s.membershipRepo.Create(ctx, nil, membership)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMembershipConflict):
			// Lost a race with a concurrent add; the end state is what was asked for.
			return s.membershipRepo.FindByTeamAndPlayer(ctx, teamID, playerID)
		case errors.Is(err, repositories.ErrMembershipPlayerInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrMembershipTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return membership, nil
}

func (s *rosterService) AddMemberByManager(ctx context.Context, teamID, playerID, currentUserID int) (*models.Membership, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.ManagerID != currentUserID {
		return nil, ErrManagerActionRequired
	}
	return s.AddMember(ctx, teamID, playerID)
}

// RemoveMember hard-deletes the membership and purges any join request for
// the pair. A crash between the two deletes leaves stale request rows behind;
// they are harmless because a pending request without a membership is exactly
// the state RequestJoin produces.
func (s *rosterService) RemoveMember(ctx context.Context, teamID, playerID, currentUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.ManagerID != currentUserID && playerID != currentUserID {
		return ErrRemoveMemberForbidden
	}

	if err := s.membershipRepo.DeleteByTeamAndPlayer(ctx, nil, teamID, playerID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrMembershipNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}

	if err := s.joinRequestRepo.DeleteByTeamAndPlayer(ctx, nil, teamID, playerID); err != nil {
		return fmt.Errorf("failed to purge join requests: %w", err)
	}

	if team.ManagerID == currentUserID && playerID != currentUserID {
		s.publisher.Publish(playerID, notify.Event{
			Type:    notify.EventMemberRemoved,
			Payload: map[string]int{"team_id": teamID},
		})
	}
	return nil
}

func (s *rosterService) ListMembers(ctx context.Context, teamID int) ([]*models.Membership, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	members, err := s.membershipRepo.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		if m.Player != nil {
			m.Player.PasswordHash = ""
		}
	}
	return members, nil
}

// IsMember answers a batch membership check. Every requested team ID is
// present in the result; non-membership is an explicit false.
func (s *rosterService) IsMember(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error) {
	active, err := s.membershipRepo.FilterActiveTeams(ctx, playerID, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check memberships: %w", err)
	}
	result := make(map[int]bool, len(teamIDs))
	for _, teamID := range teamIDs {
		result[teamID] = active[teamID]
	}
	return result, nil
}

func (s *rosterService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *rosterService) checkTeamCapacity(ctx context.Context, team *models.Team) error {
	if team.MemberCapacity == nil || *team.MemberCapacity <= 0 {
		return nil
	}
	count, err := s.membershipRepo.CountActiveByTeam(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}
	if count >= *team.MemberCapacity {
		return ErrTeamFull
	}
	return nil
}

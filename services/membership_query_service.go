package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

// MembershipQueryService is the read facade consumed by collaborators outside
// the membership core: which teams is a player in, is a player in a team, who
// manages a team.
type MembershipQueryService interface {
	TeamsForPlayer(ctx context.Context, playerID int) ([]*models.Team, error)
	IsMember(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error)
	TeamManager(ctx context.Context, teamID int) (*models.User, error)
}

type membershipQueryService struct {
	membershipRepo repositories.MembershipRepository
	teamRepo       repositories.TeamRepository
	userRepo       repositories.UserRepository
	rosterService  RosterService
}

func NewMembershipQueryService(
	membershipRepo repositories.MembershipRepository,
	teamRepo repositories.TeamRepository,
	userRepo repositories.UserRepository,
	rosterService RosterService,
) MembershipQueryService {
	return &membershipQueryService{
		membershipRepo: membershipRepo,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		rosterService:  rosterService,
	}
}

func (s *membershipQueryService) TeamsForPlayer(ctx context.Context, playerID int) ([]*models.Team, error) {
	memberships, err := s.membershipRepo.ListActiveByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	teams := make([]*models.Team, 0, len(memberships))
	for _, m := range memberships {
		if m.Team != nil {
			teams = append(teams, m.Team)
		}
	}
	return teams, nil
}

func (s *membershipQueryService) IsMember(ctx context.Context, playerID int, teamIDs []int) (map[int]bool, error) {
	return s.rosterService.IsMember(ctx, playerID, teamIDs)
}

func (s *membershipQueryService) TeamManager(ctx context.Context, teamID int) (*models.User, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}

	manager, err := s.userRepo.GetByID(ctx, team.ManagerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get manager %d: %w", team.ManagerID, err)
	}
	manager.PasswordHash = ""
	return manager, nil
}

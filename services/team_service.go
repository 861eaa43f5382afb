package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

type CreateTeamInput struct {
	Name           string  `json:"name"`
	Sport          string  `json:"sport"`
	MemberCapacity *int    `json:"member_capacity"`
	Description    *string `json:"description"`

	// CreatorID is filled from the authenticated identity, never the body.
	CreatorID int `json:"-"`
}

type UpdateTeamInput struct {
	Name           *string `json:"name"`
	Sport          *string `json:"sport"`
	MemberCapacity *int    `json:"member_capacity"`
	Description    *string `json:"description"`
}

// TeamService manages the team aggregate itself; roster mutations live in
// RosterService.
type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, teamID int) (*models.Team, error)
	ListTeamsByManager(ctx context.Context, managerID int) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID, currentUserID int) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
}

func NewTeamService(teamRepo repositories.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	if input.MemberCapacity != nil && *input.MemberCapacity <= 0 {
		return nil, fmt.Errorf("%w: member capacity must be positive", ErrValidationFailed)
	}

	team := &models.Team{
		Name:           name,
		Sport:          strings.TrimSpace(input.Sport),
		ManagerID:      input.CreatorID,
		MemberCapacity: input.MemberCapacity,
		Description:    input.Description,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		case errors.Is(err, repositories.ErrTeamManagerInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

func (s *teamService) ListTeamsByManager(ctx context.Context, managerID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID int, input UpdateTeamInput, currentUserID int) (*models.Team, error) {
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.ManagerID != currentUserID {
		return nil, ErrManagerActionRequired
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team.Name = name
	}
	if input.Sport != nil {
		team.Sport = strings.TrimSpace(*input.Sport)
	}
	if input.MemberCapacity != nil {
		if *input.MemberCapacity <= 0 {
			return nil, fmt.Errorf("%w: member capacity must be positive", ErrValidationFailed)
		}
		team.MemberCapacity = input.MemberCapacity
	}
	if input.Description != nil {
		team.Description = input.Description
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTeamNotFound):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrTeamNameConflict):
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID, currentUserID int) error {
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.ManagerID != currentUserID {
		return ErrManagerActionRequired
	}

	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

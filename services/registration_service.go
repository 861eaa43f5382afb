package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/notify"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

// RegistrationService manages a team's registration to an event: register,
// confirm/cancel, withdraw — enforcing capacity and deadline constraints.
//
// Capacity and deadline checks are check-then-act: two concurrent registers
// racing for the last slot can transiently overshoot by one. The per-pair
// partial unique index still prevents duplicate registrations.
type RegistrationService interface {
	Register(ctx context.Context, eventID, teamID int, requestedStatus models.RegistrationStatus, currentUserID int) (*models.Registration, error)
	SetStatus(ctx context.Context, eventID, teamID int, status models.RegistrationStatus, currentUserID int) error
	Withdraw(ctx context.Context, eventID, teamID, currentUserID int) error
	ListForEvent(ctx context.Context, eventID int) ([]*models.Registration, error)
	ListForTeam(ctx context.Context, teamID int) ([]*models.Registration, error)
	ListForManager(ctx context.Context, managerID int) ([]*models.Registration, error)
}

type registrationService struct {
	registrationRepo repositories.RegistrationRepository
	eventRepo        repositories.EventRepository
	teamRepo         repositories.TeamRepository
	publisher        notify.Publisher
	now              func() time.Time
}

func NewRegistrationService(
	registrationRepo repositories.RegistrationRepository,
	eventRepo repositories.EventRepository,
	teamRepo repositories.TeamRepository,
	publisher notify.Publisher,
) RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		teamRepo:         teamRepo,
		publisher:        publisher,
		now:              time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, teamID int, requestedStatus models.RegistrationStatus, currentUserID int) (*models.Registration, error) {
	event, err := s.getVisibleEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventUpcoming {
		return nil, ErrRegistrationClosed
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.ManagerID != currentUserID {
		return nil, ErrManagerActionRequired
	}

	if requestedStatus == "" {
		requestedStatus = models.RegistrationPending
	}
	switch requestedStatus {
	case models.RegistrationPending:
	case models.RegistrationConfirmed:
		if event.OrganizerID != currentUserID {
			return nil, ErrOrganizerActionRequired
		}
	default:
		return nil, ErrInvalidStatus
	}

	if event.Deadline != nil && s.now().After(*event.Deadline) {
		return nil, ErrDeadlinePassed
	}

	if event.MaxTeams != nil && *event.MaxTeams > 0 {
		count, err := s.registrationRepo.CountActiveByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to count registrations: %w", err)
		}
		if count >= *event.MaxTeams {
			return nil, ErrCapacityExceeded
		}
	}

	existing, err := s.registrationRepo.FindByEventAndTeam(ctx, eventID, teamID)
	if err != nil && !errors.Is(err, repositories.ErrRegistrationNotFound) {
		return nil, fmt.Errorf("failed to check registrations: %w", err)
	}
	if existing != nil {
		if existing.Status != models.RegistrationCancelled {
			return nil, ErrAlreadyRegistered
		}
		// Reuse the cancelled row instead of inserting a duplicate.
		if err := s.registrationRepo.ResetToPending(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reset registration: %w", err)
		}
		return s.registrationRepo.FindActive(ctx, eventID, teamID)
	}

	registration := &models.Registration{
		EventID: eventID,
		TeamID:  teamID,
		Status:  requestedStatus,
	}
	if err := s.registrationRepo.Create(ctx, registration); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRegistrationConflict):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrRegistrationEventInvalid):
			return nil, ErrEventNotFound
		case errors.Is(err, repositories.ErrRegistrationTeamInvalid):
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return registration, nil
}

// SetStatus is the organizer-driven status change. Unlike withdrawal it keeps
// the row: a cancelled registration is a retained record that no longer
// occupies capacity.
func (s *registrationService) SetStatus(ctx context.Context, eventID, teamID int, status models.RegistrationStatus, currentUserID int) error {
	event, err := s.getVisibleEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != currentUserID {
		return ErrOrganizerActionRequired
	}
	if status != models.RegistrationConfirmed && status != models.RegistrationCancelled {
		return ErrInvalidStatus
	}

	registration, err := s.registrationRepo.FindByEventAndTeam(ctx, eventID, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to find registration: %w", err)
	}

	if err := s.registrationRepo.UpdateStatus(ctx, registration.ID, status); err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	if team, err := s.teamRepo.GetByID(ctx, teamID); err == nil {
		s.publisher.Publish(team.ManagerID, notify.Event{
			Type: notify.EventRegistrationStatusChange,
			Payload: map[string]interface{}{
				"event_id": eventID,
				"team_id":  teamID,
				"status":   status,
			},
		})
	}
	return nil
}

// Withdraw hard-deletes the registration, freeing the slot immediately and
// leaving other registrations untouched.
func (s *registrationService) Withdraw(ctx context.Context, eventID, teamID, currentUserID int) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.ManagerID != currentUserID {
		return ErrManagerActionRequired
	}

	if err := s.registrationRepo.DeleteByEventAndTeam(ctx, eventID, teamID); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to withdraw registration: %w", err)
	}

	if event, err := s.eventRepo.GetByID(ctx, eventID); err == nil {
		s.publisher.Publish(event.OrganizerID, notify.Event{
			Type: notify.EventRegistrationWithdrawn,
			Payload: map[string]int{
				"event_id": eventID,
				"team_id":  teamID,
			},
		})
	}
	return nil
}

func (s *registrationService) ListForEvent(ctx context.Context, eventID int) ([]*models.Registration, error) {
	if _, err := s.getVisibleEvent(ctx, eventID); err != nil {
		return nil, err
	}
	registrations, err := s.registrationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for event: %w", err)
	}
	return registrations, nil
}

func (s *registrationService) ListForTeam(ctx context.Context, teamID int) ([]*models.Registration, error) {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}
	registrations, err := s.registrationRepo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for team: %w", err)
	}
	return registrations, nil
}

func (s *registrationService) ListForManager(ctx context.Context, managerID int) ([]*models.Registration, error) {
	registrations, err := s.registrationRepo.ListByManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for manager: %w", err)
	}
	return registrations, nil
}

// getVisibleEvent hides draft events from the registration workflows; a draft
// is indistinguishable from a missing event outside the organizer surface.
func (s *registrationService) getVisibleEvent(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}
	if event.Status == models.EventDraft {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *registrationService) getTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamID, err)
	}
	return team, nil
}

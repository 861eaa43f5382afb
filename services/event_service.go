package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
	"github.com/SportsAmigo/SportsAmigo-sub000/repositories"
)

type CreateEventInput struct {
	Title    string     `json:"title"`
	Sport    string     `json:"sport"`
	Location string     `json:"location"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Deadline *time.Time `json:"registration_deadline"`
	MaxTeams *int       `json:"max_teams"`

	OrganizerID int `json:"-"`
}

type UpdateEventInput struct {
	Title    *string    `json:"title"`
	Sport    *string    `json:"sport"`
	Location *string    `json:"location"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	Deadline *time.Time `json:"registration_deadline"`
	MaxTeams *int       `json:"max_teams"`
}

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, eventID int) (*models.Event, error)
	ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]*models.Event, error)
	UpdateEvent(ctx context.Context, eventID int, input UpdateEventInput, currentUserID int) (*models.Event, error)
	UpdateEventStatus(ctx context.Context, eventID int, status models.EventStatus, currentUserID int) error
	DeleteEvent(ctx context.Context, eventID, currentUserID int) error
	AutoUpdateEventStatusesByDates(ctx context.Context) error
}

type eventService struct {
	eventRepo repositories.EventRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewEventService(eventRepo repositories.EventRepository, logger *slog.Logger) EventService {
	return &eventService{
		eventRepo: eventRepo,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrEventTitleRequired
	}
	if err := validateEventDates(input.StartsAt, input.EndsAt, input.Deadline); err != nil {
		return nil, err
	}
	if input.MaxTeams != nil && *input.MaxTeams <= 0 {
		return nil, fmt.Errorf("%w: max teams must be positive", ErrValidationFailed)
	}

	event := &models.Event{
		Title:       title,
		Sport:       strings.TrimSpace(input.Sport),
		Location:    strings.TrimSpace(input.Location),
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		Deadline:    input.Deadline,
		MaxTeams:    input.MaxTeams,
		Status:      models.EventDraft,
		OrganizerID: input.OrganizerID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventOrganizerInvalid) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter repositories.ListEventsFilter) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID int, input UpdateEventInput, currentUserID int) (*models.Event, error) {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != currentUserID {
		return nil, ErrOrganizerActionRequired
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrEventTitleRequired
		}
		event.Title = title
	}
	if input.Sport != nil {
		event.Sport = strings.TrimSpace(*input.Sport)
	}
	if input.Location != nil {
		event.Location = strings.TrimSpace(*input.Location)
	}
	if input.StartsAt != nil {
		event.StartsAt = *input.StartsAt
	}
	if input.EndsAt != nil {
		event.EndsAt = input.EndsAt
	}
	if input.Deadline != nil {
		event.Deadline = input.Deadline
	}
	if input.MaxTeams != nil {
		if *input.MaxTeams <= 0 {
			return nil, fmt.Errorf("%w: max teams must be positive", ErrValidationFailed)
		}
		event.MaxTeams = input.MaxTeams
	}
	if err := validateEventDates(event.StartsAt, event.EndsAt, event.Deadline); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

func (s *eventService) UpdateEventStatus(ctx context.Context, eventID int, status models.EventStatus, currentUserID int) error {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != currentUserID {
		return ErrOrganizerActionRequired
	}

	switch status {
	case models.EventDraft, models.EventUpcoming, models.EventInProgress, models.EventCompleted, models.EventCancelled:
	default:
		return ErrInvalidStatus
	}
	if !isValidEventStatusTransition(event.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, event.Status, status)
	}

	if err := s.eventRepo.UpdateStatus(ctx, nil, eventID, status); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to update event status: %w", err)
	}
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, currentUserID int) error {
	event, err := s.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != currentUserID {
		return ErrOrganizerActionRequired
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// AutoUpdateEventStatusesByDates advances upcoming events whose start has
// passed to in_progress, and in-progress events whose end has passed to
// completed. Run periodically by the scheduler in cmd.
func (s *eventService) AutoUpdateEventStatusesByDates(ctx context.Context) error {
	now := s.now()
	events, err := s.eventRepo.ListForAutoStatusUpdate(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list events for status update: %w", err)
	}

	for _, event := range events {
		var next models.EventStatus
		switch {
		case event.Status == models.EventUpcoming && !event.StartsAt.After(now):
			next = models.EventInProgress
		case event.Status == models.EventInProgress && event.EndsAt != nil && !event.EndsAt.After(now):
			next = models.EventCompleted
		default:
			continue
		}

		if err := s.eventRepo.UpdateStatus(ctx, nil, event.ID, next); err != nil {
			s.logger.Error("failed to auto-update event status",
				slog.Int("event_id", event.ID),
				slog.String("from", string(event.Status)),
				slog.String("to", string(next)),
				slog.Any("error", err),
			)
			continue
		}
		s.logger.Info("event status auto-updated",
			slog.Int("event_id", event.ID),
			slog.String("from", string(event.Status)),
			slog.String("to", string(next)),
		)
	}
	return nil
}

package services

import (
	"fmt"
	"time"

	"github.com/SportsAmigo/SportsAmigo-sub000/models"
)

func validateEventDates(start time.Time, end, deadline *time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("%w: start time is required", ErrEventDatesInvalid)
	}
	if end != nil && !start.Before(*end) {
		return fmt.Errorf("%w: start time (%s) must be before end time (%s)",
			ErrEventDatesInvalid, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	if deadline != nil && deadline.After(start) {
		return fmt.Errorf("%w: registration deadline (%s) cannot be after start time (%s)",
			ErrEventDatesInvalid, deadline.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return nil
}

func isValidEventStatusTransition(current, next models.EventStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.EventStatus][]models.EventStatus{
		models.EventDraft:      {models.EventUpcoming, models.EventCancelled},
		models.EventUpcoming:   {models.EventInProgress, models.EventCancelled},
		models.EventInProgress: {models.EventCompleted, models.EventCancelled},
		models.EventCompleted:  {},
		models.EventCancelled:  {},
	}
	for _, status := range allowed[current] {
		if next == status {
			return true
		}
	}
	return false
}

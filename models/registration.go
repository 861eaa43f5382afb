package models

import "time"

// RegistrationStatus mirrors the registration_status ENUM in the database.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationConfirmed RegistrationStatus = "confirmed"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Registration records that a team is entered into an event. At most one
// non-cancelled registration may exist per (event, team) pair. Withdrawal
// hard-deletes the row; a cancelled status is retained and does not occupy
// event capacity.
type Registration struct {
	ID        int                `json:"id" db:"id"`
	EventID   int                `json:"event_id" db:"event_id"`
	TeamID    int                `json:"team_id" db:"team_id"`
	Status    RegistrationStatus `json:"status" db:"status"`
	Notes     *string            `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`

	Event *Event `json:"event,omitempty" db:"-"`
	Team  *Team  `json:"team,omitempty" db:"-"`
}

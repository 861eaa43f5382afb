package models

import "time"

// EventStatus mirrors the event_status ENUM in the database.
type EventStatus string

const (
	EventDraft      EventStatus = "draft"
	EventUpcoming   EventStatus = "upcoming"
	EventInProgress EventStatus = "in_progress"
	EventCompleted  EventStatus = "completed"
	EventCancelled  EventStatus = "cancelled"
)

type Event struct {
	ID          int         `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Sport       string      `json:"sport" db:"sport"`
	Location    string      `json:"location" db:"location"`
	StartsAt    time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt      *time.Time  `json:"ends_at,omitempty" db:"ends_at"`
	Deadline    *time.Time  `json:"registration_deadline,omitempty" db:"registration_deadline"`
	MaxTeams    *int        `json:"max_teams,omitempty" db:"max_teams"`
	Status      EventStatus `json:"status" db:"status"`
	OrganizerID int         `json:"organizer_id" db:"organizer_id"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Organizer     *User          `json:"organizer,omitempty" db:"-"`
	Registrations []Registration `json:"registrations,omitempty" db:"-"`
}

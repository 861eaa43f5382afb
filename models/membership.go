package models

import "time"

// MembershipStatus mirrors the membership_status ENUM in the database.
type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

// Membership records that a player belongs to a team. At most one active
// membership may exist per (team, player) pair.
type Membership struct {
	ID       int              `json:"id" db:"id"`
	TeamID   int              `json:"team_id" db:"team_id"`
	PlayerID int              `json:"player_id" db:"player_id"`
	Status   MembershipStatus `json:"status" db:"status"`
	JoinedAt time.Time        `json:"joined_at" db:"joined_at"`

	Player *User `json:"player,omitempty" db:"-"`
	Team   *Team `json:"team,omitempty" db:"-"`
}

package models

import "time"

// JoinRequestStatus mirrors the join_request_status ENUM in the database.
type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestApproved JoinRequestStatus = "approved"
	JoinRequestRejected JoinRequestStatus = "rejected"
)

// JoinRequest is a player's ask to join a team, subject to manager approval.
// At most one pending request may exist per (team, player) pair; a rejected
// request is reset to pending on resubmission.
type JoinRequest struct {
	ID          int               `json:"id" db:"id"`
	TeamID      int               `json:"team_id" db:"team_id"`
	PlayerID    int               `json:"player_id" db:"player_id"`
	Status      JoinRequestStatus `json:"status" db:"status"`
	RequestedAt time.Time         `json:"requested_at" db:"requested_at"`

	Player *User `json:"player,omitempty" db:"-"`
	Team   *Team `json:"team,omitempty" db:"-"`
}

package models

import "time"

type Team struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Sport          string    `json:"sport" db:"sport"`
	ManagerID      int       `json:"manager_id" db:"manager_id"`
	MemberCapacity *int      `json:"member_capacity,omitempty" db:"member_capacity"`
	Description    *string   `json:"description,omitempty" db:"description"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	Manager *User        `json:"manager,omitempty" db:"-"`
	Members []Membership `json:"members,omitempty" db:"-"`
}

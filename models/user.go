package models

import "time"

// UserRole mirrors the user_role ENUM in the database.
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleManager   UserRole = "manager"
	RoleOrganizer UserRole = "organizer"
)

type User struct {
	ID           int       `json:"id" db:"id"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

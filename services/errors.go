package services

import "errors"

// Shared errors used across services and the HTTP mapping. NotFound and
// Conflict values are expected user-facing outcomes; anything else that
// reaches a handler is a server error.
var (
	// Not found
	ErrNotFound             = errors.New("requested resource not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrTeamNotFound         = errors.New("team not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrJoinRequestNotFound  = errors.New("join request not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Conflicts
	ErrAlreadyMember      = errors.New("player is already a member of this team")
	ErrDuplicateRequest   = errors.New("a pending join request already exists for this team")
	ErrAlreadyRegistered  = errors.New("team is already registered for this event")
	ErrCapacityExceeded   = errors.New("event has reached its maximum number of teams")
	ErrDeadlinePassed     = errors.New("event registration deadline has passed")
	ErrTeamFull           = errors.New("team has reached its member capacity")
	ErrEmailTaken         = errors.New("email address is already in use")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrRegistrationClosed = errors.New("event is not open for registration")

	// Validation and business rules
	ErrValidationFailed        = errors.New("validation failed")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrEventTitleRequired      = errors.New("event title is required")
	ErrEventDatesInvalid       = errors.New("event dates are invalid")
	ErrInvalidStatus           = errors.New("invalid status provided")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPasswordTooShort        = errors.New("password is too short")

	// Authentication and authorization
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrForbiddenOperation      = errors.New("operation not allowed for the current user")
	ErrManagerActionRequired   = errors.New("only the team manager can perform this action")
	ErrOrganizerActionRequired = errors.New("only the event organizer can perform this action")
	ErrRemoveMemberForbidden   = errors.New("only the team manager or the member themselves can perform this action")
)

package notify

// Event is an outbound domain event. The membership and registration workflows
// publish these instead of reaching into another actor's session; delivery is
// the notification layer's problem.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventMemberRemoved            = "member_removed"
	EventJoinRequestDecided       = "join_request_decided"
	EventRegistrationWithdrawn    = "registration_withdrawn"
	EventRegistrationStatusChange = "registration_status_changed"
)

// Publisher is the interface services publish through. Publish must not
// block and must not fail the calling operation.
type Publisher interface {
	Publish(userID int, event Event)
}

// NopPublisher discards events. Used in tests and when the hub is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(int, Event) {}

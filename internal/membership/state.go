package membership

// State is the reconciliation state of one event for the tracked user.
type State int

const (
	NotJoined State = iota
	// Joining means a join intent is in flight and the event is optimistically joined.
	Joining
	Joined
	// Leaving means a leave intent is in flight and the event is optimistically left.
	Leaving
	// Failed means the last intent failed and membership was rolled back.
	Failed
)

func (s State) String() string {
	switch s {
	case NotJoined:
		return "not_joined"
	case Joining:
		return "joining"
	case Joined:
		return "joined"
	case Leaving:
		return "leaving"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pending reports whether an intent is in flight.
func (s State) Pending() bool {
	return s == Joining || s == Leaving
}

// Intent is a user action on an event's membership.
type Intent string

const (
	IntentJoin  Intent = "join"
	IntentLeave Intent = "leave"
)

// IntentError is returned when a join or leave could not be applied. Message
// is meant for the user; Err carries the gateway error.
type IntentError struct {
	Intent  Intent
	EventID string
	Message string
	Err     error
}

func (e *IntentError) Error() string {
	return e.Message
}

func (e *IntentError) Unwrap() error {
	return e.Err
}

func failureMessage(intent Intent) string {
	if intent == IntentJoin {
		return "Failed to join event. Please try again."
	}
	return "Failed to leave event. Please try again."
}

package models

import "time"

// EventStatus is the lifecycle status reported by the backend.
type EventStatus string

const (
	EventStatusActive EventStatus = "active"
)

// ParticipantInfo is the denormalized participant preview embedded in an Event.
// It is only meant for avatar display; membership truth is the participant roster.
type ParticipantInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Photo  string `json:"photo,omitempty"`
}

// Event represents a campus event.
type Event struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Category        string      `json:"category"`
	Location        string      `json:"location"`
	ImageURL        string      `json:"image_url,omitempty"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         *time.Time  `json:"end_time,omitempty"`
	MaxParticipants *int        `json:"max_participants,omitempty"`
	Status          EventStatus `json:"status,omitempty"`
	CreatorID       string      `json:"creator_id"`
	CreatedAt       time.Time   `json:"created_at,omitempty"`

	ParticipantCount int               `json:"participant_count"`
	Participants     []ParticipantInfo `json:"participants,omitempty"`

	OrganizerID         string `json:"organizer_id,omitempty"`
	OrganizerName       string `json:"organizer_name,omitempty"`
	OrganizerPhoto      string `json:"organizer_photo,omitempty"`
	OrganizerDepartment string `json:"organizer_department,omitempty"`

	// CurrentUserJoined is only set when the list was requested with current_user_id.
	CurrentUserJoined bool `json:"current_user_joined,omitempty"`
}

// IsFull reports whether the event reached its participant cap.
func (e Event) IsFull() bool {
	return e.MaxParticipants != nil && *e.MaxParticipants > 0 && e.ParticipantCount >= *e.MaxParticipants
}

// ParticipantStatus is the status of a join record.
type ParticipantStatus string

const (
	ParticipantStatusJoined ParticipantStatus = "joined"
)

// EventParticipant is the authoritative join record. At most one exists per (EventID, UserID).
type EventParticipant struct {
	ID       string            `json:"id"`
	EventID  string            `json:"event_id"`
	UserID   string            `json:"user_id"`
	JoinedAt time.Time         `json:"joined_at,omitempty"`
	Status   ParticipantStatus `json:"status,omitempty"`
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"tumatch/client/internal/models"
)

// EventFilters are ANDed query parameters of GetEvents. Empty fields are omitted.
type EventFilters struct {
	Category  string
	Search    string
	CreatorID string
	// CurrentUserID asks the backend to annotate each event with current_user_joined.
	CurrentUserID string
}

func (f EventFilters) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.CreatorID != "" {
		q.Set("creator_id", f.CreatorID)
	}
	if f.CurrentUserID != "" {
		q.Set("current_user_id", f.CurrentUserID)
	}
	return q
}

// CreateEventInput is the body of CreateEvent.
type CreateEventInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category"`
	Location        string     `json:"location"`
	ImageURL        string     `json:"image_url,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	MaxParticipants *int       `json:"max_participants,omitempty"`
	CreatorID       string     `json:"creator_id"`
}

// Validate reports the mandatory fields that are missing.
func (in CreateEventInput) Validate() error {
	var missing []string
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Category == "" {
		missing = append(missing, "category")
	}
	if in.Location == "" {
		missing = append(missing, "location")
	}
	if in.StartTime.IsZero() {
		missing = append(missing, "start_time")
	}
	if in.CreatorID == "" {
		missing = append(missing, "creator_id")
	}
	if len(missing) > 0 {
		return &ValidationError{Op: "create event", Fields: missing}
	}
	return nil
}

type joinRequest struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// GetEvents lists events matching filters.
func (c *Client) GetEvents(ctx context.Context, filters EventFilters) ([]models.Event, error) {
	var events []models.Event
	if err := c.do(ctx, get("Failed to fetch events", "/events", filters.values(), &events)); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent fetches one event with its full participant preview.
func (c *Client) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	if err := c.do(ctx, get("Failed to fetch event", "/events/"+pathEscape(eventID), nil, &event)); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent validates in and creates the event.
func (c *Client) CreateEvent(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var event models.Event
	err := c.do(ctx, call{
		op:     "Failed to create event",
		method: http.MethodPost,
		path:   "/events",
		body:   in,
		out:    &event,
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent deletes an event. Only its creator may do so; the backend enforces that.
func (c *Client) DeleteEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, call{
		op:     "Failed to delete event",
		method: http.MethodDelete,
		path:   "/events/" + pathEscape(eventID),
	})
}

// JoinEvent creates the join record. Joining twice fails with an error for
// which IsAlreadyJoined is true.
func (c *Client) JoinEvent(ctx context.Context, eventID, userID string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	err := c.do(ctx, call{
		op:     "Failed to join event",
		method: http.MethodPost,
		path:   "/events/" + pathEscape(eventID) + "/join",
		body:   joinRequest{EventID: eventID, UserID: userID},
		out:    &participant,
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// LeaveEvent removes the join record. Leaving an event the user is not in is an error.
func (c *Client) LeaveEvent(ctx context.Context, eventID, userID string) error {
	return c.do(ctx, call{
		op:     "Failed to leave event",
		method: http.MethodDelete,
		path:   "/events/" + pathEscape(eventID) + "/leave/" + pathEscape(userID),
	})
}

// GetEventParticipants returns the authoritative roster of an event.
func (c *Client) GetEventParticipants(ctx context.Context, eventID string) ([]models.EventParticipant, error) {
	var participants []models.EventParticipant
	path := "/events/" + pathEscape(eventID) + "/participants"
	if err := c.do(ctx, get("Failed to fetch participants", path, nil, &participants)); err != nil {
		return nil, err
	}
	return participants, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"tumatch/client/internal/models"
)

// MomentFilters restrict GetMoments. Empty fields are omitted.
type MomentFilters struct {
	UserID  string
	EventID string
}

// CreateMomentInput is the body of CreateMoment.
type CreateMomentInput struct {
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	PhotoURL string `json:"photo_url"`
	Caption  string `json:"caption,omitempty"`
}

// GetMoments lists moments, newest first.
func (c *Client) GetMoments(ctx context.Context, filters MomentFilters) ([]models.Moment, error) {
	q := url.Values{}
	if filters.UserID != "" {
		q.Set("user_id", filters.UserID)
	}
	if filters.EventID != "" {
		q.Set("event_id", filters.EventID)
	}
	var moments []models.Moment
	if err := c.do(ctx, get("Failed to fetch moments", "/moments", q, &moments)); err != nil {
		return nil, err
	}
	return moments, nil
}

// CreateMoment records a photo for an attended event.
func (c *Client) CreateMoment(ctx context.Context, in CreateMomentInput) (*models.Moment, error) {
	var missing []string
	if in.EventID == "" {
		missing = append(missing, "event_id")
	}
	if in.PhotoURL == "" {
		missing = append(missing, "photo_url")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Op: "create moment", Fields: missing}
	}

	var moment models.Moment
	err := c.do(ctx, call{
		op:     "Failed to create moment",
		method: http.MethodPost,
		path:   "/moments",
		body:   in,
		out:    &moment,
	})
	if err != nil {
		return nil, err
	}
	return &moment, nil
}

// DeleteMoment removes a moment.
func (c *Client) DeleteMoment(ctx context.Context, momentID string) error {
	return c.do(ctx, call{
		op:     "Failed to delete moment",
		method: http.MethodDelete,
		path:   "/moments/" + pathEscape(momentID),
	})
}

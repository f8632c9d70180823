package api

import (
	"context"
	"net/http"
	"net/url"

	"tumatch/client/internal/models"
)

type createFriendshipRequest struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
}

// GetFriendships lists friendships involving userID in either direction,
// optionally restricted to one status.
func (c *Client) GetFriendships(ctx context.Context, userID string, status models.FriendshipStatus) ([]models.Friendship, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status_filter", string(status))
	}
	var friendships []models.Friendship
	path := "/users/" + pathEscape(userID) + "/friendships"
	if err := c.do(ctx, get("Failed to fetch friendships", path, q, &friendships)); err != nil {
		return nil, err
	}
	return friendships, nil
}

// CreateFriendship sends a friend request; the friendship starts pending.
func (c *Client) CreateFriendship(ctx context.Context, userID, friendID string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := c.do(ctx, call{
		op:     "Failed to create friendship",
		method: http.MethodPost,
		path:   "/friendships",
		body:   createFriendshipRequest{UserID: userID, FriendID: friendID},
		out:    &friendship,
	})
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// UpdateFriendshipStatus accepts (or otherwise transitions) a friendship.
func (c *Client) UpdateFriendshipStatus(ctx context.Context, friendshipID string, status models.FriendshipStatus) (*models.Friendship, error) {
	var friendship models.Friendship
	err := c.do(ctx, call{
		op:     "Failed to update friendship",
		method: http.MethodPatch,
		path:   "/friendships/" + pathEscape(friendshipID),
		query:  url.Values{"status_update": {string(status)}},
		out:    &friendship,
	})
	if err != nil {
		return nil, err
	}
	return &friendship, nil
}

// DeleteFriendship removes a friendship; either party may do so.
func (c *Client) DeleteFriendship(ctx context.Context, friendshipID string) error {
	return c.do(ctx, call{
		op:     "Failed to delete friendship",
		method: http.MethodDelete,
		path:   "/friendships/" + pathEscape(friendshipID),
	})
}

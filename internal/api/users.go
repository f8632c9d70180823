package api

import (
	"context"

	"tumatch/client/internal/models"
)

// GetCurrentUser returns the user the session acts as.
func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, get("Failed to fetch current user", "/users/me", nil, &user)); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers lists all users.
func (c *Client) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, get("Failed to fetch users", "/users", nil, &users)); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user.
func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, get("Failed to fetch user", "/users/"+pathEscape(userID), nil, &user)); err != nil {
		return nil, err
	}
	return &user, nil
}

package models

import "time"

// FriendshipStatus defines the state of a relationship between two users.
type FriendshipStatus string

const (
	// StatusPending means a friend request has been sent but not yet accepted.
	StatusPending FriendshipStatus = "pending"

	// StatusAccepted means the friend request was accepted, and the users are now friends.
	StatusAccepted FriendshipStatus = "accepted"

	// StatusRejected means the recipient declined the request.
	StatusRejected FriendshipStatus = "rejected"
)

// Friendship is stored directionally (UserID sent the request to FriendID)
// but displayed without direction.
type Friendship struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	FriendID  string           `json:"friend_id"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at,omitempty"`
}

// Involves reports whether the friendship links a and b in either direction.
func (f Friendship) Involves(a, b string) bool {
	return (f.UserID == a && f.FriendID == b) || (f.UserID == b && f.FriendID == a)
}

// Other returns the member of the friendship that is not userID.
func (f Friendship) Other(userID string) string {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

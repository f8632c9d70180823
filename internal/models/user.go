package models

import "time"

// User is a backend-owned identity. The client references users but never owns them.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	ProfilePhoto string    `json:"profile_photo,omitempty"`
	Department   string    `json:"department,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

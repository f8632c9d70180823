package models

import "time"

// Blob is one entry of the SQL-backed key/value store.
type Blob struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

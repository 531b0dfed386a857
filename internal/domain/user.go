package domain

import "time"

// User is the domain model for citizens who file complaints.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

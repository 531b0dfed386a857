package domain

import "time"

// Department represents a municipal unit complaints are routed to.
type Department struct {
	ID          int64
	Name        string
	Place       string
	Pincode     string
	Email       string
	PhoneNumber string
	Description string
	CreatedAt   time.Time
}

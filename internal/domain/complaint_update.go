package domain

import "time"

// ComplaintUpdate is an immutable audit trail entry recorded alongside every
// status change.
type ComplaintUpdate struct {
	ID          int64
	ComplaintID int64
	Message     string
	Status      ComplaintStatus
	CreatedAt   time.Time
}

package events

import (
	"time"

	"github.com/spec-kit/civiceye/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type        domain.SubjectType `json:"type"`
	UserID      *int64             `json:"user_id,omitempty"`
	AuthorityID *int64             `json:"authority_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID int64       `json:"complaint_id"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	DisplayID     string  `json:"display_id"`
	ComplaintType string  `json:"complaint_type"`
	Location      string  `json:"location"`
	DepartmentID  *int64  `json:"department_id,omitempty"`
	ImageCount    int     `json:"image_count"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	DisplayID string                 `json:"display_id"`
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Message   string                 `json:"message,omitempty"`
}

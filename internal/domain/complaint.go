package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "inprogress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

// ParseComplaintStatus validates a raw status value at the boundary.
func ParseComplaintStatus(raw string) (ComplaintStatus, bool) {
	switch ComplaintStatus(raw) {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved:
		return ComplaintStatus(raw), true
	}
	return "", false
}

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
)

// Complaint is the aggregate for citizen-filed reports. The DisplayID is the
// externally visible identifier (CE-<year>-<seq>); ID is internal.
type Complaint struct {
	ID            int64
	DisplayID     string
	UserID        int64
	FullName      string
	Email         string
	Location      string
	ComplaintType string
	Description   string
	Status        ComplaintStatus
	Priority      ComplaintPriority
	DepartmentID  *int64
	Images        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Status moves forward only; closed states have no successors.
var allowedTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusPending:    {ComplaintStatusInProgress, ComplaintStatusResolved},
	ComplaintStatusInProgress: {ComplaintStatusResolved},
	ComplaintStatusResolved:   {},
}

// IsValidTransition reports whether a status change is allowed.
func IsValidTransition(current, next ComplaintStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

package dto

import (
	"time"

	"github.com/spec-kit/civiceye/internal/domain"
)

// ComplaintSummary is the listing view of a complaint.
type ComplaintSummary struct {
	ID            int64                    `json:"id"`
	ComplaintID   string                   `json:"complaint_id"`
	FullName      string                   `json:"fullname"`
	Email         string                   `json:"email"`
	Location      string                   `json:"location"`
	ComplaintType string                   `json:"complaint_type"`
	Description   string                   `json:"description"`
	Status        domain.ComplaintStatus   `json:"status"`
	Priority      domain.ComplaintPriority `json:"priority"`
	DepartmentID  *int64                   `json:"department_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	Images        []string                 `json:"images"`
}

// ComplaintDetail extends the summary with the audit trail.
type ComplaintDetail struct {
	ComplaintSummary
	UpdatedAt time.Time     `json:"updated_at"`
	Updates   []UpdateEntry `json:"updates"`
}

// UpdateEntry is one audit trail record.
type UpdateEntry struct {
	Message   string                 `json:"message"`
	Status    domain.ComplaintStatus `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
}

// StatusUpdateRequest payload for the authority status operation.
type StatusUpdateRequest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ActivityEntryResponse is one row of the latest-activity feed.
type ActivityEntryResponse struct {
	ID       string                   `json:"id"`
	Type     string                   `json:"type"`
	Location string                   `json:"location"`
	Priority domain.ComplaintPriority `json:"priority"`
	TimeAgo  string                   `json:"timeAgo"`
	Status   domain.ComplaintStatus   `json:"status"`
}

// StatsResponse carries aggregate status counts.
type StatsResponse struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inprogress"`
	Resolved   int64 `json:"resolved"`
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/events"
	"github.com/spec-kit/civiceye/internal/repository"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// ComplaintService coordinates the complaint ledger: submission, lookup,
// listing and the authority-facing status workflow.
type ComplaintService struct {
	complaints  repository.ComplaintRepository
	trail       repository.UpdateTrailRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
	policy      config.PolicyConfig
}

// ComplaintDependencies bundles repositories for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo  repository.ComplaintRepository
	TrailRepo      repository.UpdateTrailRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
}

// ComplaintCreateInput describes the citizen submission payload. Images holds
// evidence filenames already persisted by the evidence store, in upload order.
type ComplaintCreateInput struct {
	FullName      string
	Email         string
	Location      string
	ComplaintType string
	Description   string
	DepartmentID  *int64
	Images        []string
}

// ComplaintListFilter describes listing parameters.
type ComplaintListFilter struct {
	Status *domain.ComplaintStatus
	UserID *int64
}

// NewComplaintService constructs the service.
func NewComplaintService(policy config.PolicyConfig, deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints:  deps.ComplaintRepo,
		trail:       deps.TrailRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
		policy:      policy,
	}
}

// Submit files a new complaint on behalf of the authenticated user. The
// complaint starts pending with medium priority; the display identifier is
// allocated atomically by the repository.
func (s *ComplaintService) Submit(ctx context.Context, userID int64, input ComplaintCreateInput) (*domain.Complaint, error) {
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown department", nil)
			}
			return nil, err
		}
	}

	complaint := &domain.Complaint{
		UserID:        userID,
		FullName:      strings.TrimSpace(input.FullName),
		Email:         strings.TrimSpace(input.Email),
		Location:      strings.TrimSpace(input.Location),
		ComplaintType: strings.TrimSpace(input.ComplaintType),
		Description:   strings.TrimSpace(input.Description),
		Status:        domain.ComplaintStatusPending,
		Priority:      domain.ComplaintPriorityMedium,
		DepartmentID:  input.DepartmentID,
		Images:        input.Images,
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       userActor(userID),
		Payload: events.ComplaintCreatedPayload{
			DisplayID:     complaint.DisplayID,
			ComplaintType: complaint.ComplaintType,
			Location:      complaint.Location,
			DepartmentID:  complaint.DepartmentID,
			ImageCount:    len(complaint.Images),
		},
	})
	return complaint, nil
}

// Get returns the full complaint detail with its audit trail, oldest first.
func (s *ComplaintService) Get(ctx context.Context, id int64) (*domain.Complaint, []domain.ComplaintUpdate, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, nil, err
	}
	trail, err := s.trail.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, nil, err
	}
	return complaint, trail, nil
}

// List returns complaint summaries, newest first. The full result set is
// returned; this service is deliberately not engineered for scale.
func (s *ComplaintService) List(ctx context.Context, filter ComplaintListFilter) ([]domain.Complaint, error) {
	return s.complaints.ListWithFilter(ctx, repository.ComplaintFilter{
		Status: filter.Status,
		UserID: filter.UserID,
	})
}

// UpdateStatus progresses a complaint's status on behalf of an authority and
// appends the matching audit entry in the same transaction.
func (s *ComplaintService) UpdateStatus(ctx context.Context, authority *domain.Authority, id int64, rawStatus, message string) (*domain.Complaint, *domain.ComplaintUpdate, error) {
	if authority == nil {
		return nil, nil, apperrors.NewForbidden("authority session required")
	}

	newStatus, ok := domain.ParseComplaintStatus(rawStatus)
	if !ok {
		return nil, nil, apperrors.NewValidationError("unknown status value", map[string]any{"status": rawStatus})
	}

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, nil, err
	}

	if !s.authorityCanUpdate(authority, complaint) {
		return nil, nil, apperrors.NewForbidden("complaint outside authority department")
	}
	if !domain.IsValidTransition(complaint.Status, newStatus) {
		return nil, nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": complaint.Status,
			"to":   newStatus,
		})
	}

	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("Status changed to %s", newStatus)
	}

	entry, err := s.complaints.UpdateStatusWithTrail(ctx, complaint.ID, newStatus, message)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, nil, err
	}

	oldStatus := complaint.Status
	complaint.Status = newStatus
	complaint.UpdatedAt = entry.CreatedAt

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       authorityActor(authority.ID),
		Payload: events.ComplaintStatusChangedPayload{
			DisplayID: complaint.DisplayID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Message:   message,
		},
	})
	return complaint, entry, nil
}

// HistoryFor exposes the audit trail of one complaint, ascending by time.
func (s *ComplaintService) HistoryFor(ctx context.Context, complaintID int64) ([]domain.ComplaintUpdate, error) {
	if _, err := s.complaints.GetByID(ctx, complaintID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": complaintID})
		}
		return nil, err
	}
	return s.trail.ListByComplaint(ctx, complaintID)
}

// authorityCanUpdate applies the optional department-scoping policy. An
// authority without a department always passes, as does every authority when
// the policy is disabled.
func (s *ComplaintService) authorityCanUpdate(authority *domain.Authority, complaint *domain.Complaint) bool {
	if !s.policy.ScopeAuthorityToDepartment {
		return true
	}
	if authority.DepartmentID == nil {
		return true
	}
	if complaint.DepartmentID == nil {
		return false
	}
	return *authority.DepartmentID == *complaint.DepartmentID
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID int64) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func authorityActor(authorityID int64) events.Actor {
	return events.Actor{
		Type:        domain.SubjectTypeAuthority,
		AuthorityID: &authorityID,
	}
}

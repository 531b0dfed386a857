package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/api/dto"
	"github.com/spec-kit/civiceye/internal/auth"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/service"
	"github.com/spec-kit/civiceye/internal/storage"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// ComplaintsHandler manages complaint intake, lookup and the authority-facing
// status operation.
type ComplaintsHandler struct {
	complaints  *service.ComplaintService
	projections *service.ProjectionService
	evidence    *storage.EvidenceStore
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints *service.ComplaintService, projections *service.ProjectionService, evidence *storage.EvidenceStore) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, projections: projections, evidence: evidence}
}

// Create handles POST /api/complaints (multipart form with optional images).
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user session required")
	}

	input := service.ComplaintCreateInput{
		FullName:      c.FormValue("fullname"),
		Email:         c.FormValue("email"),
		Location:      c.FormValue("location"),
		ComplaintType: c.FormValue("complaintType"),
		Description:   c.FormValue("description"),
	}
	if input.FullName == "" || input.Email == "" || input.Location == "" || input.ComplaintType == "" || input.Description == "" {
		return apperrors.NewValidationError("fullname, email, location, complaintType, description required", nil)
	}
	if raw := c.FormValue("department_id"); raw != "" {
		deptID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid department_id", nil)
		}
		input.DepartmentID = &deptID
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["images"] {
			filename, saved, err := h.evidence.Save(file)
			if err != nil {
				return apperrors.NewInternalError(err)
			}
			if saved {
				input.Images = append(input.Images, filename)
			}
		}
	}

	complaint, err := h.complaints.Submit(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":      "Complaint submitted successfully",
		"complaint_id": complaint.DisplayID,
		"complaint":    complaintSummary(complaint),
	})
}

// List handles GET /api/complaints?status=&user_id=.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	filter := service.ComplaintListFilter{}

	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseComplaintStatus(raw)
		if !ok {
			return apperrors.NewValidationError("unknown status value", map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid user_id", nil)
		}
		filter.UserID = &userID
	}

	complaints, err := h.complaints.List(c.Context(), filter)
	if err != nil {
		return err
	}

	items := make([]dto.ComplaintSummary, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintSummary(&complaints[i]))
	}
	return c.JSON(items)
}

// Latest handles GET /api/complaints/latest.
func (h *ComplaintsHandler) Latest(c *fiber.Ctx) error {
	entries, err := h.projections.LatestActivity(c.Context(), 5)
	if err != nil {
		return err
	}

	items := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityEntryResponse{
			ID:       entry.DisplayID,
			Type:     entry.Type,
			Location: entry.Location,
			Priority: entry.Priority,
			TimeAgo:  entry.TimeAgo,
			Status:   entry.Status,
		})
	}
	return c.JSON(items)
}

// Get handles GET /api/complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	complaint, trail, err := h.complaints.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(complaintDetail(complaint, trail))
}

// Updates handles GET /api/complaints/:id/updates.
func (h *ComplaintsHandler) Updates(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	trail, err := h.complaints.HistoryFor(c.Context(), id)
	if err != nil {
		return err
	}

	items := make([]dto.UpdateEntry, 0, len(trail))
	for _, entry := range trail {
		items = append(items, dto.UpdateEntry{
			Message:   entry.Message,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(items)
}

// UpdateStatus handles PUT /api/complaints/:id/status.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Authority == nil {
		return apperrors.NewForbidden("authority session required")
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	complaint, entry, err := h.complaints.UpdateStatus(c.Context(), principal.Authority, id, req.Status, req.Message)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Status updated successfully",
		"complaint": fiber.Map{
			"id":           complaint.ID,
			"complaint_id": complaint.DisplayID,
			"status":       complaint.Status,
		},
		"update": dto.UpdateEntry{
			Message:   entry.Message,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt,
		},
	})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func complaintSummary(complaint *domain.Complaint) dto.ComplaintSummary {
	images := complaint.Images
	if images == nil {
		images = []string{}
	}
	return dto.ComplaintSummary{
		ID:            complaint.ID,
		ComplaintID:   complaint.DisplayID,
		FullName:      complaint.FullName,
		Email:         complaint.Email,
		Location:      complaint.Location,
		ComplaintType: complaint.ComplaintType,
		Description:   complaint.Description,
		Status:        complaint.Status,
		Priority:      complaint.Priority,
		DepartmentID:  complaint.DepartmentID,
		CreatedAt:     complaint.CreatedAt,
		Images:        images,
	}
}

func complaintDetail(complaint *domain.Complaint, trail []domain.ComplaintUpdate) dto.ComplaintDetail {
	updates := make([]dto.UpdateEntry, 0, len(trail))
	for _, entry := range trail {
		updates = append(updates, dto.UpdateEntry{
			Message:   entry.Message,
			Status:    entry.Status,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto.ComplaintDetail{
		ComplaintSummary: complaintSummary(complaint),
		UpdatedAt:        complaint.UpdatedAt,
		Updates:          updates,
	}
}

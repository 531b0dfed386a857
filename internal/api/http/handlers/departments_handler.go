package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/api/dto"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/service"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// DepartmentsHandler exposes the department registry.
type DepartmentsHandler struct {
	departments *service.DepartmentService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(departments *service.DepartmentService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments}
}

// List handles GET /api/departments.
func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.Context())
	if err != nil {
		return err
	}

	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(items)
}

// Create handles POST /api/departments.
func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	var req dto.DepartmentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	dept, err := h.departments.Create(c.Context(), service.DepartmentCreateInput{
		Name:        req.Dept,
		Place:       req.Place,
		Pincode:     req.Pincode,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":    "Department added successfully",
		"department": departmentResponse(dept),
	})
}

// Delete handles DELETE /api/departments/:id.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return apperrors.NewValidationError("invalid id", nil)
	}

	if err := h.departments.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Department deleted successfully"})
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Place:       dept.Place,
		Pincode:     dept.Pincode,
		Email:       dept.Email,
		PhoneNumber: dept.PhoneNumber,
		Description: dept.Description,
	}
}

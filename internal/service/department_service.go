package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/repository"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

var (
	pincodeRe = regexp.MustCompile(`^\d{6}$`)
	phoneRe   = regexp.MustCompile(`^\d{10}$`)
	emailRe   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// DepartmentService manages the registry of municipal departments.
type DepartmentService struct {
	departments repository.DepartmentRepository
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departments: departments}
}

// DepartmentCreateInput describes a new department.
type DepartmentCreateInput struct {
	Name        string
	Place       string
	Pincode     string
	Email       string
	PhoneNumber string
	Description string
}

// List returns all departments.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

// Create validates and registers a department.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentCreateInput) (*domain.Department, error) {
	dept := &domain.Department{
		Name:        strings.TrimSpace(input.Name),
		Place:       strings.TrimSpace(input.Place),
		Pincode:     strings.TrimSpace(input.Pincode),
		Email:       strings.TrimSpace(input.Email),
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Description: strings.TrimSpace(input.Description),
	}

	if dept.Name == "" || dept.Place == "" || dept.Description == "" {
		return nil, apperrors.NewValidationError("name, place, description required", nil)
	}
	if !pincodeRe.MatchString(dept.Pincode) {
		return nil, apperrors.NewValidationError("pincode must be 6 digits", nil)
	}
	if !phoneRe.MatchString(dept.PhoneNumber) {
		return nil, apperrors.NewValidationError("phone_number must be 10 digits", nil)
	}
	if !emailRe.MatchString(dept.Email) {
		return nil, apperrors.NewValidationError("invalid email", nil)
	}

	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department by ID.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("department", map[string]any{"id": id})
		}
		return err
	}
	return nil
}

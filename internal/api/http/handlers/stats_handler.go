package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/api/dto"
	"github.com/spec-kit/civiceye/internal/service"
)

// StatsHandler exposes aggregate complaint counts.
type StatsHandler struct {
	projections *service.ProjectionService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(projections *service.ProjectionService) *StatsHandler {
	return &StatsHandler{projections: projections}
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.projections.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(dto.StatsResponse{
		Total:      stats.Total,
		Pending:    stats.Pending,
		InProgress: stats.InProgress,
		Resolved:   stats.Resolved,
	})
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/api/dto"
	"github.com/spec-kit/ticketdesk/internal/service"
)

// ReportsHandler serves dashboard figures.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Summary handles GET /reports/summary.
func (h *ReportsHandler) Summary(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	summary, err := h.reports.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SummaryResponse{
		OpenTickets:              summary.OpenTickets,
		ResolvedTickets:          summary.ResolvedTickets,
		AverageResolutionSeconds: summary.AverageResolution.Seconds(),
		AverageResolution:        service.FormatDuration(summary.AverageResolution),
	}})
}

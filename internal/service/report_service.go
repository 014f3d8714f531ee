package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/ticketdesk/internal/authz"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// ReportService computes dashboard figures.
type ReportService struct {
	tickets repository.TicketRepository
}

// Summary holds the administrator dashboard figures.
type Summary struct {
	OpenTickets       int
	ResolvedTickets   int
	AverageResolution time.Duration
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository) *ReportService {
	return &ReportService{tickets: tickets}
}

// Summary returns open and resolved counts and the mean time to resolution.
func (s *ReportService) Summary(ctx context.Context, actor domain.Actor) (*Summary, error) {
	if !authz.CanViewReports(actor.Role) {
		return nil, apperrors.NewPermissionDenied("only administrators view reports", roleDetails(actor))
	}
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, mapStoreError(err, "ticket", nil)
	}
	return &Summary{
		OpenTickets:       stats.Open,
		ResolvedTickets:   stats.Resolved,
		AverageResolution: stats.AverageResolution,
	}, nil
}

// FormatDuration renders d as "{h}h {m}m {s}s", dropping fractions of a second.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm %ds", total/3600, (total%3600)/60, total%60)
}

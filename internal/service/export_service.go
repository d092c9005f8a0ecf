package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type exportService struct {
	groups   repository.GroupRepo
	plans    repository.PlanRepo
	observer UseCaseObserver
}

func NewExportService(groups repository.GroupRepo, plans repository.PlanRepo, observers ...UseCaseObserver) ExportService {
	return &exportService{groups: groups, plans: plans, observer: useCaseObserverOrNoop(observers)}
}

// Export writes the group's plans between the requested dates, defaulting
// to the group period, and returns how many were written.
func (s *exportService) Export(ctx context.Context, req app.ExportRequest, w io.Writer) (n int, err error) {
	fields := map[string]any{"group_id": req.GroupID, "format": string(req.Format)}
	defer observe(ctx, s.observer, "export", fields, &err)()

	g, err := s.groups.GetByID(ctx, req.GroupID)
	if err != nil {
		return 0, err
	}
	from, to := g.PeriodStart, g.PeriodEnd
	if req.From != nil {
		from = domain.Day(*req.From)
	}
	if req.To != nil {
		to = domain.Day(*req.To)
	}
	plans, err := s.plans.ListBetween(ctx, g.ID, from, to)
	if err != nil {
		return 0, fmt.Errorf("listing plans: %w", err)
	}

	switch req.Format {
	case app.FormatICS:
		err = export.WriteICS(w, g, plans, time.Now().UTC())
	case app.FormatXLSX:
		err = export.WriteWorkbook(w, g, plans)
	default:
		err = fmt.Errorf("unknown export format %q", req.Format)
	}
	if err != nil {
		return 0, err
	}
	fields["plans"] = len(plans)
	return len(plans), nil
}

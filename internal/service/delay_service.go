package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

type delayService struct {
	groups   repository.GroupRepo
	plans    repository.PlanRepo
	observer UseCaseObserver
}

func NewDelayService(groups repository.GroupRepo, plans repository.PlanRepo, observers ...UseCaseObserver) DelayService {
	return &delayService{groups: groups, plans: plans, observer: useCaseObserverOrNoop(observers)}
}

func (s *delayService) AnalyzeGroup(ctx context.Context, groupID string, today time.Time) (gd *app.GroupDelay, err error) {
	defer observe(ctx, s.observer, "delay-group", map[string]any{"group_id": groupID}, &err)()

	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, g, today)
}

// AnalyzeStudent analyzes every active group of a student, most urgent first.
func (s *delayService) AnalyzeStudent(ctx context.Context, studentID string, today time.Time) (report *app.DelayReport, err error) {
	fields := map[string]any{"student_id": studentID}
	defer observe(ctx, s.observer, "delay-student", fields, &err)()

	groups, err := s.groups.List(ctx, studentID, false)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	byID := make(map[string]app.GroupDelay)
	var analyses []scheduler.DelayAnalysis
	for _, g := range groups {
		if g.Status != domain.GroupActive {
			continue
		}
		gd, err := s.analyze(ctx, g, today)
		if err != nil {
			return nil, err
		}
		byID[g.ID] = *gd
		analyses = append(analyses, gd.Analysis)
	}
	scheduler.SortAnalyses(analyses)

	report = &app.DelayReport{StudentID: studentID, Overall: scheduler.OverallStatus(analyses)}
	for _, a := range analyses {
		report.Groups = append(report.Groups, byID[a.GroupID])
	}
	fields["groups"] = len(report.Groups)
	fields["overall"] = string(report.Overall)
	return report, nil
}

func (s *delayService) analyze(ctx context.Context, g *domain.PlanGroup, today time.Time) (*app.GroupDelay, error) {
	plans, err := s.plans.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("listing plans of %s: %w", g.ID, err)
	}
	gd := &app.GroupDelay{
		Group:    g,
		Analysis: scheduler.AnalyzeDelay(scheduler.DelayInput{GroupID: g.ID, Plans: plans, Today: today}),
	}
	if rec, ok := scheduler.RecommendForDelay(gd.Analysis.AverageDelayDays); ok {
		gd.Recommendation = &rec
	}
	return gd, nil
}

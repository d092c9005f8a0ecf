package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type groupService struct {
	groups repository.GroupRepo
	plans  repository.PlanRepo
}

func NewGroupService(groups repository.GroupRepo, plans repository.PlanRepo) GroupService {
	return &groupService{groups: groups, plans: plans}
}

func (s *groupService) ListGroups(ctx context.Context, studentID string, includeDeleted bool) ([]*domain.PlanGroup, error) {
	return s.groups.List(ctx, studentID, includeDeleted)
}

func (s *groupService) GetGroup(ctx context.Context, id string) (*domain.PlanGroup, error) {
	return s.groups.GetByID(ctx, id)
}

// ListPlans returns the group's plans, optionally bounded by dates. A
// missing bound defaults to the group period.
func (s *groupService) ListPlans(ctx context.Context, groupID string, from, to *time.Time) ([]domain.Plan, error) {
	if from == nil && to == nil {
		return s.plans.ListByGroup(ctx, groupID)
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	start, end := g.PeriodStart, g.PeriodEnd
	if from != nil {
		start = domain.Day(*from)
	}
	if to != nil {
		end = domain.Day(*to)
	}
	return s.plans.ListBetween(ctx, groupID, start, end)
}

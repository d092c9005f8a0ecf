package service

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alexanderramin/studyplan/internal/suggest"
)

type suggestionService struct {
	uow      db.UnitOfWork
	logs     repository.RescheduleLogRepo
	observer UseCaseObserver
}

func NewSuggestionService(uow db.UnitOfWork, logs repository.RescheduleLogRepo, observers ...UseCaseObserver) SuggestionService {
	return &suggestionService{uow: uow, logs: logs, observer: useCaseObserverOrNoop(observers)}
}

func (s *suggestionService) Suggest(ctx context.Context, groupID string, today time.Time) (out []suggest.Suggestion, err error) {
	fields := map[string]any{"group_id": groupID}
	defer observe(ctx, s.observer, "suggest", fields, &err)()

	var in suggest.Input
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		snap, err := repository.LoadSnapshot(ctx, tx, groupID)
		if err != nil {
			return err
		}
		in = suggest.Input{
			Analysis:  scheduler.AnalyzeDelay(scheduler.DelayInput{GroupID: groupID, Plans: snap.Plans, Today: today}),
			Contents:  snap.Contents,
			Plans:     snap.Plans,
			Today:     today,
			PeriodEnd: snap.Group.PeriodEnd,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out = suggest.Suggest(in)
	fields["suggestions"] = len(out)
	return out, nil
}

func (s *suggestionService) Patterns(ctx context.Context, groupID string) (out []suggest.Pattern, err error) {
	defer observe(ctx, s.observer, "patterns", map[string]any{"group_id": groupID}, &err)()

	logs, err := s.logs.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return suggest.AnalyzePatterns(logs), nil
}

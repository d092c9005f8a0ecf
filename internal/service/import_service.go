package service

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/importer"
	"github.com/alexanderramin/studyplan/internal/repository"
)

type importService struct {
	uow      db.UnitOfWork
	keywords map[string]domain.ExclusionType
	observer UseCaseObserver
}

// NewImportService builds the import use cases. keywords classifies ICS
// events by summary; nil uses the importer defaults.
func NewImportService(uow db.UnitOfWork, keywords map[string]domain.ExclusionType, observers ...UseCaseObserver) ImportService {
	return &importService{uow: uow, keywords: keywords, observer: useCaseObserverOrNoop(observers)}
}

func (s *importService) ImportGroup(ctx context.Context, filePath string) (*app.ImportResult, error) {
	schema, err := importer.LoadImportSchema(filePath)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.ImportGroupFromSchema(ctx, schema)
}

// ImportGroupFromSchema validates the whole file before writing anything,
// then persists the group in one transaction.
func (s *importService) ImportGroupFromSchema(ctx context.Context, schema *importer.ImportSchema) (res *app.ImportResult, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "import-group", fields, &err)()

	if errs := importer.ValidateImportSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	b, err := importer.Convert(schema)
	if err != nil {
		return nil, fmt.Errorf("converting import schema: %w", err)
	}
	fields["group_id"] = b.Group.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := repository.NewSQLiteGroupRepo(tx).Create(ctx, b.Group); err != nil {
			return fmt.Errorf("creating group: %w", err)
		}
		contents := repository.NewSQLiteContentRepo(tx)
		for _, c := range b.Contents {
			if err := contents.Create(ctx, c); err != nil {
				return fmt.Errorf("creating content %q: %w", c.ContentID, err)
			}
		}
		durations := repository.NewSQLiteDurationRepo(tx)
		for i := range b.Durations {
			if err := durations.Upsert(ctx, &b.Durations[i]); err != nil {
				return fmt.Errorf("storing duration of %q: %w", b.Durations[i].ContentID, err)
			}
		}
		blocks := repository.NewSQLiteBlockRepo(tx)
		for i := range b.Blocks {
			if err := blocks.Create(ctx, &b.Blocks[i]); err != nil {
				return fmt.Errorf("creating block: %w", err)
			}
		}
		exclusions := repository.NewSQLiteExclusionRepo(tx)
		for i := range b.Exclusions {
			if err := exclusions.Upsert(ctx, &b.Exclusions[i]); err != nil {
				return fmt.Errorf("creating exclusion: %w", err)
			}
		}
		academies := repository.NewSQLiteAcademyRepo(tx)
		for i := range b.Academies {
			if err := academies.Create(ctx, &b.Academies[i]); err != nil {
				return fmt.Errorf("creating academy schedule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &app.ImportResult{
		Group:          b.Group,
		ContentCount:   len(b.Contents),
		DurationCount:  len(b.Durations),
		BlockCount:     len(b.Blocks),
		ExclusionCount: len(b.Exclusions),
		AcademyCount:   len(b.Academies),
	}, nil
}

// ImportExclusionsICS adds one exclusion per calendar date found in r.
// Dates already excluded are overwritten.
func (s *importService) ImportExclusionsICS(ctx context.Context, groupID string, r io.Reader) (n int, err error) {
	fields := map[string]any{"group_id": groupID}
	defer observe(ctx, s.observer, "import-exclusions", fields, &err)()

	excl, err := importer.ParseExclusionsICS(r, groupID, s.keywords)
	if err != nil {
		return 0, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteGroupRepo(tx).GetByID(ctx, groupID); err != nil {
			return err
		}
		repo := repository.NewSQLiteExclusionRepo(tx)
		for i := range excl {
			if err := repo.Upsert(ctx, &excl[i]); err != nil {
				return fmt.Errorf("storing exclusion %s: %w", domain.DateKey(excl[i].Date), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	fields["exclusions"] = len(excl)
	return len(excl), nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}

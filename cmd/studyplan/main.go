package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/studyplan/internal/cli"
	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/importer"
	"github.com/alexanderramin/studyplan/internal/logging"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configPath picks --config out of the arguments before cobra runs, since
// the services cobra dispatches to are built from the config.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("studyplan", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.String("config", "", "")
	_ = fs.Parse(args)
	return *path
}

func run() error {
	cfg, err := config.Load(configPath(os.Args[1:]))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.OpenDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire repositories
	groupRepo := repository.NewSQLiteGroupRepo(database)
	planRepo := repository.NewSQLitePlanRepo(database)
	logRepo := repository.NewSQLiteRescheduleLogRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the engine
	estimator := scheduler.NewEstimator(cfg.Scheduler)
	generator := scheduler.NewGenerator(estimator, cfg.Scheduler)
	engine := reschedule.NewEngine(generator)

	var store reschedule.PreviewStore
	if cfg.Redis.Enabled() {
		rdb, err := reschedule.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = reschedule.NewRedisPreviewStore(rdb, cfg.Redis.KeyPrefix, cfg.Redis.PreviewTTL)
		logger.Info("shared preview store enabled", zap.String("addr", cfg.Redis.Addr))
	}
	cache, err := reschedule.NewPreviewCache(cfg.Scheduler.PreviewCacheSize, store)
	if err != nil {
		return err
	}

	// Wire services
	observer := service.NewZapUseCaseObserver(logger)
	rescheduleSvc := service.NewRescheduleService(service.RescheduleDeps{
		UoW:        uow,
		Engine:     engine,
		Cache:      cache,
		Notifier:   service.NewZapNotifier(logger),
		Logger:     logger,
		BatchLimit: cfg.Jobs.BatchLimit,
	}, observer)

	jobs := service.NewJobQueue(rescheduleSvc, cfg.Jobs.Workers, cfg.Jobs.QueueSize, logger)
	jobs.Start(ctx)
	defer jobs.Close()

	app := &cli.App{
		Groups:          service.NewGroupService(groupRepo, planRepo),
		Generate:        service.NewGenerateService(uow, generator, logger, observer),
		Delay:           service.NewDelayService(groupRepo, planRepo, observer),
		Reschedule:      rescheduleSvc,
		Suggest:         service.NewSuggestionService(uow, logRepo, observer),
		Import:          service.NewImportService(uow, importer.DefaultExclusionKeywords, observer),
		Export:          service.NewExportService(groupRepo, planRepo, observer),
		Jobs:            jobs,
		AsyncAfterPlans: cfg.Jobs.AsyncAfterN,
	}

	// Detect interactive terminal for prompts and the plan browser.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

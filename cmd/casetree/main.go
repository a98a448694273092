package main

import (
	"fmt"
	"os"

	"github.com/alexanderramin/casetree/internal/cli"
	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/config"
	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(dir, ".env")
	if err != nil {
		return err
	}

	formatter.SetColorMode(cfg.Color, isatty.IsTerminal(os.Stdout.Fd()))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Use-case observers: optional logging to stderr, metrics when a dump
	// file is configured.
	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		if cfg.LogFormat == "json" {
			observers = append(observers, service.NewJSONLogUseCaseObserver(os.Stderr))
		} else {
			observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
		}
	}
	if cfg.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		observers = append(observers, service.NewMetricsUseCaseObserver(reg))
		defer func() {
			if werr := prometheus.WriteToTextfile(cfg.MetricsFile, reg); werr != nil && err == nil {
				err = fmt.Errorf("writing metrics: %w", werr)
			}
		}()
	}
	observer := service.NewMultiUseCaseObserver(observers...)

	// Wire repositories
	nodeRepo := repository.NewSQLiteNodeRepo(database)
	keywordRepo := repository.NewSQLiteKeywordRepo(database)
	planRepo := repository.NewSQLiteTestPlanRepo(database)
	treeRepo := repository.NewSQLiteTreeQueryRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Nodes:     service.NewNodeService(nodeRepo, keywordRepo, uow, observer),
		Queries:   service.NewQueryService(nodeRepo, planRepo, treeRepo, observer),
		Plans:     service.NewTestPlanService(planRepo, uow, observer),
		ConfigDir: dir,
	}

	// Prompts and the browser need a terminal on both ends.
	app.IsInteractive = func() bool {
		in := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		out := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		return in && out
	}

	return cli.NewRootCmd(app).Execute()
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/collegeite/rowingdb/internal/config"
	"github.com/collegeite/rowingdb/internal/database"
	"github.com/collegeite/rowingdb/internal/database/repository"
	"github.com/collegeite/rowingdb/internal/service"
	"github.com/collegeite/rowingdb/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns the terminal, so logs go to a file next to the database.
	logger, logFile := openLogger(cfg.Database.Path)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Fatal("mkdir db dir", "err", err)
	}

	if err := database.RunMigrations(cfg.Database.Path); err != nil {
		logger.Fatal("migrate", "err", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("open db", "err", err)
	}
	defer db.Close()

	if err := database.SeedSchools(ctx, db, cfg.Season.StartMonth); err != nil {
		logger.Fatal("seed schools", "err", err)
	}

	schoolRepo := repository.NewSchoolRepo(db)
	regattaRepo := repository.NewRegattaRepo(db)
	eventRepo := repository.NewEventRepo(db)
	entryRepo := repository.NewEntryRepo(db)
	confRepo := repository.NewConferenceRepo(db)
	partRepo := repository.NewParticipationRepo(db)
	changeRepo := repository.NewChangeRepo(db)

	auditor := &service.SchoolAuditor{Schools: schoolRepo, Changes: changeRepo}
	matcher := &service.SchoolMatcher{Schools: schoolRepo}
	maintenance := &service.MaintenanceService{DB: db}

	app := tui.New(ctx, cfg, db,
		tui.Repos{
			Schools:        schoolRepo,
			Regattas:       regattaRepo,
			Events:         eventRepo,
			Entries:        entryRepo,
			Conferences:    confRepo,
			Participations: partRepo,
			Changes:        changeRepo,
		},
		tui.Services{Auditor: auditor, Matcher: matcher, Maintenance: maintenance},
		logger,
	)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("run", "err", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openLogger(dbPath string) (*log.Logger, *os.File) {
	path := filepath.Join(filepath.Dir(dbPath), "rowingdb.log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(os.Stderr), nil
	}
	logger := log.New(f)
	logger.SetReportTimestamp(true)
	return logger, f
}

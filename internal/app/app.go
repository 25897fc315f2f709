package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/elstrm2/NutritionTracker/internal/backup"
	"github.com/elstrm2/NutritionTracker/internal/bot"
	"github.com/elstrm2/NutritionTracker/internal/config"
	"github.com/elstrm2/NutritionTracker/internal/db"
	"github.com/elstrm2/NutritionTracker/internal/i18n"
	"github.com/elstrm2/NutritionTracker/internal/service"
	"github.com/elstrm2/NutritionTracker/internal/store"
)

// App owns the database handle and everything built on it. It sits between the CLI
// commands and the transports on one side and the tracker on the other.
// The caller must call Close when done.
type App struct {
	cfg        *config.Config
	db         *sql.DB
	logger     *slog.Logger
	tracker    *service.Tracker
	catalog    *i18n.Catalog
	dispatcher *bot.Dispatcher
}

// New opens the configured database, brings its schema up to date and wires the tracker,
// message catalog and command dispatcher.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.Database.Driver == db.DriverSQLite {
		if err := EnsureDBDir(cfg.Database.DSN); err != nil {
			return nil, err
		}
	}
	sqldb, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if err := db.ApplyMigrations(sqldb, cfg.Database.Driver); err != nil {
		sqldb.Close()
		return nil, err
	}
	s, err := store.New(sqldb, cfg.Database.Driver)
	if err != nil {
		sqldb.Close()
		return nil, err
	}
	catalog, err := i18n.Load(cfg.Bot.DefaultLanguage)
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("loading message catalogs: %w", err)
	}

	log := ServiceLogger(logger)
	tracker := service.NewTracker(s, log, service.RealClock{}, service.UUIDGenerator{},
		service.WithStorageTimeout(cfg.StorageTimeout()))

	return &App{
		cfg:        cfg,
		db:         sqldb,
		logger:     logger,
		tracker:    tracker,
		catalog:    catalog,
		dispatcher: bot.NewDispatcher(tracker, catalog, log),
	}, nil
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Logger() *slog.Logger { return a.logger }
func (a *App) Tracker() *service.Tracker { return a.tracker }
func (a *App) Dispatcher() *bot.Dispatcher { return a.dispatcher }
func (a *App) Catalog() *i18n.Catalog { return a.catalog }

// Exec runs one chat command as userID and returns the reply split for the configured
// message limit.
func (a *App) Exec(ctx context.Context, userID, text string) []string {
	reply := a.dispatcher.Handle(ctx, bot.Command{UserID: userID, Text: text})
	return reply.Chunks(a.cfg.Bot.MaxMessageLength)
}

// Backup snapshots the live SQLite database to outPath, encrypted to recipient when set.
func (a *App) Backup(ctx context.Context, outPath, recipient string) (backup.Info, error) {
	if a.cfg.Database.Driver != db.DriverSQLite {
		return backup.Info{}, fmt.Errorf("backups are only supported for sqlite; use pg_dump for postgres")
	}
	info, err := backup.Create(ctx, a.db, outPath, recipient)
	if err != nil {
		return backup.Info{}, err
	}
	a.logger.Info("backup created", "path", info.Path, "encrypted", info.Encrypted, "size", info.SizeBytes)
	return info, nil
}

// Ping checks that the database is reachable.
func (a *App) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *App) Close() error {
	return a.db.Close()
}

package tracker

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
	"github.com/elstrm2/NutritionTracker/internal/config"
	"github.com/elstrm2/NutritionTracker/internal/db"
)

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return app.DefaultConfigPath()
}

func resolveDefaultDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return app.DefaultDBPath()
}

// loadConfig resolves the configuration: defaults, then the config file, then the
// environment (seeded from the .env file), then --db.
func loadConfig() (*config.Config, error) {
	env := envPath
	if env == "" {
		env = app.DefaultEnvPath()
	}
	if err := config.LoadEnvFile(env); err != nil {
		return nil, err
	}
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	defaultDB, err := resolveDefaultDBPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, defaultDB, os.Getenv)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Driver = db.DriverSQLite
		cfg.Database.DSN = dbPath
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	return app.NewLogger(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
}

func withApp(cmd *cobra.Command, run func(*app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}

// sqlitePath returns the database file for commands that work on the file itself.
func sqlitePath(cfg *config.Config) (string, error) {
	if cfg.Database.Driver != db.DriverSQLite {
		return "", fmt.Errorf("this command needs the sqlite driver, configured driver is %s", cfg.Database.Driver)
	}
	return cfg.Database.DSN, nil
}

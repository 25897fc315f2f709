package tracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
	"github.com/elstrm2/NutritionTracker/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == db.DriverSQLite {
			if err := app.EnsureDBDir(cfg.Database.DSN); err != nil {
				return err
			}
		}
		sqldb, err := db.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		before, err := db.Status(sqldb, cfg.Database.Driver)
		if err != nil {
			return err
		}
		if err := db.ApplyMigrations(sqldb, cfg.Database.Driver); err != nil {
			return err
		}
		after, err := db.Status(sqldb, cfg.Database.Driver)
		if err != nil {
			return err
		}
		if before.Version == after.Version {
			fmt.Fprintf(cmd.OutOrStdout(), "Database schema is up to date at version %d\n", after.Version)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated database schema from version %d to %d\n", before.Version, after.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

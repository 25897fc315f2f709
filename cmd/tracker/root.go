package tracker

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	envPath    string
)

var rootCmd = &cobra.Command{
	Use:           "nutritiontracker",
	Short:         "nutritiontracker records food and water against a daily target",
	Long:          "nutritiontracker is a chat-driven calorie, macro and water tracker. It serves the chat commands over Telegram or HTTP and ships operator tools for migrations, integrity checks and backups.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database (overrides database settings)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", "", "Path to .env file (default: ./.env)")
}

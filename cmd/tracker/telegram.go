package tracker

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
	"github.com/elstrm2/NutritionTracker/internal/config"
	"github.com/elstrm2/NutritionTracker/internal/telegram"
)

var telegramWorkers int

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the Telegram bot with long polling",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			cfg := a.Config()
			if cfg.Telegram.Token == "" {
				return fmt.Errorf("telegram token is not set; use telegram.token or %s", config.EnvTelegramToken)
			}
			workers := cfg.Bot.Workers
			if telegramWorkers > 0 {
				workers = telegramWorkers
			}
			api, err := telegram.NewAPI(cfg.Telegram.Token)
			if err != nil {
				return fmt.Errorf("connect to telegram: %w", err)
			}
			a.Logger().Info("authorized on telegram", "bot", api.Self.UserName)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			poller := telegram.NewPoller(api, a.Dispatcher(), a.Logger(), telegram.Options{
				Workers:          workers,
				PollTimeout:      cfg.Telegram.PollTimeout,
				MaxMessageLength: cfg.Bot.MaxMessageLength,
			})
			return poller.Run(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().IntVar(&telegramWorkers, "workers", 0, "Concurrent update workers (overrides bot.workers)")
}

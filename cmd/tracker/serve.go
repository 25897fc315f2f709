package tracker

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
	"github.com/elstrm2/NutritionTracker/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat commands and reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			cfg := a.Config()
			addr := cfg.HTTP.Addr
			if serveAddr != "" {
				addr = serveAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			read, write := cfg.HTTPTimeouts()
			srv := httpapi.New(a.Dispatcher(), a.Tracker(), a.Ping, a.Logger(), cfg.Bot.MaxMessageLength)
			return srv.Run(ctx, addr, read, write)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
}

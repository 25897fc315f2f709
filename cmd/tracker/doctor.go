package tracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that daily totals match their entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			ctx := cmd.Context()
			report, err := a.Tracker().RunDoctor(ctx, doctorFix)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Users: %d\n", report.Users)
			fmt.Fprintf(out, "Daily totals checked: %d\n", report.AggregatesChecked)
			fmt.Fprintf(out, "Drifted fields: %d\n", len(report.Drift))
			for _, d := range report.Drift {
				fmt.Fprintf(out, "  user=%s day=%s %s stored=%g computed=%g\n", d.UserID, d.Day, d.Field, d.Stored, d.Computed)
			}
			if doctorFix {
				fmt.Fprintf(out, "Fixed daily totals: %d\n", report.FixedAggregates)
				// Re-check after fixes so exit status reflects final state.
				report, err = a.Tracker().RunDoctor(ctx, false)
				if err != nil {
					return err
				}
			}
			if len(report.Drift) > 0 {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rewrite drifted daily totals from their entries")
}

package tracker

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/elstrm2/NutritionTracker/internal/app"
)

var execUser string

var execCmd = &cobra.Command{
	Use:   "exec <command text>",
	Short: "Run one chat command as a user and print the reply",
	Example: `  nutritiontracker exec --user 42 /add_water 0.5
  nutritiontracker exec --user 42 "/add_food 150 10 5 20 porridge"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(execUser) == "" {
			return fmt.Errorf("--user is required")
		}
		return withApp(cmd, func(a *app.App) error {
			for _, chunk := range a.Exec(cmd.Context(), execUser, strings.Join(args, " ")) {
				fmt.Fprintln(cmd.OutOrStdout(), chunk)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().StringVar(&execUser, "user", "", "User identifier")
	execCmd.Flags().SetInterspersed(false)
}

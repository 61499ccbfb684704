package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Open the interactive dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-splash", false, "Skip the welcome screen")
	cmd.Flags().Duration("refresh", app.DefaultRefreshInterval, "How often the header stats are refreshed")
}

func init() {
	addTUIFlags(playCmd)
	addTUIFlags(rootCmd)
}

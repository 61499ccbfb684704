package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Gamified study tracker",
	Long: "Studyhall tracks the practice questions you finish each day, keeps your streak, " +
		"unlocks achievements and can ask an AI persona to cheer you on.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYHALL_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyhall/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(subjectCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(encourageCmd)
	rootCmd.AddCommand(personaCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(maintenanceCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/app"
	"github.com/abhisek/studyhall/internal/screen"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := openDeps(cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	skip, _ := cmd.Flags().GetBool("no-splash")
	refresh, _ := cmd.Flags().GetDuration("refresh")

	d.log.Info("starting tui", "db", d.dbPath)
	return app.Run(app.Options{
		Services: screen.Services{
			Study:     d.study,
			Engine:    d.engine,
			Encourage: d.enc,
			Log:       d.log,
		},
		SkipSplash:      skip,
		RefreshInterval: refresh,
	})
}

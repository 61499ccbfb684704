package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/store"
)

var encourageCmd = &cobra.Command{
	Use:   "encourage",
	Short: "Ask your AI persona for encouragement",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		personaID, _ := cmd.Flags().GetInt("persona")
		enc, err := d.enc.Generate(cmd.Context(), encourage.Request{Scene: encourage.SceneManual, PersonaID: personaID})
		if err != nil {
			if errors.Is(err, encourage.ErrNotConfigured) {
				return fmt.Errorf("%w: run `studyhall settings ai --platform <name> --key <key>`", err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "💬 %s: %s\n", enc.PersonaName, enc.Content)
		return nil
	}),
}

var encourageHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the latest encouragement messages",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		hist, err := d.enc.History(cmd.Context())
		if err != nil {
			return err
		}
		if len(hist) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No encouragement messages yet.")
			return nil
		}
		for _, e := range hist {
			printEncouragement(cmd, e)
		}
		return nil
	}),
}

var encourageTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a probe request with the current AI settings",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		reply, err := d.enc.TestConnection(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Connected: %s\n", reply)
		return nil
	}),
}

func printEncouragement(cmd *cobra.Command, e store.Encouragement) {
	scene := encourage.Scene(e.TriggerScene)
	fmt.Fprintf(cmd.OutOrStdout(), "%s  %s · %s\n  %s\n\n",
		e.CreatedAt.Local().Format("2006-01-02 15:04"), e.PersonaName, scene.DisplayName(),
		strings.ReplaceAll(e.Content, "\n", "\n  "))
}

func init() {
	encourageCmd.Flags().Int("persona", 0, "Persona ID (default: active persona)")
	encourageCmd.AddCommand(encourageHistoryCmd, encourageTestCmd)
}

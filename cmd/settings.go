package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/llm"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		ctx := cmd.Context()
		user, err := d.study.User(ctx)
		if err != nil {
			return err
		}
		cfg, err := d.enc.Config(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Database\t%s\n", d.dbPath)
		fmt.Fprintf(w, "Daily target\t%d\n", user.DailyTarget)
		fmt.Fprintf(w, "Total target\t%d\n", user.TotalTarget)
		if cfg.Platform == "" {
			fmt.Fprintf(w, "AI platform\t(not configured)\n")
		} else {
			fmt.Fprintf(w, "AI platform\t%s\n", llm.Platforms[cfg.Platform].DisplayName)
			fmt.Fprintf(w, "AI model\t%s\n", cfg.ResolvedModel())
			if u := cfg.ResolvedBaseURL(); u != "" {
				fmt.Fprintf(w, "AI endpoint\t%s\n", u)
			}
			fmt.Fprintf(w, "AI key\t%s\n", maskKey(cfg.APIKey))
		}
		return w.Flush()
	}),
}

var settingsAICmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure the AI platform used for encouragement",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		platform, _ := cmd.Flags().GetString("platform")
		key, _ := cmd.Flags().GetString("key")
		baseURL, _ := cmd.Flags().GetString("base-url")
		model, _ := cmd.Flags().GetString("model")

		if err := d.enc.SaveConfig(cmd.Context(), platform, key, baseURL, model); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s settings. Try `studyhall encourage test`.\n", llm.Platforms[platform].DisplayName)
		return nil
	}),
}

var settingsPlatformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported AI platforms",
	Run: func(cmd *cobra.Command, args []string) {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPLATFORM\tDEFAULT MODEL\tKEY ENV")
		names := llm.PlatformNames()
		sort.Strings(names)
		for _, n := range names {
			p := llm.Platforms[n]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.DisplayName, p.DefaultModel, p.KeyEnv)
		}
		w.Flush()
	},
}

func maskKey(k string) string {
	switch {
	case k == "":
		return "(none)"
	case len(k) <= 8:
		return "****"
	default:
		return k[:4] + "…" + k[len(k)-4:]
	}
}

func init() {
	settingsAICmd.Flags().String("platform", "", "Platform name (see `studyhall settings platforms`)")
	settingsAICmd.Flags().String("key", "", "API key")
	settingsAICmd.Flags().String("base-url", "", "Custom endpoint for OpenAI-compatible platforms")
	settingsAICmd.Flags().String("model", "", "Model override")
	settingsAICmd.MarkFlagRequired("platform")

	settingsCmd.AddCommand(settingsAICmd, settingsPlatformsCmd)
}

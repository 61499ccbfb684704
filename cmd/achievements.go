package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/achievements"
)

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach"},
	Short:   "List achievements and their unlock status",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		typ, _ := cmd.Flags().GetString("type")
		onlyUnlocked, _ := cmd.Flags().GetBool("unlocked")

		all, err := d.engine.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\t\tNAME\tTYPE\tRARITY\tSTATUS")
		for _, a := range all {
			if typ != "" && !strings.EqualFold(string(a.Type), typ) {
				continue
			}
			if onlyUnlocked && !a.Unlocked {
				continue
			}
			status := "locked"
			if a.Unlocked {
				status = "unlocked"
				if a.UnlockedAt != nil {
					status += " " + a.UnlockedAt.Local().Format("2006-01-02")
				}
				if a.Repeatable && a.Count > 1 {
					status += fmt.Sprintf(" x%d", a.Count)
				}
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Icon, a.Name, a.Type.DisplayName(), a.Rarity.DisplayName(), status)
		}
		return w.Flush()
	}),
}

var achievementsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one achievement and your progress towards it",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := d.engine.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		p, err := d.engine.AchievementProgress(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", a.Icon, a.Name)
		fmt.Fprintf(out, "%s\n", a.Description)
		fmt.Fprintf(out, "Type:     %s\n", a.Type.DisplayName())
		fmt.Fprintf(out, "Rarity:   %s %s\n", a.Rarity.Icon(), a.Rarity.DisplayName())
		if a.Repeatable {
			fmt.Fprintf(out, "Repeatable, earned %d times\n", a.Count)
		}
		fmt.Fprintf(out, "Progress: %d / %d (%d%%)", p.Current, p.Target, p.Progress)
		if !p.Unlocked {
			fmt.Fprintf(out, ", %d to go", p.Remaining)
		}
		fmt.Fprintln(out)
		return nil
	}),
}

var achievementsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show unlock counts by rarity",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		st, err := d.engine.Stats(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, r := range st.ByRarity {
			fmt.Fprintf(w, "%s %s\t%d / %d\n", r.Rarity.Icon(), r.Rarity.DisplayName(), r.Unlocked, r.Total)
		}
		fmt.Fprintf(w, "Total\t%d / %d (%d%%)\n", st.Unlocked, st.Total, st.CompletionRate)
		return w.Flush()
	}),
}

func init() {
	types := make([]string, 0, len(achievements.AllTypes()))
	for _, t := range achievements.AllTypes() {
		types = append(types, string(t))
	}
	achievementsCmd.Flags().String("type", "", "Filter by type: "+strings.Join(types, ", "))
	achievementsCmd.Flags().Bool("unlocked", false, "Only show unlocked achievements")

	achievementsCmd.AddCommand(achievementsShowCmd, achievementsStatsCmd)
}

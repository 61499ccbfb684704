package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/store"
)

var subjectCmd = &cobra.Command{
	Use:     "subject",
	Aliases: []string{"subjects"},
	Short:   "Manage subjects",
}

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subjects with today's progress",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		ctx := cmd.Context()
		subs, err := d.study.Subjects(ctx)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No subjects yet. Add one with `studyhall subject add <name>`.")
			return nil
		}

		agg := d.study.Aggregator()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSUBJECT\tTODAY\tDAILY\tTOTAL\tTARGET")
		for _, s := range subs {
			today, err := agg.SubjectTodayProgress(ctx, s.ID)
			if err != nil {
				return err
			}
			target := "-"
			if s.TotalTarget > 0 {
				target = fmt.Sprint(s.TotalTarget)
			}
			fmt.Fprintf(w, "%d\t%s %s\t%d\t%d\t%d\t%s\n", s.ID, s.Icon, s.Name, today.Current, s.DailyTarget, s.TotalCount, target)
		}
		return w.Flush()
	}),
}

var subjectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a subject",
	Args:  cobra.MinimumNArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		icon, _ := cmd.Flags().GetString("icon")
		color, _ := cmd.Flags().GetString("color")
		daily, _ := cmd.Flags().GetInt("daily")
		total, _ := cmd.Flags().GetInt("total")

		sub, err := d.study.AddSubject(cmd.Context(), store.NewSubject{
			Name:        strings.Join(args, " "),
			Icon:        icon,
			Color:       color,
			DailyTarget: daily,
			TotalTarget: total,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (#%d)\n", sub.Icon, sub.Name, sub.ID)
		return nil
	}),
}

var subjectRenameCmd = &cobra.Command{
	Use:   "rename <subject> <new name>",
	Short: "Rename a subject",
	Args:  cobra.MinimumNArgs(2),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		sub, err := d.resolveSubject(cmd, args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		if err := d.study.RenameSubject(cmd.Context(), sub.ID, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", sub.Name, name)
		return nil
	}),
}

var subjectTargetCmd = &cobra.Command{
	Use:   "target <subject>",
	Short: "Set a subject's daily and total targets",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		sub, err := d.resolveSubject(cmd, args[0])
		if err != nil {
			return err
		}
		daily, total := map[int]int{}, map[int]int{}
		if cmd.Flags().Changed("daily") {
			daily[sub.ID], _ = cmd.Flags().GetInt("daily")
		}
		if cmd.Flags().Changed("total") {
			total[sub.ID], _ = cmd.Flags().GetInt("total")
		}
		if len(daily) == 0 && len(total) == 0 {
			return fmt.Errorf("nothing to change: pass --daily and/or --total")
		}
		if err := d.study.SaveGoals(cmd.Context(), daily, total); err != nil {
			return err
		}
		user, err := d.study.User(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved. Overall daily target is now %d.\n", user.DailyTarget)
		return nil
	}),
}

var subjectDeleteCmd = &cobra.Command{
	Use:   "delete <subject>",
	Short: "Delete a subject and all its records",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		sub, err := d.resolveSubject(cmd, args[0])
		if err != nil {
			return err
		}
		if err := confirmed(cmd, fmt.Sprintf("deleting %s and its %d questions", sub.Name, sub.TotalCount)); err != nil {
			return err
		}
		if err := d.study.DeleteSubject(cmd.Context(), sub.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", sub.Name)
		return nil
	}),
}

func init() {
	subjectAddCmd.Flags().String("icon", "", "Emoji icon")
	subjectAddCmd.Flags().String("color", "", "Hex color, e.g. #4A7FFF")
	subjectAddCmd.Flags().Int("daily", store.DefaultDailyTarget, "Daily question target")
	subjectAddCmd.Flags().Int("total", 0, "Total question target (0 for none)")

	subjectTargetCmd.Flags().Int("daily", 0, "Daily question target")
	subjectTargetCmd.Flags().Int("total", 0, "Total question target (0 for none)")

	subjectDeleteCmd.Flags().Bool("yes", false, "Confirm deletion")

	subjectCmd.AddCommand(subjectListCmd, subjectAddCmd, subjectRenameCmd, subjectTargetCmd, subjectDeleteCmd)
}

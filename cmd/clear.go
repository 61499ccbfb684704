package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded study data",
}

var clearTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Delete today's records",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		if err := confirmed(cmd, "clearing today's records"); err != nil {
			return err
		}
		n, err := d.study.ClearToday(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records from today.\n", n)
		return nil
	}),
}

var clearSubjectCmd = &cobra.Command{
	Use:   "subject <subject>",
	Short: "Delete all records of one subject",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		sub, err := d.resolveSubject(cmd, args[0])
		if err != nil {
			return err
		}
		if err := confirmed(cmd, "clearing "+sub.Name); err != nil {
			return err
		}
		n, err := d.study.ClearSubject(cmd.Context(), sub.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records of %s.\n", n, sub.Name)
		return nil
	}),
}

var clearAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete every record and achievement unlock",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		if err := confirmed(cmd, "clearing all study data"); err != nil {
			return err
		}
		if err := d.study.ClearAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All study data cleared. Subjects and settings were kept.")
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{clearTodayCmd, clearSubjectCmd, clearAllCmd} {
		c.Flags().Bool("yes", false, "Confirm deletion")
		clearCmd.AddCommand(c)
	}
}

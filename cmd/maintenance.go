package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/achievements"
)

var maintenanceCmd = &cobra.Command{
	Use:     "maintenance",
	Aliases: []string{"maint"},
	Short:   "Repair, verify and move data",
}

var maintReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute subject totals from their records",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		drifted, err := d.study.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(drifted) == 0 {
			fmt.Fprintln(out, "All subject totals match their records.")
			return nil
		}
		for _, dr := range drifted {
			fmt.Fprintf(out, "repaired %s\n", dr)
		}
		return nil
	}),
}

var maintVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that subject totals match their records",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		if err := d.study.VerifyTotals(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return nil
	}),
}

var maintResetCatalogCmd = &cobra.Command{
	Use:   "reset-catalog",
	Short: "Replace the achievement catalog with the presets and drop all unlocks",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		if err := confirmed(cmd, "resetting the achievement catalog"); err != nil {
			return err
		}
		if err := d.engine.ResetCatalog(cmd.Context(), achievements.Presets()); err != nil {
			return err
		}
		unlocks, err := d.engine.CheckAchievements(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Catalog reset; %d achievements re-earned from your history.\n", len(unlocks))
		return nil
	}),
}

var maintLoadCatalogCmd = &cobra.Command{
	Use:   "load-catalog <file.json>",
	Short: "Replace the achievement catalog with one loaded from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		defs, err := achievements.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		if err := confirmed(cmd, "replacing the achievement catalog"); err != nil {
			return err
		}
		if err := d.engine.ResetCatalog(cmd.Context(), defs); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d achievements.\n", len(defs))
		return nil
	}),
}

var maintImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import date,subject,count rows",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		sum, err := d.study.Import(cmd.Context(), f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Imported %d records (%d questions).\n", sum.Records, sum.Questions)
		for _, name := range sum.CreatedSubjects {
			fmt.Fprintf(out, "  new subject: %s\n", name)
		}
		unlocks, err := d.engine.CheckAchievements(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range unlocks {
			fmt.Fprintf(out, "🏆 %s\n", describeUnlock(u))
		}
		return nil
	}),
}

var maintExportCmd = &cobra.Command{
	Use:   "export [file.csv]",
	Short: "Export all records as CSV (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		var w io.Writer = cmd.OutOrStdout()
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		n, err := d.study.Export(cmd.Context(), w)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", n, args[0])
		}
		return nil
	}),
}

func init() {
	maintResetCatalogCmd.Flags().Bool("yes", false, "Confirm reset")
	maintLoadCatalogCmd.Flags().Bool("yes", false, "Confirm replacement")

	maintenanceCmd.AddCommand(maintReconcileCmd, maintVerifyCmd, maintResetCatalogCmd,
		maintLoadCatalogCmd, maintImportCmd, maintExportCmd)
}

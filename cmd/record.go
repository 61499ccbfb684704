package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/achievements"
	"github.com/abhisek/studyhall/internal/encourage"
	"github.com/abhisek/studyhall/internal/study"
)

var recordCmd = &cobra.Command{
	Use:   "record <subject> <count>",
	Short: "Record finished practice questions for today",
	Args:  cobra.ExactArgs(2),
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		sub, err := d.resolveSubject(cmd, args[0])
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[1])
		}

		res, err := d.study.AddRecord(cmd.Context(), sub.ID, count)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printSubmit(out, res)

		if quiet, _ := cmd.Flags().GetBool("no-encourage"); quiet {
			return nil
		}
		req, ok := res.EncouragementRequest()
		if !ok {
			return nil
		}
		enc, err := d.enc.Generate(cmd.Context(), req)
		switch {
		case errors.Is(err, encourage.ErrNotConfigured):
			return nil
		case err != nil:
			fmt.Fprintf(out, "\n(encouragement unavailable: %v)\n", err)
			return nil
		}
		fmt.Fprintf(out, "\n💬 %s: %s\n", enc.PersonaName, enc.Content)
		return nil
	}),
}

func printSubmit(out io.Writer, res *study.SubmitResult) {
	fmt.Fprintf(out, "%s %s +%d (today %d, total %d)\n",
		res.Subject.Icon, res.Subject.Name, res.Count, res.Record.Count, res.Subject.TotalCount)
	fmt.Fprintf(out, "Today:  %d / %d (%d%%)\n", res.Today.Current, res.Today.Target, res.Today.Percentage)
	fmt.Fprintf(out, "Streak: %d days\n", res.Streak)
	fmt.Fprintf(out, "Level:  %d %s (%d%% to next)\n", res.Level.Level, res.Level.Title, res.Level.ProgressToNext)
	for _, u := range res.Unlocked {
		fmt.Fprintf(out, "🏆 %s\n", describeUnlock(u))
	}
}

func describeUnlock(u achievements.Unlock) string {
	a := u.Achievement
	s := fmt.Sprintf("%s %s [%s] %s", a.Icon, a.Name, a.Rarity.DisplayName(), a.Description)
	if !u.IsFirst {
		s += fmt.Sprintf(" (x%d)", u.Count)
	}
	return s
}

func init() {
	recordCmd.Flags().Bool("no-encourage", false, "Do not request an encouragement message")
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/progress"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show study statistics",
	RunE: withDeps(func(cmd *cobra.Command, args []string, d *deps) error {
		ctx := cmd.Context()
		agg := d.study.Aggregator()
		out := cmd.OutOrStdout()

		if date, _ := cmd.Flags().GetString("date"); date != "" {
			detail, err := agg.DateDetail(ctx, date)
			if err != nil {
				return err
			}
			printDateDetail(out, detail)
			return nil
		}

		ov, err := agg.Overview(ctx)
		if err != nil {
			return err
		}
		printOverview(out, ov)

		if show, _ := cmd.Flags().GetBool("week"); show {
			tr, err := agg.WeeklyTrend(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nThis week")
			printTrend(out, tr)
		}
		if show, _ := cmd.Flags().GetBool("month"); show {
			tr, err := agg.MonthlyTrend(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nThis month")
			printTrend(out, tr)
		}
		if show, _ := cmd.Flags().GetBool("subjects"); show {
			shares, err := agg.SubjectDistribution(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nBy subject")
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, s := range shares {
				fmt.Fprintf(w, "%s %s\t%d\t%d%%\n", s.Icon, s.Name, s.Count, s.Percentage)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		if days, _ := cmd.Flags().GetInt("heatmap"); days > 0 {
			cells, err := agg.Heatmap(ctx, days)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nActivity")
			printHeatmap(out, cells)
		}
		return nil
	}),
}

func printOverview(out io.Writer, ov progress.Overview) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Today\t%d / %d (%d%%)\n", ov.Today.Current, ov.Today.Target, ov.Today.Percentage)
	fmt.Fprintf(w, "Total\t%d questions (%s)\n", ov.Total, ov.StudyTime)
	fmt.Fprintf(w, "Level\t%d %s, %d to next\n", ov.Level.Level, ov.Level.Title, ov.Level.Remaining)
	fmt.Fprintf(w, "Streak\t%d days (best %d)\n", ov.Streak, ov.BestStreak)
	fmt.Fprintf(w, "Days studied\t%d\n", ov.DaysStudied)
	if ov.LastStudied != "" {
		fmt.Fprintf(w, "Last studied\t%s\n", ov.LastStudied)
	}
	fmt.Fprintf(w, "This week\t%d (%.1f/day)\n", ov.WeekTotal, ov.WeekAvg)
	fmt.Fprintf(w, "This month\t%d (%.1f/day)\n", ov.MonthTotal, ov.MonthAvg)
	fmt.Fprintf(w, "Subjects\t%d\n", ov.SubjectCount)
	w.Flush()
}

func printTrend(out io.Writer, tr progress.Trend) {
	peak := 1
	for _, d := range tr.Days {
		peak = max(peak, d.Count)
	}
	for _, d := range tr.Days {
		marker := " "
		if d.IsToday {
			marker = "*"
		}
		bar := strings.Repeat("█", d.Count*30/peak)
		fmt.Fprintf(out, "%s %s %-30s %d\n", marker, d.Date, bar, d.Count)
	}
	fmt.Fprintf(out, "  total %d, %.1f/day\n", tr.Total, tr.AvgDaily)
}

var heatGlyphs = map[int]string{progress.HeatNone: "·", progress.HeatStudied: "▪", progress.HeatGoalDone: "█"}

// printHeatmap prints one row per weekday, one column per week.
func printHeatmap(out io.Writer, cells []progress.HeatCell) {
	if len(cells) == 0 {
		return
	}
	lead := int(cells[0].Weekday)
	rows := make([]strings.Builder, 7)
	for i := range lead {
		rows[i].WriteString(" ")
	}
	for _, c := range cells {
		rows[c.Weekday].WriteString(heatGlyphs[c.Level])
	}
	for i := range rows {
		fmt.Fprintln(out, rows[i].String())
	}
}

func printDateDetail(out io.Writer, d progress.DateDetail) {
	if len(d.Records) == 0 {
		fmt.Fprintf(out, "Nothing recorded on %s.\n", d.Date)
		return
	}
	fmt.Fprintf(out, "%s: %d questions (%s)\n", d.Date, d.Total, d.StudyTime)
	for _, r := range d.Records {
		fmt.Fprintf(out, "  %s %s  %d\n", r.SubjectIcon, r.SubjectName, r.Count)
	}
}

func init() {
	statsCmd.Flags().Bool("week", false, "Show this week's daily totals")
	statsCmd.Flags().Bool("month", false, "Show this month's daily totals")
	statsCmd.Flags().Bool("subjects", false, "Show the distribution across subjects")
	statsCmd.Flags().Int("heatmap", 0, "Show an activity heatmap for the last N days")
	statsCmd.Flags().String("date", "", "Show the records of one date (YYYY-MM-DD)")
}

package progress

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

// MinutesPerQuestion is the study time estimate per question.
const MinutesPerQuestion = 3

// HeatmapDays is the default heatmap window.
const HeatmapDays = 365

// Heatmap cell levels.
const (
	HeatNone     = 0
	HeatStudied  = 1
	HeatGoalDone = 2
)

// HeatCell is one day of the activity heatmap.
type HeatCell struct {
	Date      string       `json:"date"`
	Weekday   time.Weekday `json:"weekday"`
	Count     int          `json:"count"`
	Level     int          `json:"level"`
	TargetMet bool         `json:"target_met"`
}

// DayCount is one day of a trend.
type DayCount struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	IsToday bool   `json:"is_today"`
}

// Trend is a run of days with a total and a per-day average.
type Trend struct {
	Start    string     `json:"start"`
	Days     []DayCount `json:"days"`
	Total    int        `json:"total"`
	AvgDaily float64    `json:"avg_daily"`
}

// SubjectShare is one subject's share of the grand total.
type SubjectShare struct {
	SubjectID  int    `json:"subject_id"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// DateDetail lists what was studied on one date.
type DateDetail struct {
	Date      string               `json:"date"`
	Total     int                  `json:"total"`
	StudyTime string               `json:"study_time"`
	Records   []store.RecordDetail `json:"records"`
}

// Overview is the dashboard summary.
type Overview struct {
	Total        int           `json:"total"`
	Today        TodayProgress `json:"today"`
	Streak       int           `json:"streak"`
	BestStreak   int           `json:"best_streak"`
	DaysStudied  int           `json:"days_studied"`
	LastStudied  string        `json:"last_studied,omitempty"`
	Level        LevelInfo     `json:"level"`
	StudyTime    string        `json:"study_time"`
	WeekTotal    int           `json:"week_total"`
	WeekAvg      float64       `json:"week_avg"`
	MonthTotal   int           `json:"month_total"`
	MonthAvg     float64       `json:"month_avg"`
	SubjectCount int           `json:"subject_count"`
}

// LastStudyDate returns the latest record date, or "" with no records.
func (a *Aggregator) LastStudyDate(ctx context.Context) (string, error) {
	dates, err := a.sess.Records().DistinctDates(ctx)
	if err != nil || len(dates) == 0 {
		return "", err
	}
	return dates[0], nil
}

// DaysSinceLastStudy returns the days between the latest record date and
// today, or 0 when nothing was ever recorded.
func (a *Aggregator) DaysSinceLastStudy(ctx context.Context) (int, error) {
	last, err := a.LastStudyDate(ctx)
	if err != nil || last == "" {
		return 0, err
	}
	return max(0, DaysBetween(last, a.Today())), nil
}

// BestStreak returns the longest streak ever recorded.
func (a *Aggregator) BestStreak(ctx context.Context) (int, error) {
	dates, err := a.sess.Records().DistinctDates(ctx)
	if err != nil {
		return 0, err
	}
	return BestStreak(dates), nil
}

// TotalDaysStudied returns the number of distinct record dates.
func (a *Aggregator) TotalDaysStudied(ctx context.Context) (int, error) {
	dates, err := a.sess.Records().DistinctDates(ctx)
	if err != nil {
		return 0, err
	}
	return len(dates), nil
}

// Heatmap returns one cell per day for the days ending today, oldest
// first.
func (a *Aggregator) Heatmap(ctx context.Context, days int) ([]HeatCell, error) {
	if days <= 0 {
		days = HeatmapDays
	}
	today := a.Today()
	start := ShiftDay(today, -(days - 1))

	counts, err := a.dailyCounts(ctx, start, today)
	if err != nil {
		return nil, err
	}
	user, err := a.sess.Users().Get(ctx)
	if err != nil {
		return nil, err
	}

	cells := make([]HeatCell, 0, days)
	for i := range days {
		date := ShiftDay(start, i)
		count := counts[date]
		cell := HeatCell{Date: date, Weekday: weekday(date), Count: count}
		switch {
		case count == 0:
			cell.Level = HeatNone
		case count < user.DailyTarget:
			cell.Level = HeatStudied
		default:
			cell.Level = HeatGoalDone
			cell.TargetMet = true
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// WeeklyTrend returns the current Monday-start week.
func (a *Aggregator) WeeklyTrend(ctx context.Context) (Trend, error) {
	today := a.Today()
	// Monday is day 0 of the week.
	offset := (int(weekday(today)) + 6) % 7
	return a.trend(ctx, ShiftDay(today, -offset), 7)
}

// MonthlyTrend returns the current calendar month.
func (a *Aggregator) MonthlyTrend(ctx context.Context) (Trend, error) {
	now := a.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	return a.trend(ctx, first.Format(store.DateLayout), days)
}

func (a *Aggregator) trend(ctx context.Context, start string, days int) (Trend, error) {
	end := ShiftDay(start, days-1)
	counts, err := a.dailyCounts(ctx, start, end)
	if err != nil {
		return Trend{}, err
	}

	today := a.Today()
	tr := Trend{Start: start, Days: make([]DayCount, 0, days)}
	for i := range days {
		date := ShiftDay(start, i)
		tr.Days = append(tr.Days, DayCount{Date: date, Count: counts[date], IsToday: date == today})
		tr.Total += counts[date]
	}
	tr.AvgDaily = round1(float64(tr.Total) / float64(days))
	return tr, nil
}

// SubjectDistribution returns each active subject's share of the grand
// total, largest first.
func (a *Aggregator) SubjectDistribution(ctx context.Context) ([]SubjectShare, error) {
	subs, err := a.sess.Subjects().ListActive(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, s := range subs {
		total += s.TotalCount
	}

	out := make([]SubjectShare, 0, len(subs))
	for _, s := range subs {
		share := SubjectShare{SubjectID: s.ID, Name: s.Name, Icon: s.Icon, Color: s.Color, Count: s.TotalCount}
		if total > 0 {
			share.Percentage = s.TotalCount * 100 / total
		}
		out = append(out, share)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// DateDetail returns the records of one date.
func (a *Aggregator) DateDetail(ctx context.Context, date string) (DateDetail, error) {
	if _, err := time.Parse(store.DateLayout, date); err != nil {
		return DateDetail{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
	}
	recs, err := a.sess.Records().OnDate(ctx, date)
	if err != nil {
		return DateDetail{}, err
	}
	d := DateDetail{Date: date, Records: recs}
	for _, r := range recs {
		d.Total += r.Count
	}
	d.StudyTime = FormatStudyTime(d.Total)
	return d, nil
}

// Overview gathers the dashboard summary.
func (a *Aggregator) Overview(ctx context.Context) (Overview, error) {
	var ov Overview
	var err error

	if ov.Total, err = a.TotalCount(ctx); err != nil {
		return ov, err
	}
	if ov.Today, err = a.TodayProgress(ctx); err != nil {
		return ov, err
	}
	dates, err := a.sess.Records().DistinctDates(ctx)
	if err != nil {
		return ov, err
	}
	ov.Streak = Streak(dates, a.Today())
	ov.BestStreak = BestStreak(dates)
	ov.DaysStudied = len(dates)
	if len(dates) > 0 {
		ov.LastStudied = dates[0]
	}
	ov.Level = ComputeLevel(ov.Total)
	ov.StudyTime = FormatStudyTime(ov.Total)

	week, err := a.WeeklyTrend(ctx)
	if err != nil {
		return ov, err
	}
	ov.WeekTotal, ov.WeekAvg = week.Total, week.AvgDaily

	month, err := a.MonthlyTrend(ctx)
	if err != nil {
		return ov, err
	}
	ov.MonthTotal, ov.MonthAvg = month.Total, month.AvgDaily

	subs, err := a.sess.Subjects().ListActive(ctx)
	if err != nil {
		return ov, err
	}
	ov.SubjectCount = len(subs)
	return ov, nil
}

// FormatStudyTime renders the estimated time for count questions as
// "Xh Ym", or "Ym" under an hour.
func FormatStudyTime(count int) string {
	minutes := count * MinutesPerQuestion
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func (a *Aggregator) dailyCounts(ctx context.Context, from, to string) (map[string]int, error) {
	totals, err := a.sess.Records().DailyTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(totals))
	for _, t := range totals {
		counts[t.Date] = t.Total
	}
	return counts, nil
}

func weekday(date string) time.Weekday {
	t, err := time.Parse(store.DateLayout, date)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

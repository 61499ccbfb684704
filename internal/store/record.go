package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// StudyRecord is the cumulative count for one subject on one date.
type StudyRecord struct {
	ID         int       `db:"id"`
	SubjectID  int       `db:"subject_id"`
	Count      int       `db:"count"`
	RecordDate string    `db:"record_date"`
	CreatedAt  time.Time `db:"created_at"`
}

// RecordDetail is a study record joined with its subject.
type RecordDetail struct {
	StudyRecord
	SubjectName  string `db:"subject_name"`
	SubjectIcon  string `db:"subject_icon"`
	SubjectColor string `db:"subject_color"`
}

// DayTotal is the sum of all subjects' counts on one date.
type DayTotal struct {
	Date  string `db:"record_date"`
	Total int    `db:"total"`
}

// SubjectSum is the sum of a subject's study records.
type SubjectSum struct {
	SubjectID int `db:"subject_id"`
	Total     int `db:"total"`
}

// RecordRepo manages study records.
type RecordRepo struct{ s *Session }

// Add adds count to the (subject, date) record, creating it on the first
// write of the day, and increments the subject's total_count by the same
// amount. Both writes must share a transaction: call Add on a Session
// obtained from Store.InTx.
func (r *RecordRepo) Add(ctx context.Context, subjectID, count int, date string) (StudyRecord, error) {
	_, err := r.s.execRaw(ctx, `
		INSERT INTO study_records (subject_id, count, record_date, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(subject_id, record_date) DO UPDATE SET count = count + excluded.count`,
		subjectID, count, date, r.s.now())
	if err != nil {
		return StudyRecord{}, fmt.Errorf("upsert study record: %w", err)
	}

	if err := r.s.Subjects().AddToTotal(ctx, subjectID, count); err != nil {
		return StudyRecord{}, err
	}

	return r.Get(ctx, subjectID, date)
}

// Insert creates a record without upsert semantics. A second record for
// the same (subject, date) is an ErrInvariantViolation. Imports use this
// path; interactive writes go through Add.
func (r *RecordRepo) Insert(ctx context.Context, subjectID, count int, date string) (StudyRecord, error) {
	_, err := r.s.insert(ctx, entsql.Insert("study_records").
		Columns("subject_id", "count", "record_date", "created_at").
		Values(subjectID, count, date, r.s.now()))
	if err != nil {
		if isUniqueViolation(err) {
			return StudyRecord{}, fmt.Errorf("study record for subject %d on %s: %w", subjectID, date, ErrInvariantViolation)
		}
		return StudyRecord{}, fmt.Errorf("insert study record: %w", err)
	}
	if err := r.s.Subjects().AddToTotal(ctx, subjectID, count); err != nil {
		return StudyRecord{}, err
	}
	return r.Get(ctx, subjectID, date)
}

// Get returns the record for subject on date, or ErrNotFound.
func (r *RecordRepo) Get(ctx context.Context, subjectID int, date string) (StudyRecord, error) {
	var rec StudyRecord
	err := r.s.get(ctx, &rec, entsql.Select("*").
		From(entsql.Table("study_records")).
		Where(entsql.And(entsql.EQ("subject_id", subjectID), entsql.EQ("record_date", date))))
	if err != nil {
		return StudyRecord{}, notFound(err, "study record", fmt.Sprintf("%d@%s", subjectID, date))
	}
	return rec, nil
}

// SumOn returns the sum of all counts recorded on date.
func (r *RecordRepo) SumOn(ctx context.Context, date string) (int, error) {
	var total int
	err := r.s.getRaw(ctx, &total, "SELECT COALESCE(SUM(count), 0) FROM study_records WHERE record_date = ?", date)
	if err != nil {
		return 0, fmt.Errorf("sum records on %s: %w", date, err)
	}
	return total, nil
}

// SubjectSumOn returns the count recorded for one subject on date.
func (r *RecordRepo) SubjectSumOn(ctx context.Context, subjectID int, date string) (int, error) {
	var total int
	err := r.s.getRaw(ctx, &total,
		"SELECT COALESCE(SUM(count), 0) FROM study_records WHERE subject_id = ? AND record_date = ?",
		subjectID, date)
	if err != nil {
		return 0, fmt.Errorf("sum subject records on %s: %w", date, err)
	}
	return total, nil
}

// DistinctDates returns every date with at least one record, newest first.
func (r *RecordRepo) DistinctDates(ctx context.Context) ([]string, error) {
	var dates []string
	err := r.s.selectRaw(ctx, &dates, "SELECT DISTINCT record_date FROM study_records ORDER BY record_date DESC")
	if err != nil {
		return nil, fmt.Errorf("distinct record dates: %w", err)
	}
	return dates, nil
}

// DailyTotals returns per-date sums for dates in [from, to], oldest first.
// Dates without records are omitted.
func (r *RecordRepo) DailyTotals(ctx context.Context, from, to string) ([]DayTotal, error) {
	var out []DayTotal
	err := r.s.selectRaw(ctx, &out, `
		SELECT record_date, SUM(count) AS total
		FROM study_records
		WHERE record_date >= ? AND record_date <= ?
		GROUP BY record_date
		ORDER BY record_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return out, nil
}

// SumsBySubject returns the sum of records per subject, for every subject
// that has records.
func (r *RecordRepo) SumsBySubject(ctx context.Context) ([]SubjectSum, error) {
	var out []SubjectSum
	err := r.s.selectRaw(ctx, &out, `
		SELECT subject_id, SUM(count) AS total
		FROM study_records
		GROUP BY subject_id
		ORDER BY subject_id`)
	if err != nil {
		return nil, fmt.Errorf("sums by subject: %w", err)
	}
	return out, nil
}

// OnDate returns the records of one date joined with subject display data.
func (r *RecordRepo) OnDate(ctx context.Context, date string) ([]RecordDetail, error) {
	var out []RecordDetail
	err := r.s.selectRaw(ctx, &out, `
		SELECT r.id, r.subject_id, r.count, r.record_date, r.created_at,
		       s.name AS subject_name, s.icon AS subject_icon, s.color AS subject_color
		FROM study_records r
		JOIN subjects s ON s.id = r.subject_id
		WHERE r.record_date = ?
		ORDER BY r.count DESC, s.name`, date)
	if err != nil {
		return nil, fmt.Errorf("records on %s: %w", date, err)
	}
	return out, nil
}

// All returns every record joined with subject display data, oldest
// first.
func (r *RecordRepo) All(ctx context.Context) ([]RecordDetail, error) {
	var out []RecordDetail
	err := r.s.selectRaw(ctx, &out, `
		SELECT r.id, r.subject_id, r.count, r.record_date, r.created_at,
		       s.name AS subject_name, s.icon AS subject_icon, s.color AS subject_color
		FROM study_records r
		JOIN subjects s ON s.id = r.subject_id
		ORDER BY r.record_date, s.name`)
	if err != nil {
		return nil, fmt.Errorf("all records: %w", err)
	}
	return out, nil
}

// DeleteOn removes all records of one date. Callers adjust subject
// totals first in the same transaction.
func (r *RecordRepo) DeleteOn(ctx context.Context, date string) (int64, error) {
	n, err := r.s.exec(ctx, entsql.Delete("study_records").Where(entsql.EQ("record_date", date)))
	if err != nil {
		return 0, fmt.Errorf("delete records on %s: %w", date, err)
	}
	return n, nil
}

// DeleteForSubject removes all records of one subject.
func (r *RecordRepo) DeleteForSubject(ctx context.Context, subjectID int) (int64, error) {
	n, err := r.s.exec(ctx, entsql.Delete("study_records").Where(entsql.EQ("subject_id", subjectID)))
	if err != nil {
		return 0, fmt.Errorf("delete records for subject %d: %w", subjectID, err)
	}
	return n, nil
}

// DeleteAll removes every study record.
func (r *RecordRepo) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.s.exec(ctx, entsql.Delete("study_records"))
	if err != nil {
		return 0, fmt.Errorf("delete all records: %w", err)
	}
	return n, nil
}

package study

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

var csvHeader = []string{"date", "subject", "count"}

// ImportSummary reports what an import wrote.
type ImportSummary struct {
	Records         int
	Questions       int
	CreatedSubjects []string
}

// Export writes every record as date,subject,count CSV rows.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	recs, err := s.st.Session().Records().All(ctx)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, r := range recs {
		if err := cw.Write([]string{r.RecordDate, r.SubjectName, strconv.Itoa(r.Count)}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(recs), cw.Error()
}

// Import reads date,subject,count CSV rows and inserts them in one
// transaction. Unknown subjects are created. A row for a (subject, date)
// pair that already has a record is store.ErrInvariantViolation and
// nothing is written.
func (s *Service) Import(ctx context.Context, r io.Reader) (ImportSummary, error) {
	rows, err := readRows(r)
	if err != nil {
		return ImportSummary{}, err
	}

	var sum ImportSummary
	err = s.st.InTx(ctx, func(tx *store.Session) error {
		ids := map[string]int{}
		for _, row := range rows {
			id, ok := ids[row.subject]
			if !ok {
				sub, err := tx.Subjects().GetByName(ctx, row.subject)
				if errors.Is(err, store.ErrNotFound) {
					sub, err = tx.Subjects().Create(ctx, store.NewSubject{Name: row.subject})
					sum.CreatedSubjects = append(sum.CreatedSubjects, row.subject)
				}
				if err != nil {
					return err
				}
				id = sub.ID
				ids[row.subject] = id
			}
			if _, err := tx.Records().Insert(ctx, id, row.count, row.date); err != nil {
				return fmt.Errorf("line %d: %w", row.line, err)
			}
			sum.Records++
			sum.Questions += row.count
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	s.log.Info("records imported", "records", sum.Records, "questions", sum.Questions)
	return sum, nil
}

type importRow struct {
	line    int
	date    string
	subject string
	count   int
}

func readRows(r io.Reader) ([]importRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)
	cr.TrimLeadingSpace = true

	var rows []importRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 {
			// Spreadsheet exports often start with a byte order mark.
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
			if strings.EqualFold(rec[0], csvHeader[0]) {
				continue
			}
		}

		date := strings.TrimSpace(rec[0])
		if _, err := time.Parse(store.DateLayout, date); err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, date)
		}
		subject := strings.TrimSpace(rec[1])
		if subject == "" {
			return nil, fmt.Errorf("line %d: empty subject", line)
		}
		count, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("line %d: invalid count %q", line, rec[2])
		}
		rows = append(rows, importRow{line: line, date: date, subject: subject, count: count})
	}
	return rows, nil
}

package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

// Service reconstructs a chat result as CSV. The candidate SQL is replayed
// from the client and therefore fully untrusted; it passes the same gate as
// chat queries, but with caller limits stripped so the export always gets
// the full capped row set.
type Service struct {
	db       *database.DB
	rowLimit int
}

func NewService(db *database.DB, rowLimit int) *Service {
	if rowLimit <= 0 {
		rowLimit = sqlgate.DefaultExportCeiling
	}
	return &Service{db: db, rowLimit: rowLimit}
}

// RowLimit returns the export row ceiling.
func (s *Service) RowLimit() int { return s.rowLimit }

// Stream validates the candidate, executes it, and writes the result to w as
// CSV (header row first). It returns the number of data rows written. Rows
// are streamed, never materialized; a write failure (client gone) aborts the
// query via the context.
func (s *Service) Stream(ctx context.Context, rawSQL string, params map[string]interface{}, w io.Writer) (int, error) {
	validated, err := sqlgate.Validate(
		sqlgate.CandidateQuery{SQL: rawSQL, Label: "export"},
		sqlgate.Options{Ceiling: s.rowLimit, StripLimit: true},
	)
	if err != nil {
		return 0, err
	}

	rows, cancel, err := s.db.QueryRows(ctx, validated.SQL(), params)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return 0, err
	}

	written := 0
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	record := make([]string, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return written, err
		}
		for i, v := range values {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return written, err
		}
		written++

		// Flush periodically so large exports stream instead of buffering.
		if written%500 == 0 {
			cw.Flush()
			if err := cw.Error(); err != nil {
				return written, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return written, err
	}

	cw.Flush()
	return written, cw.Error()
}

func formatCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(c)
	case string:
		return c
	case time.Time:
		return c.Format("2006-01-02 15:04:05")
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(c, 10)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// internal/analytics/dataset/postgres.go
package dataset

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresSource reads the earnings table from a PostgreSQL table whose column
// names match the CSV headers (case-insensitive).
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

func NewPostgresSource(db *sqlx.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

func (s *PostgresSource) Load(ctx context.Context) (Frame, error) {
	query := fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(s.table))

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read columns: %w", err)
	}

	if len(names) == 0 {
		return Frame{}, ErrEmptySource
	}
	frame := Frame{Columns: headerColumns(names)}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return Frame{}, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make([]string, len(values))
		for j, v := range values {
			rec[j] = cellString(v)
		}
		frame.Records = append(frame.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Frame{}, fmt.Errorf("row iteration failed: %w", err)
	}

	return frame, nil
}

// cellString renders a driver value the way it would appear in the CSV file.
// NULL becomes the empty string, which the cleaner treats as missing.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// internal/analytics/dataset/csv.go
package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// CSVSource reads the earnings table from a CSV file with a header row.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.Path
}

func (s *CSVSource) Load(ctx context.Context) (Frame, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return Frame{}, fmt.Errorf("data file not found: %w", err)
	}
	defer f.Close()

	return ReadCSV(ctx, f)
}

// ReadCSV keeps every column. Recognised headers are mapped onto their
// canonical Column names.
func ReadCSV(ctx context.Context, r io.Reader) (Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Frame{}, ErrEmptySource
	}
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	frame := Frame{Columns: headerColumns(header)}

	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Frame{}, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		out := make([]string, len(header))
		copy(out, rec)
		frame.Records = append(frame.Records, out)
	}

	return frame, nil
}

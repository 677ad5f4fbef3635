// internal/analytics/dataset/clean.go
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type CleanOptions struct {
	RequiredColumns []Column
	// OutlierQuantile drops earnings above this quantile. 0 disables the filter.
	OutlierQuantile float64
}

// CleanReport counts what Build changed.
type CleanReport struct {
	SourceRows int            `json:"sourceRows"`
	Duplicates int            `json:"duplicates"`
	Filled     map[Column]int `json:"filled"`
	Outliers   int            `json:"outliers"`
	Rows       int            `json:"rows"`
}

// Build validates a raw frame and turns it into a cleaned Table: duplicates are
// dropped, bad numeric cells take the column median, empty categorical cells
// become "unknown" and earnings outliers are removed.
func Build(frame Frame, opts CleanOptions) (*Table, CleanReport, error) {
	report := CleanReport{SourceRows: len(frame.Records), Filled: map[Column]int{}}

	index := make(map[Column]int, len(frame.Columns))
	var known []Column
	for i, c := range frame.Columns {
		if _, ok := KnownColumn(string(c)); !ok {
			continue
		}
		if _, dup := index[c]; !dup {
			index[c] = i
			known = append(known, c)
		}
	}

	required := opts.RequiredColumns
	if len(required) == 0 {
		required = DefaultRequiredColumns
	}
	var missing []string
	for _, c := range required {
		if _, ok := index[c]; !ok {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return nil, report, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	// Duplicates are judged on the whole source record, unknown columns included.
	records := dropDuplicates(frame.Records)
	report.Duplicates = len(frame.Records) - len(records)

	rows := make([]Row, len(records))

	for _, col := range numericColumns {
		i, ok := index[col]
		if !ok {
			continue
		}
		values, filled := fillNumeric(records, i)
		report.Filled[col] = filled
		for r, v := range values {
			setNumeric(&rows[r], col, v)
		}
	}

	for _, col := range categoricalColumns {
		i, ok := index[col]
		if !ok {
			continue
		}
		for r, rec := range records {
			v := strings.TrimSpace(cell(rec, i))
			if v == "" || strings.EqualFold(v, "nan") {
				v = Unknown
				report.Filled[col]++
			}
			setCategory(&rows[r], col, v)
		}
	}

	if _, ok := index[ColEarnings]; ok && opts.OutlierQuantile > 0 && opts.OutlierQuantile < 1 {
		before := len(rows)
		rows = dropOutliers(rows, opts.OutlierQuantile)
		report.Outliers = before - len(rows)
	}

	report.Rows = len(rows)
	return NewTable(known, rows), report, nil
}

func dropDuplicates(records [][]string) [][]string {
	seen := make(map[string]struct{}, len(records))
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		key := strings.Join(rec, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// fillNumeric parses column i; unparsable and negative cells are replaced by the
// median of the valid ones.
func fillNumeric(records [][]string, i int) ([]float64, int) {
	values := make([]float64, len(records))
	valid := make([]bool, len(records))
	var good []float64

	for r, rec := range records {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell(rec, i)), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		values[r] = v
		valid[r] = true
		good = append(good, v)
	}

	median := Median(good)
	filled := 0
	for r := range values {
		if !valid[r] {
			values[r] = median
			filled++
		}
	}
	return values, filled
}

func dropOutliers(rows []Row, q float64) []Row {
	earnings := make([]float64, len(rows))
	for i, r := range rows {
		earnings[i] = r.EarningsUSD
	}
	cutoff := Quantile(earnings, q)

	kept := rows[:0]
	for _, r := range rows {
		if r.EarningsUSD <= cutoff {
			kept = append(kept, r)
		}
	}
	return kept
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func setNumeric(r *Row, c Column, v float64) {
	switch c {
	case ColEarnings:
		r.EarningsUSD = v
	case ColHourlyRate:
		r.HourlyRate = v
	case ColJobSuccessRate:
		r.JobSuccessRate = v
	case ColJobCompleted:
		r.JobCompleted = int(math.Round(v))
	}
}

func setCategory(r *Row, c Column, v string) {
	switch c {
	case ColJobCategory:
		r.JobCategory = v
	case ColPaymentMethod:
		r.PaymentMethod = v
	case ColClientRegion:
		r.ClientRegion = v
	case ColExperienceLevel:
		r.ExperienceLevel = v
	case ColPlatform:
		r.Platform = v
	}
}

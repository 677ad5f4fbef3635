// internal/analytics/dataset/table.go
package dataset

// Table is read-only once built. Accessors hand out copies.
type Table struct {
	columns []Column
	present map[Column]bool
	rows    []Row
}

func NewTable(columns []Column, rows []Row) *Table {
	present := make(map[Column]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	return &Table{
		columns: append([]Column(nil), columns...),
		present: present,
		rows:    append([]Row(nil), rows...),
	}
}

func (t *Table) HasColumn(c Column) bool {
	return t.present[c]
}

func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Rows() []Row {
	return append([]Row(nil), t.rows...)
}

// Earnings returns the earnings column in row order.
func (t *Table) Earnings() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.EarningsUSD
	}
	return out
}

// Filter keeps rows whose categorical value is one of the listed values for
// every filtered column. Filters on absent columns are ignored.
func (t *Table) Filter(filters map[Column][]string) *Table {
	var kept []Row
	for _, r := range t.rows {
		if matches(r, filters, t.present) {
			kept = append(kept, r)
		}
	}
	return NewTable(t.columns, kept)
}

// Exclude is the complement of Filter.
func (t *Table) Exclude(filters map[Column][]string) *Table {
	var kept []Row
	for _, r := range t.rows {
		if !matches(r, filters, t.present) {
			kept = append(kept, r)
		}
	}
	return NewTable(t.columns, kept)
}

func matches(r Row, filters map[Column][]string, present map[Column]bool) bool {
	for col, values := range filters {
		if !present[col] {
			continue
		}
		v := r.Category(col)
		found := false
		for _, want := range values {
			if v == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// IncomeStats summarises the earnings column over the whole table.
func (t *Table) IncomeStats() (IncomeStats, error) {
	if !t.HasColumn(ColEarnings) {
		return IncomeStats{}, ErrNoEarnings
	}
	earnings := t.Earnings()
	lo, hi := MinMax(earnings)
	return IncomeStats{
		Mean:   Mean(earnings),
		Median: Median(earnings),
		Min:    lo,
		Max:    hi,
		Count:  len(earnings),
	}, nil
}

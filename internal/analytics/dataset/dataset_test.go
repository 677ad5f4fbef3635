// internal/analytics/dataset/dataset_test.go
package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"freelancer-analytics/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Freelancer_ID,Job_Category,Platform,Experience_Level,Client_Region,Payment_Method,Job_Completed,Earnings_USD,Hourly_Rate
1,Web Development,Upwork,Expert,Europe,Cryptocurrency,120,1000,50
2,Design,Fiverr,Beginner,Asia,PayPal,10,200,20
2,Design,Fiverr,Beginner,Asia,PayPal,10,200,20
3,Design,,Intermediate,nan,Bank Transfer,40,-5,30
4,Writing,Upwork,Expert,Europe,Cryptocurrency,80,abc,
`

// ==========================
// Test Helper Functions
// ==========================

func loadSample(t *testing.T, opts CleanOptions) (*Table, CleanReport) {
	t.Helper()
	frame, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	table, report, err := Build(frame, opts)
	require.NoError(t, err)
	return table, report
}

func earningsFrame(values ...float64) Frame {
	frame := Frame{Columns: []Column{"Freelancer_ID", ColEarnings, ColJobCategory, ColPaymentMethod}}
	for i, v := range values {
		frame.Records = append(frame.Records, []string{
			strconv.Itoa(i), strconv.FormatFloat(v, 'f', -1, 64), "Design", "PayPal",
		})
	}
	return frame
}

type fakeSource struct {
	frame Frame
	err   error
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Load(ctx context.Context) (Frame, error) {
	f.calls++
	return f.frame, f.err
}

// ==========================
// Cleaning Tests
// ==========================

func TestBuild_CleansSample(t *testing.T) {
	table, report := loadSample(t, CleanOptions{})

	assert.Equal(t, 5, report.SourceRows)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 4, table.Len())
	assert.Equal(t, 2, report.Filled[ColEarnings])
	assert.Equal(t, 1, report.Filled[ColHourlyRate])

	rows := table.Rows()
	assert.Equal(t, 600.0, rows[2].EarningsUSD, "negative earnings take the median")
	assert.Equal(t, 600.0, rows[3].EarningsUSD, "unparsable earnings take the median")
	assert.Equal(t, 30.0, rows[3].HourlyRate)
	assert.Equal(t, Unknown, rows[2].Platform)
	assert.Equal(t, Unknown, rows[2].ClientRegion)
	assert.Equal(t, 120, rows[0].JobCompleted)
	assert.Equal(t, "Cryptocurrency", rows[0].PaymentMethod)

	for _, r := range rows {
		assert.GreaterOrEqual(t, r.EarningsUSD, 0.0)
	}
}

func TestBuild_Columns(t *testing.T) {
	table, _ := loadSample(t, CleanOptions{})

	assert.True(t, table.HasColumn(ColEarnings))
	assert.True(t, table.HasColumn(ColClientRegion))
	assert.True(t, table.HasColumn(ColJobCompleted))
	assert.False(t, table.HasColumn(ColJobSuccessRate))
	assert.False(t, table.HasColumn("Freelancer_ID"))
}

func TestBuild_DuplicatesUseWholeRecord(t *testing.T) {
	// Same known values, different ids: both rows stay.
	frame := earningsFrame(100, 100)

	table, report, err := Build(frame, CleanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Duplicates)
	assert.Equal(t, 2, table.Len())
}

func TestBuild_MissingRequiredColumns(t *testing.T) {
	frame := Frame{
		Columns: []Column{ColEarnings, ColJobCategory},
		Records: [][]string{{"100", "Design"}},
	}

	_, _, err := Build(frame, CleanOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "Payment_Method")
}

func TestBuild_CustomRequiredColumns(t *testing.T) {
	frame := Frame{
		Columns: []Column{ColEarnings},
		Records: [][]string{{"100"}},
	}

	table, _, err := Build(frame, CleanOptions{RequiredColumns: []Column{ColEarnings}})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestBuild_OutlierQuantile(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1)
	}

	tests := []struct {
		name     string
		quantile float64
		rows     int
		outliers int
		max      float64
	}{
		{"default quantile drops the top earner", 0.99, 99, 1, 99},
		{"median keeps the lower half", 0.5, 50, 50, 50},
		{"zero disables the filter", 0, 100, 0, 100},
		{"one keeps everything", 1, 100, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, report, err := Build(earningsFrame(values...), CleanOptions{OutlierQuantile: tt.quantile})
			require.NoError(t, err)

			assert.Equal(t, tt.rows, table.Len())
			assert.Equal(t, tt.outliers, report.Outliers)

			stats, err := table.IncomeStats()
			require.NoError(t, err)
			assert.Equal(t, tt.max, stats.Max)
		})
	}
}

// ==========================
// Numeric Helper Tests
// ==========================

func TestQuantile(t *testing.T) {
	assert.Equal(t, 2.0, Median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.InDelta(t, 39.7, Quantile([]float64{10, 20, 30, 40}, 0.99), 1e-9)
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0.0, Mean(nil))

	lo, hi := MinMax([]float64{5, -1, 9})
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

// ==========================
// Table Tests
// ==========================

func TestTable_IncomeStats(t *testing.T) {
	table, _, err := Build(earningsFrame(10, 20, 30), CleanOptions{})
	require.NoError(t, err)

	stats, err := table.IncomeStats()
	require.NoError(t, err)
	assert.Equal(t, IncomeStats{Mean: 20, Median: 20, Min: 10, Max: 30, Count: 3}, stats)
}

func TestTable_IncomeStatsWithoutEarnings(t *testing.T) {
	table := NewTable([]Column{ColJobCategory}, []Row{{JobCategory: "Design"}})

	_, err := table.IncomeStats()
	assert.ErrorIs(t, err, ErrNoEarnings)
}

func TestTable_Filter(t *testing.T) {
	table, _ := loadSample(t, CleanOptions{})

	crypto := table.Filter(map[Column][]string{ColPaymentMethod: {"Cryptocurrency"}})
	assert.Equal(t, 2, crypto.Len())

	experts := table.Filter(map[Column][]string{
		ColPaymentMethod:   {"Cryptocurrency", "PayPal"},
		ColExperienceLevel: {"Expert"},
	})
	assert.Equal(t, 2, experts.Len())

	ignored := table.Filter(map[Column][]string{ColJobSuccessRate: {"x"}})
	assert.Equal(t, table.Len(), ignored.Len())
}

func TestTable_Exclude(t *testing.T) {
	table, _ := loadSample(t, CleanOptions{})
	byCrypto := map[Column][]string{ColPaymentMethod: {"Cryptocurrency"}}

	rest := table.Exclude(byCrypto)
	assert.Equal(t, table.Len()-table.Filter(byCrypto).Len(), rest.Len())
	for _, r := range rest.Rows() {
		assert.NotEqual(t, "Cryptocurrency", r.PaymentMethod)
	}
	assert.True(t, rest.HasColumn(ColPaymentMethod))
}

func TestTable_RowsIsACopy(t *testing.T) {
	table, _ := loadSample(t, CleanOptions{})

	rows := table.Rows()
	rows[0].EarningsUSD = -1

	assert.Equal(t, 1000.0, table.Rows()[0].EarningsUSD)
}

// ==========================
// Source Tests
// ==========================

func TestCSVSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freelancers.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	frame, err := NewCSVSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, frame.Records, 5)
	assert.Equal(t, ColEarnings, frame.Columns[7])
	assert.Equal(t, Column("Freelancer_ID"), frame.Columns[0])
}

func TestCSVSource_MissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "absent.csv")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestPostgresSource_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "earnings_usd", "job_category", "payment_method", "client_region"}).
		AddRow(int64(1), 100.5, "Design", "PayPal", nil).
		AddRow(int64(2), 300.0, "Writing", "Cryptocurrency", "Europe")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "freelancer_earnings"`)).WillReturnRows(rows)

	source := NewPostgresSource(sqlx.NewDb(db, "sqlmock"), "freelancer_earnings")
	frame, err := source.Load(context.Background())
	require.NoError(t, err)

	table, _, err := Build(frame, CleanOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	got := table.Rows()
	assert.Equal(t, 100.5, got[0].EarningsUSD)
	assert.Equal(t, Unknown, got[0].ClientRegion)
	assert.Equal(t, "Cryptocurrency", got[1].PaymentMethod)
	assert.True(t, table.HasColumn(ColClientRegion))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresSource(sqlx.NewDb(db, "sqlmock"), "freelancer_earnings").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// ==========================
// Store Tests
// ==========================

func TestStore_LoadsOnce(t *testing.T) {
	source := &fakeSource{frame: earningsFrame(10, 20)}
	store := NewStore(source, CleanOptions{}, logger.NewTestLogger(t))

	first, err := store.Table(context.Background())
	require.NoError(t, err)
	second, err := store.Table(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, source.calls)
}

func TestStore_RetriesAfterFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("disk unavailable")}
	store := NewStore(source, CleanOptions{}, logger.NewTestLogger(t))

	_, err := store.Table(context.Background())
	require.Error(t, err)

	source.err = nil
	source.frame = earningsFrame(10)
	table, err := store.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, 2, source.calls)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig([]string{"earnings_usd", "Bogus", "Payment_Method"}, 0.95)

	assert.Equal(t, []Column{ColEarnings, ColPaymentMethod}, opts.RequiredColumns)
	assert.Equal(t, 0.95, opts.OutlierQuantile)
}

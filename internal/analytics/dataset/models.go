// internal/analytics/dataset/models.go
package dataset

import (
	"errors"
	"strings"
)

type Column string

const (
	ColEarnings        Column = "Earnings_USD"
	ColJobCategory     Column = "Job_Category"
	ColPaymentMethod   Column = "Payment_Method"
	ColClientRegion    Column = "Client_Region"
	ColExperienceLevel Column = "Experience_Level"
	ColJobCompleted    Column = "Job_Completed"
	ColPlatform        Column = "Platform"
	ColHourlyRate      Column = "Hourly_Rate"
	ColJobSuccessRate  Column = "Job_Success_Rate"
)

// Unknown fills categorical cells that were empty in the source.
const Unknown = "unknown"

var knownColumns = []Column{
	ColEarnings, ColJobCategory, ColPaymentMethod, ColClientRegion, ColExperienceLevel,
	ColJobCompleted, ColPlatform, ColHourlyRate, ColJobSuccessRate,
}

var numericColumns = []Column{ColEarnings, ColHourlyRate, ColJobSuccessRate, ColJobCompleted}

var categoricalColumns = []Column{ColJobCategory, ColPaymentMethod, ColPlatform, ColClientRegion, ColExperienceLevel}

// DefaultRequiredColumns must be present in any source.
var DefaultRequiredColumns = []Column{ColEarnings, ColJobCategory, ColPaymentMethod}

var (
	ErrMissingColumns = errors.New("required dataset columns are missing")
	ErrNoEarnings     = errors.New("earnings column is missing")
	ErrEmptySource    = errors.New("dataset source has no header")
)

// KnownColumn resolves a source header case-insensitively.
func KnownColumn(name string) (Column, bool) {
	name = strings.TrimSpace(name)
	for _, c := range knownColumns {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}

func headerColumns(names []string) []Column {
	out := make([]Column, len(names))
	for i, name := range names {
		if col, ok := KnownColumn(name); ok {
			out[i] = col
		} else {
			out[i] = Column(strings.TrimSpace(name))
		}
	}
	return out
}

// Row is one cleaned freelancer record.
type Row struct {
	EarningsUSD     float64 `json:"earnings_usd" db:"earnings_usd"`
	JobCategory     string  `json:"job_category" db:"job_category"`
	PaymentMethod   string  `json:"payment_method" db:"payment_method"`
	ClientRegion    string  `json:"client_region" db:"client_region"`
	ExperienceLevel string  `json:"experience_level" db:"experience_level"`
	JobCompleted    int     `json:"job_completed" db:"job_completed"`
	Platform        string  `json:"platform" db:"platform"`
	HourlyRate      float64 `json:"hourly_rate" db:"hourly_rate"`
	JobSuccessRate  float64 `json:"job_success_rate" db:"job_success_rate"`
}

// Category returns the value of a categorical column, or "" for other columns.
func (r Row) Category(c Column) string {
	switch c {
	case ColJobCategory:
		return r.JobCategory
	case ColPaymentMethod:
		return r.PaymentMethod
	case ColClientRegion:
		return r.ClientRegion
	case ColExperienceLevel:
		return r.ExperienceLevel
	case ColPlatform:
		return r.Platform
	}
	return ""
}

// Frame is a source's raw output: every source column and one string cell per
// column for each record. Empty cells are missing values.
type Frame struct {
	Columns []Column
	Records [][]string
}

type IncomeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

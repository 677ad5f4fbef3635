// internal/analytics/stats/models.go
package stats

import "errors"

// ErrMissingEarningsColumn is returned before dispatch when the table has no
// earnings column. No branch can answer without it.
var ErrMissingEarningsColumn = errors.New("earnings column is missing from the dataset")

// Branch names the aggregate that produced a Result.
type Branch string

const (
	BranchPaymentComparison Branch = "payment_comparison"
	BranchRegionalTrend     Branch = "regional_trend"
	BranchExpertProjects    Branch = "expert_projects"
	BranchDefault           Branch = "default"
)

// Metric keys.
const (
	KeyCryptoAvg         = "crypto_avg"
	KeyOtherAvg          = "other_avg"
	KeyDifference        = "difference"
	KeyCryptoDataMissing = "crypto_data_missing"
	KeyExpertCount       = "expert_count"
	KeyLessThanCount     = "less_than_count"
	KeyPercentage        = "percentage"
	KeyMean              = "mean"
	KeyMedian            = "median"
	KeyMin               = "min"
	KeyMax               = "max"
	KeyCount             = "count"
	regionSuffix         = "_avg"
)

const (
	CryptoPaymentMethod = "Cryptocurrency"
	ExpertLevel         = "Expert"
	DefaultThreshold    = 100
)

// Result holds either Error or Statistics, never both.
// Statistics values are float64 for money and percentages, int for counts and
// bool for the crypto_data_missing flag.
type Result struct {
	Error      string                 `json:"error,omitempty"`
	Statistics map[string]interface{} `json:"statistics,omitempty"`
	Branch     Branch                 `json:"-"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

func failure(branch Branch, msg string) Result {
	return Result{Error: msg, Branch: branch}
}

// internal/analytics/stats/selector.go
package stats

import (
	"freelancer-analytics/internal/analytics/dataset"
	"freelancer-analytics/internal/analytics/intent"
)

// Select computes the aggregate that answers in. The first matching branch
// wins; anything unmatched gets the earnings summary. Missing branch columns
// come back as Result.Error; a missing earnings column is returned as
// ErrMissingEarningsColumn.
func Select(in intent.Intent, table *dataset.Table) (Result, error) {
	if !table.HasColumn(dataset.ColEarnings) {
		return Result{}, ErrMissingEarningsColumn
	}

	switch {
	case in.Kind == intent.KindComparison && in.Params.Has(intent.ParamPaymentMethod):
		return paymentComparison(table), nil
	case in.Kind == intent.KindDistribution && in.Subkind == intent.SubkindTrendBy && in.Params.Has(intent.ParamRegion):
		return regionalTrend(table), nil
	case in.Kind == intent.KindPercentage && in.Subkind == intent.SubkindExpertProjects:
		return expertProjects(table, threshold(in)), nil
	default:
		return summary(table), nil
	}
}

func paymentComparison(table *dataset.Table) Result {
	if !table.HasColumn(dataset.ColPaymentMethod) {
		return failure(BranchPaymentComparison, "payment method data unavailable")
	}

	byCrypto := map[dataset.Column][]string{dataset.ColPaymentMethod: {CryptoPaymentMethod}}
	crypto := table.Filter(byCrypto).Earnings()
	other := table.Exclude(byCrypto).Earnings()

	cryptoAvg := dataset.Mean(crypto)
	otherAvg := dataset.Mean(other)
	return Result{
		Branch: BranchPaymentComparison,
		Statistics: map[string]interface{}{
			KeyCryptoAvg:         cryptoAvg,
			KeyOtherAvg:          otherAvg,
			KeyDifference:        cryptoAvg - otherAvg,
			KeyCryptoDataMissing: len(crypto) == 0,
		},
	}
}

func regionalTrend(table *dataset.Table) Result {
	if !table.HasColumn(dataset.ColClientRegion) {
		return failure(BranchRegionalTrend, "client region data unavailable")
	}

	if table.Len() == 0 {
		return failure(BranchRegionalTrend, "no rows to group by region")
	}

	byRegion := map[string][]float64{}
	for _, r := range table.Rows() {
		byRegion[r.ClientRegion] = append(byRegion[r.ClientRegion], r.EarningsUSD)
	}

	out := make(map[string]interface{}, len(byRegion))
	for region, earnings := range byRegion {
		out[region+regionSuffix] = dataset.Mean(earnings)
	}
	return Result{Branch: BranchRegionalTrend, Statistics: out}
}

func expertProjects(table *dataset.Table, limit int) Result {
	if !table.HasColumn(dataset.ColExperienceLevel) || !table.HasColumn(dataset.ColJobCompleted) {
		return failure(BranchExpertProjects, "experience level or completed job count data unavailable")
	}

	experts := table.Filter(map[dataset.Column][]string{dataset.ColExperienceLevel: {ExpertLevel}}).Rows()
	below := 0
	for _, r := range experts {
		if r.JobCompleted < limit {
			below++
		}
	}

	percentage := 0.0
	if len(experts) > 0 {
		percentage = float64(below) / float64(len(experts)) * 100
	}
	return Result{
		Branch: BranchExpertProjects,
		Statistics: map[string]interface{}{
			KeyExpertCount:   len(experts),
			KeyLessThanCount: below,
			KeyPercentage:    percentage,
		},
	}
}

func summary(table *dataset.Table) Result {
	// Earnings presence was checked by Select.
	s, _ := table.IncomeStats()
	return Result{
		Branch: BranchDefault,
		Statistics: map[string]interface{}{
			KeyMean:   s.Mean,
			KeyMedian: s.Median,
			KeyMin:    s.Min,
			KeyMax:    s.Max,
			KeyCount:  s.Count,
		},
	}
}

func threshold(in intent.Intent) int {
	if n, ok := in.Params.Int(intent.ParamThreshold); ok && n >= 0 {
		return n
	}
	return DefaultThreshold
}

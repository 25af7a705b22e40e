// Package dividends projects annual dividend income for open positions.
package dividends

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Payment frequency labels.
const (
	FrequencyMonthly    = "Monthly"
	FrequencyQuarterly  = "Quarterly"
	FrequencySemiannual = "Semiannual"
	FrequencyAnnual     = "Annual"
	FrequencyIrregular  = "Irregular"
	FrequencyUnknown    = "Unknown"
)

// EstimateFrequency buckets a ticker's payment cadence from the median
// interval between historical payment dates. The median shrugs off the
// occasional special dividend that a mean would not.
func EstimateFrequency(paymentDates []string) string {
	dates := make([]time.Time, 0, len(paymentDates))
	for _, raw := range paymentDates {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			dates = append(dates, t)
		}
	}
	if len(dates) < 2 {
		return FrequencyUnknown
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	intervals := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		intervals = append(intervals, dates[i].Sub(dates[i-1]).Hours()/24)
	}
	sort.Float64s(intervals)

	median := stat.Quantile(0.5, stat.Empirical, intervals, nil)

	switch {
	case median >= 25 && median <= 35:
		return FrequencyMonthly
	case median >= 80 && median <= 100:
		return FrequencyQuarterly
	case median >= 170 && median <= 190:
		return FrequencySemiannual
	case median >= 350 && median <= 370:
		return FrequencyAnnual
	default:
		return FrequencyIrregular
	}
}

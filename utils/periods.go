package utils

import "time"

// PeriodDays maps a reporting period selector to its lookback length in
// days. Unknown or empty selectors silently fall back to the 7-day window.
func PeriodDays(period string) int {
	switch period {
	case "30d":
		return 30
	case "90d":
		return 90
	case "7d":
		return 7
	default:
		return 7
	}
}

// PeriodStart returns the start of the lookback window for a period
// selector, relative to now.
func PeriodStart(period string, now time.Time) time.Time {
	return now.AddDate(0, 0, -PeriodDays(period))
}

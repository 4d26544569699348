package statistics

import (
	"time"

	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

const monthKeyLayout = "2006-01"

func monthKey(d types.Date) string {
	return d.Format(monthKeyLayout)
}

// monthKeys returns every "YYYY-MM" key from start's month through end's
// month inclusive, in order. It is empty when start is after end.
func monthKeys(start, end types.Date) []string {
	var keys []string
	current := types.NewDate(start.Year(), start.Month(), 1)
	for !current.After(end.Time) {
		keys = append(keys, monthKey(current))
		current = types.DateOf(current.AddDate(0, 1, 0))
	}
	return keys
}

// bucketByMonth counts dates per calendar month across [start, end].
// Dates outside the range are dropped and never extend the sequence.
func bucketByMonth(start, end types.Date, dates []types.Date) []types.MonthCount {
	counts := make(map[string]int)
	for _, d := range dates {
		if d.Before(start.Time) || d.After(end.Time) {
			continue
		}
		counts[monthKey(d)]++
	}

	keys := monthKeys(start, end)
	buckets := make([]types.MonthCount, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, types.MonthCount{Month: k, Count: counts[k]})
	}
	return buckets
}

// reportingPeriod picks the timeline period: explicit filter bounds when both
// are set, else the span of application dates, else the current month to date.
func reportingPeriod(positions []types.Position, filters *types.StatisticsFilters, today types.Date) (types.Date, types.Date) {
	if filters != nil && filters.StartDate != nil && filters.EndDate != nil {
		return *filters.StartDate, *filters.EndDate
	}
	if len(positions) == 0 {
		return types.NewDate(today.Year(), today.Month(), 1), today
	}

	start, end := positions[0].ApplicationDate, positions[0].ApplicationDate
	for _, p := range positions[1:] {
		if p.ApplicationDate.Before(start.Time) {
			start = p.ApplicationDate
		}
		if p.ApplicationDate.After(end.Time) {
			end = p.ApplicationDate
		}
	}
	return start, end
}

// monthName returns the English name of month m (1-12).
func monthName(m int) string {
	return time.Month(m).String()
}

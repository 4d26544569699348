package statistics

import (
	"math"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// round rounds v to the given number of decimal places, halves away from zero.
func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// rate returns numerator/denominator as a percentage rounded to two decimals.
// A zero denominator yields 0.
func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0.0
	}
	return round(float64(numerator)/float64(denominator)*100, 2)
}

// ratio is rate without the percentage scaling.
func ratio(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0.0
	}
	return round(float64(numerator)/float64(denominator), 2)
}

// mean averages samples to one decimal; nil when there are none.
func mean(samples []int) *float64 {
	if len(samples) == 0 {
		return nil
	}
	total := 0
	for _, s := range samples {
		total += s
	}
	avg := round(float64(total)/float64(len(samples)), 1)
	return &avg
}

// breakdown counts items per category. Every value of domain is present in
// the result, including those with no occurrences.
func breakdown[K comparable, T any](domain []K, items []T, key func(T) K) map[K]int {
	counts := make(map[K]int, len(domain))
	for _, k := range domain {
		counts[k] = 0
	}
	for _, item := range items {
		k := key(item)
		if _, ok := counts[k]; ok {
			counts[k]++
		}
	}
	return counts
}

func statusBreakdown(positions []types.Position) map[types.PositionStatus]int {
	return breakdown(types.PositionStatuses(), positions, func(p types.Position) types.PositionStatus {
		return p.Status
	})
}

func interviewTypeBreakdown(interviews []types.Interview) map[types.InterviewType]int {
	return breakdown(types.InterviewTypes(), interviews, func(iv types.Interview) types.InterviewType {
		return iv.Type
	})
}

func interviewOutcomeBreakdown(interviews []types.Interview) map[types.InterviewOutcome]int {
	return breakdown(types.InterviewOutcomes(), interviews, func(iv types.Interview) types.InterviewOutcome {
		return iv.Outcome
	})
}

func countStatus(positions []types.Position, status types.PositionStatus) int {
	n := 0
	for _, p := range positions {
		if p.Status == status {
			n++
		}
	}
	return n
}

// responseRate is the share of positions that moved past "applied".
func responseRate(positions []types.Position) float64 {
	return rate(len(positions)-countStatus(positions, types.StatusApplied), len(positions))
}

// interviewRate is the share of positions with at least one interview.
func interviewRate(positions []types.Position, interviews []types.Interview) float64 {
	return rate(len(distinctPositionIDs(interviews)), len(positions))
}

// offerRate is the share of positions that reached an offer.
func offerRate(positions []types.Position) float64 {
	return rate(countStatus(positions, types.StatusOffer), len(positions))
}

func distinctPositionIDs(interviews []types.Interview) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{}, len(interviews))
	for _, iv := range interviews {
		ids[iv.PositionID] = struct{}{}
	}
	return ids
}

// groupByPosition indexes interviews by their owning position.
func groupByPosition(interviews []types.Interview) map[uuid.UUID][]types.Interview {
	grouped := make(map[uuid.UUID][]types.Interview)
	for _, iv := range interviews {
		grouped[iv.PositionID] = append(grouped[iv.PositionID], iv)
	}
	return grouped
}

func positionIDs(positions []types.Position) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	return ids
}

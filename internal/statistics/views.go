package statistics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// BuildOverview computes the headline metrics for a set of positions and
// the interviews that belong to them.
func BuildOverview(positions []types.Position, interviews []types.Interview) *types.OverviewStatistics {
	companies := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		companies[p.Company] = struct{}{}
	}

	return &types.OverviewStatistics{
		TotalApplications:         len(positions),
		TotalCompanies:            len(companies),
		TotalInterviews:           len(interviews),
		ResponseRate:              responseRate(positions),
		InterviewRate:             interviewRate(positions, interviews),
		OfferRate:                 offerRate(positions),
		StatusBreakdown:           statusBreakdown(positions),
		InterviewTypeBreakdown:    interviewTypeBreakdown(interviews),
		InterviewOutcomeBreakdown: interviewOutcomeBreakdown(interviews),
	}
}

// BuildTimeline buckets activity per month over the reporting period and
// computes the average response and decision latencies.
func BuildTimeline(positions []types.Position, interviews []types.Interview, filters *types.StatisticsFilters, today types.Date) *types.TimelineStatistics {
	start, end := reportingPeriod(positions, filters, today)

	applicationDates := make([]types.Date, 0, len(positions))
	for _, p := range positions {
		applicationDates = append(applicationDates, p.ApplicationDate)
	}
	interviewDates := make([]types.Date, 0, len(interviews))
	for _, iv := range interviews {
		interviewDates = append(interviewDates, iv.Day())
	}

	byPosition := groupByPosition(interviews)

	return &types.TimelineStatistics{
		PeriodStart:                    start,
		PeriodEnd:                      end,
		ApplicationsPerMonth:           bucketByMonth(start, end, applicationDates),
		InterviewsPerMonth:             bucketByMonth(start, end, interviewDates),
		AverageResponseTimeDays:        averageResponseTime(positions, byPosition),
		AverageInterviewToDecisionDays: averageInterviewToDecision(positions, byPosition),
	}
}

// averageResponseTime is the mean number of days between applying and the
// first interview, over positions that got a response.
func averageResponseTime(positions []types.Position, byPosition map[uuid.UUID][]types.Interview) *float64 {
	var samples []int
	for _, p := range positions {
		// Positions still in "applied" with no interview have not responded;
		// a status change alone carries no response date to measure.
		ivs := byPosition[p.ID]
		if len(ivs) == 0 {
			continue
		}
		first := ivs[0].Day()
		for _, iv := range ivs[1:] {
			if d := iv.Day(); d.Before(first.Time) {
				first = d
			}
		}
		if days := first.DaysSince(p.ApplicationDate); days >= 0 {
			samples = append(samples, days)
		}
	}
	return mean(samples)
}

// averageInterviewToDecision is the mean number of days between the last
// interview and the offer or rejection, using updated_at as the decision date.
func averageInterviewToDecision(positions []types.Position, byPosition map[uuid.UUID][]types.Interview) *float64 {
	var samples []int
	for _, p := range positions {
		if p.Status != types.StatusOffer && p.Status != types.StatusRejected {
			continue
		}
		ivs := byPosition[p.ID]
		if len(ivs) == 0 {
			continue
		}
		last := ivs[0].Day()
		for _, iv := range ivs[1:] {
			if d := iv.Day(); d.After(last.Time) {
				last = d
			}
		}
		if days := types.DateOf(p.UpdatedAt).DaysSince(last); days >= 0 {
			samples = append(samples, days)
		}
	}
	return mean(samples)
}

// companyGroup keeps positions of one company in first-encounter order.
type companyGroup struct {
	name      string
	positions []types.Position
}

func groupByCompany(positions []types.Position) []*companyGroup {
	var groups []*companyGroup
	index := make(map[string]*companyGroup)
	for _, p := range positions {
		g, ok := index[p.Company]
		if !ok {
			g = &companyGroup{name: p.Company}
			index[p.Company] = g
			groups = append(groups, g)
		}
		g.positions = append(g.positions, p)
	}
	return groups
}

func interviewCount(positions []types.Position, byPosition map[uuid.UUID][]types.Interview) int {
	n := 0
	for _, p := range positions {
		n += len(byPosition[p.ID])
	}
	return n
}

// BuildCompanyStatistics rolls positions up per exact company name, sorted
// by application count descending. Ties keep first-encounter order.
func BuildCompanyStatistics(positions []types.Position, interviews []types.Interview) *types.CompanyStatisticsResponse {
	byPosition := groupByPosition(interviews)
	groups := groupByCompany(positions)

	companies := make([]types.CompanyStatistics, 0, len(groups))
	for _, g := range groups {
		latest := g.positions[0].ApplicationDate
		for _, p := range g.positions[1:] {
			if p.ApplicationDate.After(latest.Time) {
				latest = p.ApplicationDate
			}
		}
		companies = append(companies, types.CompanyStatistics{
			CompanyName:           g.name,
			TotalApplications:     len(g.positions),
			TotalInterviews:       interviewCount(g.positions, byPosition),
			LatestApplicationDate: &latest,
			StatusBreakdown:       statusBreakdown(g.positions),
			SuccessRate:           offerRate(g.positions),
		})
	}

	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].TotalApplications > companies[j].TotalApplications
	})

	return &types.CompanyStatisticsResponse{
		Companies:      companies,
		TotalCompanies: len(companies),
	}
}

// BuildSuccessRates computes conversion rates across the whole search.
func BuildSuccessRates(positions []types.Position, interviews []types.Interview) *types.SuccessRateSummary {
	applications := len(positions)
	if applications == 0 {
		return &types.SuccessRateSummary{}
	}
	offers := countStatus(positions, types.StatusOffer)

	return &types.SuccessRateSummary{
		ApplicationToInterviewRate:   rate(len(interviews), applications),
		InterviewToOfferRate:         rate(offers, len(interviews)),
		OverallSuccessRate:           rate(offers, applications),
		AverageInterviewsPerPosition: ratio(len(interviews), applications),
	}
}

// BuildTopCompanies ranks companies by success rate, then by application
// count, and keeps the first limit entries.
func BuildTopCompanies(positions []types.Position, interviews []types.Interview, limit int) []types.CompanyPerformance {
	byPosition := groupByPosition(interviews)
	groups := groupByCompany(positions)

	ranked := make([]types.CompanyPerformance, 0, len(groups))
	for _, g := range groups {
		offers := countStatus(g.positions, types.StatusOffer)
		ranked = append(ranked, types.CompanyPerformance{
			Company:      g.name,
			Applications: len(g.positions),
			Interviews:   interviewCount(g.positions, byPosition),
			Offers:       offers,
			SuccessRate:  rate(offers, len(g.positions)),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SuccessRate != ranked[j].SuccessRate {
			return ranked[i].SuccessRate > ranked[j].SuccessRate
		}
		return ranked[i].Applications > ranked[j].Applications
	})

	if limit >= 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// BuildMonthly reports positions applied, interviews conducted and offers
// received in each month of year. Only positions applied for in year, and
// their interviews, contribute. The result always has 12 entries.
func BuildMonthly(positions []types.Position, interviews []types.Interview, year int) []types.MonthlyBreakdown {
	months := make([]types.MonthlyBreakdown, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = types.MonthlyBreakdown{Month: monthName(m)}
	}

	inYear := make(map[uuid.UUID]struct{}, len(positions))
	for _, p := range positions {
		if p.ApplicationDate.Year() != year {
			continue
		}
		inYear[p.ID] = struct{}{}
		months[p.ApplicationDate.Month()-1].PositionsApplied++

		// Offers are attributed to the month the status last changed.
		if p.Status == types.StatusOffer && !p.UpdatedAt.IsZero() {
			updated := p.UpdatedAt.UTC()
			if updated.Year() == year {
				months[updated.Month()-1].OffersReceived++
			}
		}
	}

	for _, iv := range interviews {
		if _, ok := inYear[iv.PositionID]; !ok {
			continue
		}
		scheduled := iv.ScheduledDate.UTC()
		if scheduled.Year() == year {
			months[scheduled.Month()-1].InterviewsConducted++
		}
	}

	return months
}

// BuildCompanyDetails summarises one company and lists its positions with
// their interviews attached. Only exact company-name matches are included.
func BuildCompanyDetails(company string, positions []types.Position, interviews []types.Interview) *types.CompanyDetails {
	byPosition := groupByPosition(interviews)

	matched := make([]types.Position, 0, len(positions))
	for _, p := range positions {
		if p.Company != company {
			continue
		}
		ivs := append([]types.Interview(nil), byPosition[p.ID]...)
		sort.SliceStable(ivs, func(i, j int) bool {
			return ivs[i].ScheduledDate.Before(ivs[j].ScheduledDate)
		})
		p.Interviews = ivs
		matched = append(matched, p)
	}

	return &types.CompanyDetails{
		CompanyName:       company,
		TotalApplications: len(matched),
		TotalInterviews:   interviewCount(matched, byPosition),
		SuccessRate:       offerRate(matched),
		Positions:         matched,
	}
}

package types

// StatisticsFilters narrows the position set before aggregation.
// Zero values mean "no filter".
type StatisticsFilters struct {
	StartDate *Date          `json:"start_date,omitempty"`
	EndDate   *Date          `json:"end_date,omitempty"`
	Company   string         `json:"company,omitempty"`
	Status    PositionStatus `json:"status,omitempty"`
}

// MonthCount is one bucket of a per-month series.
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// OverviewStatistics summarises a user's job search.
type OverviewStatistics struct {
	TotalApplications         int                      `json:"total_applications"`
	TotalCompanies            int                      `json:"total_companies"`
	TotalInterviews           int                      `json:"total_interviews"`
	ResponseRate              float64                  `json:"response_rate"`
	InterviewRate             float64                  `json:"interview_rate"`
	OfferRate                 float64                  `json:"offer_rate"`
	StatusBreakdown           map[PositionStatus]int   `json:"status_breakdown"`
	InterviewTypeBreakdown    map[InterviewType]int    `json:"interview_type_breakdown"`
	InterviewOutcomeBreakdown map[InterviewOutcome]int `json:"interview_outcome_breakdown"`
}

// TimelineStatistics holds per-month activity over a reporting period.
type TimelineStatistics struct {
	PeriodStart                    Date         `json:"period_start"`
	PeriodEnd                      Date         `json:"period_end"`
	ApplicationsPerMonth           []MonthCount `json:"applications_per_month"`
	InterviewsPerMonth             []MonthCount `json:"interviews_per_month"`
	AverageResponseTimeDays        *float64     `json:"average_response_time_days"`
	AverageInterviewToDecisionDays *float64     `json:"average_interview_to_decision_days"`
}

// CompanyStatistics is the rollup for a single company.
type CompanyStatistics struct {
	CompanyName           string                 `json:"company_name"`
	TotalApplications     int                    `json:"total_applications"`
	TotalInterviews       int                    `json:"total_interviews"`
	LatestApplicationDate *Date                  `json:"latest_application_date"`
	StatusBreakdown       map[PositionStatus]int `json:"status_breakdown"`
	SuccessRate           float64                `json:"success_rate"`
}

// CompanyStatisticsResponse lists per-company rollups.
type CompanyStatisticsResponse struct {
	Companies      []CompanyStatistics `json:"companies"`
	TotalCompanies int                 `json:"total_companies"`
}

// SuccessRateSummary holds conversion rates across the whole search.
type SuccessRateSummary struct {
	ApplicationToInterviewRate   float64 `json:"application_to_interview_rate"`
	InterviewToOfferRate         float64 `json:"interview_to_offer_rate"`
	OverallSuccessRate           float64 `json:"overall_success_rate"`
	AverageInterviewsPerPosition float64 `json:"average_interviews_per_position"`
}

// CompanyPerformance ranks a company by how well applications there convert.
type CompanyPerformance struct {
	Company      string  `json:"company"`
	Applications int     `json:"applications"`
	Interviews   int     `json:"interviews"`
	Offers       int     `json:"offers"`
	SuccessRate  float64 `json:"success_rate"`
}

// MonthlyBreakdown is one calendar month of a yearly report.
type MonthlyBreakdown struct {
	Month               string `json:"month"`
	PositionsApplied    int    `json:"positions_applied"`
	InterviewsConducted int    `json:"interviews_conducted"`
	OffersReceived      int    `json:"offers_received"`
}

// CompanyDetails is the drill-down view of one company.
type CompanyDetails struct {
	CompanyName       string     `json:"company_name"`
	TotalApplications int        `json:"total_applications"`
	TotalInterviews   int        `json:"total_interviews"`
	SuccessRate       float64    `json:"success_rate"`
	Positions         []Position `json:"positions"`
}

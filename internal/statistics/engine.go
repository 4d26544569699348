// Package statistics computes derived job-search metrics for a single user.
//
// All aggregation is done by pure Build* functions over in-memory slices of
// positions and interviews. Engine is the thin boundary that loads those
// slices from a Source and hands them to the builders; nothing is cached.
package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// DefaultTopCompaniesLimit is used when TopCompanies is called with a non-positive limit.
const DefaultTopCompaniesLimit = 10

// Source loads the data the engine aggregates.
type Source interface {
	// ListPositions returns the user's positions narrowed by filters (nil means none).
	ListPositions(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) ([]types.Position, error)
	// ListInterviewsForPositions returns the interviews of the given positions.
	// An empty id list yields an empty result.
	ListInterviewsForPositions(ctx context.Context, positionIDs []uuid.UUID) ([]types.Interview, error)
}

// Observer is notified of how long each view took to compute, including loading.
type Observer interface {
	ObserveStatistics(view string, elapsed time.Duration, err error)
}

// Engine answers statistics queries for one user at a time.
type Engine struct {
	source   Source
	observer Observer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver reports per-view timings to o.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides the clock used for the default timeline period.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine reading from source.
func NewEngine(source Source, opts ...Option) *Engine {
	e := &Engine{source: source, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// load fetches the filtered positions and the interviews belonging to them.
func (e *Engine) load(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) ([]types.Position, []types.Interview, error) {
	positions, err := e.source.ListPositions(ctx, userID, filters)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list positions: %w", err)
	}
	if len(positions) == 0 {
		return positions, nil, nil
	}

	interviews, err := e.source.ListInterviewsForPositions(ctx, positionIDs(positions))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return positions, interviews, nil
}

func (e *Engine) observe(view string, start time.Time, err error) {
	if e.observer != nil {
		e.observer.ObserveStatistics(view, time.Since(start), err)
	}
}

// Overview returns headline counts, rates and breakdowns.
func (e *Engine) Overview(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) (_ *types.OverviewStatistics, err error) {
	start := time.Now()
	defer func() { e.observe("overview", start, err) }()

	positions, interviews, err := e.load(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	return BuildOverview(positions, interviews), nil
}

// Timeline returns per-month activity and response latencies.
func (e *Engine) Timeline(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) (_ *types.TimelineStatistics, err error) {
	start := time.Now()
	defer func() { e.observe("timeline", start, err) }()

	positions, interviews, err := e.load(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(positions, interviews, filters, types.DateOf(e.now())), nil
}

// Companies returns per-company rollups sorted by application count.
func (e *Engine) Companies(ctx context.Context, userID uuid.UUID, filters *types.StatisticsFilters) (_ *types.CompanyStatisticsResponse, err error) {
	start := time.Now()
	defer func() { e.observe("companies", start, err) }()

	positions, interviews, err := e.load(ctx, userID, filters)
	if err != nil {
		return nil, err
	}
	return BuildCompanyStatistics(positions, interviews), nil
}

// SuccessRates returns conversion rates over all of the user's positions.
func (e *Engine) SuccessRates(ctx context.Context, userID uuid.UUID) (_ *types.SuccessRateSummary, err error) {
	start := time.Now()
	defer func() { e.observe("success_rates", start, err) }()

	positions, interviews, err := e.load(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return BuildSuccessRates(positions, interviews), nil
}

// TopCompanies returns the best-converting companies, at most limit of them.
func (e *Engine) TopCompanies(ctx context.Context, userID uuid.UUID, limit int) (_ []types.CompanyPerformance, err error) {
	start := time.Now()
	defer func() { e.observe("top_companies", start, err) }()

	if limit <= 0 {
		limit = DefaultTopCompaniesLimit
	}
	positions, interviews, err := e.load(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return BuildTopCompanies(positions, interviews, limit), nil
}

// Monthly returns a January-to-December breakdown for year.
func (e *Engine) Monthly(ctx context.Context, userID uuid.UUID, year int) (_ []types.MonthlyBreakdown, err error) {
	began := time.Now()
	defer func() { e.observe("monthly", began, err) }()

	first := types.NewDate(year, time.January, 1)
	last := types.NewDate(year, time.December, 31)
	positions, interviews, err := e.load(ctx, userID, &types.StatisticsFilters{StartDate: &first, EndDate: &last})
	if err != nil {
		return nil, err
	}
	return BuildMonthly(positions, interviews, year), nil
}

// CompanyDetails returns the drill-down for an exact company name.
func (e *Engine) CompanyDetails(ctx context.Context, userID uuid.UUID, company string) (_ *types.CompanyDetails, err error) {
	start := time.Now()
	defer func() { e.observe("company_details", start, err) }()

	// The source matches company as a substring; exact matching happens in the builder.
	positions, interviews, err := e.load(ctx, userID, &types.StatisticsFilters{Company: company})
	if err != nil {
		return nil, err
	}
	return BuildCompanyDetails(company, positions, interviews), nil
}

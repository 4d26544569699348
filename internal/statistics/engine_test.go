package statistics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource filters in memory the way the database store does.
type fakeSource struct {
	positions  []types.Position
	interviews []types.Interview

	positionsErr  error
	interviewsErr error

	lastFilters      *types.StatisticsFilters
	interviewFetches int
}

func (f *fakeSource) ListPositions(_ context.Context, userID uuid.UUID, filters *types.StatisticsFilters) ([]types.Position, error) {
	f.lastFilters = filters
	if f.positionsErr != nil {
		return nil, f.positionsErr
	}
	var out []types.Position
	for _, p := range f.positions {
		if p.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.StartDate != nil && p.ApplicationDate.Before(filters.StartDate.Time) {
				continue
			}
			if filters.EndDate != nil && p.ApplicationDate.After(filters.EndDate.Time) {
				continue
			}
			if filters.Company != "" && !strings.Contains(strings.ToLower(p.Company), strings.ToLower(filters.Company)) {
				continue
			}
			if filters.Status != "" && p.Status != filters.Status {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeSource) ListInterviewsForPositions(_ context.Context, positionIDs []uuid.UUID) ([]types.Interview, error) {
	f.interviewFetches++
	if f.interviewsErr != nil {
		return nil, f.interviewsErr
	}
	wanted := make(map[uuid.UUID]bool, len(positionIDs))
	for _, id := range positionIDs {
		wanted[id] = true
	}
	var out []types.Interview
	for _, iv := range f.interviews {
		if wanted[iv.PositionID] {
			out = append(out, iv)
		}
	}
	return out, nil
}

type observation struct {
	view string
	err  error
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (r *recordingObserver) ObserveStatistics(view string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, observation{view: view, err: err})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seededSource(userID uuid.UUID) *fakeSource {
	acme := newPosition("Acme", types.StatusOffer, d(2024, 1, 10))
	acme.UserID = userID
	acme.UpdatedAt = at(2024, 2, 1, 9)
	globex := newPosition("Globex", types.StatusApplied, d(2024, 2, 3))
	globex.UserID = userID
	acmeCorp := newPosition("Acme Corp", types.StatusRejected, d(2023, 11, 1))
	acmeCorp.UserID = userID
	stranger := newPosition("Acme", types.StatusOffer, d(2024, 1, 11))
	stranger.UserID = uuid.New()

	return &fakeSource{
		positions: []types.Position{acme, globex, acmeCorp, stranger},
		interviews: []types.Interview{
			newInterview(acme, at(2024, 1, 13, 10), types.InterviewHR, types.OutcomePassed),
			newInterview(acme, at(2024, 1, 20, 10), types.InterviewFinal, types.OutcomePassed),
			newInterview(acmeCorp, at(2023, 11, 10, 10), types.InterviewTechnical, types.OutcomeFailed),
			newInterview(stranger, at(2024, 1, 15, 10), types.InterviewHR, types.OutcomePassed),
		},
	}
}

func TestEngine_Overview(t *testing.T) {
	userID := uuid.New()
	engine := NewEngine(seededSource(userID))

	got, err := engine.Overview(context.Background(), userID, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalApplications)
	assert.Equal(t, 3, got.TotalCompanies)
	assert.Equal(t, 3, got.TotalInterviews, "only interviews of the user's positions")
	assert.Equal(t, 66.67, got.ResponseRate)
	assert.Equal(t, 66.67, got.InterviewRate)
	assert.Equal(t, 33.33, got.OfferRate)
}

func TestEngine_OverviewWithFilters(t *testing.T) {
	userID := uuid.New()
	src := seededSource(userID)
	engine := NewEngine(src)

	start := d(2024, 1, 1)
	filters := &types.StatisticsFilters{StartDate: &start, Status: types.StatusOffer}
	got, err := engine.Overview(context.Background(), userID, filters)
	require.NoError(t, err)

	assert.Same(t, filters, src.lastFilters)
	assert.Equal(t, 1, got.TotalApplications)
	assert.Equal(t, 2, got.TotalInterviews)
	assert.Equal(t, 100.0, got.OfferRate)
}

func TestEngine_EmptyUserSkipsInterviewFetch(t *testing.T) {
	src := &fakeSource{}
	engine := NewEngine(src)

	got, err := engine.Overview(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	assert.Zero(t, got.TotalApplications)
	assert.Len(t, got.StatusBreakdown, 6)
	assert.Zero(t, src.interviewFetches)
}

func TestEngine_Timeline(t *testing.T) {
	userID := uuid.New()
	engine := NewEngine(seededSource(userID), WithClock(fixedClock(at(2024, 6, 18, 12))))

	t.Run("derived period", func(t *testing.T) {
		got, err := engine.Timeline(context.Background(), userID, nil)
		require.NoError(t, err)

		assert.Equal(t, d(2023, 11, 1), got.PeriodStart)
		assert.Equal(t, d(2024, 2, 3), got.PeriodEnd)
		assert.Len(t, got.ApplicationsPerMonth, 4)
		assert.Len(t, got.InterviewsPerMonth, 4)
		require.NotNil(t, got.AverageResponseTimeDays)
		// Acme: 3 days, Acme Corp: 9 days.
		assert.Equal(t, 6.0, *got.AverageResponseTimeDays)
	})

	t.Run("empty user uses clock", func(t *testing.T) {
		got, err := engine.Timeline(context.Background(), uuid.New(), nil)
		require.NoError(t, err)

		assert.Equal(t, d(2024, 6, 1), got.PeriodStart)
		assert.Equal(t, d(2024, 6, 18), got.PeriodEnd)
	})
}

func TestEngine_Companies(t *testing.T) {
	userID := uuid.New()
	engine := NewEngine(seededSource(userID))

	got, err := engine.Companies(context.Background(), userID, &types.StatisticsFilters{Company: "acme"})
	require.NoError(t, err)

	require.Len(t, got.Companies, 2)
	assert.Equal(t, "Acme", got.Companies[0].CompanyName)
	assert.Equal(t, "Acme Corp", got.Companies[1].CompanyName)
}

func TestEngine_SuccessRatesAndTopCompanies(t *testing.T) {
	userID := uuid.New()
	engine := NewEngine(seededSource(userID))
	ctx := context.Background()

	rates, err := engine.SuccessRates(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rates.ApplicationToInterviewRate)
	assert.Equal(t, 33.33, rates.InterviewToOfferRate)
	assert.Equal(t, 33.33, rates.OverallSuccessRate)
	assert.Equal(t, 1.0, rates.AverageInterviewsPerPosition)

	top, err := engine.TopCompanies(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Acme", top[0].Company)

	all, err := engine.TopCompanies(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "non-positive limit falls back to the default")
}

func TestEngine_Monthly(t *testing.T) {
	userID := uuid.New()
	src := seededSource(userID)
	engine := NewEngine(src)

	got, err := engine.Monthly(context.Background(), userID, 2024)
	require.NoError(t, err)

	require.Len(t, got, 12)
	require.NotNil(t, src.lastFilters)
	assert.Equal(t, d(2024, 1, 1), *src.lastFilters.StartDate)
	assert.Equal(t, d(2024, 12, 31), *src.lastFilters.EndDate)

	assert.Equal(t, 1, got[0].PositionsApplied)
	assert.Equal(t, 2, got[0].InterviewsConducted)
	assert.Equal(t, 1, got[1].PositionsApplied)
	assert.Equal(t, 1, got[1].OffersReceived)
	assert.Zero(t, got[10].InterviewsConducted, "November 2023 activity is excluded")
}

func TestEngine_CompanyDetailsExactMatch(t *testing.T) {
	userID := uuid.New()
	engine := NewEngine(seededSource(userID))

	got, err := engine.CompanyDetails(context.Background(), userID, "Acme")
	require.NoError(t, err)

	assert.Equal(t, 1, got.TotalApplications)
	assert.Equal(t, 2, got.TotalInterviews)
	require.Len(t, got.Positions, 1)
	assert.Len(t, got.Positions[0].Interviews, 2)
}

func TestEngine_SourceErrorsPropagate(t *testing.T) {
	userID := uuid.New()
	boom := errors.New("connection refused")
	ctx := context.Background()

	tests := []struct {
		name    string
		source  func() *fakeSource
		wantMsg string
	}{
		{
			name:    "positions",
			source:  func() *fakeSource { return &fakeSource{positionsErr: boom} },
			wantMsg: "failed to list positions",
		},
		{
			name: "interviews",
			source: func() *fakeSource {
				src := seededSource(userID)
				src.interviewsErr = boom
				return src
			},
			wantMsg: "failed to list interviews",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			engine := NewEngine(tt.source(), WithObserver(obs))

			calls := []func() error{
				func() error { _, err := engine.Overview(ctx, userID, nil); return err },
				func() error { _, err := engine.Timeline(ctx, userID, nil); return err },
				func() error { _, err := engine.Companies(ctx, userID, nil); return err },
				func() error { _, err := engine.SuccessRates(ctx, userID); return err },
				func() error { _, err := engine.TopCompanies(ctx, userID, 5); return err },
				func() error { _, err := engine.Monthly(ctx, userID, 2024); return err },
				func() error { _, err := engine.CompanyDetails(ctx, userID, "Acme"); return err },
			}
			for _, call := range calls {
				err := call()
				require.Error(t, err)
				assert.ErrorIs(t, err, boom)
				assert.Contains(t, err.Error(), tt.wantMsg)
			}

			require.Len(t, obs.seen, len(calls))
			for _, o := range obs.seen {
				assert.ErrorIs(t, o.err, boom, o.view)
			}
		})
	}
}

func TestEngine_ObserverSeesEveryView(t *testing.T) {
	userID := uuid.New()
	obs := &recordingObserver{}
	engine := NewEngine(seededSource(userID), WithObserver(obs))
	ctx := context.Background()

	_, _ = engine.Overview(ctx, userID, nil)
	_, _ = engine.Timeline(ctx, userID, nil)
	_, _ = engine.Companies(ctx, userID, nil)
	_, _ = engine.SuccessRates(ctx, userID)
	_, _ = engine.TopCompanies(ctx, userID, 3)
	_, _ = engine.Monthly(ctx, userID, 2024)
	_, _ = engine.CompanyDetails(ctx, userID, "Acme")

	var views []string
	for _, o := range obs.seen {
		views = append(views, o.view)
		assert.NoError(t, o.err)
	}
	assert.Equal(t, []string{"overview", "timeline", "companies", "success_rates", "top_companies", "monthly", "company_details"}, views)
}

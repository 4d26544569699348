package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/statistics"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

const (
	maxTopCompaniesLimit = 100
	minReportYear        = 1900
	maxReportYear        = 2100
)

// parseStatisticsFilters reads start_date, end_date, company and status.
func parseStatisticsFilters(q url.Values) (*types.StatisticsFilters, error) {
	filters := &types.StatisticsFilters{
		Company: strings.TrimSpace(q.Get("company")),
	}

	for _, p := range []struct {
		key string
		dst **types.Date
	}{{"start_date", &filters.StartDate}, {"end_date", &filters.EndDate}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		d, err := types.ParseDate(v)
		if err != nil {
			return nil, &ErrValidation{Field: p.key, Message: "must be YYYY-MM-DD"}
		}
		*p.dst = &d
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.StartDate.After(filters.EndDate.Time) {
		return nil, &ErrValidation{Field: "start_date", Message: "must not be after end_date"}
	}

	if v := q.Get("status"); v != "" {
		status := types.PositionStatus(v)
		if !status.Valid() {
			return nil, &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", v)}
		}
		filters.Status = status
	}

	return filters, nil
}

// serveFiltered runs a statistics view that accepts the common filters.
func serveFiltered[T any](s *Server, w http.ResponseWriter, r *http.Request,
	view func(context.Context, uuid.UUID, *types.StatisticsFilters) (T, error)) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	filters, err := parseStatisticsFilters(r.URL.Query())
	if err != nil {
		s.failure(w, r, err, "Invalid filters")
		return
	}

	result, err := view(r.Context(), userID, filters)
	if err != nil {
		s.failure(w, r, err, "Failed to compute statistics")
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleStatisticsOverview(w http.ResponseWriter, r *http.Request) {
	serveFiltered(s, w, r, s.stats.Overview)
}

func (s *Server) handleStatisticsTimeline(w http.ResponseWriter, r *http.Request) {
	serveFiltered(s, w, r, s.stats.Timeline)
}

func (s *Server) handleStatisticsCompanies(w http.ResponseWriter, r *http.Request) {
	serveFiltered(s, w, r, s.stats.Companies)
}

func (s *Server) handleStatisticsSuccessRates(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	summary, err := s.stats.SuccessRates(r.Context(), userID)
	if err != nil {
		s.failure(w, r, err, "Failed to compute statistics")
		return
	}

	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleStatisticsTopCompanies(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	limit := statistics.DefaultTopCompaniesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxTopCompaniesLimit {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxTopCompaniesLimit))
			return
		}
		limit = n
	}

	companies, err := s.stats.TopCompanies(r.Context(), userID, limit)
	if err != nil {
		s.failure(w, r, err, "Failed to compute statistics")
		return
	}

	s.jsonResponse(w, http.StatusOK, companies)
}

func (s *Server) handleStatisticsMonthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < minReportYear || year > maxReportYear {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("year must be between %d and %d", minReportYear, maxReportYear))
		return
	}

	months, err := s.stats.Monthly(r.Context(), userID, year)
	if err != nil {
		s.failure(w, r, err, "Failed to compute statistics")
		return
	}

	s.jsonResponse(w, http.StatusOK, months)
}

func (s *Server) handleStatisticsCompanyDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		s.errorResponse(w, http.StatusBadRequest, "Company name is required")
		return
	}

	details, err := s.stats.CompanyDetails(r.Context(), userID, name)
	if err != nil {
		s.failure(w, r, err, "Failed to compute statistics")
		return
	}

	s.jsonResponse(w, http.StatusOK, details)
}

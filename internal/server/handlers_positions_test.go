package server

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositionListOptions(t *testing.T) {
	opts, err := parsePositionListOptions(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 20, opts.PerPage)

	opts, err = parsePositionListOptions(url.Values{
		"status":     {"offer"},
		"date_from":  {"2024-01-01"},
		"date_to":    {"2024-03-31"},
		"sort_by":    {"company"},
		"sort_order": {"ASC"},
		"page":       {"3"},
		"per_page":   {"50"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusOffer, opts.Status)
	assert.Equal(t, "2024-01-01", opts.DateFrom.String())
	assert.Equal(t, "2024-03-31", opts.DateTo.String())
	assert.Equal(t, "asc", opts.SortOrder)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, 50, opts.PerPage)

	bad := []url.Values{
		{"status": {"ghosted"}},
		{"date_from": {"01/02/2024"}},
		{"sort_by": {"salary; DROP TABLE positions"}},
		{"sort_order": {"sideways"}},
		{"page": {"0"}},
		{"page": {"100001"}},
		{"page": {"9223372036854775807"}},
		{"per_page": {"101"}},
		{"per_page": {"many"}},
	}
	for _, q := range bad {
		_, err := parsePositionListOptions(q)
		assert.Error(t, err, "%v", q)
		assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	}
}

func TestPositionCRUD(t *testing.T) {
	ts := newTestServer(t, nil)
	token, userID := ts.register(t, "crud@example.com")

	created := ts.createPosition(t, token, "Acme", "", "2024-01-15")
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, types.StatusApplied, created.Status, "status defaults to applied")
	assert.Equal(t, "2024-01-15", created.ApplicationDate.String())

	path := "/positions/" + created.ID.String()

	w := ts.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got types.Position
	decode(t, w, &got)
	assert.Equal(t, "Acme", got.Company)

	w = ts.do(t, http.MethodPut, path, token, map[string]any{"status": "interviewing", "location": "Remote"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.Position
	decode(t, w, &updated)
	assert.Equal(t, types.StatusInterviewing, updated.Status)
	assert.Equal(t, "Remote", updated.Location)
	assert.Equal(t, "Acme", updated.Company, "untouched fields are kept")
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	w = ts.do(t, http.MethodPut, path, token, map[string]any{"application_date": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code, "an empty date cannot clear a required column")

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, token, nil).Code)
}

func TestCreatePosition_Validation(t *testing.T) {
	ts := newTestServer(t, nil)
	token, _ := ts.register(t, "validate@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"company": "Acme", "application_date": "2024-01-01"}},
		{"missing date", map[string]any{"title": "Dev", "company": "Acme"}},
		{"bad status", map[string]any{"title": "Dev", "company": "Acme", "status": "ghosted", "application_date": "2024-01-01"}},
		{"bad date", map[string]any{"title": "Dev", "company": "Acme", "application_date": "Jan 1"}},
		{"empty date", map[string]any{"title": "Dev", "company": "Acme", "application_date": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/positions", token, tt.body).Code)
		})
	}
}

func TestPositions_OwnerScoped(t *testing.T) {
	ts := newTestServer(t, nil)
	owner, _ := ts.register(t, "owner@example.com")
	other, _ := ts.register(t, "other@example.com")

	p := ts.createPosition(t, owner, "Acme", types.StatusApplied, "2024-01-15")
	path := "/positions/" + p.ID.String()

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPut, path, other, map[string]any{"title": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, other, nil).Code)

	w := ts.do(t, http.MethodGet, "/positions", other, nil)
	var list types.PositionListResponse
	decode(t, w, &list)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Positions)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/positions/not-a-uuid", owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/positions/"+uuid.NewString(), owner, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, path, "", nil).Code)
}

func TestListPositions_FiltersAndPaging(t *testing.T) {
	ts := newTestServer(t, nil)
	token, _ := ts.register(t, "list@example.com")

	for i := 1; i <= 5; i++ {
		ts.createPosition(t, token, fmt.Sprintf("Company %d", i), types.StatusApplied, fmt.Sprintf("2024-01-%02d", i))
	}
	ts.createPosition(t, token, "Globex", types.StatusOffer, "2024-02-01")

	w := ts.do(t, http.MethodGet, "/positions?per_page=2&page=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.PositionListResponse
	decode(t, w, &page)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Positions, 2)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, "Company 4", page.Positions[0].Company, "newest application first")

	w = ts.do(t, http.MethodGet, "/positions?per_page=2&page=3", token, nil)
	decode(t, w, &page)
	assert.False(t, page.HasNext)

	w = ts.do(t, http.MethodGet, "/positions?status=offer", token, nil)
	decode(t, w, &page)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Globex", page.Positions[0].Company)

	w = ts.do(t, http.MethodGet, "/positions?company=company&date_to=2024-01-02", token, nil)
	decode(t, w, &page)
	assert.Equal(t, 2, page.Total)

	w = ts.do(t, http.MethodGet, "/positions?search=globex", token, nil)
	decode(t, w, &page)
	assert.Equal(t, 1, page.Total)

	w = ts.do(t, http.MethodGet, "/positions?per_page=500", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "per_page")
}

func TestGetPosition_IncludesInterviews(t *testing.T) {
	ts := newTestServer(t, nil)
	token, _ := ts.register(t, "withiv@example.com")
	p := ts.createPosition(t, token, "Acme", types.StatusInterviewing, "2024-01-15")

	w := ts.do(t, http.MethodPost, "/positions/"+p.ID.String()+"/interviews", token, map[string]any{
		"type":           "technical",
		"place":          "video",
		"scheduled_date": "2024-01-20T15:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/positions/"+p.ID.String(), token, nil)
	var got types.Position
	decode(t, w, &got)
	require.Len(t, got.Interviews, 1)
	assert.Equal(t, types.InterviewTechnical, got.Interviews[0].Type)
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/db"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// parsePositionListOptions reads the listing query string.
func parsePositionListOptions(q url.Values) (types.PositionListOptions, error) {
	opts := types.PositionListOptions{
		Company:   strings.TrimSpace(q.Get("company")),
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    q.Get("sort_by"),
		SortOrder: strings.ToLower(q.Get("sort_order")),
		Page:      1,
		PerPage:   db.DefaultPerPage,
	}

	if v := q.Get("status"); v != "" {
		status := types.PositionStatus(v)
		if !status.Valid() {
			return opts, &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", v)}
		}
		opts.Status = status
	}

	for _, p := range []struct {
		key string
		dst **types.Date
	}{{"date_from", &opts.DateFrom}, {"date_to", &opts.DateTo}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		d, err := types.ParseDate(v)
		if err != nil {
			return opts, &ErrValidation{Field: p.key, Message: "must be YYYY-MM-DD"}
		}
		*p.dst = &d
	}

	if opts.SortBy != "" && !db.IsPositionSortColumn(opts.SortBy) {
		return opts, &ErrValidation{Field: "sort_by", Message: fmt.Sprintf("cannot sort by %q", opts.SortBy)}
	}
	if opts.SortOrder != "" && opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return opts, &ErrValidation{Field: "sort_order", Message: "must be asc or desc"}
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 || page > db.MaxPage {
			return opts, &ErrValidation{Field: "page", Message: fmt.Sprintf("must be between 1 and %d", db.MaxPage)}
		}
		opts.Page = page
	}
	if v := q.Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > db.MaxPerPage {
			return opts, &ErrValidation{Field: "per_page", Message: fmt.Sprintf("must be between 1 and %d", db.MaxPerPage)}
		}
		opts.PerPage = perPage
	}

	return opts, nil
}

func (s *Server) handleCreatePosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req types.CreatePositionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	position, err := s.db.CreatePosition(r.Context(), userID, &req)
	if err != nil {
		s.failure(w, r, err, "Failed to create position")
		return
	}

	s.jsonResponse(w, http.StatusCreated, position)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	opts, err := parsePositionListOptions(r.URL.Query())
	if err != nil {
		s.failure(w, r, err, "Invalid query")
		return
	}

	positions, total, err := s.db.ListPositionsPage(r.Context(), userID, opts)
	if err != nil {
		s.failure(w, r, err, "Failed to list positions")
		return
	}
	if positions == nil {
		positions = []types.Position{}
	}

	s.jsonResponse(w, http.StatusOK, types.PositionListResponse{
		Positions: positions,
		Total:     total,
		Page:      opts.Page,
		PerPage:   opts.PerPage,
		HasNext:   opts.Page*opts.PerPage < total,
		HasPrev:   opts.Page > 1,
	})
}

// loadPosition fetches a position of userID, turning a miss into ErrNotFound.
func (s *Server) loadPosition(r *http.Request, userID, id uuid.UUID) (*types.Position, error) {
	position, err := s.db.GetPosition(r.Context(), userID, id)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, &ErrNotFound{Resource: "position", ID: id}
	}
	return position, nil
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "position")
	if !ok {
		return
	}

	position, err := s.loadPosition(r, userID, id)
	if err != nil {
		s.failure(w, r, err, "Failed to get position")
		return
	}

	interviews, err := s.db.ListInterviewsByPosition(r.Context(), userID, id)
	if err != nil {
		s.failure(w, r, err, "Failed to get position")
		return
	}
	position.Interviews = interviews

	s.jsonResponse(w, http.StatusOK, position)
}

func (s *Server) handleUpdatePosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "position")
	if !ok {
		return
	}

	var req types.UpdatePositionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	position, err := s.loadPosition(r, userID, id)
	if err != nil {
		s.failure(w, r, err, "Failed to update position")
		return
	}
	req.Apply(position)

	updated, err := s.db.UpdatePosition(r.Context(), userID, position)
	if err != nil {
		s.failure(w, r, err, "Failed to update position")
		return
	}
	if updated == nil {
		s.failure(w, r, &ErrNotFound{Resource: "position", ID: id}, "Failed to update position")
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "position")
	if !ok {
		return
	}

	err := s.db.DeletePosition(r.Context(), userID, id)
	if errors.Is(err, db.ErrNotFound) {
		err = &ErrNotFound{Resource: "position", ID: id}
	}
	if err != nil {
		s.failure(w, r, err, "Failed to delete position")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

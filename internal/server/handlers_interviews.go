package server

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/db"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

func interviewList(interviews []types.Interview) types.InterviewListResponse {
	if interviews == nil {
		interviews = []types.Interview{}
	}
	return types.InterviewListResponse{Interviews: interviews, Total: len(interviews)}
}

func (s *Server) handleCreateInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	positionID, ok := s.pathID(w, r, "position")
	if !ok {
		return
	}

	var req types.CreateInterviewRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	interview, err := s.db.CreateInterview(r.Context(), userID, positionID, &req)
	if err != nil {
		s.failure(w, r, err, "Failed to create interview")
		return
	}
	if interview == nil {
		s.failure(w, r, &ErrNotFound{Resource: "position", ID: positionID}, "Failed to create interview")
		return
	}

	s.jsonResponse(w, http.StatusCreated, interview)
}

func (s *Server) handleListPositionInterviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	positionID, ok := s.pathID(w, r, "position")
	if !ok {
		return
	}

	if _, err := s.loadPosition(r, userID, positionID); err != nil {
		s.failure(w, r, err, "Failed to list interviews")
		return
	}

	interviews, err := s.db.ListInterviewsByPosition(r.Context(), userID, positionID)
	if err != nil {
		s.failure(w, r, err, "Failed to list interviews")
		return
	}

	s.jsonResponse(w, http.StatusOK, interviewList(interviews))
}

func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	interviews, err := s.db.ListInterviewsByUser(r.Context(), userID)
	if err != nil {
		s.failure(w, r, err, "Failed to list interviews")
		return
	}

	s.jsonResponse(w, http.StatusOK, interviewList(interviews))
}

// loadInterview fetches an interview userID owns, turning a miss into ErrNotFound.
func (s *Server) loadInterview(r *http.Request, userID, id uuid.UUID) (*types.Interview, error) {
	interview, err := s.db.GetInterview(r.Context(), userID, id)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, &ErrNotFound{Resource: "interview", ID: id}
	}
	return interview, nil
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	interview, err := s.loadInterview(r, userID, id)
	if err != nil {
		s.failure(w, r, err, "Failed to get interview")
		return
	}

	s.jsonResponse(w, http.StatusOK, interview)
}

// modifyInterview is the shared read-modify-write path of every interview update.
func (s *Server) modifyInterview(w http.ResponseWriter, r *http.Request, req any, apply func(*types.Interview)) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}
	if !s.decodeAndValidate(w, r, req) {
		return
	}

	interview, err := s.loadInterview(r, userID, id)
	if err != nil {
		s.failure(w, r, err, "Failed to update interview")
		return
	}
	apply(interview)

	updated, err := s.db.UpdateInterview(r.Context(), userID, interview)
	if err != nil {
		s.failure(w, r, err, "Failed to update interview")
		return
	}
	if updated == nil {
		s.failure(w, r, &ErrNotFound{Resource: "interview", ID: id}, "Failed to update interview")
		return
	}

	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateInterview(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateInterviewRequest
	s.modifyInterview(w, r, &req, req.Apply)
}

func (s *Server) handleUpdateInterviewSchedule(w http.ResponseWriter, r *http.Request) {
	var req types.ScheduleUpdateRequest
	s.modifyInterview(w, r, &req, func(iv *types.Interview) {
		iv.ScheduledDate = *req.ScheduledDate
		if req.DurationMinutes != nil {
			d := *req.DurationMinutes
			iv.DurationMinutes = &d
		}
	})
}

func (s *Server) handleUpdateInterviewNotes(w http.ResponseWriter, r *http.Request) {
	var req types.NotesUpdateRequest
	s.modifyInterview(w, r, &req, func(iv *types.Interview) {
		iv.Notes = req.Notes
	})
}

func (s *Server) handleUpdateInterviewOutcome(w http.ResponseWriter, r *http.Request) {
	var req types.OutcomeUpdateRequest
	s.modifyInterview(w, r, &req, func(iv *types.Interview) {
		iv.Outcome = req.Outcome
	})
}

func (s *Server) handleDeleteInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := s.pathID(w, r, "interview")
	if !ok {
		return
	}

	err := s.db.DeleteInterview(r.Context(), userID, id)
	if errors.Is(err, db.ErrNotFound) {
		err = &ErrNotFound{Resource: "interview", ID: id}
	}
	if err != nil {
		s.failure(w, r, err, "Failed to delete interview")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

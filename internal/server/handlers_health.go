package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (s *Server) pingDatabase(r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()
	err := s.db.Ping(ctx)
	if err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
	}
	return err
}

func (s *Server) handleHealthDatabase(w http.ResponseWriter, r *http.Request) {
	if err := s.pingDatabase(r); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "connected"})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if err := s.pingDatabase(r); err != nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

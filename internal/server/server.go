package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/config"
	"github.com/haimn-support/job-search-tracker-api/internal/logging"
	"github.com/haimn-support/job-search-tracker-api/internal/metrics"
	"github.com/haimn-support/job-search-tracker-api/internal/server/middleware"
	"github.com/haimn-support/job-search-tracker-api/internal/server/ratelimit"
	"github.com/haimn-support/job-search-tracker-api/internal/statistics"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          DBClient
	logger      *zap.Logger
	validator   *validator.Validate
	rateLimiter *ratelimit.Limiter
	metrics     *metrics.Metrics
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	stats       *statistics.Engine
	corsOrigins []string
}

// Options holds everything New needs. Store, JWT and Password are required.
type Options struct {
	Port               string
	Store              DBClient
	JWT                *config.JWTConfig
	Password           *config.PasswordConfig
	Limiter            *ratelimit.Limiter
	Metrics            *metrics.Metrics
	Logger             *zap.Logger
	CORSAllowedOrigins []string
}

// New creates a new server instance. The caller owns opts.Store and closes it.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(ratelimit.DefaultConfig(), ratelimit.WithLogger(logger))
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &Server{
		db:          opts.Store,
		logger:      logger,
		validator:   validator.New(),
		rateLimiter: limiter,
		metrics:     m,
		jwtService:  NewJWTService(opts.JWT),
		userService: NewUserService(opts.Store, opts.Password),
		stats:       statistics.NewEngine(opts.Store, statistics.WithObserver(m)),
		corsOrigins: origins,
	}
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, s)

	s.httpServer = &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      s.metrics.Middleware(s.withRateLimit(s.withLogging(s.withCORS(s.routes())))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/database", s.handleHealthDatabase)
	mux.HandleFunc("GET /health/liveness", s.handleLiveness)
	mux.HandleFunc("GET /health/readiness", s.handleReadiness)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	protected("GET /auth/me", s.authHandler.Me)
	protected("POST /auth/refresh", s.authHandler.Refresh)
	protected("PUT /auth/password", s.authHandler.UpdatePassword)

	protected("POST /positions", s.handleCreatePosition)
	protected("GET /positions", s.handleListPositions)
	protected("GET /positions/{id}", s.handleGetPosition)
	protected("PUT /positions/{id}", s.handleUpdatePosition)
	protected("DELETE /positions/{id}", s.handleDeletePosition)

	protected("POST /positions/{id}/interviews", s.handleCreateInterview)
	protected("GET /positions/{id}/interviews", s.handleListPositionInterviews)
	protected("GET /interviews", s.handleListInterviews)
	protected("GET /interviews/{id}", s.handleGetInterview)
	protected("PUT /interviews/{id}", s.handleUpdateInterview)
	protected("PATCH /interviews/{id}", s.handleUpdateInterview)
	protected("DELETE /interviews/{id}", s.handleDeleteInterview)
	protected("PUT /interviews/{id}/schedule", s.handleUpdateInterviewSchedule)
	protected("PUT /interviews/{id}/notes", s.handleUpdateInterviewNotes)
	protected("PUT /interviews/{id}/outcome", s.handleUpdateInterviewOutcome)

	protected("GET /statistics/overview", s.handleStatisticsOverview)
	protected("GET /statistics/dashboard", s.handleStatisticsOverview)
	protected("GET /statistics/timeline", s.handleStatisticsTimeline)
	protected("GET /statistics/companies", s.handleStatisticsCompanies)
	protected("GET /statistics/companies/{name}", s.handleStatisticsCompanyDetails)
	protected("GET /statistics/success-rates", s.handleStatisticsSuccessRates)
	protected("GET /statistics/top-companies", s.handleStatisticsTopCompanies)
	protected("GET /statistics/monthly/{year}", s.handleStatisticsMonthly)

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := s.allowedOrigin(r.Header.Get("Origin")); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowedOrigin(origin string) string {
	for _, allowed := range s.corsOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(r.Context(), clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type loggingRecorder struct {
	http.ResponseWriter
	status int
}

func (r *loggingRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &loggingRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to a status code. Server errors are logged and hidden
// behind message.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(message, zap.String("path", r.URL.Path), zap.Error(err))
		s.errorResponse(w, status, message)
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and returns false on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": extractValidationErrors(err),
		})
		return false
	}
	return true
}

// currentUser returns the authenticated user or writes a 401.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} path value or writes a 400.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// extractClientID extracts the client identifier from the request.
// X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Duration("retry_after", info.RetryAfter),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

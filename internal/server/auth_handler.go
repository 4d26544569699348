package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/haimn-support/job-search-tracker-api/internal/server/middleware"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	server      *Server
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, server *Server) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		server:      server,
	}
}

// tokenResponse issues a token for user and writes it with the given status.
func (h *AuthHandler) tokenResponse(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.server.failure(w, r, err, "Failed to generate token")
		return
	}

	h.server.jsonResponse(w, status, types.LoginResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: h.jwtService.ExpiresInSeconds(),
	})
}

// Register handles user registration requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.RegisterRequest
	if !h.server.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.server.failure(w, r, err, "Failed to register user")
		return
	}

	h.tokenResponse(w, r, http.StatusCreated, user)
}

// Login handles user login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.server.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.server.failure(w, r, err, "Failed to log in")
		return
	}

	h.tokenResponse(w, r, http.StatusOK, user)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.server.currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.server.failure(w, r, err, "Failed to get user")
		return
	}

	h.server.jsonResponse(w, http.StatusOK, user)
}

// Refresh exchanges the presented bearer token for a new one.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.server.currentUser(w, r)
	if !ok {
		return
	}

	// The account may have been removed since the token was issued.
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.server.failure(w, r, err, "Failed to refresh token")
		return
	}

	token, _ := middleware.BearerToken(r)
	refreshed, err := h.jwtService.RefreshToken(token)
	if err != nil {
		h.server.errorResponse(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	h.server.jsonResponse(w, http.StatusOK, types.LoginResponse{
		User:      user,
		Token:     refreshed,
		TokenType: "Bearer",
		ExpiresIn: h.jwtService.ExpiresInSeconds(),
	})
}

// UpdatePassword handles password update requests for the authenticated user.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.server.currentUser(w, r)
	if !ok {
		return
	}

	var req types.UpdatePasswordRequest
	if !h.server.decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.server.failure(w, r, err, "Failed to update password")
		return
	}

	h.server.jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

// ValidationDetail describes one rejected request field.
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) []ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []ValidationDetail{{Field: "body", Message: "invalid request"}}
	}

	details := make([]ValidationDetail, 0, len(validationErrors))
	for _, ve := range validationErrors {
		message := ve.Tag()
		if ve.Param() != "" {
			message += "=" + ve.Param()
		}
		details = append(details, ValidationDetail{Field: ve.Field(), Message: message})
	}
	return details
}

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/yassinebz/expensetracker/internal/common"
	"github.com/yassinebz/expensetracker/internal/server/services"
)

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type tokenResponse struct {
	AccessToken      string `json:"accessToken"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	session, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "User registered")
	s.writeSession(w, session)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeSession(w, session)
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	raw := s.refreshTokenFromCookie(r)
	if raw == "" {
		s.writeJSONError(w, http.StatusUnauthorized, common.CodeRefreshTokenInvalid.String(), "authentication failed")
		return
	}

	session, err := s.auth.Refresh(r.Context(), raw)
	if err != nil {
		// Whatever went wrong, the presented cookie is no longer usable.
		s.clearRefreshCookie(w)
		s.writeError(w, r, err)
		return
	}

	s.writeSession(w, session)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if raw := s.refreshTokenFromCookie(r); raw != "" {
		if err := s.auth.Logout(r.Context(), raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleLogoutAll(w http.ResponseWriter, r *http.Request, identity *Identity) {
	if err := s.auth.LogoutEverywhere(r.Context(), identity.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "All sessions revoked", "user_id", identity.UserID)
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleChangePassword(w http.ResponseWriter, r *http.Request, identity *Identity) {
	var req changePasswordRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Password changed", "user_id", identity.UserID)
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// writeSession sets the refresh cookie and sends the access token.
func (s *HTTPServer) writeSession(w http.ResponseWriter, session *services.Session) {
	s.setRefreshCookie(w, session.RefreshToken, session.RefreshExpiresAt)
	s.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:      session.AccessToken,
		ExpiresInSeconds: session.ExpiresInSeconds,
	})
}

func (s *HTTPServer) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return false
	}
	return true
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *HTTPServer) writeJSONError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeError maps a service error onto an HTTP status. Auth failures keep
// their machine-readable code but never a reason beyond the generic message;
// anything else is an internal error and is only logged.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := common.CodeOf(err)
	if !ok {
		s.logger.Error(r.Context(), "Request failed", "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if code == common.CodeRefreshTokenReplay {
		s.logger.Warn(r.Context(), "Refresh token replay detected", "event", "refresh_token_replay")
	}

	s.writeJSONError(w, statusForCode(code), code.String(), err.Error())
}

func statusForCode(code common.AuthCode) int {
	switch code {
	case common.CodeEmailAlreadyUsed:
		return http.StatusConflict
	case common.CodeAccountDisabled:
		return http.StatusForbidden
	case common.CodeAccountLocked:
		return http.StatusLocked
	default:
		return http.StatusUnauthorized
	}
}

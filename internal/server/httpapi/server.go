// Package httpapi exposes the authentication subsystem over HTTP: JSON
// request/response bodies, the access token in the Authorization header, and
// the refresh token confined to an HttpOnly cookie.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yassinebz/expensetracker/internal/logging"
	"github.com/yassinebz/expensetracker/internal/server/auth"
	"github.com/yassinebz/expensetracker/internal/server/config"
	"github.com/yassinebz/expensetracker/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// authService is the slice of the services layer the handlers call.
type authService interface {
	Register(ctx context.Context, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*services.Session, error)
	Refresh(ctx context.Context, rawRefreshToken string) (*services.Session, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Logout(ctx context.Context, rawRefreshToken string) error
	LogoutEverywhere(ctx context.Context, userID string) error
}

// tokenVerifier checks an access token and returns its claims.
type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type HTTPServer struct {
	address        string
	auth           authService
	verifier       tokenVerifier
	logger         logging.Logger
	cookieName     string
	cookiePath     string
	cookieSecure   bool
	cookieSameSite http.SameSite
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, as authService, v tokenVerifier) *HTTPServer {
	return &HTTPServer{
		address:        cfg.EndpointAddr,
		auth:           as,
		verifier:       v,
		logger:         l.With("module", "http_server"),
		cookieName:     cfg.RefreshCookieName,
		cookiePath:     cfg.RefreshCookiePath,
		cookieSecure:   cfg.CookieSecure,
		cookieSameSite: parseSameSite(cfg.CookieSameSite),
	}
}

func parseSameSite(mode string) http.SameSite {
	switch mode {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// routes wires the endpoints. Every request passes the authenticate
// middleware; the two endpoints acting on an identity additionally require
// one.
func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("POST /api/auth/logout-all", s.requireUser(s.handleLogoutAll))
	mux.Handle("POST /api/auth/change-password", s.requireUser(s.handleChangePassword))

	return s.authenticate(mux)
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

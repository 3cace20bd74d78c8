// Package server initializes and runs the authentication server: it wires
// configuration, storage, the token services, and the HTTP endpoint, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yassinebz/expensetracker/internal/logging"
	"github.com/yassinebz/expensetracker/internal/server/auth"
	"github.com/yassinebz/expensetracker/internal/server/config"
	"github.com/yassinebz/expensetracker/internal/server/httpapi"
	"github.com/yassinebz/expensetracker/internal/server/repositories/repomanager"
	"github.com/yassinebz/expensetracker/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *auth.Signer
	authService *services.AuthService
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	signer := auth.NewSigner([]byte(cfg.SecretKey))
	rts := services.NewRefreshTokenService(db, m, cfg)
	as := services.NewAuthService(db, m, rts, signer, cfg)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repomanager: m,
		signer:      signer,
		authService: as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config, app.logger, app.authService, app.signer)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "Error closing db", "error", err)
	}

	return nil
}

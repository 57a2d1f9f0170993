// Package server initializes and runs the journal web application.
// It opens the database, applies migrations, wires services into the HTTP
// server and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/learning-journal/journal/internal/logging"
	"github.com/learning-journal/journal/internal/server/config"
	"github.com/learning-journal/journal/internal/server/markdown"
	"github.com/learning-journal/journal/internal/server/repositories/repomanager"
	"github.com/learning-journal/journal/internal/server/services"
	"github.com/learning-journal/journal/internal/server/web"
)

// seams for tests
var (
	openDB         = repomanager.OpenPostgres
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *web.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "secret_key is the built-in default, session cookies can be forged; set SECRET_KEY or -s")
	}
	if c.AuthPasswordHash == "" {
		logger.Warn(ctx, "auth_password_hash is not set, nobody can log in; generate one with journalctl hashpw")
	}

	es := services.NewEntryService(db, rm)
	as := services.NewAuthService(db, rm, c)

	srv, err := web.NewServer(c.EndpointAddrHTTP, logger, es, as, markdown.New(markdown.DefaultStyle), c.CookieSecure)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	var runErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return runErr
}

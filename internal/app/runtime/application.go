// Package runtime wires configuration, storage and the HTTP surface into a
// runnable service and owns its lifecycle.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/jmoiron/sqlx"

	app "github.com/R3E-Network/item_service/internal/app"
	"github.com/R3E-Network/item_service/internal/app/httpapi"
	"github.com/R3E-Network/item_service/internal/app/metrics"
	"github.com/R3E-Network/item_service/internal/app/storage"
	"github.com/R3E-Network/item_service/internal/app/storage/memory"
	"github.com/R3E-Network/item_service/internal/app/storage/postgres"
	"github.com/R3E-Network/item_service/internal/config"
	"github.com/R3E-Network/item_service/internal/platform/database"
	"github.com/R3E-Network/item_service/internal/platform/migrations"
	"github.com/R3E-Network/item_service/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	app        *app.Application
	handler    http.Handler
	httpServer *http.Server
	db         *sqlx.DB

	mu       sync.Mutex
	listener net.Listener
}

// NewApplication builds the store selected by cfg, applies the schema when
// it is backed by PostgreSQL and prepares the HTTP server. Nothing listens
// until Run is called.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewDefault("runtime")
	}

	store, db, err := buildStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("configure store: %w", err)
	}

	application, err := app.New(app.Stores{Items: store}, log)
	if err != nil {
		closeDB(db, log)
		return nil, fmt.Errorf("build application: %w", err)
	}

	handler := httpapi.NewHandler(application, httpapi.Options{
		TestMode: cfg.TestMode(),
		Metrics:  metrics.New(cfg.Metrics.Namespace),
		Logger:   log,
	})

	return &Application{
		cfg:     cfg,
		log:     log,
		app:     application,
		handler: handler,
		db:      db,
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// App returns the wired application services.
func (a *Application) App() *app.Application {
	return a.app
}

// Handler returns the root HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.handler
}

// Addr returns the bound listen address once Run has started listening, or
// the configured address before that.
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.httpServer.Addr
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.httpServer.Addr, err)
	}
	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", ln.Addr())
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops accepting connections, waits for in-flight requests until
// ctx expires and then releases the database pool.
func (a *Application) Shutdown(ctx context.Context) error {
	err := a.httpServer.Shutdown(ctx)
	closeDB(a.db, a.log)
	return err
}

func buildStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (storage.ItemStore, *sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory item store; data is lost on restart")
		return memory.New(), nil, nil
	case config.DriverPostgres, "":
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Apply(ctx, db); err != nil {
		closeDB(db, log)
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return postgres.New(db), db, nil
}

func closeDB(db *sqlx.DB, log *logger.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Warn("error closing database connection")
	}
}

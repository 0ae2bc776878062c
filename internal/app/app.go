// Package app wires configuration, the record store and the calendar
// services together for the server and the CLI.
package app

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/rentalsync/backend/internal/api"
	"github.com/rentalsync/backend/internal/auth"
	"github.com/rentalsync/backend/internal/calendar"
	"github.com/rentalsync/backend/internal/config"
	"github.com/rentalsync/backend/internal/storage"
	"github.com/rentalsync/backend/internal/storage/gormstore"
	"github.com/rentalsync/backend/internal/websocket"
)

// Store is everything the calendar services need from a record store.
type Store interface {
	calendar.UnitStore
	calendar.ReservationReconciler
	calendar.ReservationLister
	calendar.MissionLister
	PingContext(ctx context.Context) error
	Close() error
}

// App holds the wired services.
type App struct {
	Config       *config.Config
	Store        Store
	Hub          *websocket.Hub
	Orchestrator *calendar.Orchestrator
	Exporter     *calendar.Exporter
	Signer       *auth.FeedSigner
}

// Options tune what New wires.
type Options struct {
	// LiveStatus starts a websocket hub publishing sync events.
	LiveStatus bool
}

// New opens and migrates the configured store and builds the services.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config: cfg,
		Store:  store,
		Signer: auth.NewFeedSigner(cfg.Feed.Secret),
	}

	var notifier calendar.SyncNotifier
	if opts.LiveStatus {
		a.Hub = websocket.NewHub()
		go a.Hub.Run()
		notifier = websocket.NewEventBroadcaster(a.Hub)
	}

	parser := calendar.NewParser(cfg.Sync.FetchTimeout)
	importer := calendar.NewImporter(parser, store, store)
	a.Orchestrator = calendar.NewOrchestrator(store, importer, notifier)
	a.Exporter = calendar.NewExporter(store, store)

	if cfg.Feed.Secret == "" {
		log.Println("Warning: feed secret is not set, calendar feed requests will be rejected")
	}

	return a, nil
}

// OpenStore opens the record store selected by the database driver and
// brings its schema up to date.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		gs, err := gormstore.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := gs.Migrate(ctx); err != nil {
			gs.Close()
			return nil, err
		}
		return gs, nil

	case config.DriverSQLite, "":
		db, err := storage.NewDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := storage.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return storage.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// Scheduler returns the in-process sync trigger, or nil when no cron
// schedule is configured.
func (a *App) Scheduler() (*calendar.Scheduler, error) {
	if a.Config.Sync.Cron == "" {
		return nil, nil
	}
	return calendar.NewScheduler(a.Orchestrator, a.Config.Sync.Cron)
}

// Router builds the HTTP handler of the service.
func (a *App) Router() *mux.Router {
	return api.NewRouter(api.Services{
		DB:       a.Store,
		Hub:      a.Hub,
		Syncer:   a.Orchestrator,
		Exporter: a.Exporter,
		Tokens:   a.Signer,
		SyncAuth: auth.BearerSecret{Secret: a.Config.Sync.Secret},
	})
}

// FeedURL returns the subscription URL of a tenant's calendar feed.
func FeedURL(cfg config.FeedConfig, tenantID string) string {
	token := auth.NewFeedSigner(cfg.Secret).Token(tenantID)
	return fmt.Sprintf("%s/calendar/%s?token=%s", cfg.BaseURL, url.PathEscape(tenantID), token)
}

// Close stops the hub and releases the store.
func (a *App) Close() error {
	if a.Hub != nil {
		a.Hub.Stop()
	}
	return a.Store.Close()
}

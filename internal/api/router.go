// Package api provides HTTP routing and handlers for the sync trigger, the
// public calendar feed and the live status stream.
package api

import (
	"github.com/gorilla/mux"

	"github.com/rentalsync/backend/internal/api/handlers"
	"github.com/rentalsync/backend/internal/api/middleware"
	"github.com/rentalsync/backend/internal/websocket"
)

// Services are the collaborators the HTTP layer is wired to.
type Services struct {
	DB       handlers.Pinger
	Hub      *websocket.Hub
	Syncer   handlers.Syncer
	Exporter handlers.FeedExporter
	Tokens   handlers.TokenVerifier
	SyncAuth middleware.Authenticator
}

// NewRouter creates and configures the HTTP router with all routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// Sync trigger, called by the scheduler with the shared secret
	sync := r.PathPrefix("/sync").Subrouter()
	sync.Use(middleware.RequireAuth(s.SyncAuth))
	sync.HandleFunc("/{tenant}", handlers.SyncTenant(s.Syncer)).Methods("POST")
	sync.HandleFunc("/{tenant}/units/{unit}", handlers.SyncHousingUnit(s.Syncer)).Methods("POST")

	// Public feed, authorized by the per-tenant token
	r.HandleFunc("/calendar/{tenantId}", handlers.CalendarFeed(s.Exporter, s.Tokens)).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	if s.Hub != nil {
		api.HandleFunc("/health", handlers.HealthCheck(s.DB, s.Hub)).Methods("GET")
		api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")
	} else {
		api.HandleFunc("/health", handlers.HealthCheck(s.DB, nil)).Methods("GET")
	}

	return r
}

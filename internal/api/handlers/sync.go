package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rentalsync/backend/internal/api/middleware"
	"github.com/rentalsync/backend/internal/calendar"
	"github.com/rentalsync/backend/internal/storage/models"
)

// Syncer runs feed imports for a tenant.
type Syncer interface {
	SyncAll(ctx context.Context, tenantID string) (*models.SyncReport, error)
	SyncUnit(ctx context.Context, tenantID, unitID string) (*models.SyncReport, error)
}

// SyncTenant returns a handler that imports every feed of a tenant.
func SyncTenant(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := mux.Vars(r)["tenant"]
		holdWriteDeadline(w)

		report, err := syncer.SyncAll(r.Context(), tenantID)
		if err != nil {
			log.Printf("Sync failed for tenant %s: %v", tenantID, err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to sync calendars")
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// SyncHousingUnit returns a handler that imports the feed of one unit.
func SyncHousingUnit(syncer Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		tenantID, unitID := vars["tenant"], vars["unit"]
		holdWriteDeadline(w)

		report, err := syncer.SyncUnit(r.Context(), tenantID, unitID)
		switch {
		case errors.Is(err, calendar.ErrUnitNotFound):
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Housing unit not found")
			return
		case errors.Is(err, calendar.ErrNoFeedURL):
			middleware.WriteError(w, http.StatusUnprocessableEntity, middleware.ErrValidation, "Housing unit has no calendar feed configured")
			return
		case err != nil:
			log.Printf("Sync failed for unit %s: %v", unitID, err)
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to sync calendar")
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// holdWriteDeadline lifts the server write timeout for the request. A sync
// walks every feed in turn and may outlast it, and the caller still needs
// the report.
func holdWriteDeadline(w http.ResponseWriter) {
	err := http.NewResponseController(w).SetWriteDeadline(time.Time{})
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("Could not lift write deadline: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

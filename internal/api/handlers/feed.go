package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// FeedExporter renders a tenant's calendar document.
type FeedExporter interface {
	Export(ctx context.Context, tenantID string) ([]byte, error)
}

// TokenVerifier checks per-tenant feed tokens.
type TokenVerifier interface {
	Verify(tenantID, token string) bool
}

// CalendarFeed returns a handler serving the public iCal feed of a tenant.
// Errors are answered in plain text since the clients are calendar apps.
func CalendarFeed(exporter FeedExporter, tokens TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := mux.Vars(r)["tenantId"]
		token := r.URL.Query().Get("token")

		if token == "" || !tokens.Verify(tenantID, token) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		doc, err := exporter.Export(r.Context(), tenantID)
		if err != nil {
			log.Printf("Calendar export failed for tenant %s: %v", tenantID, err)
			http.Error(w, "Failed to generate calendar", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tenantID+".ics"))
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
		w.WriteHeader(http.StatusOK)
		w.Write(doc)
	}
}

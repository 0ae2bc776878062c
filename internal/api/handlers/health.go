// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"context"
	"net/http"
)

// Pinger checks the record store connection.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
	Clients     int    `json:"ws_clients"`
}

// ClientCounter reports the number of live status subscribers.
type ClientCounter interface {
	ClientCount() int
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db Pinger, clients ClientCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.PingContext(r.Context()) == nil

		status := "healthy"
		code := http.StatusOK
		if !dbConnected {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}
		if clients != nil {
			response.Clients = clients.ClientCount()
		}

		writeJSON(w, code, response)
	}
}

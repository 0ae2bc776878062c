package websocket

import (
	"log"

	"github.com/rentalsync/backend/internal/storage/models"
)

// EventBroadcaster turns sync outcomes into WebSocket events. It satisfies
// calendar.SyncNotifier.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// UnitSynced sends a calendar.unit_synced event.
func (b *EventBroadcaster) UnitSynced(unit models.HousingUnit, result models.ImportResult) {
	b.broadcast(NewMessage(TypeCalendarUnitSynced, UnitSyncedPayload{
		TenantID: unit.TenantID,
		UnitID:   unit.ID,
		Unit:     unit.Name,
		Created:  result.Created,
		Updated:  result.Updated,
		Skipped:  result.Skipped,
	}))
}

// UnitSyncFailed sends a calendar.sync_error event.
func (b *EventBroadcaster) UnitSyncFailed(unit models.HousingUnit, err error) {
	b.broadcast(NewMessage(TypeCalendarSyncError, SyncErrorPayload{
		TenantID: unit.TenantID,
		UnitID:   unit.ID,
		Unit:     unit.Name,
		Error:    "sync_error",
		Message:  err.Error(),
	}))
}

// SyncCompleted sends a calendar.sync_completed event.
func (b *EventBroadcaster) SyncCompleted(report models.SyncReport) {
	status := "success"
	if len(report.Errors) > 0 {
		status = "partial"
	}

	b.broadcast(NewMessage(TypeCalendarSyncCompleted, SyncCompletedPayload{
		TenantID: report.TenantID,
		Status:   status,
		Units:    report.Units,
		Created:  report.Created,
		Updated:  report.Updated,
		Skipped:  report.Skipped,
		Failed:   len(report.Errors),
		SyncedAt: report.SyncedAt,
	}))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}

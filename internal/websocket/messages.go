package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	TypeCalendarUnitSynced    MessageType = "calendar.unit_synced"
	TypeCalendarSyncCompleted MessageType = "calendar.sync_completed"
	TypeCalendarSyncError     MessageType = "calendar.sync_error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// UnitSyncedPayload is the payload for calendar.unit_synced events.
type UnitSyncedPayload struct {
	TenantID string `json:"tenant_id"`
	UnitID   string `json:"unit_id"`
	Unit     string `json:"unit"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

// SyncErrorPayload is the payload for calendar.sync_error events.
type SyncErrorPayload struct {
	TenantID string `json:"tenant_id"`
	UnitID   string `json:"unit_id"`
	Unit     string `json:"unit"`
	Error    string `json:"error"`
	Message  string `json:"message"`
}

// SyncCompletedPayload is the payload for calendar.sync_completed events.
type SyncCompletedPayload struct {
	TenantID string    `json:"tenant_id"`
	Status   string    `json:"status"` // "success" or "partial"
	Units    int       `json:"units"`
	Created  int       `json:"created"`
	Updated  int       `json:"updated"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	SyncedAt time.Time `json:"synced_at"`
}

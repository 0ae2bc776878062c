package websocket

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentalsync/backend/internal/storage/models"
)

func startHub(t *testing.T) (*Hub, *Client) {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	client := NewClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	return hub, client
}

func receive(t *testing.T, client *Client) map[string]any {
	t.Helper()

	select {
	case data := <-client.Send():
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestEventBroadcaster_UnitSynced(t *testing.T) {
	hub, client := startHub(t)
	b := NewEventBroadcaster(hub)

	unit := models.HousingUnit{ID: "u1", TenantID: "t1", Name: "Loft"}
	b.UnitSynced(unit, models.ImportResult{Created: 2, Updated: 1, Skipped: 3})

	msg := receive(t, client)
	assert.Equal(t, string(TypeCalendarUnitSynced), msg["type"])

	payload := msg["payload"].(map[string]any)
	assert.Equal(t, "u1", payload["unit_id"])
	assert.Equal(t, "Loft", payload["unit"])
	assert.EqualValues(t, 2, payload["created"])
	assert.EqualValues(t, 3, payload["skipped"])
}

func TestEventBroadcaster_UnitSyncFailed(t *testing.T) {
	hub, client := startHub(t)
	b := NewEventBroadcaster(hub)

	b.UnitSyncFailed(models.HousingUnit{ID: "u2", TenantID: "t1", Name: "Studio"}, errors.New("connection refused"))

	msg := receive(t, client)
	assert.Equal(t, string(TypeCalendarSyncError), msg["type"])
	payload := msg["payload"].(map[string]any)
	assert.Equal(t, "connection refused", payload["message"])
}

func TestEventBroadcaster_SyncCompletedPartial(t *testing.T) {
	hub, client := startHub(t)
	b := NewEventBroadcaster(hub)

	b.SyncCompleted(models.SyncReport{
		TenantID: "t1",
		Units:    3,
		Created:  4,
		Errors:   []models.UnitSyncError{{UnitID: "u2", Unit: "Studio", Error: "boom"}},
	})

	msg := receive(t, client)
	assert.Equal(t, string(TypeCalendarSyncCompleted), msg["type"])
	payload := msg["payload"].(map[string]any)
	assert.Equal(t, "partial", payload["status"])
	assert.EqualValues(t, 1, payload["failed"])
}

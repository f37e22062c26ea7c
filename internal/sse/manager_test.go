package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
)

func TestManagerConnectionLifecycle(t *testing.T) {
	m := NewManager(logger.New())

	assert.False(t, m.HasConnection("owner-1"))

	channel := m.AddClient("owner-1")
	assert.True(t, m.HasConnection("owner-1"))
	assert.Equal(t, 1, m.ConnectionCount("owner-1"))

	m.RemoveClient("owner-1", channel)
	assert.False(t, m.HasConnection("owner-1"))

	// Removing again is a no-op.
	m.RemoveClient("owner-1", channel)
}

func TestManagerBroadcastSyncReport(t *testing.T) {
	m := NewManager(logger.New())
	channel := m.AddClient("owner-1")
	defer m.RemoveClient("owner-1", channel)

	report := &model.SyncReport{AccountID: "acc-1", Processed: 3, Imported: 2}
	m.BroadcastSyncReport("owner-1", report)

	select {
	case payload := <-channel:
		var event struct {
			Type string           `json:"type"`
			Data model.SyncReport `json:"data"`
		}
		require.NoError(t, json.Unmarshal(payload, &event))
		assert.Equal(t, "sync_report", event.Type)
		assert.Equal(t, 2, event.Data.Imported)
	case <-time.After(time.Second):
		t.Fatal("expected an event on the client channel")
	}
}

func TestManagerBroadcastOnlyToOwner(t *testing.T) {
	m := NewManager(logger.New())
	mine := m.AddClient("owner-1")
	theirs := m.AddClient("owner-2")
	defer m.RemoveClient("owner-1", mine)
	defer m.RemoveClient("owner-2", theirs)

	m.BroadcastMessage("owner-1", &model.Message{ID: "m1", OwnerID: "owner-1"})

	select {
	case <-mine:
	case <-time.After(time.Second):
		t.Fatal("owner-1 should have received the event")
	}

	select {
	case <-theirs:
		t.Fatal("owner-2 must not receive owner-1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

package sse

import (
	"encoding/json"
	"sync"
	"time"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
)

// sendTimeout bounds how long a broadcast waits on a slow client before
// giving up on that channel.
const sendTimeout = 5 * time.Second

// Manager tracks live Server-Sent Event connections per owner and pushes
// sync results to them as they happen.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[chan []byte]bool // ownerID -> connection channels
	logger  *logger.Logger
}

func NewManager(logger *logger.Logger) *Manager {
	return &Manager{
		clients: make(map[string]map[chan []byte]bool),
		logger:  logger,
	}
}

// AddClient registers a new connection for an owner and returns the channel
// events arrive on. The caller must hand the channel back to RemoveClient
// when the connection ends.
func (m *Manager) AddClient(ownerID string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.clients[ownerID] == nil {
		m.clients[ownerID] = make(map[chan []byte]bool)
	}
	channel := make(chan []byte, 10)
	m.clients[ownerID][channel] = true

	m.logger.Debug("SSE client added for owner", ownerID, "- connections:", len(m.clients[ownerID]))
	return channel
}

func (m *Manager) RemoveClient(ownerID string, channel chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned, exists := m.clients[ownerID]
	if !exists {
		return
	}
	if _, ok := owned[channel]; !ok {
		return
	}
	delete(owned, channel)
	close(channel)
	if len(owned) == 0 {
		delete(m.clients, ownerID)
	}
	m.logger.Debug("SSE client removed for owner", ownerID)
}

// BroadcastMessage pushes a freshly imported message to the owner's
// connections.
func (m *Manager) BroadcastMessage(ownerID string, msg *model.Message) {
	m.broadcast(ownerID, "new_message", msg)
}

// BroadcastSyncReport pushes the result of a completed sync pass.
func (m *Manager) BroadcastSyncReport(ownerID string, report *model.SyncReport) {
	m.broadcast(ownerID, "sync_report", report)
}

func (m *Manager) broadcast(ownerID, eventType string, data interface{}) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned, exists := m.clients[ownerID]
	if !exists {
		return
	}

	event := map[string]interface{}{
		"type": eventType,
		"data": data,
		"time": time.Now().Unix(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		m.logger.Error("Failed to marshal SSE event:", err)
		return
	}

	for channel := range owned {
		select {
		case channel <- payload:
		case <-time.After(sendTimeout):
			m.logger.Warn("Timeout pushing SSE event to owner", ownerID)
		}
	}
}

// HasConnection reports whether the owner has at least one live connection.
func (m *Manager) HasConnection(ownerID string) bool {
	return m.ConnectionCount(ownerID) > 0
}

func (m *Manager) ConnectionCount(ownerID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[ownerID])
}

// Close tears down every connection.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for ownerID, owned := range m.clients {
		for channel := range owned {
			close(channel)
		}
		delete(m.clients, ownerID)
	}
}

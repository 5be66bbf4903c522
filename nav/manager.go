package nav

import (
	"sync"

	"nextride/models"
)

// Manager keys one tracker per active ride. Sessions are independent: no
// state is shared between rides, and starting a session for a ride that
// already has one replaces it outright.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Tracker
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Tracker)}
}

// Start opens (or replaces) the navigation session for a ride.
func (m *Manager) Start(rideID string, route *Route, dest models.Coordinates) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := NewTracker()
	t.Start(route, dest)
	m.sessions[rideID] = t
	return t
}

// Get returns the ride's tracker, or nil when no session is active.
func (m *Manager) Get(rideID string) *Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[rideID]
}

// Stop tears down the ride's session, if any.
func (m *Manager) Stop(rideID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.sessions[rideID]; ok {
		t.Stop()
		delete(m.sessions, rideID)
	}
}

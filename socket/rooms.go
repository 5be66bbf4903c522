package socket

import "sync"

// roomRoster counts which sockets watch which ride feeds. The per-ride Redis
// subscription is opened by the first watcher and torn down when the last one
// leaves, so a long-running server never accumulates idle subscriptions.
type roomRoster struct {
	mu       sync.Mutex
	watchers map[string]map[string]struct{} // rideID -> socket IDs
	rides    map[string]map[string]struct{} // socket ID -> rideIDs
}

func newRoomRoster() *roomRoster {
	return &roomRoster{
		watchers: make(map[string]map[string]struct{}),
		rides:    make(map[string]map[string]struct{}),
	}
}

// join records a watcher and reports whether it is the ride's first.
func (r *roomRoster) join(socketID, rideID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watchers[rideID] == nil {
		r.watchers[rideID] = make(map[string]struct{})
	}
	if _, ok := r.watchers[rideID][socketID]; ok {
		return false
	}
	r.watchers[rideID][socketID] = struct{}{}

	if r.rides[socketID] == nil {
		r.rides[socketID] = make(map[string]struct{})
	}
	r.rides[socketID][rideID] = struct{}{}

	return len(r.watchers[rideID]) == 1
}

// leave removes a watcher and reports whether the ride is now unwatched.
// Leaving a ride the socket never joined is a no-op.
func (r *roomRoster) leave(socketID, rideID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leaveLocked(socketID, rideID)
}

func (r *roomRoster) leaveLocked(socketID, rideID string) bool {
	set, ok := r.watchers[rideID]
	if !ok {
		return false
	}
	if _, ok := set[socketID]; !ok {
		return false
	}
	delete(set, socketID)
	delete(r.rides[socketID], rideID)

	if len(set) == 0 {
		delete(r.watchers, rideID)
		return true
	}
	return false
}

// drop removes every membership of a disconnected socket and returns the
// rides left with no watchers.
func (r *roomRoster) drop(socketID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var released []string
	for rideID := range r.rides[socketID] {
		if r.leaveLocked(socketID, rideID) {
			released = append(released, rideID)
		}
	}
	delete(r.rides, socketID)
	return released
}

// release forgets a ride entirely, for terminal rides whose feed is closed
// regardless of who is still in the room.
func (r *roomRoster) release(rideID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for socketID := range r.watchers[rideID] {
		delete(r.rides[socketID], rideID)
	}
	delete(r.watchers, rideID)
}

package nav

import (
	"sync"
	"time"

	"nextride/geo"
	"nextride/models"
)

const (
	// ArrivalThresholdKm declares arrival when the position is within 100 m
	// of the destination.
	ArrivalThresholdKm = 0.1

	// instructionAdvanceKm advances to the next instruction when within 50 m
	// of the current anchor.
	instructionAdvanceKm = 0.05

	// AverageSpeedKmh is the assumed city speed for remaining-time estimates.
	// Deliberately not re-derived from per-step durations.
	AverageSpeedKmh = 30.0

	// Position samples closer together than these gates are dropped.
	minSampleInterval   = 3 * time.Second
	minSampleDistanceKm = 0.005 // 5 meters
)

// NearestPointOnRoute scans the coordinate sequence for the point closest to
// pos and returns its index and distance in km. Ties keep the first minimal
// index. An empty route yields (-1, 0).
func NearestPointOnRoute(pos models.Coordinates, coords []models.Coordinates) (int, float64) {
	if len(coords) == 0 {
		return -1, 0
	}

	nearest := 0
	minDist := geo.HaversineKm(pos, coords[0])
	for i := 1; i < len(coords); i++ {
		if d := geo.HaversineKm(pos, coords[i]); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest, minDist
}

// Progress returns how far along the coordinate sequence the position is, as
// a percentage of point indexes. Empty or single-point routes yield 0.
func Progress(pos models.Coordinates, coords []models.Coordinates) float64 {
	if len(coords) < 2 {
		return 0
	}
	idx, _ := NearestPointOnRoute(pos, coords)
	return float64(idx) / float64(len(coords)-1) * 100
}

// CurrentInstruction picks the instruction whose anchor is nearest to the
// position. Within 50 m of that anchor the step counts as reached and the
// next one is returned instead, unless it is already the final instruction.
// An empty list yields nil.
func CurrentInstruction(pos models.Coordinates, instructions []Instruction) *Instruction {
	if len(instructions) == 0 {
		return nil
	}

	nearest := 0
	minDist := geo.HaversineKm(pos, instructions[0].Anchor)
	for i := 1; i < len(instructions); i++ {
		if d := geo.HaversineKm(pos, instructions[i].Anchor); d < minDist {
			minDist = d
			nearest = i
		}
	}

	if minDist < instructionAdvanceKm && nearest < len(instructions)-1 {
		return &instructions[nearest+1]
	}
	return &instructions[nearest]
}

// Remaining sums the consecutive-point distances from the nearest route
// index to the end, and derives time from it at AverageSpeedKmh. Degenerate
// routes yield {0, 0}; a route that has not loaded yet is not an error.
func Remaining(pos models.Coordinates, coords []models.Coordinates) (distanceKm, timeMin float64) {
	idx, _ := NearestPointOnRoute(pos, coords)
	if idx < 0 {
		return 0, 0
	}

	for i := idx; i < len(coords)-1; i++ {
		distanceKm += geo.HaversineKm(coords[i], coords[i+1])
	}
	return distanceKm, distanceKm / AverageSpeedKmh * 60
}

// Update is the result of feeding one position sample to a tracker.
type Update struct {
	State   State
	Arrived bool
}

// Tracker is one navigation session: the active route, the destination, and
// the last derived state. Each sample is processed to completion under the
// lock, so there is never an overlapping recomputation for a session.
// Starting a new session discards everything from the previous one.
type Tracker struct {
	mu    sync.Mutex
	route *Route
	dest  models.Coordinates
	state State

	lastSample time.Time
	lastPos    *models.Coordinates
	arrived    bool

	// now is swappable for tests.
	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Start begins a session toward dest along route, dropping any prior session
// state entirely.
func (t *Tracker) Start(route *Route, dest models.Coordinates) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = route
	t.dest = dest
	t.arrived = false
	t.lastSample = time.Time{}
	t.lastPos = nil
	t.state = State{IsNavigating: true}
}

// Stop ends the session and resets the derived state to empty.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = nil
	t.arrived = false
	t.lastSample = time.Time{}
	t.lastPos = nil
	t.state = State{}
}

// State returns the last derived state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Navigating reports whether a session is active.
func (t *Tracker) Navigating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.IsNavigating
}

// Feed processes one live position sample. A sample both within 3 s and
// within 5 m of the previous accepted one is dropped and returns the prior
// state.
// Arrival fires once per session, when the position comes within 100 m of
// the destination; it only signals; advancing the ride is the lifecycle
// manager's call.
func (t *Tracker) Feed(pos models.Coordinates) Update {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.route == nil {
		return Update{State: t.state}
	}

	now := t.now()
	if t.lastPos != nil {
		if now.Sub(t.lastSample) < minSampleInterval &&
			geo.HaversineKm(*t.lastPos, pos) < minSampleDistanceKm {
			return Update{State: t.state}
		}
	}
	t.lastSample = now
	p := pos
	t.lastPos = &p

	remainingKm, remainingMin := Remaining(pos, t.route.Coordinates)
	t.state = State{
		IsNavigating:       true,
		CurrentInstruction: CurrentInstruction(pos, t.route.Instructions),
		RemainingKm:        remainingKm,
		RemainingMin:       remainingMin,
		Position:           &p,
		Progress:           Progress(pos, t.route.Coordinates),
	}

	arrived := false
	if !t.arrived && geo.HaversineKm(pos, t.dest) < ArrivalThresholdKm {
		t.arrived = true
		arrived = true
	}

	return Update{State: t.state, Arrived: arrived}
}

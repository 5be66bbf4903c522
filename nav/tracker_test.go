package nav

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nextride/models"
)

// A straight north-south line through San Francisco, ~0.01 deg (~1.1 km)
// between consecutive points.
func testRoute() *Route {
	coords := make([]models.Coordinates, 11)
	for i := range coords {
		coords[i] = models.Coordinates{
			Latitude:  37.70 + float64(i)*0.01,
			Longitude: -122.42,
		}
	}
	return &Route{
		DistanceKm:  11,
		DurationMin: 22,
		Coordinates: coords,
		Instructions: []Instruction{
			{Text: "Head north", Maneuver: "straight", Anchor: coords[0]},
			{Text: "Continue straight", Maneuver: "straight", Anchor: coords[5]},
			{Text: "Arrive at destination", Maneuver: "arrive", Anchor: coords[10]},
		},
	}
}

func TestNearestPointOnRoute(t *testing.T) {
	r := testRoute()

	idx, dist := NearestPointOnRoute(r.Coordinates[3], r.Coordinates)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 0.0, dist)

	// Slightly past point 3, still nearer to 3 than 4.
	idx, _ = NearestPointOnRoute(models.Coordinates{Latitude: 37.733, Longitude: -122.42}, r.Coordinates)
	assert.Equal(t, 3, idx)
}

func TestNearestPointOnRoute_Empty(t *testing.T) {
	idx, dist := NearestPointOnRoute(models.Coordinates{Latitude: 1, Longitude: 1}, nil)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, dist)
}

func TestNearestPointOnRoute_TieKeepsFirstIndex(t *testing.T) {
	p := models.Coordinates{Latitude: 37.70, Longitude: -122.42}
	coords := []models.Coordinates{p, {Latitude: 37.71, Longitude: -122.42}, p}
	idx, dist := NearestPointOnRoute(p, coords)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 0.0, dist)
}

func TestProgress_Monotonic(t *testing.T) {
	r := testRoute()

	prev := -1.0
	for i := range r.Coordinates {
		got := Progress(r.Coordinates[i], r.Coordinates)
		if got < prev {
			t.Fatalf("progress regressed at point %d: %.2f < %.2f", i, got, prev)
		}
		prev = got
	}
	assert.Equal(t, 100.0, prev)
}

func TestProgress_Degenerate(t *testing.T) {
	p := models.Coordinates{Latitude: 37.7, Longitude: -122.4}
	assert.Equal(t, 0.0, Progress(p, nil))
	assert.Equal(t, 0.0, Progress(p, []models.Coordinates{p}))
}

func TestCurrentInstruction(t *testing.T) {
	r := testRoute()

	// Far from every anchor but nearest to the middle one.
	got := CurrentInstruction(models.Coordinates{Latitude: 37.748, Longitude: -122.42}, r.Instructions)
	require.NotNil(t, got)
	assert.Equal(t, "Continue straight", got.Text)

	// Standing on the middle anchor: that step is reached, show the next.
	got = CurrentInstruction(r.Instructions[1].Anchor, r.Instructions)
	require.NotNil(t, got)
	assert.Equal(t, "Arrive at destination", got.Text)

	// Standing on the final anchor: nothing further to advance to.
	got = CurrentInstruction(r.Instructions[2].Anchor, r.Instructions)
	require.NotNil(t, got)
	assert.Equal(t, "Arrive at destination", got.Text)
}

func TestCurrentInstruction_Empty(t *testing.T) {
	assert.Nil(t, CurrentInstruction(models.Coordinates{Latitude: 1, Longitude: 1}, nil))
}

func TestRemaining(t *testing.T) {
	r := testRoute()

	// From the start the whole route remains, ~11 km at 30 km/h => ~22 min.
	dist, mins := Remaining(r.Coordinates[0], r.Coordinates)
	assert.InDelta(t, 11.1, dist, 0.3)
	assert.InDelta(t, dist/AverageSpeedKmh*60, mins, 1e-9)

	// From the end nothing remains.
	dist, mins = Remaining(r.Coordinates[10], r.Coordinates)
	assert.Equal(t, 0.0, dist)
	assert.Equal(t, 0.0, mins)
}

func TestRemaining_Degenerate(t *testing.T) {
	dist, mins := Remaining(models.Coordinates{Latitude: 1, Longitude: 1}, nil)
	assert.Equal(t, 0.0, dist)
	assert.Equal(t, 0.0, mins)
}

func trackerAt(t0 time.Time) (*Tracker, *time.Time) {
	now := t0
	tr := NewTracker()
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestTracker_ArrivalThreshold(t *testing.T) {
	r := testRoute()
	dest := r.Coordinates[10]

	tr, now := trackerAt(time.Unix(1000, 0))
	tr.Start(r, dest)

	// 1 km short of the destination: no arrival.
	u := tr.Feed(r.Coordinates[9])
	assert.False(t, u.Arrived)

	*now = now.Add(10 * time.Second)

	// Exactly at the destination: distance 0 < 0.1 km.
	u = tr.Feed(dest)
	assert.True(t, u.Arrived)
	assert.Equal(t, 100.0, u.State.Progress)

	*now = now.Add(10 * time.Second)

	// Arrival fires once per session.
	u = tr.Feed(dest)
	assert.False(t, u.Arrived)
}

func TestTracker_ThrottlesDenseSamples(t *testing.T) {
	r := testRoute()
	tr, now := trackerAt(time.Unix(1000, 0))
	tr.Start(r, r.Coordinates[10])

	first := tr.Feed(r.Coordinates[0])
	require.NotNil(t, first.State.Position)

	// 1 second later, barely moved: dropped, prior state returned.
	*now = now.Add(time.Second)
	nudged := r.Coordinates[0]
	nudged.Latitude += 0.00001 // ~1 m
	second := tr.Feed(nudged)
	assert.Equal(t, first.State, second.State)

	// 1 more second but a real move: accepted despite the short interval.
	*now = now.Add(time.Second)
	third := tr.Feed(r.Coordinates[2])
	assert.NotEqual(t, first.State.Progress, third.State.Progress)
}

func TestTracker_StartDiscardsPriorSession(t *testing.T) {
	r := testRoute()
	tr, now := trackerAt(time.Unix(1000, 0))
	tr.Start(r, r.Coordinates[10])
	tr.Feed(r.Coordinates[5])

	*now = now.Add(time.Minute)
	tr.Start(testRoute(), r.Coordinates[10])

	st := tr.State()
	assert.True(t, st.IsNavigating)
	assert.Nil(t, st.Position)
	assert.Equal(t, 0.0, st.Progress)
}

func TestTracker_StopResetsState(t *testing.T) {
	r := testRoute()
	tr, _ := trackerAt(time.Unix(1000, 0))
	tr.Start(r, r.Coordinates[10])
	tr.Feed(r.Coordinates[5])
	tr.Stop()

	assert.Equal(t, State{}, tr.State())
	// Feeding a stopped tracker is a no-op.
	assert.Equal(t, State{}, tr.Feed(r.Coordinates[6]).State)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := NewManager()
	r := testRoute()

	a := m.Start("ride-a", r, r.Coordinates[10])
	b := m.Start("ride-b", testRoute(), r.Coordinates[10])

	a.Feed(r.Coordinates[4])
	assert.Nil(t, b.State().Position)

	m.Stop("ride-a")
	assert.Nil(t, m.Get("ride-a"))
	assert.NotNil(t, m.Get("ride-b"))
}

package geolocation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWalker_AdvanceNorth(t *testing.T) {
	w := newWalker([]Waypoint{{Lat: 0, Lng: 0}, {Lat: 0.01, Lng: 0}})

	first := w.reading(5, time.Time{})
	assert.False(t, first.HasHeading)

	w.advance(100)
	r := w.reading(5, time.Time{})

	dist, _ := globe.To(0, 0, r.Lat, r.Lng)
	assert.InDelta(t, 100, dist, 0.01)
	assert.InDelta(t, 0, r.Lng, 1e-7)
	assert.True(t, r.HasHeading)
	assert.InDelta(t, 1, math.Cos(r.Heading), 1e-9, "heading north")
}

func TestWalker_TurnsAtWaypoint(t *testing.T) {
	route := []Waypoint{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.001}, {Lat: -0.001, Lng: 0.001}}
	w := newWalker(route)
	leg, _ := globe.To(0, 0, 0, 0.001)

	w.advance(leg + 10)
	r := w.reading(5, time.Time{})

	assert.Less(t, r.Lat, 0.0)
	assert.InDelta(t, -1, math.Cos(r.Heading), 1e-6, "heading south after the turn")
}

func TestWalker_DegenerateRoute(t *testing.T) {
	w := newWalker([]Waypoint{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 1}})
	w.advance(50)
	r := w.reading(5, time.Time{})
	assert.Equal(t, 1.0, r.Lat)
	assert.Equal(t, 1.0, r.Lng)
}

func TestSimulator_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	sim := &Simulator{
		Route:    []Waypoint{{Lat: 54.68, Lng: 25.28}, {Lat: 54.69, Lng: 25.28}},
		Speed:    10,
		Interval: 5 * time.Millisecond,
		Accuracy: 12,
	}
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Reading, 8)
	done := make(chan error, 1)
	go func() {
		done <- sim.Run(ctx, TrackingOptions{EnableHighAccuracy: false}, func(r Reading) {
			select {
			case out <- r:
			default:
			}
		})
	}()

	first := <-out
	second := <-out
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, 48.0, first.Accuracy)
	assert.Greater(t, second.Lat, first.Lat)
	assert.False(t, first.Time.IsZero())
}

func TestSimulator_EmptyRoute(t *testing.T) {
	err := (&Simulator{}).Run(context.Background(), TrackingOptions{}, func(Reading) {})
	assert.ErrorIs(t, err, ErrPositionUnavailable)
}

func TestStatic_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &Static{Reading: Reading{Lng: 1, Lat: 2, Accuracy: 3}, Now: func() time.Time { return stamp }}
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Reading, 1)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, TrackingOptions{}, func(r Reading) { got <- r }) }()

	r := <-got
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, Reading{Lng: 1, Lat: 2, Accuracy: 3, Time: stamp}, r)
}

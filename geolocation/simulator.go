package geolocation

import (
	"context"
	"math"
	"time"

	"github.com/StefanSchroeder/Golang-Ellipsoid/ellipsoid"
)

var globe = ellipsoid.Init(
	"WGS84",
	ellipsoid.Degrees,
	ellipsoid.Meter,
	ellipsoid.LongitudeIsSymmetric,
	ellipsoid.BearingNotSymmetric)

// Waypoint is a point on a simulated route.
type Waypoint struct {
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

// Simulator walks a closed route at constant speed, emitting a reading every
// Interval. Accuracy degrades fourfold when high accuracy is not requested.
type Simulator struct {
	Route    []Waypoint
	Speed    float64 // meters per second
	Interval time.Duration
	Accuracy float64 // meters
	Now      func() time.Time
}

func (s *Simulator) Run(ctx context.Context, opts TrackingOptions, emit func(Reading)) error {
	if len(s.Route) == 0 {
		return ErrPositionUnavailable
	}
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	accuracy := s.Accuracy
	if !opts.EnableHighAccuracy {
		accuracy *= 4
	}

	w := newWalker(s.Route)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	emit(w.reading(accuracy, now(s.Now)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.advance(s.Speed * interval.Seconds())
			emit(w.reading(accuracy, now(s.Now)))
		}
	}
}

type walker struct {
	route   []Waypoint
	next    int
	pos     Waypoint
	bearing float64 // degrees
	moved   bool
}

func newWalker(route []Waypoint) *walker {
	w := &walker{route: route, pos: route[0], next: 1 % len(route)}
	if len(route) > 1 {
		_, w.bearing = globe.To(w.pos.Lat, w.pos.Lng, route[w.next].Lat, route[w.next].Lng)
	}
	return w
}

// advance moves step meters along the route, turning at waypoints.
func (w *walker) advance(step float64) {
	if len(w.route) < 2 || step <= 0 {
		return
	}
	idle := 0
	for step > 0 && idle < len(w.route) {
		target := w.route[w.next]
		dist, bearing := globe.To(w.pos.Lat, w.pos.Lng, target.Lat, target.Lng)
		if dist <= step {
			w.pos = target
			w.next = (w.next + 1) % len(w.route)
			step -= dist
			if dist > 0 {
				w.bearing = bearing
				idle = 0
			} else {
				idle++
			}
			continue
		}
		w.pos.Lat, w.pos.Lng = globe.At(w.pos.Lat, w.pos.Lng, step, bearing)
		w.bearing = bearing
		step = 0
	}
	w.moved = true
}

func (w *walker) reading(accuracy float64, t time.Time) Reading {
	return Reading{
		Lng:        w.pos.Lng,
		Lat:        w.pos.Lat,
		Accuracy:   accuracy,
		Heading:    w.bearing * math.Pi / 180,
		HasHeading: w.moved,
		Time:       t,
	}
}

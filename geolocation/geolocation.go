// Package geolocation provides the position provider consumed by the locate
// control. A Source produces raw readings on its own goroutine; Geolocation
// hands them to the UI event loop through a post function and exposes the
// latest fix there, firing change events the way a map library's geolocation
// object does.
package geolocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/olablt/gio-locate/observable"
	"github.com/olablt/gio-locate/proj"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Event names fired by Geolocation.
const (
	EventPosition = "change:position"
	EventHeading  = "change:heading"
	EventAccuracy = "change:accuracy"
	EventError    = "error"
)

const meterName = "github.com/olablt/gio-locate/geolocation"

// Geolocation tracks the device position. Apart from New and the Source
// goroutine it owns, every method must be called on the event loop that post
// delivers to.
type Geolocation struct {
	events     observable.Registry
	source     Source
	post       func(func())
	opts       TrackingOptions
	projection proj.Code
	log        zerolog.Logger
	now        func() time.Time

	tracking bool
	session  uint64
	fixed    bool
	cancel   context.CancelFunc
	timer    *time.Timer
	wg       sync.WaitGroup

	lonLat      geom.XY
	hasPosition bool
	accuracy    float64
	heading     float64
	hasHeading  bool

	fixes    metric.Int64Counter
	failures metric.Int64Counter
}

// Option configures a Geolocation.
type Option func(*Geolocation)

func WithLogger(l zerolog.Logger) Option {
	return func(g *Geolocation) { g.log = l }
}

func WithProjection(c proj.Code) Option {
	return func(g *Geolocation) { g.projection = c }
}

func WithTrackingOptions(o TrackingOptions) Option {
	return func(g *Geolocation) { g.opts = o }
}

// WithClock replaces time.Now for the maximum-age check.
func WithClock(now func() time.Time) Option {
	return func(g *Geolocation) { g.now = now }
}

// New returns a provider reading from source. post must queue its argument to
// run on the UI event loop and must not block.
func New(source Source, post func(func()), opts ...Option) *Geolocation {
	g := &Geolocation{
		source:     source,
		post:       post,
		opts:       DefaultTrackingOptions(),
		projection: proj.EPSG3857,
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(g)
	}

	meter := otel.Meter(meterName)
	var err error
	if g.fixes, err = meter.Int64Counter("geolocation.fixes",
		metric.WithDescription("Position fixes accepted by the provider")); err != nil {
		g.log.Warn().Err(err).Msg("fix counter unavailable")
		g.fixes, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter("geolocation.fixes")
	}
	if g.failures, err = meter.Int64Counter("geolocation.errors",
		metric.WithDescription("Errors reported by the position source")); err != nil {
		g.log.Warn().Err(err).Msg("error counter unavailable")
		g.failures, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter("geolocation.errors")
	}
	return g
}

func (g *Geolocation) On(name string, fn observable.Listener) observable.Key {
	return g.events.On(name, fn)
}

func (g *Geolocation) Un(k observable.Key) {
	g.events.Un(k)
}

// Tracking reports whether the source is running.
func (g *Geolocation) Tracking() bool {
	return g.tracking
}

// SetTracking starts or stops the source. Readings queued by a previous
// tracking session are discarded when they reach the loop.
func (g *Geolocation) SetTracking(on bool) {
	if on == g.tracking {
		return
	}
	if !on {
		g.tracking = false
		g.session++
		g.cancel()
		if g.timer != nil {
			g.timer.Stop()
			g.timer = nil
		}
		g.log.Debug().Msg("tracking stopped")
		return
	}

	g.tracking = true
	g.fixed = false
	g.session++
	session := g.session
	opts := g.opts

	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		err := g.source.Run(ctx, opts, func(r Reading) {
			g.post(func() { g.apply(session, r) })
		})
		if err != nil && ctx.Err() == nil {
			g.post(func() { g.fail(session, err) })
		}
	}()

	if opts.Timeout > 0 {
		g.timer = time.AfterFunc(opts.Timeout, func() {
			g.post(func() {
				if session == g.session && !g.fixed {
					g.fail(session, ErrTimeout)
				}
			})
		})
	}
	g.log.Debug().Dur("timeout", opts.Timeout).Bool("highAccuracy", opts.EnableHighAccuracy).Msg("tracking started")
}

// Close stops tracking and waits for the source goroutine to return.
func (g *Geolocation) Close() {
	g.SetTracking(false)
	g.wg.Wait()
}

// SetProjection changes the projection Position reports in.
func (g *Geolocation) SetProjection(c proj.Code) {
	if c == g.projection {
		return
	}
	g.projection = c
	if g.hasPosition {
		g.events.Emit(EventPosition, g.project())
	}
}

// Projection returns the projection Position reports in.
func (g *Geolocation) Projection() proj.Code {
	return g.projection
}

// Position returns the last fix in the provider's projection.
func (g *Geolocation) Position() (geom.XY, bool) {
	if !g.hasPosition {
		return geom.XY{}, false
	}
	return g.project(), true
}

// Accuracy returns the radius of the last fix in meters.
func (g *Geolocation) Accuracy() float64 {
	return g.accuracy
}

// Heading returns the last known heading in radians.
func (g *Geolocation) Heading() (float64, bool) {
	return g.heading, g.hasHeading
}

func (g *Geolocation) project() geom.XY {
	return proj.FromLonLat(g.projection, g.lonLat.X, g.lonLat.Y)
}

func (g *Geolocation) apply(session uint64, r Reading) {
	if session != g.session || !g.tracking {
		return
	}
	if g.opts.MaximumAge > 0 && !r.Time.IsZero() {
		if age := g.now().Sub(r.Time); age > g.opts.MaximumAge {
			g.log.Debug().Dur("age", age).Msg("dropping stale reading")
			return
		}
	}
	g.fixed = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.fixes.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("highAccuracy", g.opts.EnableHighAccuracy)))

	if r.Accuracy != g.accuracy {
		g.accuracy = r.Accuracy
		g.events.Emit(EventAccuracy, g.accuracy)
	}
	if r.HasHeading && (!g.hasHeading || r.Heading != g.heading) {
		g.heading, g.hasHeading = r.Heading, true
		g.events.Emit(EventHeading, g.heading)
	}
	g.lonLat = geom.XY{X: r.Lng, Y: r.Lat}
	g.hasPosition = true
	g.log.Debug().Float64("lng", r.Lng).Float64("lat", r.Lat).Float64("accuracy", r.Accuracy).Msg("fix")
	g.events.Emit(EventPosition, g.project())
}

func (g *Geolocation) fail(session uint64, err error) {
	if session != g.session {
		return
	}
	var gerr *Error
	if !errors.As(err, &gerr) {
		gerr = &Error{Code: PositionUnavailable, Message: err.Error()}
	}
	g.failures.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("code", gerr.Code.String())))
	g.log.Warn().Err(gerr).Msg("geolocation error")
	g.events.Emit(EventError, gerr)
}

package geolocation

import (
	"context"
	"time"
)

// Reading is a single raw fix as produced by a Source, always in EPSG:4326.
type Reading struct {
	Lng, Lat   float64
	Accuracy   float64 // meters
	Heading    float64 // radians clockwise from north
	HasHeading bool
	Time       time.Time
}

// Source produces readings until ctx is done. Run blocks; it is started on its
// own goroutine by Geolocation and must not touch the UI. A non-nil return
// before ctx is done is reported on the "error" event.
type Source interface {
	Run(ctx context.Context, opts TrackingOptions, emit func(Reading)) error
}

// Static reports one fixed reading every time tracking starts.
type Static struct {
	Reading Reading
	Now     func() time.Time
}

func (s *Static) Run(ctx context.Context, _ TrackingOptions, emit func(Reading)) error {
	r := s.Reading
	if r.Time.IsZero() {
		r.Time = now(s.Now)
	}
	emit(r)
	<-ctx.Done()
	return nil
}

// Denied fails immediately, like a user refusing the location prompt.
type Denied struct{}

func (Denied) Run(context.Context, TrackingOptions, func(Reading)) error {
	return ErrPermissionDenied
}

func now(f func() time.Time) time.Time {
	if f != nil {
		return f()
	}
	return time.Now()
}

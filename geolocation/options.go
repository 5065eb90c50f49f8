package geolocation

import "time"

// TrackingOptions are handed to the provider unchanged. MaxZoom is not used by
// the provider itself; it rides along so the locate control can zoom to it.
type TrackingOptions struct {
	MaximumAge         time.Duration `mapstructure:"maximumAge"`
	EnableHighAccuracy bool          `mapstructure:"enableHighAccuracy"`
	Timeout            time.Duration `mapstructure:"timeout"`
	MaxZoom            int           `mapstructure:"maxZoom"`
}

// DefaultTrackingOptions returns the tracking defaults of the locate control.
func DefaultTrackingOptions() TrackingOptions {
	return TrackingOptions{
		MaximumAge:         2 * time.Second,
		EnableHighAccuracy: true,
		Timeout:            10 * time.Second,
		MaxZoom:            18,
	}
}

package locate

import (
	"image"
	"image/color"

	"github.com/olablt/gio-locate/geolocation"
	"github.com/olablt/gio-locate/mapview"
	"github.com/rs/zerolog"
)

// Strings are the user-visible texts. Popup takes {distance} and {unit}.
type Strings struct {
	MetersUnit string `mapstructure:"metersUnit"`
	FeetUnit   string `mapstructure:"feetUnit"`
	Popup      string `mapstructure:"popup"`
}

// merge returns s with every non-empty field of o applied.
func (s Strings) merge(o Strings) Strings {
	if o.MetersUnit != "" {
		s.MetersUnit = o.MetersUnit
	}
	if o.FeetUnit != "" {
		s.FeetUnit = o.FeetUnit
	}
	if o.Popup != "" {
		s.Popup = o.Popup
	}
	return s
}

// Options configure a Controller. Start from DefaultOptions.
type Options struct {
	// DrawCircle draws the accuracy circle around the position.
	DrawCircle bool `mapstructure:"drawCircle"`
	// Follow pans and zooms the view to every fix after Start.
	Follow bool `mapstructure:"follow"`
	// StopFollowingOnDrag stops following when the user drags the map.
	StopFollowingOnDrag bool `mapstructure:"stopFollowingOnDrag"`
	// RemainActive keeps tracking after the first fix; false locates once.
	RemainActive bool `mapstructure:"remainActive"`
	// KeepCurrentZoomLevel pans without zooming to LocateOptions.MaxZoom.
	KeepCurrentZoomLevel bool `mapstructure:"keepCurrentZoomLevel"`
	// ShowPopup shows the accuracy popup when the marker is clicked.
	ShowPopup bool `mapstructure:"showPopup"`
	// Metric shows accuracy in meters, otherwise in feet.
	Metric bool `mapstructure:"metric"`

	Strings       Strings                     `mapstructure:"strings"`
	LocateOptions geolocation.TrackingOptions `mapstructure:"locateOptions"`

	Style *mapview.Style `mapstructure:"-"`
	// OnLocationError receives provider errors. Defaults to Notify.
	OnLocationError func(error) `mapstructure:"-"`
	// Notify shows a message to the user. Defaults to a warning log.
	Notify func(string) `mapstructure:"-"`
	Logger zerolog.Logger `mapstructure:"-"`
}

// DefaultOptions returns the stock configuration of the control.
func DefaultOptions() Options {
	return Options{
		DrawCircle:           true,
		Follow:               true,
		StopFollowingOnDrag:  false,
		RemainActive:         true,
		KeepCurrentZoomLevel: false,
		ShowPopup:            false,
		Metric:               true,
		Strings: Strings{
			MetersUnit: "meters",
			FeetUnit:   "feet",
			Popup:      "You are within {distance} {unit} from this point",
		},
		LocateOptions: geolocation.DefaultTrackingOptions(),
		Style:         DefaultStyle(),
		Logger:        zerolog.Nop(),
	}
}

// DefaultStyle is a blue heading arrow over a translucent accuracy circle.
func DefaultStyle() *mapview.Style {
	return &mapview.Style{
		Icon: &mapview.Icon{
			Size:           image.Pt(27, 55),
			RotateWithView: true,
		},
		Fill:        color.NRGBA{R: 19, G: 106, B: 236, A: 38},
		Stroke:      color.NRGBA{R: 19, G: 106, B: 236, A: 255},
		StrokeWidth: 2,
	}
}

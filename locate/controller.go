// Package locate implements the "locate me" control of the map: it tracks the
// device position through a geolocation provider, draws a marker with the
// accuracy circle and heading, optionally keeps the view on it and shows an
// accuracy popup when the marker is clicked.
//
// Like the map view it drives, a Controller is not safe for concurrent use;
// all calls and provider callbacks belong on the UI event loop.
package locate

import (
	"fmt"
	"math"

	"gioui.org/f32"
	"github.com/olablt/gio-locate/geolocation"
	"github.com/olablt/gio-locate/mapview"
	"github.com/olablt/gio-locate/observable"
	"github.com/olablt/gio-locate/proj"
	"github.com/peterstace/simplefeatures/geom"
)

// EventStateChange fires with the new State as value.
const EventStateChange = "change:state"

// Provider is the geolocation source the controller reads fixes from.
type Provider interface {
	SetTracking(on bool)
	Position() (geom.XY, bool)
	Accuracy() float64
	Heading() (float64, bool)
	SetProjection(p proj.Code)
	On(name string, fn observable.Listener) observable.Key
	Un(k observable.Key)
}

// View is the map the marker and popup are shown on.
type View interface {
	Projection() proj.Code
	SetCenter(xy geom.XY)
	SetZoom(z int)
	AddLayer(l *mapview.Layer)
	RemoveLayer(l *mapview.Layer)
	AddOverlay(o *mapview.Overlay)
	RemoveOverlay(o *mapview.Overlay)
	FeatureAtPixel(p f32.Point) (*mapview.Feature, bool)
	On(name string, fn observable.Listener) observable.Key
	Un(k observable.Key)
}

type Controller struct {
	view     View
	provider Provider
	opts     Options
	events   observable.Registry

	state       State
	following   bool
	active      bool
	position    geom.XY
	hasPosition bool
	heading     float64

	marker *mapview.Feature
	layer  *mapview.Layer
	popup  *mapview.Overlay

	errKey   observable.Key
	clickKey observable.Key
	touchKey observable.Key
	dragKey  observable.Key
}

// New builds a disabled controller for view. It panics when opts lacks the
// popup template or unit names.
func New(view View, provider Provider, opts Options) *Controller {
	if err := validateStrings(opts.Strings); err != nil {
		panic(err)
	}
	if opts.Style == nil {
		opts.Style = DefaultStyle()
	}
	c := &Controller{
		view:     view,
		provider: provider,
		opts:     opts,
		marker:   mapview.NewFeature(MarkerID, "position", opts.Style),
		layer:    mapview.NewLayer(),
		popup:    mapview.NewOverlay("top-center"),
	}
	if c.opts.Notify == nil {
		c.opts.Notify = func(msg string) {
			c.opts.Logger.Warn().Msg(msg)
		}
	}
	if c.opts.OnLocationError == nil {
		c.opts.OnLocationError = func(err error) {
			c.opts.Notify(err.Error())
		}
	}
	c.layer.AddFeature(c.marker)

	provider.SetProjection(view.Projection())
	provider.On(geolocation.EventPosition, c.onPosition)
	provider.On(geolocation.EventHeading, c.onHeading)
	return c
}

func validateStrings(s Strings) error {
	switch {
	case s.Popup == "":
		return fmt.Errorf("locate: popup template is empty")
	case s.MetersUnit == "" || s.FeetUnit == "":
		return fmt.Errorf("locate: unit names are empty")
	}
	return nil
}

func (c *Controller) On(name string, fn observable.Listener) observable.Key {
	return c.events.On(name, fn)
}

func (c *Controller) Un(k observable.Key) {
	c.events.Un(k)
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Following() bool { return c.following }

// Position returns the last fix, which survives Stop.
func (c *Controller) Position() (geom.XY, bool) { return c.position, c.hasPosition }

// Heading returns the heading of the marker in radians, 0 when unknown.
func (c *Controller) Heading() float64 { return c.heading }

func (c *Controller) Marker() *mapview.Feature { return c.marker }

func (c *Controller) PopupVisible() bool { return !c.popup.Hidden() }

func (c *Controller) PopupText() string { return c.popup.Text() }

func (c *Controller) Options() Options { return c.opts }

// Start turns tracking on and shows the marker. With a fix already known it
// is replayed right away instead of waiting for the provider.
func (c *Controller) Start() {
	if !c.active {
		c.active = true
		c.errKey = c.provider.On(geolocation.EventError, c.onError)
		c.view.AddLayer(c.layer)
		c.view.AddOverlay(c.popup)
		if c.opts.ShowPopup {
			c.clickKey = c.view.On(mapview.EventClick, c.onClick)
			c.touchKey = c.view.On(mapview.EventTouch, c.onClick)
		}
	}
	c.following = c.opts.Follow
	c.syncDrag()
	c.provider.SetTracking(true)

	if !c.hasPosition {
		c.setState(next(c.state, inputStart, c.following))
		return
	}
	c.update(inputResume)
}

// Stop turns tracking off and removes the marker and popup. The last fix is
// kept for the next Start. Calling Stop on a stopped controller does nothing.
func (c *Controller) Stop() {
	c.provider.Un(c.errKey)
	c.provider.SetTracking(false)
	c.popup.Hide()
	c.view.RemoveOverlay(c.popup)
	c.view.RemoveLayer(c.layer)
	c.view.Un(c.clickKey)
	c.view.Un(c.touchKey)
	c.unsubscribeDrag()
	c.errKey, c.clickKey, c.touchKey = observable.Key{}, observable.Key{}, observable.Key{}
	c.active = false
	c.setState(next(c.state, inputStop, c.following))
}

// StartFollow keeps the view on the position from now on.
func (c *Controller) StartFollow() {
	c.following = true
	c.syncDrag()
	if c.active && c.hasPosition {
		c.update(inputFix)
	}
}

// StopFollow leaves the view where it is on later fixes.
func (c *Controller) StopFollow() {
	c.following = false
	c.unsubscribeDrag()
	c.setState(next(c.state, inputStopFollow, c.following))
}

// SetStrings replaces the non-empty fields of s.
func (c *Controller) SetStrings(s Strings) {
	c.opts.Strings = c.opts.Strings.merge(s)
	if c.PopupVisible() {
		c.showPopup()
	}
}

// SetProjection changes the projection the provider reports positions in.
// Call it after the view changes projection.
func (c *Controller) SetProjection(p proj.Code) {
	c.provider.SetProjection(p)
}

// syncDrag keeps the pointerdrag listener only while an active controller
// follows with StopFollowingOnDrag set.
func (c *Controller) syncDrag() {
	if !c.active || !c.following || !c.opts.StopFollowingOnDrag {
		c.unsubscribeDrag()
		return
	}
	if !c.dragKey.Valid() {
		c.dragKey = c.view.On(mapview.EventPointerDrag, func(observable.Event) { c.StopFollow() })
	}
}

func (c *Controller) unsubscribeDrag() {
	c.view.Un(c.dragKey)
	c.dragKey = observable.Key{}
}

func (c *Controller) setState(s State) {
	if s == c.state {
		return
	}
	c.opts.Logger.Debug().Stringer("from", c.state).Stringer("to", s).Msg("locate state")
	c.state = s
	c.events.Emit(EventStateChange, s)
}

func (c *Controller) onPosition(observable.Event) {
	// fixes queued before Stop may still arrive
	if !c.active {
		return
	}
	c.update(inputFix)
}

func (c *Controller) update(in input) {
	if xy, ok := c.provider.Position(); ok {
		c.position, c.hasPosition = xy, true
	}
	if !c.hasPosition {
		return
	}
	c.setState(next(c.state, in, c.following))

	radius := 0.0
	if c.opts.DrawCircle {
		radius = c.provider.Accuracy()
	}
	if g, err := markerGeometry(c.position, radius, c.view.Projection()); err != nil {
		c.opts.Logger.Warn().Err(err).Msg("marker geometry")
	} else {
		c.marker.SetGeometry(g)
	}

	if c.PopupVisible() {
		c.showPopup()
	}
	if c.following {
		c.view.SetCenter(c.position)
		if !c.opts.KeepCurrentZoomLevel {
			c.view.SetZoom(c.opts.LocateOptions.MaxZoom)
		}
	}
	if !c.opts.RemainActive {
		c.provider.SetTracking(false)
	}
}

func (c *Controller) onHeading(observable.Event) {
	h, ok := c.provider.Heading()
	if !ok {
		h = 0
	}
	c.heading = h
	if c.opts.Style.Icon != nil {
		c.opts.Style.Icon.SetRotation(h * 180 / math.Pi)
	}
}

func (c *Controller) onClick(e observable.Event) {
	pe, ok := e.Value.(mapview.PointerEvent)
	if !ok {
		return
	}
	f, hit := c.view.FeatureAtPixel(pe.Pixel)
	switch {
	case hit && f.ID == MarkerID && !c.PopupVisible():
		c.showPopup()
	case c.PopupVisible():
		c.popup.Hide()
	}
}

func (c *Controller) showPopup() {
	c.popup.SetText(PopupText(c.provider.Accuracy(), c.opts.Metric, c.opts.Strings))
	c.popup.SetPosition(c.position)
	c.popup.Show()
}

func (c *Controller) onError(e observable.Event) {
	err, ok := e.Value.(error)
	if !ok {
		return
	}
	c.opts.OnLocationError(err)
}

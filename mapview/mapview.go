package mapview

import (
	"image"
	"math"
	"slices"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"
	"github.com/olablt/gio-locate/observable"
	"github.com/olablt/gio-locate/proj"
	"github.com/olablt/gio-locate/tiles"
	"github.com/peterstace/simplefeatures/geom"
	"github.com/rs/zerolog"
)

// Map events. Listeners receive a PointerEvent as the event value.
const (
	EventClick       = "click"
	EventTouch       = "touch"
	EventPointerDrag = "pointerdrag"
)

// dragThreshold separates a click from the start of a drag, in pixels.
const dragThreshold = 4

// PointerEvent is the value of click, touch and pointerdrag events.
type PointerEvent struct {
	Pixel      f32.Point
	Coordinate geom.XY
}

type MapView struct {
	Theme   *material.Theme
	MinZoom int
	MaxZoom int

	tiles      *tiles.Manager
	center     tiles.LatLng
	zoom       int
	projection proj.Code
	events     observable.Registry
	layers     []*Layer
	overlays   []*Overlay
	log        zerolog.Logger

	size     image.Point
	visible  []tiles.Tile
	pressPos f32.Point
	lastPos  f32.Point
	pressed  bool
	dragging bool
	source   pointer.Source
	refresh  chan<- struct{}
}

// New returns a view over London at zoom 12. refresh receives a value
// whenever the view needs a new frame; sends never block.
func New(tm *tiles.Manager, refresh chan<- struct{}, log zerolog.Logger) *MapView {
	mv := &MapView{
		MinZoom:    1,
		MaxZoom:    19,
		tiles:      tm,
		center:     tiles.LatLng{Lat: 51.507222, Lng: -0.1275}, // London
		zoom:       12,
		projection: proj.EPSG3857,
		refresh:    refresh,
		log:        log,
	}
	if tm != nil {
		tm.SetOnLoadCallback(mv.invalidate)
	}
	return mv
}

func (mv *MapView) invalidate() {
	select {
	case mv.refresh <- struct{}{}:
	default:
	}
}

func (mv *MapView) On(name string, fn observable.Listener) observable.Key {
	return mv.events.On(name, fn)
}

func (mv *MapView) Un(k observable.Key) {
	mv.events.Un(k)
}

// Projection is the projection coordinates passed to and from the view use.
func (mv *MapView) Projection() proj.Code {
	return mv.projection
}

func (mv *MapView) Center() geom.XY {
	return proj.FromLonLat(mv.projection, mv.center.Lng, mv.center.Lat)
}

func (mv *MapView) SetCenter(xy geom.XY) {
	lng, lat := proj.ToLonLat(mv.projection, xy)
	mv.center = tiles.LatLng{Lat: lat, Lng: lng}.Clamp()
	mv.updateVisibleTiles()
}

func (mv *MapView) Zoom() int {
	return mv.zoom
}

func (mv *MapView) SetZoom(z int) {
	mv.zoom = max(mv.MinZoom, min(z, mv.MaxZoom))
	mv.updateVisibleTiles()
}

func (mv *MapView) AddLayer(l *Layer) {
	if !slices.Contains(mv.layers, l) {
		mv.layers = append(mv.layers, l)
		mv.invalidate()
	}
}

func (mv *MapView) RemoveLayer(l *Layer) {
	mv.layers = slices.DeleteFunc(mv.layers, func(x *Layer) bool { return x == l })
	mv.invalidate()
}

func (mv *MapView) AddOverlay(o *Overlay) {
	if !slices.Contains(mv.overlays, o) {
		mv.overlays = append(mv.overlays, o)
		mv.invalidate()
	}
}

func (mv *MapView) RemoveOverlay(o *Overlay) {
	mv.overlays = slices.DeleteFunc(mv.overlays, func(x *Overlay) bool { return x == o })
	mv.invalidate()
}

// SetSize sets the viewport size; Layout does this from its constraints.
func (mv *MapView) SetSize(sz image.Point) {
	if mv.size != sz {
		mv.size = sz
		mv.updateVisibleTiles()
	}
}

// topLeft is the world pixel shown at the top-left corner of the viewport.
func (mv *MapView) topLeft() tiles.World {
	c := tiles.ToWorld(mv.center, mv.zoom)
	return tiles.World{X: c.X - float64(mv.size.X)/2, Y: c.Y - float64(mv.size.Y)/2}
}

func (mv *MapView) PixelToLatLng(p f32.Point) tiles.LatLng {
	tl := mv.topLeft()
	return tiles.World{X: tl.X + float64(p.X), Y: tl.Y + float64(p.Y)}.ToLatLng(mv.zoom)
}

func (mv *MapView) LatLngToPixel(ll tiles.LatLng) f32.Point {
	tl := mv.topLeft()
	w := tiles.ToWorld(ll, mv.zoom)
	return f32.Pt(float32(w.X-tl.X), float32(w.Y-tl.Y))
}

// PixelToCoordinate returns the coordinate under a viewport pixel.
func (mv *MapView) PixelToCoordinate(p f32.Point) geom.XY {
	ll := mv.PixelToLatLng(p)
	return proj.FromLonLat(mv.projection, ll.Lng, ll.Lat)
}

// CoordinateToPixel returns the viewport pixel of a coordinate.
func (mv *MapView) CoordinateToPixel(xy geom.XY) f32.Point {
	lng, lat := proj.ToLonLat(mv.projection, xy)
	return mv.LatLngToPixel(tiles.LatLng{Lat: lat, Lng: lng})
}

// FeatureAtPixel returns the top-most feature drawn at p.
func (mv *MapView) FeatureAtPixel(p f32.Point) (*Feature, bool) {
	for i := len(mv.layers) - 1; i >= 0; i-- {
		fs := mv.layers[i].Features()
		for j := len(fs) - 1; j >= 0; j-- {
			if mv.hit(fs[j], fs[j].Geometry(), p) {
				return fs[j], true
			}
		}
	}
	return nil, false
}

func (mv *MapView) hit(f *Feature, g geom.Geometry, p f32.Point) bool {
	switch g.Type() {
	case geom.TypePoint:
		xy, ok := g.MustAsPoint().XY()
		if !ok {
			return false
		}
		var icon *Icon
		if f.Style != nil {
			icon = f.Style.Icon
		}
		d := mv.CoordinateToPixel(xy).Sub(p)
		r := icon.hitRadius()
		return d.X*d.X+d.Y*d.Y <= r*r
	case geom.TypePolygon:
		if g.IsEmpty() {
			return false
		}
		pt, err := mv.PixelToCoordinate(p).AsPoint()
		if err != nil {
			return false
		}
		return geom.Intersects(pt.AsGeometry(), g)
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		for i := 0; i < gc.NumGeometries(); i++ {
			if mv.hit(f, gc.GeometryN(i), p) {
				return true
			}
		}
	}
	return false
}

// handlePointer turns raw pointer input into panning, zooming and map events.
func (mv *MapView) handlePointer(x pointer.Event) {
	switch x.Kind {
	case pointer.Press:
		mv.pressPos, mv.lastPos = x.Position, x.Position
		mv.pressed, mv.dragging = true, false
		mv.source = x.Source
	case pointer.Drag:
		if !mv.pressed {
			return
		}
		if !mv.dragging {
			d := x.Position.Sub(mv.pressPos)
			if d.X*d.X+d.Y*d.Y < dragThreshold*dragThreshold {
				return
			}
			mv.dragging = true
		}
		mv.pan(x.Position.Sub(mv.lastPos))
		mv.lastPos = x.Position
		mv.events.Emit(EventPointerDrag, mv.pointerEvent(x.Position))
	case pointer.Release:
		if mv.pressed && !mv.dragging {
			name := EventClick
			if mv.source == pointer.Touch {
				name = EventTouch
			}
			mv.events.Emit(name, mv.pointerEvent(x.Position))
		}
		mv.pressed, mv.dragging = false, false
	case pointer.Cancel:
		mv.pressed, mv.dragging = false, false
	case pointer.Scroll:
		if x.Scroll.Y < 0 {
			mv.zoomAround(x.Position, mv.zoom+1)
		} else if x.Scroll.Y > 0 {
			mv.zoomAround(x.Position, mv.zoom-1)
		}
	}
}

func (mv *MapView) pointerEvent(p f32.Point) PointerEvent {
	return PointerEvent{Pixel: p, Coordinate: mv.PixelToCoordinate(p)}
}

// pan moves the map content by delta pixels.
func (mv *MapView) pan(delta f32.Point) {
	c := tiles.ToWorld(mv.center, mv.zoom)
	c.X -= float64(delta.X)
	c.Y -= float64(delta.Y)
	mv.center = c.ToLatLng(mv.zoom).Clamp()
	mv.updateVisibleTiles()
}

// zoomAround changes zoom keeping the location under p fixed on screen.
func (mv *MapView) zoomAround(p f32.Point, z int) {
	z = max(mv.MinZoom, min(z, mv.MaxZoom))
	if z == mv.zoom {
		return
	}
	anchor := mv.PixelToLatLng(p)
	mv.zoom = z
	w := tiles.ToWorld(anchor, z)
	w.X -= float64(p.X) - float64(mv.size.X)/2
	w.Y -= float64(p.Y) - float64(mv.size.Y)/2
	mv.center = w.ToLatLng(z).Clamp()
	mv.updateVisibleTiles()
}

func (mv *MapView) updateVisibleTiles() {
	mv.visible = tiles.VisibleTiles(mv.center, mv.zoom, mv.size)
	if mv.tiles != nil {
		for _, t := range mv.visible {
			mv.tiles.Prefetch(t)
		}
	}
	mv.invalidate()
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	tag := mv

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		if x, ok := ev.(pointer.Event); ok {
			mv.handlePointer(x)
		}
	}

	mv.SetSize(gtx.Constraints.Max)

	defer clip.Rect{Max: mv.size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)

	mv.drawTiles(gtx)
	for _, l := range mv.layers {
		for _, f := range l.Features() {
			mv.drawFeature(gtx, f, f.Geometry())
		}
	}
	for _, o := range mv.overlays {
		mv.drawOverlay(gtx, o)
	}

	return layout.Dimensions{Size: mv.size}
}

func (mv *MapView) drawTiles(gtx layout.Context) {
	if mv.tiles == nil {
		return
	}
	tl := mv.topLeft()
	for _, tile := range mv.visible {
		img, ok := mv.tiles.Tile(tile)
		if !ok {
			continue
		}
		x := int(math.Round(float64(tile.X*tiles.TileSize) - tl.X))
		y := int(math.Round(float64(tile.Y*tiles.TileSize) - tl.Y))

		transform := op.Offset(image.Pt(x, y)).Push(gtx.Ops)
		imageOp := paint.NewImageOp(img)
		imageOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		transform.Pop()
	}
}

package mapview

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
)

// Icon is the image drawn at point geometries. Rotation is in degrees,
// clockwise.
type Icon struct {
	Size           image.Point
	Rotation       float64
	RotateWithView bool
}

func (i *Icon) SetRotation(deg float64) { i.Rotation = deg }

// hitRadius is how far from the anchor, in pixels, a click still hits the icon.
func (i *Icon) hitRadius() float32 {
	if i == nil {
		return 6
	}
	return float32(max(i.Size.X, i.Size.Y)) / 2
}

// Style describes how a feature is painted.
type Style struct {
	Icon        *Icon
	Fill        color.NRGBA
	Stroke      color.NRGBA
	StrokeWidth float32
}

// Feature is a geometry drawn by a Layer, expressed in the view projection.
type Feature struct {
	ID    string
	Name  string
	Style *Style

	geometry geom.Geometry
}

func NewFeature(id, name string, style *Style) *Feature {
	return &Feature{ID: id, Name: name, Style: style}
}

func (f *Feature) Geometry() geom.Geometry { return f.geometry }

func (f *Feature) SetGeometry(g geom.Geometry) { f.geometry = g }

// Layer is an ordered set of features drawn above the tiles.
type Layer struct {
	features []*Feature
}

func NewLayer() *Layer {
	return &Layer{}
}

func (l *Layer) AddFeature(f *Feature) {
	if !slices.Contains(l.features, f) {
		l.features = append(l.features, f)
	}
}

func (l *Layer) Features() []*Feature {
	return l.features
}

// Overlay is a text box pinned to a map coordinate. Positioning names the
// box corner or edge that sits on the coordinate, e.g. "top-center".
type Overlay struct {
	Positioning string

	text        string
	position    geom.XY
	hasPosition bool
	hidden      bool
}

func NewOverlay(positioning string) *Overlay {
	return &Overlay{Positioning: positioning, hidden: true}
}

func (o *Overlay) SetText(s string) { o.text = s }

func (o *Overlay) Text() string { return o.text }

func (o *Overlay) Show() { o.hidden = false }

func (o *Overlay) Hide() { o.hidden = true }

func (o *Overlay) Hidden() bool { return o.hidden }

func (o *Overlay) SetPosition(p geom.XY) {
	o.position, o.hasPosition = p, true
}

func (o *Overlay) Position() (geom.XY, bool) {
	return o.position, o.hasPosition
}

// anchor returns the offset of the anchor point inside a box of size sz.
func (o *Overlay) anchor(sz image.Point) image.Point {
	v, h := "top", "left"
	if o.Positioning != "" {
		if n, err := splitPositioning(o.Positioning); err == nil {
			v, h = n[0], n[1]
		}
	}
	var a image.Point
	switch h {
	case "center":
		a.X = sz.X / 2
	case "right":
		a.X = sz.X
	}
	switch v {
	case "center":
		a.Y = sz.Y / 2
	case "bottom":
		a.Y = sz.Y
	}
	return a
}

func splitPositioning(s string) ([2]string, error) {
	v, h, ok := strings.Cut(s, "-")
	if ok && (v == "top" || v == "center" || v == "bottom") && (h == "left" || h == "center" || h == "right") {
		return [2]string{v, h}, nil
	}
	return [2]string{}, fmt.Errorf("invalid overlay positioning %q", s)
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

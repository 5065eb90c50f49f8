package mapview

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/peterstace/simplefeatures/geom"
)

var (
	overlayBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 240}
	markerDot         = color.NRGBA{R: 19, G: 106, B: 236, A: 255}
	markerRim         = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func (mv *MapView) drawFeature(gtx layout.Context, f *Feature, g geom.Geometry) {
	style := f.Style
	if style == nil {
		style = &Style{}
	}
	switch g.Type() {
	case geom.TypePoint:
		if xy, ok := g.MustAsPoint().XY(); ok {
			mv.drawIcon(gtx, style, mv.CoordinateToPixel(xy))
		}
	case geom.TypePolygon:
		ring := g.MustAsPolygon().ExteriorRing().Coordinates()
		if ring.Length() < 3 {
			return
		}
		if style.Fill.A > 0 {
			paint.FillShape(gtx.Ops, style.Fill, clip.Outline{Path: mv.ringPath(gtx.Ops, ring)}.Op())
		}
		if style.StrokeWidth > 0 && style.Stroke.A > 0 {
			paint.FillShape(gtx.Ops, style.Stroke, clip.Stroke{
				Path:  mv.ringPath(gtx.Ops, ring),
				Width: style.StrokeWidth,
			}.Op())
		}
	case geom.TypeGeometryCollection:
		gc := g.MustAsGeometryCollection()
		// polygons first so the icon stays on top
		for i := 0; i < gc.NumGeometries(); i++ {
			if child := gc.GeometryN(i); child.Type() != geom.TypePoint {
				mv.drawFeature(gtx, f, child)
			}
		}
		for i := 0; i < gc.NumGeometries(); i++ {
			if child := gc.GeometryN(i); child.Type() == geom.TypePoint {
				mv.drawFeature(gtx, f, child)
			}
		}
	}
}

func (mv *MapView) ringPath(ops *op.Ops, ring geom.Sequence) clip.PathSpec {
	var p clip.Path
	p.Begin(ops)
	for i := 0; i < ring.Length(); i++ {
		pt := mv.CoordinateToPixel(ring.GetXY(i))
		if i == 0 {
			p.MoveTo(pt)
		} else {
			p.LineTo(pt)
		}
	}
	p.Close()
	return p.End()
}

// drawIcon paints a location dot with a heading arrow sized and rotated from
// the style's icon.
func (mv *MapView) drawIcon(gtx layout.Context, style *Style, at f32.Point) {
	size := image.Pt(12, 12)
	rotation := 0.0
	if style.Icon != nil {
		size = style.Icon.Size
		rotation = style.Icon.Rotation
	}

	defer op.Affine(f32.Affine2D{}.Rotate(at, float32(deg2rad(rotation)))).Push(gtx.Ops).Pop()

	w, h := float32(size.X), float32(size.Y)
	if h > w {
		var arrow clip.Path
		arrow.Begin(gtx.Ops)
		arrow.MoveTo(f32.Pt(at.X, at.Y-h/2))
		arrow.LineTo(f32.Pt(at.X+w/2, at.Y-w/4))
		arrow.LineTo(f32.Pt(at.X-w/2, at.Y-w/4))
		arrow.Close()
		paint.FillShape(gtx.Ops, markerDot, clip.Outline{Path: arrow.End()}.Op())
	}

	r := int(w/2 + 0.5)
	c := image.Pt(int(at.X+0.5), int(at.Y+0.5))
	paint.FillShape(gtx.Ops, markerRim, clip.Ellipse{Min: c.Sub(image.Pt(r, r)), Max: c.Add(image.Pt(r, r))}.Op(gtx.Ops))
	r = r * 2 / 3
	paint.FillShape(gtx.Ops, markerDot, clip.Ellipse{Min: c.Sub(image.Pt(r, r)), Max: c.Add(image.Pt(r, r))}.Op(gtx.Ops))
}

func (mv *MapView) drawOverlay(gtx layout.Context, o *Overlay) {
	pos, ok := o.Position()
	if o.Hidden() || !ok || mv.Theme == nil {
		return
	}
	if _, err := splitPositioning(o.Positioning); o.Positioning != "" && err != nil {
		mv.log.Debug().Err(err).Msg("overlay drawn top-left")
	}

	macro := op.Record(gtx.Ops)
	lgtx := gtx
	lgtx.Constraints = layout.Constraints{Max: image.Pt(gtx.Dp(unit.Dp(260)), gtx.Dp(unit.Dp(120)))}
	dims := layout.UniformInset(unit.Dp(8)).Layout(lgtx, material.Body2(mv.Theme, o.Text()).Layout)
	call := macro.Stop()

	anchor := mv.CoordinateToPixel(pos)
	at := image.Pt(int(anchor.X+0.5), int(anchor.Y+0.5)).Sub(o.anchor(dims.Size))

	defer op.Offset(at).Push(gtx.Ops).Pop()
	rect := image.Rectangle{Max: dims.Size}
	paint.FillShape(gtx.Ops, overlayBackground, clip.UniformRRect(rect, gtx.Dp(unit.Dp(4))).Op(gtx.Ops))
	call.Add(gtx.Ops)
}

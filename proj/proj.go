// Package proj converts coordinates between the map projections the viewer
// understands.
package proj

import (
	"fmt"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"
)

// Code is an EPSG projection code.
type Code int

const (
	// EPSG4326 is plain longitude/latitude in degrees.
	EPSG4326 Code = 4326
	// EPSG3857 is spherical web mercator in meters, the projection of the tile grid.
	EPSG3857 Code = 3857
)

func (c Code) String() string {
	return fmt.Sprintf("EPSG:%d", int(c))
}

type pair struct{ from, to Code }

var (
	epsg = wgs84.EPSG()
	// transforms is read-only after init, so it is safe from any goroutine.
	transforms = map[pair]wgs84.Func{
		{EPSG4326, EPSG3857}: epsg.Transform(int(EPSG4326), int(EPSG3857)),
		{EPSG3857, EPSG4326}: epsg.Transform(int(EPSG3857), int(EPSG4326)),
	}
)

func transformFunc(from, to Code) wgs84.Func {
	if f, ok := transforms[pair{from, to}]; ok {
		return f
	}
	return epsg.Transform(int(from), int(to))
}

// Transform moves a single x/y pair from one projection to another.
func Transform(from, to Code, x, y float64) (float64, float64) {
	if from == to {
		return x, y
	}
	x, y, _ = transformFunc(from, to)(x, y, 0)
	return x, y
}

// TransformXY is Transform for a geom.XY.
func TransformXY(from, to Code, xy geom.XY) geom.XY {
	x, y := Transform(from, to, xy.X, xy.Y)
	return geom.XY{X: x, Y: y}
}

// FromLonLat projects a longitude/latitude pair into c.
func FromLonLat(c Code, lng, lat float64) geom.XY {
	return TransformXY(EPSG4326, c, geom.XY{X: lng, Y: lat})
}

// ToLonLat returns the longitude/latitude of a point expressed in c.
func ToLonLat(c Code, xy geom.XY) (lng, lat float64) {
	return Transform(c, EPSG4326, xy.X, xy.Y)
}

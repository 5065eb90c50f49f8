package locate

import (
	"fmt"

	"github.com/StefanSchroeder/Golang-Ellipsoid/ellipsoid"
	"github.com/olablt/gio-locate/proj"
	"github.com/peterstace/simplefeatures/geom"
)

// MarkerID identifies the position feature in hit-tests.
const MarkerID = "_locate-pos"

// circleSegments is the vertex count of the accuracy ring.
const circleSegments = 64

var globe = ellipsoid.Init(
	"WGS84",
	ellipsoid.Degrees,
	ellipsoid.Meter,
	ellipsoid.LongitudeIsSymmetric,
	ellipsoid.BearingNotSymmetric)

// markerGeometry returns the position point, plus the accuracy ring when
// radius is positive, as one collection in projection p.
func markerGeometry(center geom.XY, radius float64, p proj.Code) (geom.Geometry, error) {
	pt, err := center.AsPoint()
	if err != nil {
		return geom.Geometry{}, fmt.Errorf("marker position: %w", err)
	}
	parts := []geom.Geometry{pt.AsGeometry()}
	if radius > 0 {
		circle, err := accuracyCircle(center, radius, p)
		if err != nil {
			return geom.Geometry{}, err
		}
		parts = append(parts, circle.AsGeometry())
	}
	return geom.NewGeometryCollection(parts).AsGeometry(), nil
}

// accuracyCircle walks the geodesic circle of radius meters around center.
func accuracyCircle(center geom.XY, radius float64, p proj.Code) (geom.Polygon, error) {
	lng, lat := proj.ToLonLat(p, center)
	coords := make([]float64, 0, 2*(circleSegments+1))
	for i := 0; i < circleSegments; i++ {
		bearing := 360 * float64(i) / circleSegments
		lat2, lng2 := globe.At(lat, lng, radius, bearing)
		xy := proj.FromLonLat(p, lng2, lat2)
		coords = append(coords, xy.X, xy.Y)
	}
	coords = append(coords, coords[0], coords[1])
	ring, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("accuracy ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("accuracy circle: %w", err)
	}
	return poly, nil
}

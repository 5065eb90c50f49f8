package proj

import (
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/wroge/wgs84"
)

func TestTransform_SameProjection(t *testing.T) {
	x, y := Transform(EPSG3857, EPSG3857, 12.5, -3)
	assert.Equal(t, 12.5, x)
	assert.Equal(t, -3.0, y)
}

func TestFromLonLat_Mercator(t *testing.T) {
	xy := FromLonLat(EPSG3857, 180, 0)
	assert.InDelta(t, 20037508.34, xy.X, 0.01)
	assert.InDelta(t, 0, xy.Y, 0.01)

	origin := FromLonLat(EPSG3857, 0, 0)
	assert.InDelta(t, 0, origin.X, 1e-6)
	assert.InDelta(t, 0, origin.Y, 1e-6)
}

func TestToLonLat_RoundTrip(t *testing.T) {
	xy := FromLonLat(EPSG3857, -0.1275, 51.507222)
	lng, lat := ToLonLat(EPSG3857, xy)
	assert.InDelta(t, -0.1275, lng, 1e-7)
	assert.InDelta(t, 51.507222, lat, 1e-7)
}

func TestTransformXY_Geographic(t *testing.T) {
	xy := TransformXY(EPSG4326, EPSG4326, geom.XY{X: 25.28, Y: 54.68})
	assert.Equal(t, geom.XY{X: 25.28, Y: 54.68}, xy)
}

func TestCode_String(t *testing.T) {
	assert.Equal(t, "EPSG:3857", EPSG3857.String())
}

func TestTransform_CachedPairsMatchRepository(t *testing.T) {
	for _, c := range []struct{ from, to Code }{{EPSG4326, EPSG3857}, {EPSG3857, EPSG4326}} {
		f := transformFunc(c.from, c.to)
		g := wgs84.EPSG().Transform(int(c.from), int(c.to))
		fx, fy, _ := f(25.279652, 54.687157, 0)
		gx, gy, _ := g(25.279652, 54.687157, 0)
		assert.Equal(t, gx, fx, "%s -> %s", c.from, c.to)
		assert.Equal(t, gy, fy, "%s -> %s", c.from, c.to)
	}
	assert.Len(t, transforms, 2)
}

func TestTransform_UncachedPair(t *testing.T) {
	// 900913 is the legacy alias of web mercator.
	x, y := Transform(EPSG4326, Code(900913), 180, 0)
	assert.InDelta(t, 20037508.34, x, 0.01)
	assert.InDelta(t, 0, y, 0.01)
}

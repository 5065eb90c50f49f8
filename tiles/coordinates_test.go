package tiles

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToWorld_RoundTrip(t *testing.T) {
	london := LatLng{Lat: 51.507222, Lng: -0.1275}
	for _, zoom := range []int{0, 5, 12, 18} {
		back := ToWorld(london, zoom).ToLatLng(zoom)
		assert.InDelta(t, london.Lat, back.Lat, 1e-9)
		assert.InDelta(t, london.Lng, back.Lng, 1e-9)
	}
}

func TestToWorld_Origin(t *testing.T) {
	w := ToWorld(LatLng{}, 1)
	assert.InDelta(t, 256, w.X, 1e-9)
	assert.InDelta(t, 256, w.Y, 1e-9)
}

func TestTileAt(t *testing.T) {
	assert.Equal(t, Tile{X: 2046, Y: 1362, Zoom: 12}, TileAt(LatLng{Lat: 51.507222, Lng: -0.1275}, 12))
	assert.Equal(t, Tile{X: 0, Y: 0, Zoom: 0}, TileAt(LatLng{Lat: 10, Lng: 10}, 0))
}

func TestTile_KeyAndValid(t *testing.T) {
	assert.Equal(t, "3/1/2", Tile{X: 1, Y: 2, Zoom: 3}.Key())
	assert.True(t, Tile{X: 7, Y: 7, Zoom: 3}.Valid())
	assert.False(t, Tile{X: 8, Y: 0, Zoom: 3}.Valid())
	assert.False(t, Tile{X: -1, Y: 0, Zoom: 3}.Valid())
}

func TestMetersPerPixel(t *testing.T) {
	assert.InDelta(t, 156543.03, MetersPerPixel(0, 0), 0.01)
	assert.InDelta(t, 156543.03/2, MetersPerPixel(60, 0), 0.01)
}

func TestLatLng_Clamp(t *testing.T) {
	ll := LatLng{Lat: 89, Lng: 190}.Clamp()
	assert.InDelta(t, maxLatitude, ll.Lat, 1e-9)
	assert.InDelta(t, -170, ll.Lng, 1e-9)
}

func TestVisibleTiles(t *testing.T) {
	tiles := VisibleTiles(LatLng{}, 1, image.Pt(256, 256))
	assert.Len(t, tiles, 4, "the whole zoom-1 world")

	tiles = VisibleTiles(LatLng{Lat: 51.5, Lng: -0.12}, 12, image.Pt(800, 600))
	assert.NotEmpty(t, tiles)
	for _, tile := range tiles {
		assert.True(t, tile.Valid())
		assert.Equal(t, 12, tile.Zoom)
	}
	assert.Contains(t, tiles, TileAt(LatLng{Lat: 51.5, Lng: -0.12}, 12))
}

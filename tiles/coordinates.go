package tiles

import (
	"fmt"
	"image"
	"math"
)

const (
	TileSize           = 256
	earthCircumference = 40075016.686 // meters at equator
	maxLatitude        = 85.05112878
)

// Tile addresses one square of the slippy-map grid.
type Tile struct {
	X, Y, Zoom int
}

// Key returns the z/x/y path of the tile.
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

// Clamp keeps the latitude inside the mercator range and wraps longitude.
func (ll LatLng) Clamp() LatLng {
	ll.Lat = max(-maxLatitude, min(ll.Lat, maxLatitude))
	ll.Lng = math.Mod(ll.Lng+540, 360) - 180
	return ll
}

// World is a position in pixels on the whole map at a given zoom.
type World struct {
	X, Y float64
}

func scale(zoom int) float64 {
	return TileSize * math.Exp2(float64(zoom))
}

// ToWorld converts geographical coordinates to world pixel coordinates.
func ToWorld(ll LatLng, zoom int) World {
	n := scale(zoom)
	latRad := ll.Lat * math.Pi / 180
	return World{
		X: n * (ll.Lng + 180) / 360,
		Y: n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2,
	}
}

// ToLatLng converts world pixel coordinates back to geographical coordinates.
func (w World) ToLatLng(zoom int) LatLng {
	n := scale(zoom)
	latRad := math.Pi * (1 - 2*w.Y/n)
	return LatLng{
		Lat: 180 / math.Pi * math.Atan(math.Sinh(latRad)),
		Lng: w.X/n*360 - 180,
	}
}

// TileAt returns the tile containing ll.
func TileAt(ll LatLng, zoom int) Tile {
	w := ToWorld(ll, zoom)
	return Tile{X: int(math.Floor(w.X / TileSize)), Y: int(math.Floor(w.Y / TileSize)), Zoom: zoom}
}

// MetersPerPixel is the ground resolution at a latitude and zoom level.
func MetersPerPixel(latitude float64, zoom int) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / scale(zoom)
}

// Valid reports whether the tile exists at its zoom level.
func (t Tile) Valid() bool {
	n := 1 << t.Zoom
	return t.Zoom >= 0 && t.X >= 0 && t.Y >= 0 && t.X < n && t.Y < n
}

// VisibleTiles lists the tiles covering a screen of the given size centred on
// center, with one tile of margin. Tiles outside the grid are skipped.
func VisibleTiles(center LatLng, zoom int, screen image.Point) []Tile {
	c := ToWorld(center, zoom)
	minX := int(math.Floor((c.X-float64(screen.X)/2)/TileSize)) - 1
	minY := int(math.Floor((c.Y-float64(screen.Y)/2)/TileSize)) - 1
	maxX := int(math.Floor((c.X+float64(screen.X)/2)/TileSize)) + 1
	maxY := int(math.Floor((c.Y+float64(screen.Y)/2)/TileSize)) + 1

	visible := make([]Tile, 0, (maxX-minX+1)*(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			t := Tile{X: x, Y: y, Zoom: zoom}
			if t.Valid() {
				visible = append(visible, t)
			}
		}
	}
	return visible
}

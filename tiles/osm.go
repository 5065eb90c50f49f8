package tiles

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

const osmURL = "https://tile.openstreetmap.org/%d/%d/%d.png"

// OSMTileProvider downloads tiles from an OpenStreetMap-style tile server.
type OSMTileProvider struct {
	client    *http.Client
	urlFormat string
	userAgent string
	log       zerolog.Logger
}

func NewOSMTileProvider(urlFormat, userAgent string, log zerolog.Logger) *OSMTileProvider {
	if urlFormat == "" {
		urlFormat = osmURL
	}
	return &OSMTileProvider{
		client:    cleanhttp.DefaultPooledClient(),
		urlFormat: urlFormat,
		userAgent: userAgent,
		log:       log,
	}
}

// Close drops the idle connections to the tile server.
func (p *OSMTileProvider) Close() {
	p.client.CloseIdleConnections()
}

// TileURL returns the URL for downloading the map tile; the format takes zoom, x, y.
func (p *OSMTileProvider) TileURL(tile Tile) string {
	return fmt.Sprintf(p.urlFormat, tile.Zoom, tile.X, tile.Y)
}

func (p *OSMTileProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	url := p.TileURL(tile)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", tile.Key(), err)
	}
	// tile.openstreetmap.org rejects requests without an identifying agent
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/png,image/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", tile.Key(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tile %s: unexpected status code: %d", tile.Key(), resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tile %s: decode: %w", tile.Key(), err)
	}
	p.log.Debug().Str("url", url).Msg("tile loaded")
	return img, nil
}

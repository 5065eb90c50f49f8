package tiles

import (
	"context"
	"fmt"
	"image"
)

// FallbackProvider asks primary first and falls back when it fails, so the
// map still shows a grid when offline.
type FallbackProvider struct {
	primary  TileProvider
	fallback TileProvider
}

func NewFallbackProvider(primary, fallback TileProvider) *FallbackProvider {
	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
	}
}

func (p *FallbackProvider) GetTile(ctx context.Context, tile Tile) (image.Image, error) {
	img, err := p.primary.GetTile(ctx, tile)
	if err == nil {
		return img, nil
	}
	fallbackImg, ferr := p.fallback.GetTile(ctx, tile)
	if ferr != nil {
		return nil, fmt.Errorf("both primary and fallback providers failed: %w", err)
	}
	return fallbackImg, nil
}

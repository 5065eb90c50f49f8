package tiles

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olablt/gio-locate/tiles/worker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingProvider struct {
	calls atomic.Int32
	err   error
}

func (p *countingProvider) GetTile(context.Context, Tile) (image.Image, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, TileSize, TileSize)), nil
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	c.Set("a", img)
	c.Set("b", img)
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", img)

	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_DefaultSize(t *testing.T) {
	c := NewCache(0)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	for i := 0; i < DefaultCacheSize+10; i++ {
		c.Set(Tile{X: i, Zoom: 10}.Key(), img)
	}
	assert.Equal(t, DefaultCacheSize, c.Len())
}

func TestManager_LoadsOnceAndNotifies(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := worker.NewPool(2, 16, zerolog.Nop())
	defer pool.Shutdown()
	provider := &countingProvider{}
	m := NewManager(provider, pool, 64, zerolog.Nop())

	loaded := make(chan struct{}, 4)
	m.SetOnLoadCallback(func() { loaded <- struct{}{} })

	tile := Tile{X: 1, Y: 1, Zoom: 2}
	_, ok := m.Tile(tile)
	assert.False(t, ok)
	m.Prefetch(tile)

	select {
	case <-loaded:
	case <-time.After(2 * time.Second):
		t.Fatal("tile was not loaded")
	}

	img, ok := m.Tile(tile)
	require.True(t, ok)
	assert.NotNil(t, img)
	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestManager_FailedLoadCanRetry(t *testing.T) {
	defer goleak.VerifyNone(t)

	pool := worker.NewPool(1, 4, zerolog.Nop())
	defer pool.Shutdown()
	provider := &countingProvider{err: errors.New("offline")}
	m := NewManager(provider, pool, 64, zerolog.Nop())

	tile := Tile{Zoom: 0}
	m.Prefetch(tile)
	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return !m.loading[tile.Key()]
	}, 2*time.Second, 5*time.Millisecond)

	m.Prefetch(tile)
	require.Eventually(t, func() bool { return provider.calls.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestFallbackProvider(t *testing.T) {
	fallback := &countingProvider{}
	p := NewFallbackProvider(&countingProvider{err: errors.New("offline")}, fallback)
	img, err := p.GetTile(context.Background(), Tile{})
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.Equal(t, int32(1), fallback.calls.Load())

	p = NewFallbackProvider(&countingProvider{err: errors.New("offline")}, &countingProvider{err: errors.New("broken")})
	_, err = p.GetTile(context.Background(), Tile{})
	assert.ErrorContains(t, err, "offline")
}

func TestLocalTileProvider(t *testing.T) {
	img, err := NewLocalTileProvider().GetTile(context.Background(), Tile{X: 3, Y: 4, Zoom: 5})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, TileSize, TileSize), img.Bounds())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(100*0x101), r, "border")
	assert.Equal(t, r, g)
	assert.Equal(t, r, b)
}

func TestOSMTileProvider(t *testing.T) {
	var gotPath, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAgent = r.URL.Path, r.UserAgent()
		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		img.Set(0, 0, color.White)
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	p := NewOSMTileProvider(srv.URL+"/%d/%d/%d.png", "gio-locate-test", zerolog.Nop())
	defer p.Close()
	img, err := p.GetTile(context.Background(), Tile{X: 1, Y: 2, Zoom: 3})
	require.NoError(t, err)
	assert.Equal(t, "/3/1/2.png", gotPath)
	assert.Equal(t, "gio-locate-test", gotAgent)
	assert.Equal(t, 2, img.Bounds().Dx())
}

func TestOSMTileProvider_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewOSMTileProvider(srv.URL+"/%d/%d/%d.png", "x", zerolog.Nop())
	defer p.Close()
	_, err := p.GetTile(context.Background(), Tile{})
	assert.ErrorContains(t, err, "unexpected status code: 403")
}

func TestOSMTileProvider_DefaultURL(t *testing.T) {
	p := NewOSMTileProvider("", "x", zerolog.Nop())
	assert.Equal(t, "https://tile.openstreetmap.org/3/1/2.png", p.TileURL(Tile{X: 1, Y: 2, Zoom: 3}))
}

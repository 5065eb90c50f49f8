package tiles

import (
	"context"
	"image"
	"sync"

	"github.com/olablt/gio-locate/tiles/worker"
	"github.com/rs/zerolog"
)

type TileProvider interface {
	GetTile(ctx context.Context, tile Tile) (image.Image, error)
}

// Manager serves tiles from its cache and loads missing ones on the worker
// pool, calling the load callback when a tile becomes available.
type Manager struct {
	cache    *Cache
	provider TileProvider
	pool     *worker.Pool
	log      zerolog.Logger

	mu      sync.Mutex
	loading map[string]bool
	onLoad  func()
}

func NewManager(provider TileProvider, pool *worker.Pool, cacheSize int, log zerolog.Logger) *Manager {
	return &Manager{
		cache:    NewCache(cacheSize),
		provider: provider,
		pool:     pool,
		log:      log,
		loading:  make(map[string]bool),
	}
}

func (m *Manager) SetOnLoadCallback(callback func()) {
	m.mu.Lock()
	m.onLoad = callback
	m.mu.Unlock()
}

// Tile returns a cached tile, or schedules its load and reports false.
func (m *Manager) Tile(tile Tile) (image.Image, bool) {
	key := tile.Key()
	if img, ok := m.cache.Get(key); ok {
		return img, true
	}
	m.Prefetch(tile)
	return nil, false
}

// Prefetch schedules a load unless the tile is cached or already loading.
func (m *Manager) Prefetch(tile Tile) {
	key := tile.Key()
	if _, ok := m.cache.Get(key); ok {
		return
	}

	m.mu.Lock()
	if m.loading[key] {
		m.mu.Unlock()
		return
	}
	m.loading[key] = true
	m.mu.Unlock()

	ok := m.pool.Submit(worker.Task{
		Name: key,
		Work: func(ctx context.Context) error { return m.load(ctx, tile) },
	})
	if !ok {
		m.mu.Lock()
		delete(m.loading, key)
		m.mu.Unlock()
	}
}

func (m *Manager) load(ctx context.Context, tile Tile) error {
	key := tile.Key()
	img, err := m.provider.GetTile(ctx, tile)

	m.mu.Lock()
	delete(m.loading, key)
	onLoad := m.onLoad
	m.mu.Unlock()

	if err != nil {
		m.log.Warn().Err(err).Str("tile", key).Msg("tile load failed")
		return err
	}
	m.cache.Set(key, img)
	if onLoad != nil {
		onLoad()
	}
	return nil
}

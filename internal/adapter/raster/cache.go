package raster

import (
	"container/list"
	"sync"

	"github.com/couchcryptid/au-temperature-map/internal/observability"
)

// ImageCache is a thread-safe LRU of encoded images keyed by the view state
// that produced them. Sessions replaying the same month share entries.
type ImageCache struct {
	maxEntries int
	metrics    *observability.Metrics

	mu      sync.Mutex
	order   *list.List // front is most recently used
	entries map[string]*list.Element
}

type cachedImage struct {
	key string
	png []byte
}

// NewImageCache creates a cache holding at most maxEntries images.
func NewImageCache(maxEntries int, metrics *observability.Metrics) *ImageCache {
	return &ImageCache{
		maxEntries: maxEntries,
		metrics:    metrics,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// GetOrRender returns the cached image for key, calling render on a miss.
// Failed renders are not cached. Concurrent misses for one key may both
// render; the later result wins.
func (c *ImageCache) GetOrRender(key string, render func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.get(key); ok {
		c.metrics.FrameCache.WithLabelValues("hit").Inc()
		return v, nil
	}
	c.metrics.FrameCache.WithLabelValues("miss").Inc()
	v, err := render()
	if err != nil {
		return nil, err
	}
	c.put(key, v)
	return v, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *ImageCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cachedImage).png, true
}

func (c *ImageCache) put(key string, png []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cachedImage).png = png
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cachedImage{key: key, png: png})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cachedImage).key)
	}
}

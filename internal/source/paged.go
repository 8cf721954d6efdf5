package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/datagrid/internal/core"
)

// DefaultCacheSize is the page cache capacity in bytes.
const DefaultCacheSize = 8 * 1024 * 1024

// Recorder receives page cache outcomes.
type Recorder interface {
	CacheHit(source string)
	CacheMiss(source string)
}

// PagedOptions configures a Paged loader.
type PagedOptions struct {
	Name      string        // Label for logs and metrics
	CacheSize int           // Bytes, DefaultCacheSize when zero
	TTL       time.Duration // Zero keeps pages until evicted
	Recorder  Recorder
}

// Paged is a Loader that caches every fetched page, keyed by page index
// and size, and shares one fetch among concurrent requests for a page.
//
// Pages too large for a freecache segment are kept in an overflow map, so
// every page is fetched once until it expires or is invalidated. Times in
// returned rows are in UTC whether the page was fetched or cached.
type Paged[T any] struct {
	name     string
	fetch    FetchFunc[T]
	cache    *freecache.Cache
	size     int
	ttl      time.Duration
	group    singleflight.Group
	recorder Recorder

	mu       sync.Mutex
	overflow map[string]overflowPage
}

// overflowPage is an encoded page freecache refused to hold.
type overflowPage struct {
	data    []byte
	expires time.Time // Zero never expires
}

// NewPaged wraps fetch with a page cache.
func NewPaged[T any](fetch FetchFunc[T], opts PagedOptions) *Paged[T] {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	name := opts.Name
	if name == "" {
		name = "paged"
	}
	return &Paged[T]{
		name:     name,
		fetch:    fetch,
		cache:    freecache.NewCache(size),
		size:     size,
		ttl:      opts.TTL,
		recorder: opts.Recorder,
		overflow: make(map[string]overflowPage),
	}
}

func pageKey(pageIndex, pageSize int) string {
	return strconv.Itoa(pageIndex) + ":" + strconv.Itoa(pageSize)
}

// Load returns the page from the cache, or fetches and caches it.
func (p *Paged[T]) Load(ctx context.Context, pageIndex, pageSize int) (core.Page[T], error) {
	if err := checkPage(pageIndex, pageSize); err != nil {
		return core.Page[T]{}, err
	}
	key := pageKey(pageIndex, pageSize)

	if page, ok := p.cached(key); ok {
		if p.recorder != nil {
			p.recorder.CacheHit(p.name)
		}
		return page, nil
	}
	if p.recorder != nil {
		p.recorder.CacheMiss(p.name)
	}

	v, err, _ := p.group.Do(key, func() (any, error) {
		page, err := p.fetch(ctx, pageIndex, pageSize)
		if err != nil {
			return nil, err
		}
		utcTimes(&page)
		p.store(key, page)
		return page, nil
	})
	if err != nil {
		return core.Page[T]{}, fmt.Errorf("fetch page %s from %s: %w", key, p.name, err)
	}
	return v.(core.Page[T]), nil
}

func (p *Paged[T]) cached(key string) (core.Page[T], bool) {
	b, ok := p.lookup(key)
	if !ok {
		return core.Page[T]{}, false
	}
	var page core.Page[T]
	if err := msgpack.Unmarshal(b, &page); err != nil {
		slog.Warn("discarding undecodable cached page", "source", p.name, "page", key, "error", err)
		p.drop(key)
		return core.Page[T]{}, false
	}
	// msgpack decodes times in time.Local.
	utcTimes(&page)
	return page, true
}

func (p *Paged[T]) lookup(key string) ([]byte, bool) {
	if b, err := p.cache.Get([]byte(key)); err == nil {
		return b, true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.overflow[key]
	if !ok {
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		delete(p.overflow, key)
		return nil, false
	}
	return e.data, true
}

func (p *Paged[T]) drop(key string) {
	p.cache.Del([]byte(key))
	p.mu.Lock()
	delete(p.overflow, key)
	p.mu.Unlock()
}

func (p *Paged[T]) store(key string, page core.Page[T]) {
	b, err := msgpack.Marshal(page)
	if err != nil {
		slog.Warn("page not cached", "source", p.name, "page", key, "error", err)
		return
	}
	err = p.cache.Set([]byte(key), b, int(p.ttl.Seconds()))
	if err == nil {
		return
	}
	if !errors.Is(err, freecache.ErrLargeEntry) {
		slog.Warn("page not cached", "source", p.name, "page", key, "error", err)
		return
	}
	slog.Warn("page larger than a cache segment, keeping it outside the cache",
		"source", p.name, "page", key, "bytes", len(b), "cache_bytes", p.size)

	e := overflowPage{data: b}
	if p.ttl > 0 {
		e.expires = time.Now().Add(p.ttl)
	}
	p.mu.Lock()
	p.overflow[key] = e
	p.mu.Unlock()
}

// Invalidate drops every cached page, e.g. after rows were added or deleted.
func (p *Paged[T]) Invalidate() {
	p.cache.Clear()
	p.mu.Lock()
	clear(p.overflow)
	p.mu.Unlock()
}

// CachedPages returns the number of pages currently cached.
func (p *Paged[T]) CachedPages() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache.EntryCount() + int64(len(p.overflow))
}

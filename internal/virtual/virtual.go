// Package virtual computes which rows or columns of a large table intersect
// the viewport, so only those are rendered.
//
// A Virtualizer lays items out along one axis from their estimated (or
// measured) sizes. Given the scroll offset and viewport size it returns the
// visible items plus an overscan margin on each side, and the padding needed
// before and after them so the scrollable extent matches the full list.
// The same type serves rows (vertical) and columns (horizontal).
package virtual

import (
	"sort"
	"strings"
	"sync"
)

const (
	// DefaultRowEstimate is the assumed row height in pixels before measurement.
	DefaultRowEstimate = 33
	// DefaultRowOverscan is the number of extra rows rendered on each side.
	DefaultRowOverscan = 5
	// DefaultColumnOverscan is the number of extra columns rendered on each side.
	DefaultColumnOverscan = 3
)

// Options configures a Virtualizer.
type Options struct {
	Count int

	// EstimateSize returns the size of item i before it is measured.
	// Nil means DefaultRowEstimate for every item.
	EstimateSize func(i int) int

	Overscan     int
	PaddingStart int
	PaddingEnd   int
	Gap          int

	// DisableMeasure ignores Measure calls and keeps the estimates.
	DisableMeasure bool
}

// Item is one laid out item.
type Item struct {
	Index int
	Start int
	Size  int
	End   int
}

// Virtualizer lays out items along one axis. It is safe for concurrent use.
type Virtualizer struct {
	mu       sync.Mutex
	opts     Options
	measured map[int]int

	offset   int
	viewport int

	items []Item // cached layout, nil when stale
}

// New creates a Virtualizer.
func New(opts Options) *Virtualizer {
	if opts.Count < 0 {
		opts.Count = 0
	}
	if opts.Overscan < 0 {
		opts.Overscan = 0
	}
	return &Virtualizer{opts: opts, measured: make(map[int]int)}
}

// SetCount changes the number of items. Measurements past the new count are
// dropped.
func (v *Virtualizer) SetCount(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	n = max(n, 0)
	if n == v.opts.Count {
		return
	}
	for i := range v.measured {
		if i >= n {
			delete(v.measured, i)
		}
	}
	v.opts.Count = n
	v.items = nil
}

// Count returns the number of items.
func (v *Virtualizer) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.opts.Count
}

// Scroll sets the scroll offset and viewport size.
func (v *Virtualizer) Scroll(offset, viewport int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset = max(offset, 0)
	v.viewport = max(viewport, 0)
}

// Measure records the rendered size of item i. It reports whether the
// layout changed.
func (v *Virtualizer) Measure(i, size int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.opts.DisableMeasure || i < 0 || i >= v.opts.Count || size <= 0 {
		return false
	}
	if v.sizeLocked(i) == size {
		return false
	}
	v.measured[i] = size
	v.items = nil
	return true
}

// ResetMeasurements drops every recorded size.
func (v *Virtualizer) ResetMeasurements() {
	v.mu.Lock()
	defer v.mu.Unlock()
	clear(v.measured)
	v.items = nil
}

func (v *Virtualizer) sizeLocked(i int) int {
	if s, ok := v.measured[i]; ok {
		return s
	}
	if v.opts.EstimateSize != nil {
		return max(v.opts.EstimateSize(i), 0)
	}
	return DefaultRowEstimate
}

func (v *Virtualizer) layoutLocked() []Item {
	if v.items != nil || v.opts.Count == 0 {
		return v.items
	}
	items := make([]Item, v.opts.Count)
	start := v.opts.PaddingStart
	for i := range items {
		size := v.sizeLocked(i)
		items[i] = Item{Index: i, Start: start, Size: size, End: start + size}
		start += size + v.opts.Gap
	}
	v.items = items
	return items
}

// TotalSize returns the full scrollable extent including padding.
func (v *Virtualizer) TotalSize() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalSizeLocked()
}

func (v *Virtualizer) totalSizeLocked() int {
	items := v.layoutLocked()
	if len(items) == 0 {
		return v.opts.PaddingStart + v.opts.PaddingEnd
	}
	return items[len(items)-1].End + v.opts.PaddingEnd
}

// Range returns the first and last index intersecting the viewport, without
// overscan. ok is false when nothing is visible.
func (v *Virtualizer) Range() (first, last int, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rangeLocked()
}

func (v *Virtualizer) rangeLocked() (first, last int, ok bool) {
	items := v.layoutLocked()
	if len(items) == 0 {
		return 0, 0, false
	}
	end := v.offset + v.viewport
	first = sort.Search(len(items), func(i int) bool { return items[i].End > v.offset })
	if first == len(items) {
		first = len(items) - 1
	}
	last = sort.Search(len(items), func(i int) bool { return items[i].Start >= end }) - 1
	if last < first {
		last = first
	}
	return first, last, true
}

// Items returns the visible items plus the overscan margin, in index order.
func (v *Virtualizer) Items() []Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.itemsLocked()
}

func (v *Virtualizer) itemsLocked() []Item {
	first, last, ok := v.rangeLocked()
	if !ok {
		return nil
	}
	items := v.layoutLocked()
	from := max(first-v.opts.Overscan, 0)
	to := min(last+v.opts.Overscan, len(items)-1)
	out := make([]Item, to-from+1)
	copy(out, items[from:to+1])
	return out
}

// Window is a complete view: the visible items and the padding that stands
// in for the skipped ones.
type Window struct {
	Items  []Item
	Before int // Extent of skipped items before the first one
	After  int // Extent of skipped items after the last one
	Total  int
}

// Window returns the items to render with their surrounding padding.
func (v *Virtualizer) Window() Window {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := Window{Items: v.itemsLocked(), Total: v.totalSizeLocked()}
	if len(w.Items) == 0 {
		w.After = w.Total
		return w
	}
	w.Before = w.Items[0].Start
	w.After = w.Total - w.Items[len(w.Items)-1].End
	return w
}

// Sizes returns an EstimateSize function over a fixed list of sizes.
// Indexes past the list use the last size.
func Sizes(sizes []int) func(int) int {
	return func(i int) int {
		if len(sizes) == 0 {
			return DefaultRowEstimate
		}
		if i >= len(sizes) {
			return sizes[len(sizes)-1]
		}
		return sizes[i]
	}
}

// DynamicMeasurement reports whether rendered row heights should be
// measured for the given browser. Firefox reports unstable heights while
// rows are laid out, so rows keep their estimate there.
func DynamicMeasurement(userAgent string) bool {
	return !strings.Contains(userAgent, "Firefox")
}

// Package pool provides typed object pools.
//
//	record := pool.GetStringSlice(len(columns))
//	defer pool.PutStringSlice(record)
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed wrapper around sync.Pool that counts allocations and
// checkouts. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		gets      int64
	}
}

// New creates a pool. reset, when not nil, is applied to every object
// returned with Put.
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return new()
	}
	return p
}

// Get takes an object from the pool, allocating one when it is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.gets, 1)
	return p.pool.Get().(T)
}

// Put resets obj and returns it to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects allocated, currently checked out,
// and the total number of Get calls.
func (p *Pool[T]) Stats() (allocated, inUse, gets int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.gets)
}

type stringSlice struct{ s []string }

var stringSlices = New(
	func() *stringSlice { return &stringSlice{s: make([]string, 0, 32)} },
	func(s *stringSlice) {
		clear(s.s[:cap(s.s)])
		s.s = s.s[:0]
	},
)

// GetStringSlice returns a slice of n empty strings.
func GetStringSlice(n int) []string {
	s := stringSlices.Get()
	if cap(s.s) < n {
		s.s = make([]string, n)
	}
	return s.s[:n]
}

// PutStringSlice returns a slice obtained from GetStringSlice.
func PutStringSlice(s []string) {
	stringSlices.Put(&stringSlice{s: s})
}

// StringSliceStats reports the statistics of the string slice pool.
func StringSliceStats() (allocated, inUse, gets int64) {
	return stringSlices.Stats()
}

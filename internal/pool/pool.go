// Package pool draws items at random without replacement and starts over
// from the full item list once every item has been drawn.
package pool

import (
	"errors"

	"solar-snippet/internal/rng"
)

// ErrEmpty is returned when a pool is created without items.
var ErrEmpty = errors.New("pool has no items")

// Pool is a draw-without-replacement sequence over an immutable item list.
// It is not safe for concurrent use.
type Pool[T any] struct {
	items     []T
	remaining []T
	rng       rng.Source
	draws     int
	refills   int
}

// New creates a pool over a copy of items.
func New[T any](items []T, src rng.Source) (*Pool[T], error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	p := &Pool[T]{items: append([]T(nil), items...), rng: src}
	p.remaining = append([]T(nil), p.items...)
	return p, nil
}

// Draw removes and returns a uniformly chosen remaining item. When nothing
// remains the pool is refilled first.
func (p *Pool[T]) Draw() T {
	if len(p.remaining) == 0 {
		p.Refill()
	}
	i := p.rng.IntN(len(p.remaining))
	item := p.remaining[i]
	p.remaining = append(p.remaining[:i], p.remaining[i+1:]...)
	p.draws++
	return item
}

// Refill restores every item.
func (p *Pool[T]) Refill() {
	p.remaining = append(p.remaining[:0], p.items...)
	p.refills++
}

// Len returns the number of items left before the next refill.
func (p *Pool[T]) Len() int { return len(p.remaining) }

// Size returns the number of items in a full pool.
func (p *Pool[T]) Size() int { return len(p.items) }

// Draws returns how many items have been drawn.
func (p *Pool[T]) Draws() int { return p.draws }

// Refills returns how many times the pool was refilled.
func (p *Pool[T]) Refills() int { return p.refills }

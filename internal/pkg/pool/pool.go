// Package pool is a typed wrapper over sync.Pool.
package pool

import (
	"sync"
)

type Pool[T any] struct {
	pool sync.Pool
}

//nolint:forcetypeassert
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(t T) {
	p.pool.Put(t)
}

func New[T any, F func() T](fn F) *Pool[T] {
	if fn == nil {
		panic("missing new function")
	}

	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
	}
}

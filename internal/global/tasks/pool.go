// Package tasks owns the process-wide worker pool file jobs run on.
package tasks

import (
	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
)

var pool = lo.Must(ants.NewPool(32, ants.WithPreAlloc(true)))

// Submit blocks until a worker picks fn up.
func Submit(fn func()) {
	lo.Must0(pool.Submit(fn))
}

// Cap is the fixed size of the pool, callers sizing their own concurrency
// should not exceed it.
func Cap() int {
	return pool.Cap()
}

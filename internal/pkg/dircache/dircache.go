// Package dircache de-duplicates MkdirAll calls, so deep trees with many
// files per directory don't pay a directory walk per file.
package dircache

import (
	"os"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type Cache struct {
	lru *expirable.LRU[string, struct{}]
}

func New(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Ensure creates dir (and parents) unless it was already created through
// this cache recently. Entries expire so directories removed behind our back
// get re-created eventually.
func (c *Cache) Ensure(dir string, perm os.FileMode) error {
	if _, ok := c.lru.Get(dir); ok {
		return nil
	}

	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}

	c.lru.Add(dir, struct{}{})

	return nil
}

// Package mempool hands out pooled byte buffers for whole-small-file reads.
package mempool

import (
	"github.com/valyala/bytebufferpool"
)

var p bytebufferpool.Pool

func Get() *bytebufferpool.ByteBuffer {
	return p.Get()
}

func Put(b *bytebufferpool.ByteBuffer) {
	p.Put(b)
}

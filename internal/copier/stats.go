package copier

import (
	"github.com/dustin/go-humanize"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/atomic"
)

type stats struct {
	files  *xsync.Counter
	bytes  *xsync.Counter
	failed atomic.Int64
}

func newStats() stats {
	return stats{
		files: xsync.NewCounter(),
		bytes: xsync.NewCounter(),
	}
}

func humanBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

// Package flowrate wraps mxk/go-flowrate with the small surface the copy
// paths need: byte accounting plus an optional blocking rate cap shared by
// every reader of one transfer.
package flowrate

import (
	"io"
	"time"

	"github.com/mxk/go-flowrate/flowrate"
)

type Monitor struct {
	m     *flowrate.Monitor
	limit int64
}

// New creates a monitor. A limit <= 0 means unlimited.
func New(limit int64) *Monitor {
	return &Monitor{m: flowrate.New(0, 10*time.Second), limit: limit}
}

// Update records n transferred bytes. Nil-safe so call sites don't need to
// care whether accounting is enabled.
func (m *Monitor) Update(n int) {
	if m == nil {
		return
	}

	m.m.Update(n)
}

// Status reports the transfer totals and rates so far.
func (m *Monitor) Status() flowrate.Status {
	if m == nil {
		return flowrate.Status{}
	}

	return m.m.Status()
}

// WrapReader returns r with every read accounted against m and, when a limit
// is set, blocked to stay under it.
func (m *Monitor) WrapReader(r io.Reader) io.Reader {
	if m == nil {
		return r
	}

	return &reader{r: r, m: m}
}

type reader struct {
	r io.Reader
	m *Monitor
}

func (r *reader) Read(p []byte) (int, error) {
	p = p[:r.m.m.Limit(len(p), r.m.limit, true)]
	if len(p) == 0 {
		return 0, nil
	}

	return r.m.m.IO(r.r.Read(p))
}

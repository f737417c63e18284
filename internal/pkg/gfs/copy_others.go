//go:build !linux

package gfs

import (
	"context"
	"os"

	"fcp/internal/pkg/flowrate"
)

// the range-copy shim answers ENOSYS unconditionally on these platforms, so
// skip the syscall and go straight to the buffered loop.
func fileCopy(ctx context.Context, dest *os.File, src *os.File, buf []byte, monitor *flowrate.Monitor) error {
	return genericCopy(ctx, dest, monitor.WrapReader(src), buf)
}

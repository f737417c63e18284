//go:build linux

package gfs

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/docker/go-units"
	"github.com/negrel/assert"

	"fcp/internal/copyfilerange"
	"fcp/internal/pkg/flowrate"
)

// range size per syscall, large enough to keep the call count low
const rangeChunk = units.MiB * 128

var rangeCopy = copyfilerange.CopyFileRange

func fileCopy(ctx context.Context, dest *os.File, src *os.File, buf []byte, monitor *flowrate.Monitor) error {
	if !copyfilerange.Supported() {
		return genericCopy(ctx, dest, monitor.WrapReader(src), buf)
	}

	s, err := src.Stat()
	if err != nil {
		return err
	}

	totalSize := s.Size()

	var srcOffset int64 = 0
	var destOffset int64 = 0

	for srcOffset < totalSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := rangeCopy(int(src.Fd()), &srcOffset, int(dest.Fd()), &destOffset, rangeChunk, 0)
		if err != nil {
			if srcOffset == 0 && canFallback(err) {
				return genericCopy(ctx, dest, monitor.WrapReader(src), buf)
			}

			return err
		}

		if n == 0 {
			// source truncated under us
			break
		}

		monitor.Update(n)
	}

	assert.Equal(srcOffset, destOffset)

	return nil
}

// filesystems and kernels that reject copy_file_range outright still get a
// working copy through the generic loop. Only errors reported before any
// byte moved are safe to retry that way.
func canFallback(err error) bool {
	return errors.Is(err, syscall.ENOSYS) ||
		errors.Is(err, syscall.EXDEV) ||
		errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.EOPNOTSUPP)
}

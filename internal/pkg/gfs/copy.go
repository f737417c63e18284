// Package gfs implements whole-file copy on top of the platform range-copy
// syscall, with a portable buffered fallback.
package gfs

import (
	"context"
	"io"
	"os"

	"fcp/internal/pkg/flowrate"
	"fcp/internal/pkg/gctx"
)

// Copy copies the whole of src into dest. On kernels with a working
// copy_file_range the data never leaves the kernel; everywhere else,
// including when the syscall answers ENOSYS, it degrades to a read/write
// loop through buf. A nil monitor disables accounting and rate limiting.
func Copy(ctx context.Context, dest *os.File, src *os.File, buf []byte, monitor *flowrate.Monitor) error {
	return fileCopy(ctx, dest, src, buf, monitor)
}

func genericCopy(ctx context.Context, dest io.Writer, src io.Reader, buf []byte) error {
	_, err := io.CopyBuffer(dest, gctx.NewReader(ctx, src), buf)

	return err
}

//go:build linux

package gfs

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"fcp/internal/copyfilerange"
)

func TestCanFallback(t *testing.T) {
	t.Parallel()

	for _, errno := range []syscall.Errno{syscall.ENOSYS, syscall.EXDEV, syscall.EINVAL, syscall.EOPNOTSUPP} {
		require.True(t, canFallback(errno), "%v should fall back", errno)
		require.True(t, canFallback(os.NewSyscallError("copy_file_range", errno)), "wrapped %v should fall back", errno)
	}

	for _, err := range []error{syscall.EBADF, syscall.EIO, syscall.ENOSPC, io.ErrUnexpectedEOF} {
		require.False(t, canFallback(err), "%v must not fall back", err)
	}
}

func rangeCopyFixture(t *testing.T, size int64) (dest *os.File, src *os.File, content []byte) {
	t.Helper()

	dir := t.TempDir()

	content = make([]byte, size)
	lo.Must(rand.Read(content))

	srcPath := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(srcPath, content, 0o644))

	src = lo.Must(os.Open(srcPath))
	t.Cleanup(func() { _ = src.Close() })

	dest = lo.Must(os.Create(filepath.Join(dir, "dst.bin")))
	t.Cleanup(func() { _ = dest.Close() })

	return dest, src, content
}

func stubRangeCopy(t *testing.T, fn func(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error)) {
	t.Helper()

	orig := rangeCopy
	rangeCopy = fn
	t.Cleanup(func() { rangeCopy = orig })
}

func TestFileCopyFallsBackOnFirstError(t *testing.T) {
	if !copyfilerange.Supported() {
		t.Skip("kernel too old for range copy")
	}

	for _, errno := range []syscall.Errno{syscall.ENOSYS, syscall.EXDEV, syscall.EINVAL, syscall.EOPNOTSUPP} {
		t.Run(errno.Error(), func(t *testing.T) {
			dest, src, content := rangeCopyFixture(t, 1<<20)

			var calls int
			stubRangeCopy(t, func(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error) {
				calls++
				return -1, errno
			})

			require.NoError(t, fileCopy(context.Background(), dest, src, nil, nil))
			require.Equal(t, 1, calls)

			got := lo.Must(os.ReadFile(dest.Name()))
			require.True(t, bytes.Equal(content, got))
		})
	}
}

func TestFileCopyHardErrorNotRetried(t *testing.T) {
	if !copyfilerange.Supported() {
		t.Skip("kernel too old for range copy")
	}

	dest, src, _ := rangeCopyFixture(t, 4096)

	stubRangeCopy(t, func(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error) {
		return -1, syscall.EBADF
	})

	err := fileCopy(context.Background(), dest, src, nil, nil)
	require.ErrorIs(t, err, syscall.EBADF)

	info := lo.Must(os.Stat(dest.Name()))
	require.Zero(t, info.Size())
}

func TestFileCopyMidCopyErrorSurfaces(t *testing.T) {
	if !copyfilerange.Supported() {
		t.Skip("kernel too old for range copy")
	}

	dest, src, _ := rangeCopyFixture(t, 4096)

	// once data has moved the generic loop would duplicate it, so a late
	// failure must surface as-is even when the errno is retryable
	var calls int
	stubRangeCopy(t, func(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error) {
		calls++
		if calls == 1 {
			return copyfilerange.CopyFileRange(rfd, roff, wfd, woff, 1024, flags)
		}

		return -1, syscall.EXDEV
	})

	err := fileCopy(context.Background(), dest, src, nil, nil)
	require.ErrorIs(t, err, syscall.EXDEV)
	require.Equal(t, 2, calls)
}

func TestFileCopyCrossDevice(t *testing.T) {
	if !copyfilerange.Supported() {
		t.Skip("kernel too old for range copy")
	}

	shm := filepath.Join("/dev/shm", "gfs-xdev-test")
	if err := os.MkdirAll(shm, os.ModePerm); err != nil {
		t.Skipf("no /dev/shm: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(shm) })

	dir := t.TempDir()

	var a, b syscall.Stat_t
	require.NoError(t, syscall.Stat(shm, &a))
	require.NoError(t, syscall.Stat(dir, &b))
	if a.Dev == b.Dev {
		t.Skip("tmpdir and /dev/shm share a device")
	}

	content := make([]byte, 4<<20)
	lo.Must(rand.Read(content))

	srcPath := filepath.Join(shm, "src.bin")
	require.NoError(t, os.WriteFile(srcPath, content, 0o644))

	src := lo.Must(os.Open(srcPath))
	defer src.Close()

	dest := lo.Must(os.Create(filepath.Join(dir, "dst.bin")))
	defer dest.Close()

	// depending on the kernel this either range-copies across devices or
	// degrades to the generic loop, both must round-trip
	require.NoError(t, fileCopy(context.Background(), dest, src, nil, nil))

	got := lo.Must(os.ReadFile(dest.Name()))
	require.True(t, bytes.Equal(content, got))
}

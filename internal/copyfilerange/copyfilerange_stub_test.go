//go:build !linux

package copyfilerange_test

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"fcp/internal/copyfilerange"
)

func TestNotSupported(t *testing.T) {
	require.False(t, copyfilerange.Supported())
}

func TestAlwaysENOSYS(t *testing.T) {
	var roff, woff int64 = 0, 0

	cases := []struct {
		name   string
		rfd    int
		roff   *int64
		wfd    int
		woff   *int64
		length int
		flags  int
	}{
		{name: "nil offsets", rfd: 0, wfd: 1, length: 4096},
		{name: "invalid descriptors", rfd: -1, wfd: -1, length: 4096},
		{name: "zero length", rfd: 3, roff: &roff, wfd: 4, woff: &woff},
		{name: "arbitrary flags", rfd: 3, roff: &roff, wfd: 4, woff: &woff, length: 1 << 20, flags: 0xdeadbeef},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := copyfilerange.CopyFileRange(tc.rfd, tc.roff, tc.wfd, tc.woff, tc.length, tc.flags)
			require.Equal(t, -1, n)
			require.ErrorIs(t, err, syscall.ENOSYS)
		})
	}

	require.Zero(t, roff)
	require.Zero(t, woff)
}

func TestDescriptorsUntouched(t *testing.T) {
	dir := t.TempDir()

	src, err := os.Create(filepath.Join(dir, "src.bin"))
	require.NoError(t, err)
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)
	defer dst.Close()

	_, err = src.WriteString("source content")
	require.NoError(t, err)
	_, err = src.Seek(0, io.SeekStart)
	require.NoError(t, err)

	_, err = dst.WriteString("dest content")
	require.NoError(t, err)
	_, err = dst.Seek(0, io.SeekStart)
	require.NoError(t, err)

	var roff, woff int64 = 0, 0
	n, err := copyfilerange.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, 4096, 0)
	require.Equal(t, -1, n)
	require.ErrorIs(t, err, syscall.ENOSYS)

	// file positions unchanged
	pos, err := src.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Zero(t, pos)

	pos, err = dst.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Zero(t, pos)

	// contents unchanged
	b, err := os.ReadFile(filepath.Join(dir, "src.bin"))
	require.NoError(t, err)
	require.Equal(t, "source content", string(b))

	b, err = os.ReadFile(filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)
	require.Equal(t, "dest content", string(b))
}

func TestConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				n, err := copyfilerange.CopyFileRange(-1, nil, -1, nil, 4096, 0)
				if n != -1 || err != syscall.ENOSYS {
					t.Errorf("unexpected result: n=%d err=%v", n, err)
					return
				}
			}
		}()
	}

	wg.Wait()
}

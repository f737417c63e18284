//go:build linux

package copyfilerange

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func init() {
	// man page says it's available after kernel 4.5, but go stdlib only use it after kernel 5.3
	// https://github.com/golang/go/issues/36817#issuecomment-579151790
	major, minor := kernelVersion()
	if major > 5 || (major == 5 && minor >= 3) {
		supported = true
	}
}

var supported bool

// Supported reports whether the running kernel has a usable copy_file_range.
func Supported() bool {
	return supported
}

// CopyFileRange copies up to length bytes between two open descriptors
// without a round trip through userspace. Offsets behave as documented in
// copy_file_range(2): nil means the file offset, non-nil pointers are
// advanced by the number of bytes copied.
func CopyFileRange(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error) {
	return unix.CopyFileRange(rfd, roff, wfd, woff, length, flags)
}

// from https://go.dev/src/internal/syscall/unix/kernel_version_linux.go
func kernelVersion() (major, minor int) {
	var uname syscall.Utsname
	if err := syscall.Uname(&uname); err != nil {
		return
	}

	var (
		values    [2]int
		value, vi int
	)
	for _, c := range uname.Release {
		if '0' <= c && c <= '9' {
			value = (value * 10) + int(c-'0')
		} else {
			// Note that we're assuming N.N.N here.
			// If we see anything else, we are likely to mis-parse it.
			values[vi] = value
			vi++
			if vi >= len(values) {
				break
			}
			value = 0
		}
	}

	return values[0], values[1]
}

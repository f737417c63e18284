//go:build !linux

package copyfilerange

import "syscall"

// Supported always reports false, there is no native copy_file_range here.
func Supported() bool {
	return false
}

// CopyFileRange matches the copy_file_range(2) calling convention but never
// inspects its arguments, never dereferences the offset pointers and never
// touches either descriptor. It only answers ENOSYS so the caller falls back
// to a read/write loop.
func CopyFileRange(rfd int, roff *int64, wfd int, woff *int64, length int, flags int) (int, error) {
	return -1, syscall.ENOSYS
}

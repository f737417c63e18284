// Package copyfilerange wraps the copy_file_range(2) system call.
//
// On platforms without the call this package compiles to a stub that fails
// every invocation with ENOSYS, so callers detect it and take a plain
// read/write loop instead.
package copyfilerange

package gfs

import (
	"context"
	"errors"
	"os"
	"syscall"

	"fcp/internal/pkg/flowrate"
)

// SmartCopy hardlinks src to dest when both live on the same filesystem and
// falls back to a full copy otherwise.
func SmartCopy(ctx context.Context, src string, dest string, monitor *flowrate.Monitor) error {
	err := os.Link(src, dest)
	if err == nil {
		// job done
		return nil
	}

	if !isCrossDevice(err) {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	destFile, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer destFile.Close()

	return fileCopy(ctx, destFile, srcFile, nil, monitor)
}

func isCrossDevice(err error) bool {
	var li *os.LinkError
	if !errors.As(err, &li) {
		return false
	}

	if errors.Is(li.Err, syscall.EXDEV) {
		return true
	}

	// windows reports cross-volume links with its own message
	// https://devblogs.microsoft.com/oldnewthing/20170707-00/?p=96555
	switch li.Err.Error() {
	case "invalid cross-device link", "cross-device link":
		return true
	}

	return false
}

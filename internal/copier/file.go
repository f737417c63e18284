package copier

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dchest/uniuri"
	"github.com/trim21/errgo"

	"fcp/internal/pkg/fallocate"
	"fcp/internal/pkg/gctx"
	"fcp/internal/pkg/gfs"
	"fcp/internal/pkg/mempool"
)

func (c *Copier) copyFile(ctx context.Context, src string, dst string, info fs.FileInfo) error {
	if err := c.dirs.Ensure(filepath.Dir(dst), os.ModePerm); err != nil {
		return errgo.Wrap(err, "failed to create destination directory")
	}

	var err error
	switch {
	case c.removeSource:
		err = c.moveFile(ctx, src, dst)
	case info.Size() <= c.cfg.SmallFileSize:
		err = c.copySmall(ctx, src, dst, info)
	default:
		err = c.copyBig(ctx, src, dst, info)
	}

	if err != nil {
		return err
	}

	if c.cfg.App.PreservePerms {
		if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
			return errgo.Wrap(err, "failed to preserve file mode")
		}
	}

	if c.cfg.App.PreserveTimes {
		if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
			return errgo.Wrap(err, "failed to preserve file times")
		}
	}

	c.stats.files.Inc()
	c.stats.bytes.Add(info.Size())

	if c.removeSource {
		if err := os.Remove(src); err != nil {
			return errgo.Wrap(err, "failed to remove source file")
		}
	}

	return nil
}

// moves prefer a hardlink, only a cross-device move pays a full copy.
func (c *Copier) moveFile(ctx context.Context, src string, dst string) error {
	err := gfs.SmartCopy(ctx, src, dst, c.monitor)
	if errors.Is(err, fs.ErrExist) {
		// a move overwrites, the way rename does
		if err = os.Remove(dst); err != nil {
			return err
		}

		err = gfs.SmartCopy(ctx, src, dst, c.monitor)
	}

	if err != nil {
		_ = os.Remove(dst)
		return err
	}

	return nil
}

// small files are read whole and written in one shot, skipping the syscall
// dance a streaming copy pays.
func (c *Copier) copySmall(ctx context.Context, src string, dst string, info fs.FileInfo) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := mempool.Get()
	defer mempool.Put(buf)

	if _, err := buf.ReadFrom(gctx.NewReader(ctx, c.monitor.WrapReader(f))); err != nil {
		return err
	}

	tmp := tmpName(dst)
	if err := os.WriteFile(tmp, buf.B, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

func (c *Copier) copyBig(ctx context.Context, src string, dst string, info fs.FileInfo) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := tmpName(dst)

	destFile, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if c.cfg.App.Preallocate {
		if err := fallocate.Fallocate(destFile, 0, info.Size()); err != nil {
			c.log.Debug().Err(err).Str("path", tmp).Msg("preallocation failed")
		}
	}

	buf := c.bufPool.Get()
	err = gfs.Copy(ctx, destFile, srcFile, buf, c.monitor)
	c.bufPool.Put(buf)

	if err == nil {
		err = destFile.Sync()
	}

	if err != nil {
		_ = destFile.Close()
		_ = os.Remove(tmp)

		return err
	}

	if err := destFile.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

func tmpName(dst string) string {
	return dst + "." + uniuri.NewLen(8) + ".fcp"
}

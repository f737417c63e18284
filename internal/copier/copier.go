// Package copier is the copy engine: it walks the source, fans file jobs out
// onto the global task pool and moves bytes with gfs.
package copier

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/trim21/errgo"
	"golang.org/x/sync/semaphore"

	"fcp/internal/config"
	"fcp/internal/global/tasks"
	"fcp/internal/pkg/dircache"
	"fcp/internal/pkg/flowrate"
	"fcp/internal/pkg/gfs"
	"fcp/internal/pkg/pool"
)

type Copier struct {
	log zerolog.Logger
	cfg config.Config

	monitor *flowrate.Monitor
	sem     *semaphore.Weighted
	dirs    *dircache.Cache
	bufPool *pool.Pool[[]byte]

	stats stats

	removeSource bool
}

func New(cfg config.Config) *Copier {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = units.MiB * 4
	}

	if cfg.App.Workers <= 0 {
		cfg.App.Workers = 1
	}

	if cfg.App.Workers > tasks.Cap() {
		log.Warn().
			Int("workers", cfg.App.Workers).
			Int("cap", tasks.Cap()).
			Msg("workers capped by task pool size")
		cfg.App.Workers = tasks.Cap()
	}

	return &Copier{
		log:     log.With().Str("component", "copier").Logger(),
		cfg:     cfg,
		monitor: flowrate.New(cfg.RateLimit),
		sem:     semaphore.NewWeighted(int64(cfg.App.Workers)),
		dirs:    dircache.New(1024, time.Minute*10),
		bufPool: pool.New(func() []byte { return make([]byte, bufSize) }),
		stats:   newStats(),
	}
}

// Copy copies src (a file or a directory tree) to dst. Individual file
// failures inside a tree are logged and counted, the first walk-level error
// aborts the run.
func (c *Copier) Copy(ctx context.Context, src string, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return errgo.Wrap(err, "failed to stat source")
	}

	dst, err = resolveTarget(src, dst, info)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var w conc.WaitGroup
	w.Go(func() { c.reportLoop(ctx) })
	defer func() {
		cancel()
		w.WaitAndRecover()
	}()

	if info.IsDir() {
		err = c.copyTree(ctx, src, dst)
	} else {
		err = c.copyFile(ctx, src, dst, info)
	}

	if err != nil {
		return err
	}

	if n := c.stats.failed.Load(); n != 0 {
		return fmt.Errorf("%d files failed to copy", n)
	}

	return nil
}

// Move behaves like Copy, then removes the source files and prunes any
// directories the removal left empty.
func (c *Copier) Move(ctx context.Context, src string, dst string) error {
	c.removeSource = true
	defer func() { c.removeSource = false }()

	if err := c.Copy(ctx, src, dst); err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		// a plain file is already gone at this point
		if os.IsNotExist(err) {
			return nil
		}

		return errgo.Wrap(err, "failed to stat source after copy")
	}

	if info.IsDir() {
		pruned, err := gfs.PruneEmptyDirs(src)
		if err != nil {
			return errgo.Wrap(err, "failed to prune source directories")
		}

		c.log.Debug().Int("count", pruned).Msg("pruned empty source directories")
	}

	return nil
}

// Stats reports files copied and bytes moved so far.
func (c *Copier) Stats() (files int64, bytes int64) {
	return c.stats.files.Value(), c.stats.bytes.Value()
}

type dirMeta struct {
	target string
	info   fs.FileInfo
}

func (c *Copier) copyTree(ctx context.Context, src string, dst string) error {
	var wg sync.WaitGroup
	var metas []dirMeta

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if err := c.dirs.Ensure(target, os.ModePerm); err != nil {
				return err
			}

			if c.cfg.App.PreservePerms || c.cfg.App.PreserveTimes {
				info, err := d.Info()
				if err != nil {
					return err
				}

				metas = append(metas, dirMeta{target: target, info: info})
			}

			return nil
		case d.Type()&fs.ModeSymlink != 0:
			if err := c.copySymlink(path, target); err != nil {
				return err
			}

			if c.removeSource {
				return os.Remove(path)
			}

			return nil
		case !d.Type().IsRegular():
			c.log.Warn().Str("path", path).Msg("skipping special file")
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if err := c.sem.Acquire(ctx, 1); err != nil {
			return err
		}

		wg.Add(1)
		tasks.Submit(func() {
			defer wg.Done()
			defer c.sem.Release(1)

			if err := c.copyFile(ctx, path, target, info); err != nil {
				c.stats.failed.Inc()
				c.log.Err(err).Str("path", path).Msg("failed to copy file")
			}
		})

		return nil
	})

	wg.Wait()

	if walkErr != nil {
		return walkErr
	}

	// children first, writing into a directory bumps its mtime
	for i := len(metas) - 1; i >= 0; i-- {
		m := metas[i]

		if c.cfg.App.PreservePerms {
			if err := os.Chmod(m.target, m.info.Mode().Perm()); err != nil {
				return errgo.Wrap(err, "failed to preserve directory mode")
			}
		}

		if c.cfg.App.PreserveTimes {
			mtime := m.info.ModTime()
			if err := os.Chtimes(m.target, mtime, mtime); err != nil {
				return errgo.Wrap(err, "failed to preserve directory times")
			}
		}
	}

	return nil
}

func (c *Copier) copySymlink(src string, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}

	_ = os.Remove(dst)

	return os.Symlink(target, dst)
}

func (c *Copier) reportLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second * 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := c.monitor.Status()
			c.log.Info().
				Int64("files", c.stats.files.Value()).
				Str("copied", humanBytes(c.stats.bytes.Value())).
				Str("rate", humanBytes(s.CurRate)+"/s").
				Msg("progress")
		}
	}
}

// when dst is an existing directory, copy into it under the source's name
func resolveTarget(src string, dst string, info os.FileInfo) (string, error) {
	s, err := os.Stat(dst)
	if err != nil {
		if os.IsNotExist(err) {
			return dst, nil
		}

		return "", errgo.Wrap(err, "failed to stat destination")
	}

	if s.IsDir() && !info.IsDir() {
		return filepath.Join(dst, filepath.Base(src)), nil
	}

	return dst, nil
}

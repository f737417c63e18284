package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/docker/go-units"
	"github.com/dustin/go-humanize"
	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"

	"fcp/internal/config"
	"fcp/internal/copier"
	"fcp/internal/global"
)

func defaultConfigPath() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(h, ".config", "fcp", "config.toml")
}

func main() {
	// exit through a wrapper so deferred profile writers still run
	os.Exit(run())
}

func run() int {
	var configFilePath = pflag.String("config-file", "", "path to config file (default ~/.config/fcp/config.toml)")
	var workers = pflag.Int("workers", 0, "number of files copied in parallel")
	var bufferSize = pflag.String("buffer-size", "", "buffer size for the read/write fallback path, e.g. '4MiB'")
	var rateLimit = pflag.String("rate-limit", "", "throughput cap in bytes per second, e.g. '50MiB'")
	var move = pflag.Bool("move", false, "remove source files after a successful copy")
	var noPreserve = pflag.Bool("no-preserve", false, "do not preserve file mode and modification time")
	var showVersion = pflag.Bool("version", false, "print version and exit")

	var profiling = pflag.Bool("profile", false, "enable profiling for CPU and Memory")
	var profileCpu = pflag.Bool("profile-cpu", false, "enable CPU profiling only")
	var profileMem = pflag.Bool("profile-memory", false, "enable Memory profiling only")

	// this avoids 'pflag: help requested' error when calling for help message.
	if slices.Contains(os.Args[1:], "--help") || slices.Contains(os.Args[1:], "-h") {
		fmt.Println("Usage: fcp [flags] SRC DST")
		pflag.Usage()
		fmt.Println("\nNote: extra options will override config file, but won't change config file.")
		return 0
	}

	pflag.Parse()

	if *showVersion {
		fmt.Println("fcp", global.Version)
		return 0
	}

	if *profileCpu || *profileMem || *profiling {
		var opt = make([]func(*profile.Profile), 0, 2)
		if *profileCpu || *profiling {
			opt = append(opt, profile.CPUProfile)
		}
		if *profileMem || *profiling {
			opt = append(opt, profile.MemProfile)
		}
		defer profile.Start(opt...).Stop()
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	args := pflag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: fcp [flags] SRC DST")
		return 2
	}

	if *configFilePath == "" {
		*configFilePath = defaultConfigPath()
	}

	cfg, err := config.LoadFromFile(*configFilePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 1
	}

	if *workers > 0 {
		cfg.App.Workers = *workers
	}

	if *bufferSize != "" {
		cfg.BufferSize, err = units.RAMInBytes(*bufferSize)
		if err != nil {
			log.Error().Err(err).Msg("invalid --buffer-size")
			return 1
		}
	}

	if *rateLimit != "" {
		cfg.RateLimit, err = units.RAMInBytes(*rateLimit)
		if err != nil {
			log.Error().Err(err).Msg("invalid --rate-limit")
			return 1
		}
	}

	if *noPreserve {
		cfg.App.PreservePerms = false
		cfg.App.PreserveTimes = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := copier.New(cfg)

	start := time.Now()

	if *move {
		err = c.Move(ctx, args[0], args[1])
	} else {
		err = c.Copy(ctx, args[0], args[1])
	}

	if err != nil {
		log.Error().Err(err).Msg("copy failed")
		return 1
	}

	files, copied := c.Stats()
	log.Info().Msgf("copied %d files (%s) in %s",
		files, humanize.IBytes(uint64(copied)), time.Since(start).Round(time.Millisecond))

	return 0
}

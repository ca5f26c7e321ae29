package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/panbanda/noslop/internal/cache"
	"github.com/panbanda/noslop/internal/output"
	"github.com/panbanda/noslop/pkg/config"
	"github.com/spf13/cobra"
)

// rootPath returns the path argument, defaulting to ".".
func rootPath(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// loadConfig loads the file named by --config, or searches root and then
// the working directory.
func loadConfig(opts *options, root string) (*config.LoadResult, error) {
	loadOpt := config.WithSearchDirs(searchDirs(root)...)
	if opts.configFile != "" {
		loadOpt = config.WithPath(opts.configFile)
	}

	result, err := config.LoadConfig(loadOpt)
	if err != nil {
		return nil, err
	}
	if result.Source != "" {
		slog.Debug("loaded config", "path", result.Source)
	}
	return result, nil
}

func searchDirs(root string) []string {
	dirs := []string{root, filepath.Join(root, ".noslop")}
	if !samePath(root, ".") {
		dirs = append(dirs, ".", ".noslop")
	}
	return dirs
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// applyFlags overlays explicitly set flags onto cfg.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("min-calls") {
		cfg.Defaults.MinCallSites = opts.minCalls
	}
	if flags.Changed("include-private") {
		cfg.Defaults.IncludePrivate = opts.includePrivate
	}
	if flags.Changed("workers") {
		cfg.Defaults.Workers = opts.workers
	}
	if opts.cache {
		cfg.Cache.Enabled = true
	}
	if opts.noCache {
		cfg.Cache.Enabled = false
	}
	if opts.noColor {
		cfg.Output.Color = false
	}
	if opts.json {
		cfg.Output.Format = string(output.FormatJSON)
	} else if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	return cfg.Validate()
}

// openCache returns nil when caching is off. A relative cache dir is
// resolved against root.
func openCache(cfg *config.Config, root string) (*cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	c, err := cache.New(cacheDir(cfg, root), cfg.Cache.TTL, true)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return c, nil
}

func cacheDir(cfg *config.Config, root string) string {
	if filepath.IsAbs(cfg.Cache.Dir) {
		return cfg.Cache.Dir
	}
	return filepath.Join(root, cfg.Cache.Dir)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/panbanda/noslop/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// options holds every flag value for one invocation.
type options struct {
	configFile string
	verbose    bool
	quiet      bool
	pprof      string
	cpuFile    *os.File

	json           bool
	format         string
	output         string
	minCalls       int
	includePrivate bool
	workers        int
	cache          bool
	noCache        bool
	noColor        bool
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "noslop [path]",
		Short: "Find default parameter values no caller relies on",
		Long: `noslop scans a Python codebase and reports default parameter values that
every call site overrides (SLOP010). Such defaults are dead weight: the
parameter could be required, or the default could be removed.

Calls are matched to definitions by simple name. A call using *args or
**kwargs makes the matching definitions indeterminate and nothing is
reported for them.

Exit status is 0 when nothing is found, 1 when unused defaults are found,
and 2 on error.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), opts.verbose, opts.quiet))
			return opts.startProfile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, rootPath(args))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	pf.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress progress and log output")
	pf.StringVar(&opts.pprof, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")

	addAnalyzeFlags(cmd.Flags(), opts)

	cmd.AddCommand(newDefaultsCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newMCPCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))
	return cmd
}

// newDefaultsCmd is the explicit form of the root command.
func newDefaultsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults [path]",
		Short: "Report default parameter values every call site overrides (SLOP010)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, rootPath(args))
		},
	}
	addAnalyzeFlags(cmd.Flags(), opts)
	return cmd
}

// addAnalyzeFlags registers the flags shared by every command that runs an analysis.
func addAnalyzeFlags(fs *pflag.FlagSet, opts *options) {
	fs.BoolVar(&opts.json, "json", false, "Output issues as JSON (same as --format json)")
	fs.StringVarP(&opts.format, "format", "f", "", "Output format: "+output.FormatNames())
	fs.StringVarP(&opts.output, "output", "o", "", "Write output to file")
	fs.IntVar(&opts.minCalls, "min-calls", 1, "Only report defaults of functions with at least this many call sites")
	fs.BoolVar(&opts.includePrivate, "include-private", false, "Also report functions whose name starts with a single underscore")
	fs.IntVar(&opts.workers, "workers", 0, "Files parsed concurrently (0 = 2x CPUs)")
	fs.BoolVar(&opts.cache, "cache", false, "Reuse per-file results from the cache directory")
	fs.BoolVar(&opts.noCache, "no-cache", false, "Disable the cache even if the config enables it")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
}

// newLogger writes text logs to w at warn level, debug when verbose,
// and discards everything when quiet.
func newLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	if quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *options) startProfile() error {
	if o.pprof == "" || o.cpuFile != nil {
		return nil
	}
	f, err := os.Create(o.pprof + ".cpu.pprof")
	if err != nil {
		return fmt.Errorf("failed to create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to start CPU profile: %w", err)
	}
	o.cpuFile = f
	return nil
}

// stopProfile runs after every command, including failed ones.
func (o *options) stopProfile(w io.Writer) error {
	if o.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	o.cpuFile.Close()
	o.cpuFile = nil
	fmt.Fprintf(w, "CPU profile written to %s.cpu.pprof\n", o.pprof)

	memFile, err := os.Create(o.pprof + ".mem.pprof")
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer memFile.Close()

	runtime.GC()
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	fmt.Fprintf(w, "Memory profile written to %s.mem.pprof\n", o.pprof)
	return nil
}

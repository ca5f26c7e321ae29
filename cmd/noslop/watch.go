package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panbanda/noslop/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-run the analysis whenever Python files change",
		Long: `Runs the analysis once, then again after every burst of changes to .py
files under path. Stop with Ctrl-C.

Enabling the cache (--cache) keeps re-runs fast on large trees: only
changed files are parsed again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts, rootPath(args), debounce)
		},
	}
	addAnalyzeFlags(cmd.Flags(), opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
	return cmd
}

func runWatch(cmd *cobra.Command, opts *options, root string, debounce time.Duration) error {
	cfg, err := prepare(cmd, opts, root)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	run := func() {
		result, err := analyze(ctx, cmd.ErrOrStderr(), opts, cfg, root)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Error("analysis failed", "error", err)
			}
			return
		}
		if err := writeResult(cmd.OutOrStdout(), opts, cfg, result); err != nil {
			slog.Error("write result", "error", err)
		}
	}

	w, err := watch.NewWatcher(root, cfg, debounce)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()
	w.SetLogger(slog.Default())
	w.SetCallback(func(changed []string) {
		if !opts.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%d file(s) changed\n", len(changed))
		}
		for _, path := range changed {
			slog.Debug("changed", "path", path)
		}
		run()
	})

	run()

	// Stopping the watch with a signal is the normal way out.
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

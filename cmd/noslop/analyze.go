package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/panbanda/noslop/internal/output"
	"github.com/panbanda/noslop/internal/progress"
	"github.com/panbanda/noslop/internal/scanner"
	"github.com/panbanda/noslop/pkg/analyzer"
	"github.com/panbanda/noslop/pkg/analyzer/defaults"
	"github.com/panbanda/noslop/pkg/config"
	"github.com/spf13/cobra"
)

func runAnalyze(cmd *cobra.Command, opts *options, root string) error {
	cfg, err := prepare(cmd, opts, root)
	if err != nil {
		return err
	}

	result, err := analyze(cmd.Context(), cmd.ErrOrStderr(), opts, cfg, root)
	if err != nil {
		return err
	}

	if err := writeResult(cmd.OutOrStdout(), opts, cfg, result); err != nil {
		return err
	}

	if result.HasIssues() {
		return errIssuesFound
	}
	return nil
}

// prepare validates the root and resolves the effective configuration.
// Every failure here happens before any file is read.
func prepare(cmd *cobra.Command, opts *options, root string) (*config.Config, error) {
	if err := scanner.CheckRoot(root); err != nil {
		return nil, err
	}

	result, err := loadConfig(opts, root)
	if err != nil {
		return nil, err
	}
	cfg := result.Config

	if err := applyFlags(cmd, opts, cfg); err != nil {
		return nil, err
	}

	if _, err := output.ParseFormat(cfg.Output.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analyze scans root and runs one full analysis. Progress goes to stderr.
func analyze(ctx context.Context, stderr io.Writer, opts *options, cfg *config.Config, root string) (*defaults.Analysis, error) {
	files, err := scanner.NewScanner(cfg).ScanDir(root)
	if err != nil {
		return nil, err
	}

	c, err := openCache(cfg, root)
	if err != nil {
		return nil, err
	}

	if !opts.quiet {
		fmt.Fprintf(stderr, "Analyzing %d files...\n", len(files))
		if format, _ := output.ParseFormat(cfg.Output.Format); format == output.FormatText && isTerminal(stderr) {
			bar := progress.NewBar(stderr, "Analyzing")
			ctx = analyzer.WithTracker(ctx, bar.Tracker())
			defer bar.Finish()
		}
	}

	a := defaults.New(
		defaults.WithMinCallSites(cfg.Defaults.MinCallSites),
		defaults.WithIncludePrivate(cfg.Defaults.IncludePrivate),
		defaults.WithWorkers(cfg.Defaults.Workers),
		defaults.WithCache(c),
		defaults.WithLogger(slog.Default()),
	)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}

	for _, s := range result.Skipped {
		slog.Warn("skipped file", "path", s.Path, "reason", s.Reason)
	}
	if opts.verbose && !opts.quiet {
		if err := writeSummary(stderr, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func writeSummary(w io.Writer, result *defaults.Analysis) error {
	summary := result.SummaryRows()
	rows := make([][]string, len(summary))
	for i, row := range summary {
		rows[i] = []string{row[0], row[1]}
	}
	return output.RenderTable(w, []string{"Metric", "Value"}, rows)
}

func writeResult(stdout io.Writer, opts *options, cfg *config.Config, result *defaults.Analysis) error {
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(
		output.WithWriter(stdout),
		output.WithFormat(format),
		output.WithColor(cfg.Output.Color && isTerminal(stdout)),
		output.WithFile(opts.output),
	)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(result)
}

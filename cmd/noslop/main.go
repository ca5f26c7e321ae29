package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// Exit codes.
const (
	exitOK          = 0
	exitIssuesFound = 1
	exitError       = 2
	exitInterrupted = 130
)

// errIssuesFound makes a run exit with exitIssuesFound without printing an error.
var errIssuesFound = errors.New("unused defaults found")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the CLI and maps the outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if perr := opts.stopProfile(stderr); perr != nil && err == nil {
		err = perr
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errIssuesFound):
		return exitIssuesFound
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted")
		return exitInterrupted
	default:
		fmt.Fprintln(stderr, color.RedString("Error: %v", err))
		return exitError
	}
}

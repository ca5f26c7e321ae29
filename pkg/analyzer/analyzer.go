// Package analyzer holds what every whole-program analysis shares: the
// FileAnalyzer contract and per-file progress reporting.
package analyzer

import "context"

// FileAnalyzer analyzes a fixed set of files as one program.
type FileAnalyzer[T any] interface {
	// Analyze returns a result only once every file has been processed.
	// A cancelled ctx yields ctx.Err() and no result.
	Analyze(ctx context.Context, files []string) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}

package progress

import (
	"io"
	"sync"

	"github.com/panbanda/noslop/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Bar renders per-file progress. The total is learned from the first Step,
// so the bar starts as a spinner.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	max int
}

// NewBar creates a bar writing to w with the given label.
func NewBar(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, max: -1}
}

// Update is an analyzer.ProgressFunc.
func (b *Bar) Update(s analyzer.Step) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.Total > 0 && s.Total != b.max {
		b.bar.ChangeMax(s.Total)
		b.max = s.Total
	}
	_ = b.bar.Set(s.Done)
}

// Tracker returns an analyzer.Tracker that drives this bar.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(b.Update)
}

// Finish clears the bar from the terminal.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

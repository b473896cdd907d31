// Package progress draws progress bars for corpus scans and batch runs when
// the output is a terminal.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/lehigh-university-libraries/pdcheck/internal/corpus"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar counts finished units of work. A Bar on a non-terminal writer is silent.
// It is safe for concurrent use.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar creates a bar for total units.
func NewBar(w io.Writer, total int, description string) *Bar {
	return newBar(w, total, description, IsTerminal(w))
}

func newBar(w io.Writer, total int, description string, enabled bool) *Bar {
	if !enabled {
		return &Bar{}
	}
	return &Bar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

// Add records n finished units.
func (b *Bar) Add(n int) {
	if b == nil || b.bar == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Add(n)
}

// Finish completes and clears the bar.
func (b *Bar) Finish() {
	if b == nil || b.bar == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.bar.Finish()
}

// Scan renders corpus scan progress. Each scan restarts the bar with the new
// container count.
type Scan struct {
	mu  sync.Mutex
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewScan returns a scan renderer for w, or nil when w is not a terminal.
func NewScan(w io.Writer) *Scan {
	if !IsTerminal(w) {
		return nil
	}
	return &Scan{w: w}
}

// Func adapts s to a corpus.ProgressFunc. A nil Scan yields a nil func.
func (s *Scan) Func() corpus.ProgressFunc {
	if s == nil {
		return nil
	}
	return s.update
}

func (s *Scan) update(p corpus.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar == nil || p.Done == 1 {
		if s.bar != nil {
			_ = s.bar.Clear()
		}
		s.bar = progressbar.NewOptions(p.Total,
			progressbar.OptionSetWriter(s.w),
			progressbar.OptionSetDescription(string(p.Domain)),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = s.bar.Set(p.Done)
	if p.Done >= p.Total {
		_ = s.bar.Finish()
		s.bar = nil
	}
}

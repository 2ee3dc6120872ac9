package printer

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/slok/taskmon/internal/monitor"
)

const progressBarWidth = 30

// ProgressBar returns an ASCII bar of width filled up to percent.
func ProgressBar(percent, width int) string {
	if width <= 0 {
		width = progressBarWidth
	}
	filled := percent * width / 100
	switch {
	case filled < 0:
		filled = 0
	case filled > width:
		filled = width
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// ProgressLine redraws a single terminal line with the progress of a task.
type ProgressLine struct {
	w       io.Writer
	noColor bool

	mu      sync.Mutex
	lastLen int
}

// NewProgressLine creates a new progress line over w.
func NewProgressLine(w io.Writer, noColor bool) *ProgressLine {
	return &ProgressLine{w: w, noColor: noColor}
}

// Update redraws the line with the view.
func (p *ProgressLine) Update(view monitor.View) {
	line := fmt.Sprintf("  %s %3d%%  %s", ProgressBar(view.ProgressPercent(), progressBarWidth), view.ProgressPercent(), view.StatusText())
	if est := view.EstimatedTimeRemaining(); est.State != monitor.EstimateUnavailable {
		line += "  eta: " + est.String()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Pad with spaces to clean the rest of a longer previous line.
	pad := ""
	if n := len(line); n < p.lastLen {
		pad = strings.Repeat(" ", p.lastLen-n)
	}
	p.lastLen = len(line)

	fmt.Fprintf(p.w, "\r%s%s", colorStatus(line, view.Color(), p.noColor), pad)
}

// Finish ends the progress line with a newline.
func (p *ProgressLine) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w)
}

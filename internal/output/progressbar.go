package output

import (
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/rafabd1/hashes/internal/utils"
)

// ProgressBar renders key generation progress. It satisfies progress.Monitor:
// Update receives the index of a produced key, in any order and from any
// goroutine, and the bar shows the highest index seen plus one.
type ProgressBar struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	tc      *TerminalController
	total   int
	current int
	active  bool
}

// NewProgressBar creates a bar for total keys on the process terminal.
func NewProgressBar(total int, description string) *ProgressBar {
	return NewProgressBarWith(GetTerminalController(), total, description)
}

// NewProgressBarWith draws on tc instead of the process terminal.
func NewProgressBarWith(tc *TerminalController, total int, description string) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(tc.Writer()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetVisibility(tc.IsTerminal()),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &ProgressBar{bar: bar, tc: tc, total: total}
}

// Start draws the empty bar and, on a terminal, hooks the logger so log lines
// clear the bar first and redraw it after.
func (pb *ProgressBar) Start() {
	pb.mu.Lock()
	if pb.active {
		pb.mu.Unlock()
		return
	}
	pb.active = true
	pb.mu.Unlock()

	if pb.tc.IsTerminal() {
		utils.RegisterLogCallbacks(pb.MoveForLog, pb.ShowAfterLog)
		pb.tc.CoordinateOutput(func() { _ = pb.bar.RenderBlank() })
	}
}

// Update records that the key at index has been produced.
func (pb *ProgressBar) Update(index int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if index+1 <= pb.current {
		return
	}
	pb.current = index + 1
	if pb.current > pb.total {
		pb.current = pb.total
	}
	if pb.active {
		n := pb.current
		pb.tc.CoordinateOutput(func() { _ = pb.bar.Set(n) })
	}
}

// Current is the number of keys the bar shows as done.
func (pb *ProgressBar) Current() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.current
}

// Finish completes the bar and removes the log hooks. Safe to call twice.
func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	if !pb.active {
		pb.mu.Unlock()
		return
	}
	pb.active = false
	pb.mu.Unlock()

	if pb.tc.IsTerminal() {
		utils.UnregisterLogCallbacks()
	}
	pb.tc.CoordinateOutput(func() { _ = pb.bar.Finish() })
}

// MoveForLog runs before a log line: it takes the terminal and clears the bar.
// ShowAfterLog must follow.
func (pb *ProgressBar) MoveForLog() {
	pb.tc.BeginOutput()
	_ = pb.bar.Clear()
}

// ShowAfterLog redraws the bar and releases the terminal.
func (pb *ProgressBar) ShowAfterLog() {
	_ = pb.bar.RenderBlank()
	pb.tc.EndOutput()
}

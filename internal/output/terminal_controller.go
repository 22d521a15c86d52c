package output

import (
	"io"
	"os"
	"sync"

	"github.com/rafabd1/hashes/internal/utils"
)

// TerminalController serialises writes to the terminal so a progress bar
// redraw never interleaves with a log line.
type TerminalController struct {
	outputMu   sync.Mutex
	writer     io.Writer
	isTerminal bool
}

var (
	terminalController *TerminalController
	once               sync.Once
)

// GetTerminalController returns the process-wide controller bound to stderr.
func GetTerminalController() *TerminalController {
	once.Do(func() {
		terminalController = NewTerminalController(os.Stderr, utils.IsTerminal(os.Stderr.Fd()))
	})
	return terminalController
}

// NewTerminalController builds a controller around w. Mostly useful in tests.
func NewTerminalController(w io.Writer, isTerminal bool) *TerminalController {
	return &TerminalController{writer: w, isTerminal: isTerminal}
}

func (tc *TerminalController) BeginOutput() { tc.outputMu.Lock() }

func (tc *TerminalController) EndOutput() { tc.outputMu.Unlock() }

// CoordinateOutput runs fn with exclusive access to the terminal.
func (tc *TerminalController) CoordinateOutput(fn func()) {
	tc.BeginOutput()
	defer tc.EndOutput()
	fn()
}

func (tc *TerminalController) Writer() io.Writer { return tc.writer }

func (tc *TerminalController) IsTerminal() bool { return tc.isTerminal }

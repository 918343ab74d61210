package ui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// OutputMode selects how findings and progress are rendered.
type OutputMode int

const (
	// OutputModeInteractive enables colors, spinners, and progress bars.
	OutputModeInteractive OutputMode = iota
	// OutputModePlain is uncolored line output for pipes and CI logs.
	OutputModePlain
	// OutputModeJSON emits machine-readable JSON only.
	OutputModeJSON
)

// UI bundles the output writers with the detected mode and style set.
type UI struct {
	Mode      OutputMode
	Writer    io.Writer
	ErrWriter io.Writer
	Styles    *Styles
}

// New detects the output mode for w and builds a matching UI. An
// explicit format of "json" overrides TTY detection.
func New(w, errW io.Writer, format string) *UI {
	mode := detectMode(w, format)
	return &UI{
		Mode:      mode,
		Writer:    w,
		ErrWriter: errW,
		Styles:    NewStyles(mode == OutputModeInteractive),
	}
}

func detectMode(w io.Writer, format string) OutputMode {
	if format == "json" {
		return OutputModeJSON
	}
	if os.Getenv("NO_COLOR") != "" {
		return OutputModePlain
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return OutputModeInteractive
	}
	return OutputModePlain
}

// IsInteractive reports whether output goes to a live terminal.
func (ui *UI) IsInteractive() bool {
	return ui.Mode == OutputModeInteractive
}

// IsJSON reports whether JSON output mode is enabled.
func (ui *UI) IsJSON() bool {
	return ui.Mode == OutputModeJSON
}

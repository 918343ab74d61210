package ui

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgressController manages the bubbletea program for progress display
type ProgressController struct {
	ui      *UI
	program *tea.Program
}

// StartProgress starts the progress display if in interactive mode
// Returns nil if not in interactive mode
func (ui *UI) StartProgress() *ProgressController {
	if ui.Mode != OutputModeInteractive {
		return nil
	}

	m := NewModel()
	p := tea.NewProgram(m, tea.WithOutput(ui.ErrWriter))

	ctrl := &ProgressController{
		ui:      ui,
		program: p,
	}

	go func() {
		if _, err := p.Run(); err != nil {
			_ = err
		}
	}()

	return ctrl
}

// SetStage updates the current stage
func (pc *ProgressController) SetStage(stage Stage) {
	if pc != nil && pc.program != nil {
		pc.program.Send(StageMsg(stage))
	}
}

// SetOperation updates the current operation description
func (pc *ProgressController) SetOperation(op string) {
	if pc != nil && pc.program != nil {
		pc.program.Send(OperationMsg(op))
	}
}

// SetFileCount sets the total number of files to analyze
func (pc *ProgressController) SetFileCount(count int) {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileCountMsg(count))
	}
}

// FileStart indicates analysis of a file has started
func (pc *ProgressController) FileStart(path string) {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileStartMsg(fmt.Sprintf("Analyzing %s...", filepath.Base(path))))
	}
}

// FileDone indicates analysis of a file has completed
func (pc *ProgressController) FileDone() {
	if pc != nil && pc.program != nil {
		pc.program.Send(FileDoneMsg{})
	}
}

// Done signals that all work is complete
func (pc *ProgressController) Done(err error) {
	if pc != nil && pc.program != nil {
		pc.program.Send(DoneMsg{Err: err})
		pc.program.Wait()
	}
}

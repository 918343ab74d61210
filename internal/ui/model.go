package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stage represents the current stage of a scan
type Stage int

const (
	StageLoadConfig Stage = iota
	StageCollectFiles
	StageAnalyze
	StageDone
)

// Message types for updating the model
type (
	StageMsg     Stage
	OperationMsg string
	FileStartMsg string
	FileDoneMsg  struct{}
	FileCountMsg int
	DoneMsg      struct{ Err error }
)

const maxBarWidth = 60

// Model is the Bubbletea model for scan progress display
type Model struct {
	stage     Stage
	spinner   spinner.Model
	bar       progress.Model
	currentOp string
	fileCount int
	filesDone int
	quitting  bool
	err       error
}

// NewModel creates a new progress model
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		stage:   StageLoadConfig,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.bar.Width = min(msg.Width-4, maxBarWidth)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StageMsg:
		m.stage = Stage(msg)
		m.currentOp = ""

	case OperationMsg:
		m.currentOp = string(msg)

	case FileStartMsg:
		m.currentOp = string(msg)

	case FileCountMsg:
		m.fileCount = int(msg)

	case FileDoneMsg:
		m.filesDone++

	case DoneMsg:
		m.err = msg.Err
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder

	switch m.stage {
	case StageLoadConfig:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Loading detector configuration...")

	case StageCollectFiles:
		sb.WriteString(m.spinner.View())
		sb.WriteString(" Collecting source files")
		if m.currentOp != "" {
			fmt.Fprintf(&sb, " (%s)", m.currentOp)
		}

	case StageAnalyze:
		if m.fileCount > 0 {
			sb.WriteString(m.bar.ViewAs(float64(m.filesDone) / float64(m.fileCount)))
			fmt.Fprintf(&sb, " %d/%d\n", m.filesDone, m.fileCount)
		}
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		if m.currentOp != "" {
			sb.WriteString(m.currentOp)
		} else {
			sb.WriteString("Analyzing files...")
		}
	}

	return sb.String()
}

package reporter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/shadowai/shadowdetect/internal/model"
	"github.com/shadowai/shadowdetect/internal/scoring"
	"github.com/shadowai/shadowdetect/internal/ui"
)

// TerminalReporter outputs results to the terminal with colors
type TerminalReporter struct {
	w       io.Writer
	styles  *ui.Styles
	verbose bool
}

// NewTerminalReporter creates a new terminal reporter
func NewTerminalReporter(w io.Writer, styles *ui.Styles, verbose bool) *TerminalReporter {
	return &TerminalReporter{w: w, styles: styles, verbose: verbose}
}

// Report outputs findings to the terminal
func (r *TerminalReporter) Report(findings []Finding) error {
	for _, f := range findings {
		r.printFinding(f)
	}

	if len(findings) > 1 {
		r.printSummary(findings)
	}

	return nil
}

func (r *TerminalReporter) printFinding(f Finding) {
	s := r.styles

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, s.Header.Render(filepath.Base(f.Source)))
	fmt.Fprintf(r.w, "  %s\n", s.Path.Render(f.Source))

	if f.Err != nil {
		fmt.Fprintf(r.w, "  %s %v\n", s.Error.Render(s.IconError), f.Err)
		return
	}

	verdictStyle, icon := r.verdictStyle(f.Report.Verdict)
	fmt.Fprintf(r.w, "  %s %s\n",
		verdictStyle.Render(icon),
		verdictStyle.Render(f.Report.Verdict.Text()))
	fmt.Fprintf(r.w, "  %s %.1f%%\n", s.Label.Render("Confidence:"), float64(f.Report.Confidence))

	fmt.Fprintf(r.w, "  %s %s", s.Label.Render("Language:"), f.Language)
	if f.Fidelity == model.Approximate {
		fmt.Fprint(r.w, s.Subheader.Render(" (approximate parse)"))
	}
	fmt.Fprintln(r.w)

	if len(f.Report.Reasons) > 0 {
		reasons := make([]string, len(f.Report.Reasons))
		labels := make([]string, len(f.Report.Reasons))
		for i, label := range f.Report.Reasons {
			reasons[i] = label.Describe()
			labels[i] = string(label)
		}
		fmt.Fprintf(r.w, "  %s %s\n", s.Label.Render("Reason:"), strings.Join(reasons, ", "))
		fmt.Fprintf(r.w, "  %s [%s]\n", s.Label.Render("Patterns Found:"), strings.Join(labels, ", "))
	} else {
		fmt.Fprintf(r.w, "  %s No significant AI patterns detected\n", s.Label.Render("Reason:"))
		fmt.Fprintf(r.w, "  %s []\n", s.Label.Render("Patterns Found:"))
	}

	if r.verbose {
		r.printDetail(f.Report)
	}
}

func (r *TerminalReporter) printDetail(rep *scoring.Report) {
	s := r.styles

	ids := make([]string, 0, len(rep.PerAnalyzer))
	for id := range rep.PerAnalyzer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Fprintf(r.w, "    %s %.2f\n", s.Subheader.Render(id+":"), rep.PerAnalyzer[id])
		for _, ev := range rep.Evidence[id] {
			fmt.Fprintf(r.w, "      %s\n", s.Subheader.Render(fmt.Sprintf("line %d: %s", ev.Line, ev.Excerpt)))
		}
	}
}

func (r *TerminalReporter) printSummary(findings []Finding) {
	s := r.styles
	summary := ComputeSummary(findings)

	fmt.Fprintln(r.w)
	fmt.Fprintln(r.w, s.Separator.Render("─────────────────────────────────────"))

	parts := []string{}
	if summary.LikelyAI > 0 {
		parts = append(parts, s.LikelyAI.Render(fmt.Sprintf("%d likely AI", summary.LikelyAI)))
	}
	if summary.Possible > 0 {
		parts = append(parts, s.Possible.Render(fmt.Sprintf("%d possible", summary.Possible)))
	}
	if summary.HumanWritten > 0 {
		parts = append(parts, s.Human.Render(fmt.Sprintf("%d human-written", summary.HumanWritten)))
	}
	if summary.Errors > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d errors", summary.Errors)))
	}

	fmt.Fprintf(r.w, "Analyzed %d files: %s\n", summary.Total, strings.Join(parts, ", "))
}

func (r *TerminalReporter) verdictStyle(v scoring.Verdict) (lipgloss.Style, string) {
	s := r.styles
	switch v {
	case scoring.LikelyAI:
		return s.LikelyAI, s.IconLikelyAI
	case scoring.Possible:
		return s.Possible, s.IconPossible
	default:
		return s.Human, s.IconHuman
	}
}

package reporter

import (
	"encoding/json"
	"io"

	"github.com/shadowai/shadowdetect/internal/heuristics"
)

// JSONReporter outputs results as JSON
type JSONReporter struct {
	w io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

// JSONOutput represents the JSON output format
type JSONOutput struct {
	Results []JSONResult `json:"results"`
	Summary Summary      `json:"summary"`
}

// JSONResult represents one finding in JSON format
type JSONResult struct {
	Source      string                           `json:"source"`
	Language    string                           `json:"language,omitempty"`
	Fidelity    string                           `json:"fidelity,omitempty"`
	Result      string                           `json:"result,omitempty"`
	Verdict     string                           `json:"verdict,omitempty"`
	Confidence  int                              `json:"confidence"`
	Reasons     []string                         `json:"reasons,omitempty"`
	Patterns    []string                         `json:"patterns,omitempty"`
	PerAnalyzer map[string]float64               `json:"perAnalyzer,omitempty"`
	Evidence    map[string][]heuristics.Evidence `json:"evidence,omitempty"`
	Error       string                           `json:"error,omitempty"`
}

// Report outputs findings as JSON
func (r *JSONReporter) Report(findings []Finding) error {
	output := JSONOutput{
		Results: make([]JSONResult, 0, len(findings)),
		Summary: ComputeSummary(findings),
	}

	for _, f := range findings {
		jr := JSONResult{
			Source:   f.Source,
			Language: f.Language,
		}
		if f.Err != nil {
			jr.Error = f.Err.Error()
			output.Results = append(output.Results, jr)
			continue
		}

		jr.Fidelity = f.Fidelity.String()
		jr.Result = f.Report.Verdict.Text()
		jr.Verdict = f.Report.Verdict.String()
		jr.Confidence = f.Report.Confidence
		jr.PerAnalyzer = f.Report.PerAnalyzer
		jr.Evidence = f.Report.Evidence
		for _, label := range f.Report.Reasons {
			jr.Reasons = append(jr.Reasons, label.Describe())
			jr.Patterns = append(jr.Patterns, string(label))
		}

		output.Results = append(output.Results, jr)
	}

	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

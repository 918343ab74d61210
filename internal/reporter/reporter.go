package reporter

import (
	"github.com/shadowai/shadowdetect/internal/model"
	"github.com/shadowai/shadowdetect/internal/scoring"
)

// Finding is one analyzed source unit ready for output. Err is set
// when the unit could not be analyzed at all.
type Finding struct {
	Source   string
	Language string
	Fidelity model.Fidelity
	Report   *scoring.Report
	Err      error
}

// Reporter defines the interface for outputting analysis results
type Reporter interface {
	// Report outputs the findings
	Report(findings []Finding) error
}

// Summary holds summary statistics for an analysis run
type Summary struct {
	Total        int
	HumanWritten int
	Possible     int
	LikelyAI     int
	Errors       int
}

// ComputeSummary computes summary statistics from findings
func ComputeSummary(findings []Finding) Summary {
	s := Summary{Total: len(findings)}

	for _, f := range findings {
		if f.Err != nil || f.Report == nil {
			s.Errors++
			continue
		}
		switch f.Report.Verdict {
		case scoring.HumanWritten:
			s.HumanWritten++
		case scoring.Possible:
			s.Possible++
		case scoring.LikelyAI:
			s.LikelyAI++
		}
	}

	return s
}

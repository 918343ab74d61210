package heuristics

import (
	"github.com/shadowai/shadowdetect/internal/model"
)

// Evidence points at one line that contributed to a score.
type Evidence struct {
	Line    int    `json:"line"`
	Excerpt string `json:"excerpt"`
}

// Result is one analyzer's partial signal: a score in [0,1], the
// pattern labels it triggered, and the lines backing them up.
type Result struct {
	AnalyzerID string
	Score      float64
	Labels     []model.PatternLabel
	Evidence   []Evidence
}

// Analyzer computes one heuristic signal from a StructuralModel.
// Implementations are stateless and must not mutate the model; the
// registry runs them concurrently over the same instance.
type Analyzer interface {
	// ID returns the unique identifier used for weight lookup.
	ID() string

	// Analyze scores the model. A score's growth must be monotonic in
	// the analyzer's own evidence: more matches never lower it.
	Analyze(m *model.StructuralModel) Result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func excerpt(lines []string, line int) string {
	if line < 1 || line > len(lines) {
		return ""
	}
	s := lines[line-1]
	const max = 80
	if len(s) > max {
		return s[:max]
	}
	return s
}

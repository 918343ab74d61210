package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/heuristics"
	"github.com/shadowai/shadowdetect/internal/model"
)

// Verdict is the three-way reading of the aggregated confidence.
type Verdict int

const (
	HumanWritten Verdict = iota
	Possible
	LikelyAI
)

// String returns the short machine-friendly form.
func (v Verdict) String() string {
	switch v {
	case HumanWritten:
		return "human-written"
	case Possible:
		return "possible"
	case LikelyAI:
		return "likely-ai"
	default:
		return "unknown"
	}
}

// Text returns the user-facing verdict line.
func (v Verdict) Text() string {
	switch v {
	case HumanWritten:
		return "Likely Human-Written"
	case Possible:
		return "Possibly AI-Generated"
	case LikelyAI:
		return "Likely AI-Generated"
	default:
		return "Unknown"
	}
}

// Report is the final, immutable outcome of one analysis.
type Report struct {
	// Confidence is the aggregated AI-likelihood in [0,100].
	Confidence int

	Verdict Verdict

	// Reasons lists every triggered pattern label, ordered by the
	// emitting analyzer's weighted contribution, descending.
	Reasons []model.PatternLabel

	// PerAnalyzer maps analyzer IDs to their raw scores.
	PerAnalyzer map[string]float64

	// Evidence maps analyzer IDs to the lines backing their signal.
	Evidence map[string][]heuristics.Evidence
}

// Aggregator combines analyzer results with fixed configured weights.
// It is pure: identical inputs always produce identical reports.
type Aggregator struct {
	weights  map[string]float64
	order    map[string]int
	possible int
	likely   int
}

// NewAggregator validates that every analyzer in order carries a
// weight. Weight-sum validation already ran in config.Validate; a
// missing per-analyzer entry is the same class of startup error.
func NewAggregator(cfg *config.Config, order []string) (*Aggregator, error) {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := cfg.Weights[id]; !ok {
			return nil, fmt.Errorf("%w: no weight configured for analyzer %q", config.ErrInvalidConfig, id)
		}
		pos[id] = i
	}
	return &Aggregator{
		weights:  cfg.Weights,
		order:    pos,
		possible: cfg.Verdicts.PossibleAt,
		likely:   cfg.Verdicts.LikelyAIAt,
	}, nil
}

// Aggregate merges all analyzer results into one report.
func (a *Aggregator) Aggregate(results []heuristics.Result) *Report {
	rep := &Report{
		PerAnalyzer: make(map[string]float64, len(results)),
		Evidence:    make(map[string][]heuristics.Evidence),
	}

	weighted := 0.0
	type reason struct {
		label        model.PatternLabel
		contribution float64
		order        int
	}
	var reasons []reason

	for _, res := range results {
		w := a.weights[res.AnalyzerID]
		weighted += w * res.Score
		rep.PerAnalyzer[res.AnalyzerID] = res.Score
		if len(res.Evidence) > 0 {
			rep.Evidence[res.AnalyzerID] = res.Evidence
		}
		for _, label := range res.Labels {
			reasons = append(reasons, reason{
				label:        label,
				contribution: w * res.Score,
				order:        a.order[res.AnalyzerID],
			})
		}
	}

	confidence := int(math.Round(100 * weighted))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	rep.Confidence = confidence
	rep.Verdict = a.verdict(confidence)

	sort.SliceStable(reasons, func(i, j int) bool {
		if reasons[i].contribution != reasons[j].contribution {
			return reasons[i].contribution > reasons[j].contribution
		}
		return reasons[i].order < reasons[j].order
	})
	for _, r := range reasons {
		rep.Reasons = append(rep.Reasons, r.label)
	}

	return rep
}

// verdict maps confidence onto bands; the lower bound of each band is
// inclusive, so the configured cut points belong to the higher band.
func (a *Aggregator) verdict(confidence int) Verdict {
	switch {
	case confidence >= a.likely:
		return LikelyAI
	case confidence >= a.possible:
		return Possible
	default:
		return HumanWritten
	}
}

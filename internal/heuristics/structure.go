package heuristics

import (
	"fmt"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/model"
)

// StructureAnalyzer scores how uniform block lengths and nesting
// depths are. Generated code tends toward interchangeable blocks; the
// coefficient of variation captures that directly.
type StructureAnalyzer struct {
	floor     float64
	upper     float64
	minBlocks int
}

func NewStructureAnalyzer(cfg *config.Config) *StructureAnalyzer {
	return &StructureAnalyzer{
		floor:     cfg.Thresholds.UniformityFloor,
		upper:     cfg.Thresholds.UniformityUpper,
		minBlocks: cfg.Thresholds.MinBlocks,
	}
}

func (a *StructureAnalyzer) ID() string { return "structure" }

func (a *StructureAnalyzer) Analyze(m *model.StructuralModel) Result {
	res := Result{AnalyzerID: a.ID()}
	if len(m.Blocks) < a.minBlocks {
		// Short snippets carry no uniformity signal; a neutral zero
		// avoids penalizing them.
		return res
	}

	lengths := make([]float64, len(m.Blocks))
	depths := make([]float64, len(m.Blocks))
	for i, b := range m.Blocks {
		lengths[i] = float64(b.EndLine - b.StartLine + 1)
		depths[i] = float64(b.NestingDepth)
	}

	score := (a.rampScore(coefficientOfVariation(lengths)) +
		a.rampScore(coefficientOfVariation(depths))) / 2

	res.Score = clamp01(score)
	if res.Score >= 0.5 {
		res.Labels = append(res.Labels, model.UniformStructure)
		for i, b := range m.Blocks {
			if i >= 5 {
				break
			}
			res.Evidence = append(res.Evidence, Evidence{
				Line:    b.StartLine,
				Excerpt: fmt.Sprintf("%s block, lines %d-%d", b.Kind, b.StartLine, b.EndLine),
			})
		}
	}
	return res
}

// rampScore maps a coefficient of variation onto [0,1]: 1.0 at or
// below the floor, decaying linearly to 0 at the upper bound.
func (a *StructureAnalyzer) rampScore(cov float64) float64 {
	switch {
	case cov <= a.floor:
		return 1.0
	case cov >= a.upper:
		return 0.0
	default:
		return (a.upper - cov) / (a.upper - a.floor)
	}
}

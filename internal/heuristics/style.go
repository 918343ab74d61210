package heuristics

import (
	"fmt"
	"math"
	"strings"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/model"
)

// styleDims is the number of per-block style dimensions compared
// between windows: mean identifier length, generic-name ratio,
// comment density, mean line length.
const styleDims = 4

// StyleAnalyzer slides a pair of adjacent fixed-size block windows
// through the file and flags boundaries where the local style vector
// jumps. Files pasted together from different origins show exactly
// such discontinuities.
type StyleAnalyzer struct {
	window  int
	zScore  float64
	generic map[string]bool
}

func NewStyleAnalyzer(cfg *config.Config) *StyleAnalyzer {
	return &StyleAnalyzer{
		window:  cfg.Thresholds.StyleWindow,
		zScore:  cfg.Thresholds.StyleZScore,
		generic: cfg.GenericSet(),
	}
}

func (a *StyleAnalyzer) ID() string { return "style" }

func (a *StyleAnalyzer) Analyze(m *model.StructuralModel) Result {
	res := Result{AnalyzerID: a.ID()}
	if len(m.Blocks) < 2*a.window {
		// Fewer blocks than two full windows; undersized input carries
		// no reliable signal.
		return res
	}

	perBlock := make([][styleDims]float64, len(m.Blocks))
	for i, b := range m.Blocks {
		perBlock[i] = a.blockVector(m, b)
	}

	// Normalize each dimension by the file's own spread so naturally
	// diverse small files do not trip the threshold.
	var sigma [styleDims]float64
	for d := 0; d < styleDims; d++ {
		col := make([]float64, len(perBlock))
		for i := range perBlock {
			col[i] = perBlock[i][d]
		}
		sigma[d] = stddev(col)
	}

	discontinuities := 0
	for b := a.window; b+a.window <= len(m.Blocks); b++ {
		left := windowMean(perBlock[b-a.window : b])
		right := windowMean(perBlock[b : b+a.window])

		dist := 0.0
		for d := 0; d < styleDims; d++ {
			if sigma[d] == 0 {
				continue
			}
			delta := (right[d] - left[d]) / sigma[d]
			dist += delta * delta
		}
		if math.Sqrt(dist) > a.zScore {
			discontinuities++
			prev := m.Blocks[b-1]
			next := m.Blocks[b]
			res.Evidence = append(res.Evidence, Evidence{
				Line:    next.StartLine,
				Excerpt: fmt.Sprintf("style shift between lines %d-%d and %d-%d", prev.StartLine, prev.EndLine, next.StartLine, next.EndLine),
			})
		}
	}

	res.Score = clamp01(float64(discontinuities) / 3.0)
	if discontinuities > 0 {
		res.Labels = append(res.Labels, model.StyleDiscontinuity)
	}
	return res
}

func windowMean(vecs [][styleDims]float64) [styleDims]float64 {
	var out [styleDims]float64
	for _, v := range vecs {
		for d := 0; d < styleDims; d++ {
			out[d] += v[d]
		}
	}
	for d := 0; d < styleDims; d++ {
		out[d] /= float64(len(vecs))
	}
	return out
}

// blockVector computes the style vector of one block.
func (a *StyleAnalyzer) blockVector(m *model.StructuralModel, b model.Block) [styleDims]float64 {
	identLens := []float64{}
	genericCount, identCount := 0, 0
	for _, t := range m.Tokens {
		if t.Kind != model.TokenIdentifier || t.Line < b.StartLine || t.Line > b.EndLine {
			continue
		}
		identCount++
		identLens = append(identLens, float64(len(t.Text)))
		if a.generic[strings.ToLower(t.Text)] {
			genericCount++
		}
	}

	genericRatio := 0.0
	if identCount > 0 {
		genericRatio = float64(genericCount) / float64(identCount)
	}

	blockLines := float64(b.EndLine - b.StartLine + 1)
	commentDensity := float64(commentLinesIn(m, b)) / blockLines

	lineLens := []float64{}
	for l := b.StartLine; l <= b.EndLine && l <= len(m.Lines); l++ {
		lineLens = append(lineLens, float64(len(m.Lines[l-1])))
	}

	return [styleDims]float64{
		mean(identLens),
		genericRatio,
		commentDensity,
		mean(lineLens),
	}
}

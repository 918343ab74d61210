package heuristics

import (
	"regexp"
	"strings"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/model"
)

// CommentAnalyzer weighs two signals: templated phrase matches inside
// comments (0.6) and a comment-to-code density outside the natural
// band, or unnaturally uniform across blocks (0.4).
type CommentAnalyzer struct {
	templates   []*regexp.Regexp
	threshold   float64
	bandLow     float64
	bandHigh    float64
	uniformFlo  float64
	minBlocks   int
	phraseShare float64
}

func NewCommentAnalyzer(cfg *config.Config) *CommentAnalyzer {
	return &CommentAnalyzer{
		templates:   cfg.CompiledTemplates(),
		threshold:   cfg.Thresholds.TemplatedComment,
		bandLow:     cfg.Thresholds.CommentBandLow,
		bandHigh:    cfg.Thresholds.CommentBandHigh,
		uniformFlo:  cfg.Thresholds.UniformityFloor,
		minBlocks:   cfg.Thresholds.MinBlocks,
		phraseShare: 0.6,
	}
}

func (a *CommentAnalyzer) ID() string { return "comment" }

func (a *CommentAnalyzer) Analyze(m *model.StructuralModel) Result {
	res := Result{AnalyzerID: a.ID()}
	if len(m.Comments) == 0 {
		// Zero comments is neutral, not suspicious: scoring silence
		// would penalize terse human code.
		return res
	}

	phrase := a.phraseSignal(m, &res)
	density := a.densitySignal(m)

	res.Score = clamp01(a.phraseShare*phrase + (1-a.phraseShare)*density)
	if phrase > a.threshold {
		res.Labels = append(res.Labels, model.TemplatedComment)
	}
	return res
}

// phraseSignal is the share of comments matching a template. Matched
// comments are recorded as evidence.
func (a *CommentAnalyzer) phraseSignal(m *model.StructuralModel, res *Result) float64 {
	matched := 0
	for _, c := range m.Comments {
		for _, re := range a.templates {
			if re.MatchString(c.Text) {
				matched++
				res.Evidence = append(res.Evidence, Evidence{
					Line:    c.StartLine,
					Excerpt: firstLine(c.Text),
				})
				break
			}
		}
	}
	return float64(matched) / float64(len(m.Comments))
}

// densitySignal combines how far the global comment-to-code ratio sits
// outside the natural band with how uniformly comments are spread
// across blocks. Either alone marks machine-flavored commenting.
func (a *CommentAnalyzer) densitySignal(m *model.StructuralModel) float64 {
	code := m.CodeLineCount()
	if code == 0 {
		return 0
	}
	ratio := float64(m.CommentLineCount()) / float64(code)

	outOfBand := 0.0
	switch {
	case ratio > a.bandHigh:
		outOfBand = clamp01((ratio - a.bandHigh) / a.bandHigh)
	case ratio < a.bandLow:
		outOfBand = clamp01((a.bandLow - ratio) / a.bandLow)
	}

	uniform := 0.0
	if len(m.Blocks) >= a.minBlocks {
		densities := make([]float64, 0, len(m.Blocks))
		for _, b := range m.Blocks {
			lines := float64(b.EndLine - b.StartLine + 1)
			densities = append(densities, float64(commentLinesIn(m, b))/lines)
		}
		if mean(densities) > 0 {
			cov := coefficientOfVariation(densities)
			if cov < a.uniformFlo {
				uniform = (a.uniformFlo - cov) / a.uniformFlo
			}
		}
	}

	if uniform > outOfBand {
		return uniform
	}
	return outOfBand
}

func commentLinesIn(m *model.StructuralModel, b model.Block) int {
	n := 0
	for _, c := range m.Comments {
		lo := maxLine(c.StartLine, b.StartLine)
		hi := minLine(c.EndLine, b.EndLine)
		if hi >= lo {
			n += hi - lo + 1
		}
	}
	return n
}

func maxLine(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minLine(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

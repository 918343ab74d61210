package heuristics

import (
	"strings"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/model"
)

// NamingAnalyzer scores the share of declared identifiers whose base
// name sits in the generic-name dictionary.
type NamingAnalyzer struct {
	generic   map[string]bool
	threshold float64
}

func NewNamingAnalyzer(cfg *config.Config) *NamingAnalyzer {
	return &NamingAnalyzer{
		generic:   cfg.GenericSet(),
		threshold: cfg.Thresholds.GenericNameRatio,
	}
}

func (a *NamingAnalyzer) ID() string { return "naming" }

func (a *NamingAnalyzer) Analyze(m *model.StructuralModel) Result {
	res := Result{AnalyzerID: a.ID()}
	if len(m.Identifiers) == 0 {
		return res
	}

	matches := 0
	for _, id := range m.Identifiers {
		if a.isGeneric(id.Name) {
			matches++
			res.Evidence = append(res.Evidence, Evidence{
				Line:    id.DeclaredAtLine,
				Excerpt: id.Name,
			})
		}
	}

	ratio := float64(matches) / float64(len(m.Identifiers))
	res.Score = clamp01(ratio)
	if ratio > a.threshold {
		res.Labels = append(res.Labels, model.GenericNaming)
	}
	return res
}

// isGeneric checks the dictionary against the identifier's base name:
// lowercased, numeric suffix stripped, then a plural "s" stripped.
func (a *NamingAnalyzer) isGeneric(name string) bool {
	base := strings.ToLower(name)
	base = strings.TrimRight(base, "0123456789_")
	if a.generic[base] {
		return true
	}
	if strings.HasSuffix(base, "s") && len(base) > 3 && a.generic[base[:len(base)-1]] {
		return true
	}
	return false
}

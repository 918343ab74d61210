package heuristics

import (
	"strings"
	"testing"

	"github.com/shadowai/shadowdetect/internal/model"
)

// twoHalvesModel builds a model whose first six one-line blocks use a
// terse, commented style and whose last six use verbose identifiers on
// long uncommented lines.
func twoHalvesModel() *model.StructuralModel {
	m := &model.StructuralModel{Language: "python", Fidelity: model.Exact}

	for i := 0; i < 12; i++ {
		line := i + 1
		if i < 6 {
			m.Lines = append(m.Lines, "x = f(x)")
			m.Tokens = append(m.Tokens,
				model.Token{Kind: model.TokenIdentifier, Text: "x", Line: line, Column: 1})
			m.Comments = append(m.Comments, model.Comment{
				Text: "tighten bound", StartLine: line, EndLine: line,
			})
		} else {
			m.Lines = append(m.Lines, strings.Repeat("accumulatedIntermediate + ", 3))
			m.Tokens = append(m.Tokens,
				model.Token{Kind: model.TokenIdentifier, Text: "accumulatedIntermediate", Line: line, Column: 1})
		}
		m.Blocks = append(m.Blocks, model.Block{
			Kind:      model.BlockModule,
			StartLine: line,
			EndLine:   line,
		})
	}
	return m
}

func TestStyleAnalyzer_TooFewBlocks(t *testing.T) {
	a := NewStyleAnalyzer(testConfig(t))

	m := twoHalvesModel()
	m.Blocks = m.Blocks[:9] // below two full windows of five

	res := a.Analyze(m)

	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 below two full windows", res.Score)
	}
	if len(res.Evidence) != 0 {
		t.Errorf("Evidence = %v, want none", res.Evidence)
	}
}

func TestStyleAnalyzer_DetectsConcatenatedHalves(t *testing.T) {
	a := NewStyleAnalyzer(testConfig(t))

	res := a.Analyze(twoHalvesModel())

	if res.Score == 0 {
		t.Fatal("Score = 0, want a discontinuity between the halves")
	}
	found := false
	for _, l := range res.Labels {
		if l == model.StyleDiscontinuity {
			found = true
		}
	}
	if !found {
		t.Errorf("Labels = %v, want StyleDiscontinuity", res.Labels)
	}

	// Every discontinuity must sit inside the boundary window between
	// the halves: blocks 6 through 11, lines 6..11.
	for _, ev := range res.Evidence {
		if ev.Line < 6 || ev.Line > 11 {
			t.Errorf("Evidence line %d outside the boundary window", ev.Line)
		}
	}
}

func TestStyleAnalyzer_HomogeneousFile(t *testing.T) {
	a := NewStyleAnalyzer(testConfig(t))

	m := &model.StructuralModel{}
	for i := 0; i < 12; i++ {
		line := i + 1
		m.Lines = append(m.Lines, "step(queue)")
		m.Tokens = append(m.Tokens,
			model.Token{Kind: model.TokenIdentifier, Text: "queue", Line: line, Column: 6})
		m.Blocks = append(m.Blocks, model.Block{
			Kind:      model.BlockModule,
			StartLine: line,
			EndLine:   line,
		})
	}

	res := a.Analyze(m)

	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 for a homogeneous file", res.Score)
	}
	if len(res.Labels) != 0 {
		t.Errorf("Labels = %v, want none", res.Labels)
	}
}

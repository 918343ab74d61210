package heuristics

import (
	"testing"

	"github.com/shadowai/shadowdetect/internal/model"
)

func TestCommentAnalyzer_NoComments(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	res := a.Analyze(&model.StructuralModel{
		Lines: []string{"x := compute()", "return x"},
	})

	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 for a model with no comments", res.Score)
	}
	if len(res.Labels) != 0 {
		t.Errorf("Labels = %v, want none", res.Labels)
	}
}

func TestCommentAnalyzer_TemplatedPhrases(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	m := &model.StructuralModel{
		Lines: []string{
			"# Initialize the result",
			"result = []",
			"# Loop through each item",
			"for item in items:",
			"    result.append(item)",
		},
		Comments: []model.Comment{
			{Text: "Initialize the result", StartLine: 1, EndLine: 1},
			{Text: "Loop through each item", StartLine: 3, EndLine: 3},
		},
	}

	res := a.Analyze(m)

	// Both comments match a template, so the phrase sub-signal is 1.0
	// and the label fires.
	found := false
	for _, l := range res.Labels {
		if l == model.TemplatedComment {
			found = true
		}
	}
	if !found {
		t.Errorf("Labels = %v, want TemplatedComment", res.Labels)
	}
	if res.Score < 0.6 {
		t.Errorf("Score = %v, want at least the 0.6 phrase share", res.Score)
	}
	if len(res.Evidence) != 2 {
		t.Errorf("Evidence count = %d, want 2", len(res.Evidence))
	}
}

func TestCommentAnalyzer_PhraseAtThresholdDoesNotLabel(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	// One of two comments matches: the phrase sub-signal sits exactly
	// at the 0.5 threshold, which must not emit the label.
	m := &model.StructuralModel{
		Lines: []string{
			"# Initialize the result",
			"result = []",
			"# workaround for the 2016 import cycle, see parse.go",
			"result.append(1)",
		},
		Comments: []model.Comment{
			{Text: "Initialize the result", StartLine: 1, EndLine: 1},
			{Text: "workaround for the 2016 import cycle, see parse.go", StartLine: 3, EndLine: 3},
		},
	}

	res := a.Analyze(m)

	for _, l := range res.Labels {
		if l == model.TemplatedComment {
			t.Errorf("TemplatedComment emitted at exactly the threshold, want strictly above")
		}
	}
}

func TestCommentAnalyzer_DensityOutOfBand(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	// Ten comment lines over five code lines: ratio 2.0, far above the
	// natural band, with no templated phrasing.
	m := &model.StructuralModel{
		Comments: []model.Comment{
			{Text: "ported from the legacy splitter", StartLine: 1, EndLine: 10},
		},
	}
	for i := 0; i < 10; i++ {
		m.Lines = append(m.Lines, "# commentary")
	}
	for i := 0; i < 5; i++ {
		m.Lines = append(m.Lines, "work()")
	}

	res := a.Analyze(m)

	// Phrase signal 0, density signal 1: score = 0.4 * 1.
	if res.Score != 0.4 {
		t.Errorf("Score = %v, want 0.4", res.Score)
	}
	if len(res.Labels) != 0 {
		t.Errorf("Labels = %v, want none without phrase matches", res.Labels)
	}
}

func TestCommentAnalyzer_Monotonic(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	base := &model.StructuralModel{
		Lines: []string{
			"# Initialize the result",
			"result = []",
			"# workaround for the 2016 import cycle",
			"step()",
			"step()",
			"step()",
			"step()",
			"step()",
			"step()",
		},
		Comments: []model.Comment{
			{Text: "Initialize the result", StartLine: 1, EndLine: 1},
			{Text: "workaround for the 2016 import cycle", StartLine: 3, EndLine: 3},
		},
	}

	// Same file plus one more templated comment.
	more := &model.StructuralModel{
		Lines:    append(append([]string{}, base.Lines...), "# Initialize the buffer"),
		Comments: append(append([]model.Comment{}, base.Comments...), model.Comment{Text: "Initialize the buffer", StartLine: 10, EndLine: 10}),
	}

	baseRes := a.Analyze(base)
	moreRes := a.Analyze(more)

	if moreRes.Score < baseRes.Score {
		t.Errorf("adding a templated comment lowered the score: %v -> %v", baseRes.Score, moreRes.Score)
	}
	if len(moreRes.Evidence) < len(baseRes.Evidence) {
		t.Errorf("adding a templated comment lost evidence: %d -> %d", len(baseRes.Evidence), len(moreRes.Evidence))
	}
}

func TestCommentAnalyzer_NaturalDensity(t *testing.T) {
	a := NewCommentAnalyzer(testConfig(t))

	// One comment line over nine code lines sits inside the natural
	// band and matches no template.
	m := &model.StructuralModel{
		Comments: []model.Comment{
			{Text: "binary search keeps this under a millisecond", StartLine: 1, EndLine: 1},
		},
	}
	m.Lines = append(m.Lines, "# binary search keeps this under a millisecond")
	for i := 0; i < 9; i++ {
		m.Lines = append(m.Lines, "step()")
	}

	res := a.Analyze(m)

	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 for natural commenting", res.Score)
	}
}

package heuristics

import (
	"testing"

	"github.com/shadowai/shadowdetect/internal/model"
)

func blocksModel(blocks ...model.Block) *model.StructuralModel {
	return &model.StructuralModel{Blocks: blocks}
}

func uniformBlocks(n, length int) []model.Block {
	blocks := make([]model.Block, n)
	for i := range blocks {
		start := 1 + i*length
		blocks[i] = model.Block{
			Kind:      model.BlockFunction,
			StartLine: start,
			EndLine:   start + length - 1,
		}
	}
	return blocks
}

func TestStructureAnalyzer_TooFewBlocks(t *testing.T) {
	a := NewStructureAnalyzer(testConfig(t))

	res := a.Analyze(blocksModel(uniformBlocks(3, 5)...))

	if res.Score != 0 {
		t.Errorf("Score = %v, want neutral 0 below the minimum block count", res.Score)
	}
	if len(res.Labels) != 0 {
		t.Errorf("Labels = %v, want none", res.Labels)
	}
}

func TestStructureAnalyzer_PerfectlyUniform(t *testing.T) {
	a := NewStructureAnalyzer(testConfig(t))

	res := a.Analyze(blocksModel(uniformBlocks(5, 5)...))

	if res.Score != 1 {
		t.Errorf("Score = %v, want 1 for identical blocks", res.Score)
	}
	found := false
	for _, l := range res.Labels {
		if l == model.UniformStructure {
			found = true
		}
	}
	if !found {
		t.Errorf("Labels = %v, want UniformStructure", res.Labels)
	}
	if len(res.Evidence) == 0 || len(res.Evidence) > 5 {
		t.Errorf("Evidence count = %d, want 1..5", len(res.Evidence))
	}
}

func TestStructureAnalyzer_MinimumBlockCountScores(t *testing.T) {
	a := NewStructureAnalyzer(testConfig(t))

	// Exactly the minimum block count participates.
	res := a.Analyze(blocksModel(uniformBlocks(4, 3)...))

	if res.Score != 1 {
		t.Errorf("Score = %v, want 1 at exactly min_blocks", res.Score)
	}
}

func TestStructureAnalyzer_Monotonic(t *testing.T) {
	a := NewStructureAnalyzer(testConfig(t))

	// Three 5-line blocks plus one 9-line outlier.
	base := append(uniformBlocks(3, 5), model.Block{
		Kind:      model.BlockFunction,
		StartLine: 16,
		EndLine:   24,
	})
	// The same set plus another 5-line block matching the majority.
	more := append(append([]model.Block{}, base...), model.Block{
		Kind:      model.BlockFunction,
		StartLine: 25,
		EndLine:   29,
	})

	baseRes := a.Analyze(blocksModel(base...))
	moreRes := a.Analyze(blocksModel(more...))

	if baseRes.Score == 0 {
		t.Fatalf("base Score = 0, want a positive uniformity signal")
	}
	if moreRes.Score < baseRes.Score {
		t.Errorf("adding a matching uniform block lowered the score: %v -> %v", baseRes.Score, moreRes.Score)
	}
}

func TestStructureAnalyzer_DiverseBlocks(t *testing.T) {
	a := NewStructureAnalyzer(testConfig(t))

	blocks := []model.Block{
		{Kind: model.BlockFunction, StartLine: 1, EndLine: 2},
		{Kind: model.BlockFunction, StartLine: 3, EndLine: 40, NestingDepth: 1},
		{Kind: model.BlockLoop, StartLine: 5, EndLine: 9, NestingDepth: 3},
		{Kind: model.BlockFunction, StartLine: 41, EndLine: 140},
		{Kind: model.BlockConditional, StartLine: 50, EndLine: 52, NestingDepth: 2},
	}
	res := a.Analyze(blocksModel(blocks...))

	if res.Score != 0 {
		t.Errorf("Score = %v, want 0 for highly varied blocks", res.Score)
	}
	if len(res.Labels) != 0 {
		t.Errorf("Labels = %v, want none", res.Labels)
	}
}

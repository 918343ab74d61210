package scoring

import (
	"errors"
	"reflect"
	"testing"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/heuristics"
	"github.com/shadowai/shadowdetect/internal/model"
)

var defaultOrder = []string{"naming", "comment", "structure", "style"}

func testAggregator(t *testing.T) *Aggregator {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() returned error: %v", err)
	}
	agg, err := NewAggregator(cfg, defaultOrder)
	if err != nil {
		t.Fatalf("NewAggregator() returned error: %v", err)
	}
	return agg
}

func TestNewAggregator_MissingWeight(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() returned error: %v", err)
	}

	_, err = NewAggregator(cfg, append(defaultOrder, "entropy"))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("NewAggregator() error = %v, want ErrInvalidConfig", err)
	}
}

func TestAggregate_ZeroResults(t *testing.T) {
	agg := testAggregator(t)

	rep := agg.Aggregate([]heuristics.Result{
		{AnalyzerID: "naming"},
		{AnalyzerID: "comment"},
		{AnalyzerID: "structure"},
		{AnalyzerID: "style"},
	})

	if rep.Confidence != 0 {
		t.Errorf("Confidence = %d, want 0", rep.Confidence)
	}
	if rep.Verdict != HumanWritten {
		t.Errorf("Verdict = %v, want HumanWritten", rep.Verdict)
	}
	if len(rep.Reasons) != 0 {
		t.Errorf("Reasons = %v, want none", rep.Reasons)
	}
}

func TestAggregate_WeightedSum(t *testing.T) {
	agg := testAggregator(t)

	// 0.3*1 + 0.25*1 + 0.25*0 + 0.2*0 = 0.55 -> 55.
	rep := agg.Aggregate([]heuristics.Result{
		{AnalyzerID: "naming", Score: 1},
		{AnalyzerID: "comment", Score: 1},
		{AnalyzerID: "structure"},
		{AnalyzerID: "style"},
	})

	if rep.Confidence != 55 {
		t.Errorf("Confidence = %d, want 55", rep.Confidence)
	}
	if rep.Verdict != Possible {
		t.Errorf("Verdict = %v, want Possible", rep.Verdict)
	}
	if rep.PerAnalyzer["naming"] != 1 || rep.PerAnalyzer["comment"] != 1 {
		t.Errorf("PerAnalyzer = %v", rep.PerAnalyzer)
	}
}

func TestVerdictBoundaries(t *testing.T) {
	agg := testAggregator(t)

	tests := []struct {
		confidence int
		want       Verdict
	}{
		{0, HumanWritten},
		{39, HumanWritten},
		{40, Possible},
		{69, Possible},
		{70, LikelyAI},
		{100, LikelyAI},
	}

	for _, tt := range tests {
		if got := agg.verdict(tt.confidence); got != tt.want {
			t.Errorf("verdict(%d) = %v, want %v", tt.confidence, got, tt.want)
		}
	}
}

func TestAggregate_ReasonOrdering(t *testing.T) {
	agg := testAggregator(t)

	// structure contributes 0.25*0.9; naming and style contribute
	// exactly zero, so their tie is broken by registration order.
	results := []heuristics.Result{
		{AnalyzerID: "naming", Score: 0, Labels: []model.PatternLabel{model.GenericNaming}},
		{AnalyzerID: "comment", Score: 0},
		{AnalyzerID: "structure", Score: 0.9, Labels: []model.PatternLabel{model.UniformStructure}},
		{AnalyzerID: "style", Score: 0, Labels: []model.PatternLabel{model.StyleDiscontinuity}},
	}

	rep := agg.Aggregate(results)

	want := []model.PatternLabel{model.UniformStructure, model.GenericNaming, model.StyleDiscontinuity}
	if !reflect.DeepEqual(rep.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", rep.Reasons, want)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	agg := testAggregator(t)

	results := []heuristics.Result{
		{AnalyzerID: "naming", Score: 0.4, Labels: []model.PatternLabel{model.GenericNaming}},
		{AnalyzerID: "comment", Score: 0.6, Labels: []model.PatternLabel{model.TemplatedComment}},
		{AnalyzerID: "structure", Score: 0.48, Labels: []model.PatternLabel{model.UniformStructure}},
		{AnalyzerID: "style", Score: 0.6, Labels: []model.PatternLabel{model.StyleDiscontinuity}},
	}

	first := agg.Aggregate(results)
	for i := 0; i < 10; i++ {
		again := agg.Aggregate(results)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Aggregate() not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestVerdictStrings(t *testing.T) {
	tests := []struct {
		v    Verdict
		str  string
		text string
	}{
		{HumanWritten, "human-written", "Likely Human-Written"},
		{Possible, "possible", "Possibly AI-Generated"},
		{LikelyAI, "likely-ai", "Likely AI-Generated"},
	}

	for _, tt := range tests {
		if tt.v.String() != tt.str {
			t.Errorf("String() = %q, want %q", tt.v.String(), tt.str)
		}
		if tt.v.Text() != tt.text {
			t.Errorf("Text() = %q, want %q", tt.v.Text(), tt.text)
		}
	}
}

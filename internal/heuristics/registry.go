package heuristics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/model"
)

// Registry holds analyzers in registration order. The order is part of
// the contract: the aggregator uses it to break reason-ordering ties.
type Registry struct {
	analyzers []Analyzer
	discount  float64
}

// NewRegistry creates an empty registry with the given Approximate
// fidelity discount.
func NewRegistry(approximateDiscount float64) *Registry {
	return &Registry{discount: approximateDiscount}
}

// Register appends an analyzer. Adding a heuristic is this call plus a
// weight entry in the configuration; existing analyzers never change.
func (r *Registry) Register(a Analyzer) {
	r.analyzers = append(r.analyzers, a)
}

// Order returns the analyzer IDs in registration order.
func (r *Registry) Order() []string {
	ids := make([]string, len(r.analyzers))
	for i, a := range r.analyzers {
		ids[i] = a.ID()
	}
	return ids
}

// DefaultRegistry returns the canonical analyzer set: naming, comment,
// structural uniformity, then style inconsistency.
func DefaultRegistry(cfg *config.Config) *Registry {
	r := NewRegistry(cfg.Thresholds.ApproximateDiscount)
	r.Register(NewNamingAnalyzer(cfg))
	r.Register(NewCommentAnalyzer(cfg))
	r.Register(NewStructureAnalyzer(cfg))
	r.Register(NewStyleAnalyzer(cfg))
	return r
}

// RunAll fans every analyzer out over the same immutable model and
// joins the results in registration order. A panicking analyzer
// becomes a zero-score, zero-evidence result for that analyzer only;
// one analyzer's bug cannot abort the report. Approximate models get
// each raw score multiplied by the configured discount.
func (r *Registry) RunAll(ctx context.Context, m *model.StructuralModel) []Result {
	results := make([]Result, len(r.analyzers))

	g, _ := errgroup.WithContext(ctx)
	for i, a := range r.analyzers {
		g.Go(func() error {
			results[i] = r.runOne(a, m)
			return nil
		})
	}
	// Analyzers never return errors; the group is only a join point.
	_ = g.Wait()

	return results
}

func (r *Registry) runOne(a Analyzer, m *model.StructuralModel) (res Result) {
	defer func() {
		if recover() != nil {
			res = Result{AnalyzerID: a.ID()}
		}
	}()

	res = a.Analyze(m)
	res.AnalyzerID = a.ID()
	if m.Fidelity == model.Approximate {
		res.Score *= r.discount
	}
	res.Score = clamp01(res.Score)
	return res
}

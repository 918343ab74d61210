// Package engine wires the language adapter, the heuristic analyzers
// and the scoring aggregator into the detector's single entry point.
package engine

import (
	"context"

	"github.com/shadowai/shadowdetect/internal/adapter"
	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/heuristics"
	"github.com/shadowai/shadowdetect/internal/model"
	"github.com/shadowai/shadowdetect/internal/scoring"
)

// Result pairs the report with the language the adapter settled on
// and the fidelity of the structural facts behind it.
type Result struct {
	Language string
	Fidelity model.Fidelity
	Report   *scoring.Report
}

// Engine is stateless after construction and safe for use from any
// number of concurrent callers.
type Engine struct {
	adapters *adapter.Registry
	registry *heuristics.Registry
	agg      *scoring.Aggregator
}

// New builds an engine from a validated configuration. Weight
// misconfiguration surfaces here, at startup, never per-request.
func New(cfg *config.Config) (*Engine, error) {
	reg := heuristics.DefaultRegistry(cfg)
	agg, err := scoring.NewAggregator(cfg, reg.Order())
	if err != nil {
		return nil, err
	}
	return &Engine{
		adapters: adapter.NewRegistry(),
		registry: reg,
		agg:      agg,
	}, nil
}

// Analyze scores one source unit. The language hint is optional; with
// none, the adapter infers a language or falls back to generic
// tokenization. Only adapter-level failures (unsupported language,
// non-text input) return an error; every analyzable input produces a
// best-effort report.
func (e *Engine) Analyze(ctx context.Context, text, languageHint string) (*Result, error) {
	m, err := e.adapters.Build(text, languageHint)
	if err != nil {
		return nil, err
	}

	results := e.registry.RunAll(ctx, m)
	return &Result{
		Language: m.Language,
		Fidelity: m.Fidelity,
		Report:   e.agg.Aggregate(results),
	}, nil
}

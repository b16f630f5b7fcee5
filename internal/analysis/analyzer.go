// Package analysis orchestrates one full run: structural validation, rule
// evaluation, architectural validation, STRIDE analysis and attack path
// discovery, bundled into a single report.
package analysis

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"archatlas/internal/attackpath"
	"archatlas/internal/domain"
	"archatlas/internal/graph"
	"archatlas/internal/logging"
	"archatlas/internal/rules"
	"archatlas/internal/stride"
	"archatlas/internal/validator"
)

// Cache stores finished reports keyed by graph fingerprint. Implementations
// handle TTL and version checks; a miss is simply (nil, false).
type Cache interface {
	Get(fingerprint string) (*domain.Report, bool)
	Put(fingerprint string, report *domain.Report) error
}

// Enricher layers optional LLM commentary on top of a finished report.
// Failures must be returned, never panicked; the analyzer degrades to the
// deterministic result.
type Enricher interface {
	Enrich(ctx context.Context, g domain.Graph, report *domain.Report) (*domain.Enrichment, error)
}

// Analyzer runs the full pipeline. Cache and enricher are optional.
type Analyzer struct {
	engine   *rules.Engine
	cache    Cache
	enricher Enricher
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache attaches a report cache.
func WithCache(c Cache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithEnricher attaches an LLM enrichment collaborator.
func WithEnricher(e Enricher) Option {
	return func(a *Analyzer) { a.enricher = e }
}

// New builds an Analyzer around a rule engine.
func New(engine *rules.Engine, opts ...Option) *Analyzer {
	a := &Analyzer{engine: engine}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes the graph. Structural errors abort the run; everything
// downstream of a valid snapshot always completes.
func (a *Analyzer) Run(ctx context.Context, g domain.Graph) (*domain.Report, error) {
	s, err := graph.New(g)
	if err != nil {
		return nil, err
	}

	fingerprint := Fingerprint(g)
	if a.cache != nil {
		if cached, ok := a.cache.Get(fingerprint); ok {
			logging.LogInfo("analysis served from cache", map[string]any{"fingerprint": fingerprint})
			cached.CacheHit = true
			return cached, nil
		}
	}

	start := time.Now()
	findings := a.engine.Evaluate(s)
	validation := validator.Validate(s)
	strideResults := stride.Analyze(s.Components)
	paths := attackpath.Discover(s)
	logging.LogInfo("analysis complete", map[string]any{
		"findings":    len(findings),
		"issues":      len(validation.Issues),
		"paths":       len(paths),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	report := &domain.Report{
		RunID:           uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		Findings:        findings,
		Validation:      validation,
		STRIDE:          strideResults,
		AttackPaths:     paths,
		Recommendations: attackpath.GenerateRecommendations(paths, strideResults),
	}
	bucketRisks(report)

	if a.enricher != nil {
		a.enrich(ctx, g, report)
	}

	if a.cache != nil {
		if err := a.cache.Put(fingerprint, report); err != nil {
			logging.LogWarn("failed to cache report", map[string]any{"error": err.Error()})
		}
	}
	return report, nil
}

func bucketRisks(report *domain.Report) {
	var total float64
	for _, p := range report.AttackPaths {
		total += p.RiskScore
		switch {
		case p.RiskScore >= 70:
			report.CriticalRisks = append(report.CriticalRisks, p)
		case p.RiskScore >= 50:
			report.HighRisks = append(report.HighRisks, p)
		case p.RiskScore >= 30:
			report.MediumRisks = append(report.MediumRisks, p)
		default:
			report.LowRisks = append(report.LowRisks, p)
		}
	}
	if len(report.AttackPaths) > 0 {
		report.OverallRiskScore = int(math.Round(total / float64(len(report.AttackPaths))))
	}
}

// enrich calls the collaborator and merges its output. The enrichment may
// reorder attack paths but never changes their scores; any failure leaves
// the deterministic report intact with a notice.
func (a *Analyzer) enrich(ctx context.Context, g domain.Graph, report *domain.Report) {
	enrichment, err := a.enricher.Enrich(ctx, g, report)
	if err != nil {
		logging.LogWarn("enrichment unavailable, using deterministic results", map[string]any{"error": err.Error()})
		report.Enrichment = &domain.Enrichment{
			Notice: "AI enrichment unavailable; results are from deterministic analysis only",
		}
		return
	}

	report.Enrichment = enrichment
	if len(enrichment.PrioritizedPathIDs) > 0 {
		report.AttackPaths = reorderPaths(report.AttackPaths, enrichment.PrioritizedPathIDs)
	}
}

// reorderPaths moves the prioritized ids to the front in the given order.
// Unknown ids are ignored; everything not mentioned keeps its relative
// order behind them.
func reorderPaths(paths []domain.AttackPath, prioritized []string) []domain.AttackPath {
	byID := make(map[string]int, len(paths))
	for i, p := range paths {
		byID[p.ID] = i
	}

	taken := make(map[string]bool, len(prioritized))
	out := make([]domain.AttackPath, 0, len(paths))
	for _, id := range prioritized {
		if idx, ok := byID[id]; ok && !taken[id] {
			taken[id] = true
			out = append(out, paths[idx])
		}
	}
	for _, p := range paths {
		if !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

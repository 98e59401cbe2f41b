// Package pipeline runs a transcript through normalization, extraction,
// rules, intent, escalation and summary, one transcript or a batch at a time.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mortgage-triage-go/internal/escalation"
	"mortgage-triage-go/internal/extractor"
	"mortgage-triage-go/internal/intent"
	"mortgage-triage-go/internal/logger"
	"mortgage-triage-go/internal/rules"
	"mortgage-triage-go/internal/source"
	"mortgage-triage-go/internal/summary"
	"mortgage-triage-go/internal/transcript"
	"mortgage-triage-go/internal/types"
)

// Reader is the transcript source contract shared with the source package.
type Reader = source.Reader

// Hooks receive per-transcript outcomes. Either field may be nil.
type Hooks struct {
	OnResult func(res *types.TriageResult, took time.Duration)
	OnError  func(ref string, err error)
}

type Pipeline struct {
	src        Reader
	log        *logger.Logger
	hooks      Hooks
	rules      *rules.RuleSet
	normalizer transcript.Normalizer
	extractor  extractor.Extractor
}

type Option func(*Pipeline)

func WithLogger(l *logger.Logger) Option { return func(p *Pipeline) { p.log = l } }
func WithHooks(h Hooks) Option { return func(p *Pipeline) { p.hooks = h } }
func WithRules(rs *rules.RuleSet) Option { return func(p *Pipeline) { p.rules = rs } }

// WithClock overrides the transcript timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.normalizer.Now = now }
}

// New builds a pipeline reading transcripts through src. src may be nil when
// only ProcessText is used.
func New(src Reader, opts ...Option) *Pipeline {
	p := &Pipeline{
		src:       src,
		log:       logger.Nop(),
		rules:     rules.Default(),
		extractor: extractor.New(),
	}
	for _, o := range opts {
		o(p)
	}
	p.log = p.log.Component("pipeline")
	return p
}

// ProcessText triages one transcript held in memory.
func (p *Pipeline) ProcessText(raw string) (*types.TriageResult, error) {
	start := time.Now()

	tr := p.normalizer.Normalize(raw)

	ents, err := p.extractor.Extract(tr)
	if err != nil {
		return nil, fmt.Errorf("extract entities: %w", err)
	}

	engine, err := rules.NewEngineWithRules(p.rules, tr)
	if err != nil {
		return nil, fmt.Errorf("rule engine: %w", err)
	}
	codes := engine.Apply()

	top, err := intent.Classify(codes)
	if err != nil {
		return nil, fmt.Errorf("classify intent: %w", err)
	}

	decision, err := escalation.Evaluate(codes)
	if err != nil {
		return nil, fmt.Errorf("evaluate escalation: %w", err)
	}

	bullets, err := summary.Generate(summary.LabelFor(top), ents, codes)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	res := &types.TriageResult{
		Intent:        top,
		Escalate:      decision.EscalationNeeded,
		RiskLevel:     decision.RiskLevel,
		ReasonCodes:   codes,
		Entities:      *ents,
		SummaryBullet: bullets,
	}

	took := time.Since(start)
	p.log.WithField("intent", res.Intent).
		WithField("risk_level", res.RiskLevel).
		WithField("reason_codes", len(codes)).
		WithField("duration_ms", took.Milliseconds()).
		Debug("transcript triaged")
	if p.hooks.OnResult != nil {
		p.hooks.OnResult(res, took)
	}
	return res, nil
}

// ProcessSingle reads ref and triages it. Read errors are returned as is.
func (p *Pipeline) ProcessSingle(ctx context.Context, ref string) (*types.TriageResult, error) {
	if p.src == nil {
		return nil, fmt.Errorf("pipeline: no reader configured for %q", ref)
	}
	raw, err := p.src.Read(ctx, ref)
	if err != nil {
		p.fail(ref, err)
		return nil, err
	}
	res, err := p.ProcessText(raw)
	if err != nil {
		p.fail(ref, err)
		return nil, err
	}
	return res, nil
}

// ProcessBatch triages refs in order. The first failure aborts the batch and
// no partial results are returned.
func (p *Pipeline) ProcessBatch(ctx context.Context, refs []string) ([]*types.TriageResult, error) {
	log := p.log.WithField("batch_id", uuid.New().String()).WithField("size", len(refs))
	log.Info("batch started")

	out := make([]*types.TriageResult, 0, len(refs))
	for _, ref := range refs {
		res, err := p.ProcessSingle(ctx, ref)
		if err != nil {
			log.WithField("ref", ref).WithField("error", err.Error()).Warn("batch aborted")
			return nil, err
		}
		out = append(out, res)
	}
	log.Info("batch finished")
	return out, nil
}

// ProcessBatchParallel is ProcessBatch spread over at most workers goroutines.
// Results keep input order. The first failure cancels the remaining reads and
// is returned without partial results.
func (p *Pipeline) ProcessBatchParallel(ctx context.Context, refs []string, workers int) ([]*types.TriageResult, error) {
	if workers <= 1 {
		return p.ProcessBatch(ctx, refs)
	}
	log := p.log.WithField("batch_id", uuid.New().String()).
		WithField("size", len(refs)).
		WithField("workers", workers)
	log.Info("parallel batch started")

	out := make([]*types.TriageResult, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.ProcessSingle(gctx, ref)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.WithField("error", err.Error()).Warn("parallel batch aborted")
		return nil, err
	}
	log.Info("parallel batch finished")
	return out, nil
}

func (p *Pipeline) fail(ref string, err error) {
	if p.hooks.OnError != nil {
		p.hooks.OnError(ref, err)
	}
}

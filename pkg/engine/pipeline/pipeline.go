// Package pipeline coordinates the decision-engine stages:
// classify -> build core -> build satellites -> optimize -> validate.
//
// One seeded rand source is created per run and threaded through every
// stage, so a fixed seed reproduces the whole pipeline.
package pipeline

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/engine/generator"
	"github.com/CMCFame/progol-engine/pkg/engine/metrics"
	"github.com/CMCFame/progol-engine/pkg/engine/validate"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// Stage identifies a pipeline stage.
type Stage string

const (
	StageClassify   Stage = "classify"
	StageRegularize Stage = "regularize"
	StageBuildCore  Stage = "build_core"
	StageSatellites Stage = "build_satellites"
	StageOptimize   Stage = "optimize"
	StageValidate   Stage = "validate"
)

// StageResult holds the result of a stage execution.
type StageResult struct {
	Stage     Stage         `json:"stage"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
}

// Config configures a pipeline.
type Config struct {
	// Seed for the run's rand source. Zero seeds from the wall clock
	// (non-reproducible).
	Seed int64

	// SatelliteCount is the number of satellite candidates to build.
	SatelliteCount int

	Classifier *classify.Config
	Generator  *generator.Config
	Validator  *validate.Config
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		SatelliteCount: 16,
		Classifier:     classify.DefaultConfig(),
		Generator:      generator.DefaultConfig(),
		Validator:      validate.DefaultConfig(),
	}
}

// ForSlateSize returns a copy of the configuration with the thresholds
// that depend on the contest count rescaled for a slate of n contests.
// The defaults target the 14-contest primary slate; the revancha slate
// carries at most 7.
func (c *Config) ForSlateSize(n int) *Config {
	if n == progol.SlateSize {
		return c
	}

	scale := func(v int) int {
		return int(math.Round(float64(v) * float64(n) / float64(progol.SlateSize)))
	}

	gen := *c.Generator
	gen.HitThreshold = max(1, scale(gen.HitThreshold))
	gen.DrawsMin = scale(gen.DrawsMin)
	gen.DrawsMax = max(gen.DrawsMin, scale(gen.DrawsMax))

	val := *c.Validator
	val.DrawsMin = gen.DrawsMin
	val.DrawsMax = gen.DrawsMax
	val.EarlyContests = min(val.EarlyContests, n)

	cls := *c.Classifier

	out := *c
	out.Classifier = &cls
	out.Generator = &gen
	out.Validator = &val
	return &out
}

// Result is the output of one pipeline run.
type Result struct {
	RunID string `json:"run_id"`
	Label string `json:"label"` // "main" or "revancha"

	Classified []classify.Classified `json:"-"`
	Stats      classify.Stats        `json:"classification_stats"`

	Portfolio progol.Portfolio `json:"-"`
	Records   []progol.Record  `json:"tickets"`
	Objective float64          `json:"objective"`

	Report validate.Report `json:"validation"`
}

// Pipeline runs slates through the decision engine.
type Pipeline struct {
	cfg *Config
	log zerolog.Logger
	em  *metrics.EngineMetrics

	onStageComplete func(StageResult)
}

// New creates a pipeline. A nil config uses the defaults; a nil metrics
// collector disables metric recording.
func New(cfg *Config, logger zerolog.Logger, em *metrics.EngineMetrics) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Pipeline{cfg: cfg, log: logger, em: em}
}

// OnStageComplete registers a callback invoked after every stage.
func (p *Pipeline) OnStageComplete(fn func(StageResult)) {
	p.onStageComplete = fn
}

// Run executes the full pipeline for one slate. label distinguishes the
// primary and revancha runs in logs and metrics.
func (p *Pipeline) Run(slate progol.Slate, label string) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Label: label}

	seed := p.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	p.log.Info().Str("run_id", result.RunID).Str("slate", label).
		Int("contests", len(slate)).Int64("seed", seed).Msg("pipeline run started")

	// Classification.
	classifier := classify.New(p.cfg.Classifier)
	var err error
	result.Classified, err = timedStage(p, StageClassify, func() ([]classify.Classified, error) {
		return classifier.Classify(slate)
	})
	if err != nil {
		p.record(label, "failed", start)
		return nil, fmt.Errorf("classify: %w", err)
	}

	regularized, _ := timedStage(p, StageRegularize, func() ([]classify.Classified, error) {
		return classifier.Regularize(result.Classified), nil
	})
	result.Classified = regularized
	result.Stats = classify.Summarize(result.Classified)

	// Ticket construction.
	gen := generator.New(p.cfg.Generator, rng)
	cores, _ := timedStage(p, StageBuildCore, func() ([]progol.Ticket, error) {
		return gen.BuildCore(result.Classified), nil
	})
	satellites, _ := timedStage(p, StageSatellites, func() ([]progol.Ticket, error) {
		return gen.BuildSatellites(result.Classified, p.cfg.SatelliteCount), nil
	})

	candidates := append(append([]progol.Ticket{}, cores...), satellites...)
	if p.em != nil {
		for _, t := range candidates {
			p.em.RecordTicket(string(t.Type), t.HitProb, t.Draws())
		}
	}

	// Optimization.
	portfolio, err := timedStage(p, StageOptimize, func() (progol.Portfolio, error) {
		return gen.Optimize(candidates, result.Classified)
	})
	if err != nil {
		p.record(label, "failed", start)
		return nil, fmt.Errorf("optimize: %w", err)
	}
	result.Portfolio = portfolio
	result.Records = portfolio.Records()
	result.Objective = generator.PortfolioObjective(portfolio)
	if p.em != nil {
		p.em.RecordPortfolio(label, len(portfolio), result.Objective)
	}

	// Validation.
	validator := validate.New(p.cfg.Validator)
	result.Report, _ = timedStage(p, StageValidate, func() (validate.Report, error) {
		return validator.Validate(portfolio), nil
	})
	if p.em != nil {
		p.em.RecordValidation(result.Report.Valid, len(result.Report.Warnings), len(result.Report.Errors))
	}

	p.record(label, "ok", start)
	p.log.Info().Str("run_id", result.RunID).
		Int("tickets", len(portfolio)).
		Float64("objective", result.Objective).
		Bool("valid", result.Report.Valid).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline run finished")

	return result, nil
}

// timedStage runs one stage, emits its StageResult and records its latency.
func timedStage[T any](p *Pipeline, stage Stage, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()

	sr := StageResult{
		Stage:     stage,
		Success:   err == nil,
		Duration:  time.Since(start),
		Timestamp: start,
	}
	if err != nil {
		sr.Error = err.Error()
		p.log.Error().Str("stage", string(stage)).Err(err).Msg("stage failed")
	} else {
		p.log.Debug().Str("stage", string(stage)).Dur("elapsed", sr.Duration).Msg("stage complete")
	}
	if p.em != nil {
		p.em.RecordStage(string(stage), sr.Duration.Seconds())
	}
	if p.onStageComplete != nil {
		p.onStageComplete(sr)
	}
	return out, err
}

func (p *Pipeline) record(label, status string, start time.Time) {
	if p.em != nil {
		p.em.RecordRun(label, status, time.Since(start).Seconds())
	}
}

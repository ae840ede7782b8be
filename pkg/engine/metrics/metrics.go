// Package metrics provides Prometheus metrics for the decision engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics collects and exposes pipeline-related Prometheus metrics.
type EngineMetrics struct {
	registry *prometheus.Registry

	// Pipeline metrics
	RunsTotal    *prometheus.CounterVec
	RunDuration  *prometheus.HistogramVec
	StageLatency *prometheus.HistogramVec

	// Ticket metrics
	TicketsBuilt   *prometheus.CounterVec
	HitProbability *prometheus.HistogramVec
	DrawCount      *prometheus.HistogramVec

	// Optimizer metrics
	PortfolioObjective *prometheus.GaugeVec
	PortfolioSize      *prometheus.GaugeVec

	// Validation metrics
	ValidationIssues *prometheus.CounterVec
	ValidationRuns   *prometheus.CounterVec
}

// New creates a new engine metrics collector with a private registry.
func New() *EngineMetrics {
	registry := prometheus.NewRegistry()

	em := &EngineMetrics{
		registry: registry,

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progol_pipeline_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"slate", "status"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progol_pipeline_duration_seconds",
				Help:    "Full pipeline run duration",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"slate"},
		),
		StageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progol_stage_latency_seconds",
				Help:    "Individual stage latency",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"stage"},
		),

		TicketsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progol_tickets_built_total",
				Help: "Tickets produced by the builders",
			},
			[]string{"type"},
		),
		HitProbability: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progol_ticket_hit_probability",
				Help:    "Estimated Pr[>=threshold] per ticket",
				Buckets: prometheus.LinearBuckets(0, 0.05, 20),
			},
			[]string{"type"},
		),
		DrawCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "progol_ticket_draw_count",
				Help:    "Draws per ticket after repair",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
			[]string{"type"},
		),

		PortfolioObjective: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "progol_portfolio_objective",
				Help: "Probability that at least one ticket clears the threshold",
			},
			[]string{"slate"},
		),
		PortfolioSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "progol_portfolio_size",
				Help: "Number of tickets in the optimized portfolio",
			},
			[]string{"slate"},
		),

		ValidationIssues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progol_validation_issues_total",
				Help: "Warnings and errors raised by the validator",
			},
			[]string{"severity"},
		),
		ValidationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "progol_validation_runs_total",
				Help: "Validation runs by outcome",
			},
			[]string{"result"},
		),
	}

	em.registerAll()
	return em
}

func (em *EngineMetrics) registerAll() {
	em.registry.MustRegister(
		em.RunsTotal,
		em.RunDuration,
		em.StageLatency,
		em.TicketsBuilt,
		em.HitProbability,
		em.DrawCount,
		em.PortfolioObjective,
		em.PortfolioSize,
		em.ValidationIssues,
		em.ValidationRuns,
	)
}

// Registry returns the prometheus registry.
func (em *EngineMetrics) Registry() *prometheus.Registry {
	return em.registry
}

// --- Helper methods for recording metrics ---

// RecordRun records a completed pipeline run.
func (em *EngineMetrics) RecordRun(slate, status string, durationSec float64) {
	em.RunsTotal.WithLabelValues(slate, status).Inc()
	em.RunDuration.WithLabelValues(slate).Observe(durationSec)
}

// RecordStage records one stage's latency.
func (em *EngineMetrics) RecordStage(stage string, durationSec float64) {
	em.StageLatency.WithLabelValues(stage).Observe(durationSec)
}

// RecordTicket records a built ticket.
func (em *EngineMetrics) RecordTicket(ticketType string, hitProb float64, draws int) {
	em.TicketsBuilt.WithLabelValues(ticketType).Inc()
	em.HitProbability.WithLabelValues(ticketType).Observe(hitProb)
	em.DrawCount.WithLabelValues(ticketType).Observe(float64(draws))
}

// RecordPortfolio records the optimized portfolio's shape and objective.
func (em *EngineMetrics) RecordPortfolio(slate string, size int, objective float64) {
	em.PortfolioSize.WithLabelValues(slate).Set(float64(size))
	em.PortfolioObjective.WithLabelValues(slate).Set(objective)
}

// RecordValidation records a validation outcome.
func (em *EngineMetrics) RecordValidation(valid bool, warnings, errors int) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	em.ValidationRuns.WithLabelValues(result).Inc()
	em.ValidationIssues.WithLabelValues("warning").Add(float64(warnings))
	em.ValidationIssues.WithLabelValues("error").Add(float64(errors))
}

package generator

import (
	"math/rand"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// EstimateHitProbability estimates Pr[at least threshold correct outcomes]
// for a ticket's outcome sequence by Monte Carlo: each trial draws an
// independent Bernoulli result per contest using its calibrated probability
// and counts the correct slots.
//
// The estimate is stochastic; callers needing run-to-run stability must
// share a seeded rand source across the pipeline.
func EstimateHitProbability(rng *rand.Rand, outcomes []progol.Outcome, classified []classify.Classified, threshold, trials int) float64 {
	if trials <= 0 || len(outcomes) == 0 {
		return 0
	}

	probs := make([]float64, len(outcomes))
	for i, o := range outcomes {
		probs[i] = classified[i].Probs.ProbFor(o)
	}

	hits := 0
	for trial := 0; trial < trials; trial++ {
		correct := 0
		for _, p := range probs {
			if rng.Float64() < p {
				correct++
			}
		}
		if correct >= threshold {
			hits++
		}
	}
	return float64(hits) / float64(trials)
}

// EstimateHitProbability runs the estimator with the generator's
// configuration and rand source.
func (g *Generator) EstimateHitProbability(outcomes []progol.Outcome, classified []classify.Classified) float64 {
	return EstimateHitProbability(g.rng, outcomes, classified, g.cfg.HitThreshold, g.cfg.Trials)
}

// CountHits counts how many of the ticket's outcomes match the actual
// results. Positions beyond the shorter sequence are ignored.
func CountHits(outcomes, actual []progol.Outcome) int {
	n := len(outcomes)
	if len(actual) < n {
		n = len(actual)
	}
	hits := 0
	for i := 0; i < n; i++ {
		if outcomes[i] == actual[i] {
			hits++
		}
	}
	return hits
}

// PortfolioObjective is the optimization objective
// F = 1 - prod(1 - hitProb): the probability that at least one ticket in the
// portfolio clears the hit threshold.
func PortfolioObjective(p progol.Portfolio) float64 {
	if len(p) == 0 {
		return 0
	}
	miss := 1.0
	for _, t := range p {
		miss *= 1 - t.HitProb
	}
	return 1 - miss
}

// Package generator implements the Core + Satellites portfolio methodology
// with GRASP construction and simulated-annealing refinement.
//
// All randomness flows through one caller-supplied *rand.Rand so a fixed
// seed reproduces the whole pipeline.
package generator

import (
	"math/rand"
)

// Config holds the portfolio generation parameters.
type Config struct {
	// Draw range enforced on every ticket.
	DrawsMin int
	DrawsMax int
	// DrawFlipMinProb is the minimum draw probability a slot needs before
	// repair may flip it to a draw.
	DrawFlipMinProb float64

	// Satellite construction.
	PairDivergeProb float64 // chance a non-pivot, non-Anchor slot diverges within a pair
	SingleFlipProb  float64 // per-slot flip chance for the unpaired satellite

	// Monte Carlo estimation.
	HitThreshold int // correct outcomes needed for a "hit" (Pr[>=11])
	Trials       int

	// GRASP construction.
	MaxPortfolio  int     // ticket cap including the 4 Cores
	EliteFraction float64 // top share of candidates eligible for the random draw

	// Simulated annealing.
	InitialTemp  float64
	CoolFactor   float64
	CoolEvery    int
	Iterations   int
	MaxNoImprove int // stop after this many iterations without a new best; 0 disables
}

// DefaultConfig returns the Progol methodology parameters.
func DefaultConfig() *Config {
	return &Config{
		DrawsMin:        4,
		DrawsMax:        6,
		DrawFlipMinProb: 0.20,

		PairDivergeProb: 0.30,
		SingleFlipProb:  0.40,

		HitThreshold: 11,
		Trials:       1000,

		MaxPortfolio:  20,
		EliteFraction: 0.15,

		InitialTemp: 0.05,
		CoolFactor:  0.92,
		CoolEvery:   10,
		Iterations:  200,
	}
}

// Generator builds and optimizes ticket portfolios for one classified slate.
type Generator struct {
	cfg *Config
	rng *rand.Rand
}

// New creates a generator. A nil config uses the defaults. The rand source
// is required: it is the single source of randomness for the run.
func New(cfg *Config, rng *rand.Rand) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Generator{cfg: cfg, rng: rng}
}

// sample draws k distinct values from indices without replacement.
func (g *Generator) sample(indices []int, k int) []int {
	if k > len(indices) {
		k = len(indices)
	}
	perm := g.rng.Perm(len(indices))
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = indices[perm[i]]
	}
	return out
}

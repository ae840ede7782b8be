package generator

import (
	"math/rand"
	"testing"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

func certainClassified(n int) []classify.Classified {
	out := make([]classify.Classified, n)
	for i := range out {
		out[i] = classify.Classified{Probs: progol.Prob3{Local: 1}}
	}
	return out
}

func TestEstimateHitProbabilityCertainOutcomes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	classified := certainClassified(14)

	sure := allOutcomes(progol.OutcomeLocal, 14)
	if got := EstimateHitProbability(rng, sure, classified, 14, 100); got != 1 {
		t.Errorf("certain ticket probability = %v, want 1", got)
	}

	hopeless := allOutcomes(progol.OutcomeDraw, 14)
	if got := EstimateHitProbability(rng, hopeless, classified, 1, 100); got != 0 {
		t.Errorf("impossible ticket probability = %v, want 0", got)
	}
}

func TestEstimateHitProbabilityBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	classified := testClassified()
	outcomes := allOutcomes(progol.OutcomeLocal, 14)

	if got := EstimateHitProbability(rng, outcomes, classified, 5, 500); got < 0 || got > 1 {
		t.Errorf("probability %v out of [0,1]", got)
	}
	if got := EstimateHitProbability(rng, outcomes, classified, 5, 0); got != 0 {
		t.Errorf("zero trials probability = %v, want 0", got)
	}
	if got := EstimateHitProbability(rng, nil, classified, 5, 100); got != 0 {
		t.Errorf("empty ticket probability = %v, want 0", got)
	}
}

func TestEstimateHitProbabilityThresholdMonotone(t *testing.T) {
	classified := testClassified()
	outcomes := allOutcomes(progol.OutcomeLocal, 14)

	loose := EstimateHitProbability(rand.New(rand.NewSource(3)), outcomes, classified, 3, 2000)
	tight := EstimateHitProbability(rand.New(rand.NewSource(3)), outcomes, classified, 9, 2000)
	if tight > loose {
		t.Errorf("Pr[>=9] = %v exceeds Pr[>=3] = %v", tight, loose)
	}
}

func TestCountHits(t *testing.T) {
	tests := []struct {
		name     string
		outcomes string
		actual   string
		want     int
	}{
		{"all correct", "LEVL", "LEVL", 4},
		{"none correct", "LLLL", "EEEE", 0},
		{"partial", "LEVLEVLEVLEVLV", "LEVLEVLEVLEVLL", 13},
		{"length mismatch ignores tail", "LEVL", "LE", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := progol.ParseOutcomes(tt.outcomes)
			if err != nil {
				t.Fatal(err)
			}
			b, err := progol.ParseOutcomes(tt.actual)
			if err != nil {
				t.Fatal(err)
			}
			if got := CountHits(a, b); got != tt.want {
				t.Errorf("CountHits = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPortfolioObjective(t *testing.T) {
	if got := PortfolioObjective(nil); got != 0 {
		t.Errorf("empty portfolio objective = %v", got)
	}

	p := progol.Portfolio{
		{HitProb: 0.5, Outcomes: allOutcomes(progol.OutcomeLocal, 14)},
		{HitProb: 0.5, Outcomes: allOutcomes(progol.OutcomeDraw, 14)},
	}
	if got := PortfolioObjective(p); got != 0.75 {
		t.Errorf("objective = %v, want 0.75", got)
	}
}

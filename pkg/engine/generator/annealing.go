package generator

import (
	"math"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// anneal refines the constructed portfolio by simulated annealing. Each
// iteration perturbs one non-Core ticket (1-3 non-Anchor slots flipped to
// their alternates, then draw repair) and applies the Metropolis criterion.
// The best portfolio seen is tracked independently of the accepted chain and
// is what gets returned, so the result is never worse than the input.
func (g *Generator) anneal(initial progol.Portfolio, classified []classify.Classified) progol.Portfolio {
	current := initial
	best := initial
	bestValue := PortfolioObjective(best)

	var nonAnchors []int
	for i, c := range classified {
		if c.Archetype != classify.ArchetypeAnchor {
			nonAnchors = append(nonAnchors, i)
		}
	}

	temp := g.cfg.InitialTemp
	sinceImprove := 0

	for iter := 0; iter < g.cfg.Iterations; iter++ {
		neighbor, ok := g.neighbor(current, classified, nonAnchors)
		if ok {
			delta := PortfolioObjective(neighbor) - PortfolioObjective(current)
			if delta > 0 || g.rng.Float64() < math.Exp(delta/temp) {
				current = neighbor
				if v := PortfolioObjective(current); v > bestValue {
					best = current
					bestValue = v
					sinceImprove = -1
				}
			}
		}

		sinceImprove++
		if g.cfg.MaxNoImprove > 0 && sinceImprove >= g.cfg.MaxNoImprove {
			break
		}
		if iter%g.cfg.CoolEvery == 0 {
			temp *= g.cfg.CoolFactor
		}
	}

	return best
}

// neighbor perturbs one randomly chosen non-Core ticket. Returns false when
// no eligible ticket or slot exists, or when the perturbed ticket would
// duplicate another portfolio member; the iteration is then skipped without
// altering state.
func (g *Generator) neighbor(p progol.Portfolio, classified []classify.Classified, nonAnchors []int) (progol.Portfolio, bool) {
	var satellites []int
	for i, t := range p {
		if t.Type != progol.TicketCore {
			satellites = append(satellites, i)
		}
	}
	if len(satellites) == 0 || len(nonAnchors) == 0 {
		return p, false
	}

	target := satellites[g.rng.Intn(len(satellites))]

	flips := 1 + g.rng.Intn(3)
	if flips > len(nonAnchors) {
		return p, false
	}

	outcomes := make([]progol.Outcome, len(p[target].Outcomes))
	copy(outcomes, p[target].Outcomes)
	for _, idx := range g.sample(nonAnchors, flips) {
		outcomes[idx] = classified[idx].Alternate()
	}
	outcomes = g.RepairDraws(outcomes, classified)

	ticket := p[target]
	ticket.Outcomes = outcomes
	ticket.HitProb = g.EstimateHitProbability(outcomes, classified)

	next, err := p.Replace(target, ticket)
	if err != nil {
		return p, false
	}
	return next, true
}

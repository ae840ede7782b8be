package generator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// BuildSatellites produces count satellite tickets in negatively-correlated
// pairs, plus one unpaired ticket when count is odd. Each pair diverges by
// force at a pivot contest (Divisor archetypes first, then non-Anchor
// contests in rotation) and probabilistically elsewhere.
func (g *Generator) BuildSatellites(classified []classify.Classified, count int) []progol.Ticket {
	var divisors, nonAnchors []int
	for i, c := range classified {
		if c.Archetype == classify.ArchetypeDivisor {
			divisors = append(divisors, i)
		}
		if c.Archetype != classify.ArchetypeAnchor {
			nonAnchors = append(nonAnchors, i)
		}
	}

	satellites := make([]progol.Ticket, 0, count)
	pairs := count / 2

	for pair := 0; pair < pairs; pair++ {
		pivot := -1
		switch {
		case pair < len(divisors):
			pivot = divisors[pair]
		case len(nonAnchors) > 0:
			pivot = nonAnchors[pair%len(nonAnchors)]
		}

		a, b := g.buildPair(classified, pivot, pair)
		satellites = append(satellites, a, b)
	}

	if count%2 == 1 {
		satellites = append(satellites, g.buildSingle(classified, len(satellites)))
	}

	return satellites
}

// buildPair builds one anticorrelated satellite pair: forced divergence at
// the pivot, agreement on Anchors, and random divergence elsewhere.
func (g *Generator) buildPair(classified []classify.Classified, pivot, pair int) (progol.Ticket, progol.Ticket) {
	aOut := make([]progol.Outcome, 0, len(classified))
	bOut := make([]progol.Outcome, 0, len(classified))

	for i, c := range classified {
		switch {
		case i == pivot:
			aOut = append(aOut, c.Suggested)
			bOut = append(bOut, c.Alternate())
		case c.Archetype == classify.ArchetypeAnchor:
			aOut = append(aOut, c.Suggested)
			bOut = append(bOut, c.Suggested)
		case g.rng.Float64() < g.cfg.PairDivergeProb:
			aOut = append(aOut, c.Suggested)
			bOut = append(bOut, c.Alternate())
		default:
			aOut = append(aOut, c.Suggested)
			bOut = append(bOut, c.Suggested)
		}
	}

	aOut = g.RepairDraws(aOut, classified)
	bOut = g.RepairDraws(bOut, classified)

	pairID := uuid.NewString()
	a := progol.Ticket{
		ID:       fmt.Sprintf("Sat-%dA", pair*2+1),
		Type:     progol.TicketSatellite,
		Outcomes: aOut,
		HitProb:  g.EstimateHitProbability(aOut, classified),
		PairID:   pairID,
	}
	b := progol.Ticket{
		ID:       fmt.Sprintf("Sat-%dB", pair*2+1),
		Type:     progol.TicketSatellite,
		Outcomes: bOut,
		HitProb:  g.EstimateHitProbability(bOut, classified),
		PairID:   pairID,
	}
	return a, b
}

// buildSingle builds the unpaired extra satellite: a Core-style base where
// every non-Anchor slot independently flips to its alternate with the
// configured probability.
func (g *Generator) buildSingle(classified []classify.Classified, ordinal int) progol.Ticket {
	outcomes := g.baseTicket(classified)
	for i, c := range classified {
		if c.Archetype != classify.ArchetypeAnchor && g.rng.Float64() < g.cfg.SingleFlipProb {
			outcomes[i] = c.Alternate()
		}
	}
	outcomes = g.RepairDraws(outcomes, classified)

	return progol.Ticket{
		ID:       fmt.Sprintf("Sat-%d", ordinal+1),
		Type:     progol.TicketSatellite,
		Outcomes: outcomes,
		HitProb:  g.EstimateHitProbability(outcomes, classified),
	}
}

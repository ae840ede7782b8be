package generator

import (
	"fmt"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// CoreCount is the fixed number of baseline tickets per portfolio.
const CoreCount = 4

// BuildCore produces the 4 baseline tickets. The first is the deterministic
// archetype-rule ticket; variants 2-4 flip a growing number of non-Anchor
// slots to their second-most-probable outcome. Every ticket passes through
// draw repair and gets its hit probability attached.
func (g *Generator) BuildCore(classified []classify.Classified) []progol.Ticket {
	tickets := make([]progol.Ticket, 0, CoreCount)

	for variant := 0; variant < CoreCount; variant++ {
		outcomes := g.baseTicket(classified)
		if variant > 0 {
			outcomes = g.rotateAlternates(outcomes, classified, variant)
		}
		outcomes = g.RepairDraws(outcomes, classified)

		tickets = append(tickets, progol.Ticket{
			ID:       fmt.Sprintf("Core-%d", variant+1),
			Type:     progol.TicketCore,
			Outcomes: outcomes,
			HitProb:  g.EstimateHitProbability(outcomes, classified),
		})
	}
	return tickets
}

// baseTicket applies the Core rules slot by slot: Anchors fix their
// suggested outcome, TrendDraw contests take the draw while the running
// draw count allows it, everything else takes its suggested outcome.
func (g *Generator) baseTicket(classified []classify.Classified) []progol.Outcome {
	outcomes := make([]progol.Outcome, 0, len(classified))
	draws := 0

	for _, c := range classified {
		var o progol.Outcome
		switch c.Archetype {
		case classify.ArchetypeAnchor:
			o = c.Suggested
		case classify.ArchetypeTrendDraw:
			if draws < g.cfg.DrawsMax {
				o = progol.OutcomeDraw
			} else {
				o = c.Suggested
			}
		default:
			o = c.Suggested
		}
		if o == progol.OutcomeDraw {
			draws++
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// rotateAlternates flips min(2+variant, |non-Anchor|) randomly chosen
// non-Anchor slots to their alternate outcome.
func (g *Generator) rotateAlternates(outcomes []progol.Outcome, classified []classify.Classified, variant int) []progol.Outcome {
	var candidates []int
	for i, c := range classified {
		if c.Archetype != classify.ArchetypeAnchor {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return outcomes
	}

	out := make([]progol.Outcome, len(outcomes))
	copy(out, outcomes)
	for _, idx := range g.sample(candidates, 2+variant) {
		out[idx] = classified[idx].Alternate()
	}
	return out
}

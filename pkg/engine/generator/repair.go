package generator

import (
	"sort"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// RepairDraws returns a copy of outcomes adjusted into the [DrawsMin,
// DrawsMax] draw range. Too few draws: non-draw slots with draw probability
// above DrawFlipMinProb are flipped to draws, strongest draw probability
// first. Too many: the weakest draws revert to their contest's suggested
// outcome. Already in range: returned unchanged (same copy semantics).
func (g *Generator) RepairDraws(outcomes []progol.Outcome, classified []classify.Classified) []progol.Outcome {
	out := make([]progol.Outcome, len(outcomes))
	copy(out, outcomes)

	draws := 0
	for _, o := range out {
		if o == progol.OutcomeDraw {
			draws++
		}
	}

	switch {
	case draws < g.cfg.DrawsMin:
		type candidate struct {
			idx  int
			prob float64
		}
		var candidates []candidate
		for i, o := range out {
			if o != progol.OutcomeDraw && classified[i].Probs.Draw > g.cfg.DrawFlipMinProb {
				candidates = append(candidates, candidate{i, classified[i].Probs.Draw})
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return candidates[a].prob > candidates[b].prob
		})
		needed := g.cfg.DrawsMin - draws
		for i := 0; i < needed && i < len(candidates); i++ {
			out[candidates[i].idx] = progol.OutcomeDraw
		}

	case draws > g.cfg.DrawsMax:
		type candidate struct {
			idx  int
			prob float64
		}
		var current []candidate
		for i, o := range out {
			if o == progol.OutcomeDraw {
				current = append(current, candidate{i, classified[i].Probs.Draw})
			}
		}
		sort.SliceStable(current, func(a, b int) bool {
			return current[a].prob < current[b].prob
		})
		excess := draws - g.cfg.DrawsMax
		for i := 0; i < excess && i < len(current); i++ {
			out[current[i].idx] = classified[current[i].idx].Suggested
		}
	}

	return out
}

package classify

import (
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// Regularize nudges the slate-wide suggested-outcome distribution toward the
// historical bands. When any class falls outside its band, low-confidence
// Neutral and Divisor contests are redirected toward the most-deficient
// class, provided that class carries at least the configured minimum
// calibrated probability on the contest.
//
// The input is never mutated; the adjustment is confined to the returned
// copy. This is best-effort: a single pass may not fully close a wide gap.
func (c *Classifier) Regularize(classified []Classified) []Classified {
	out := make([]Classified, len(classified))
	copy(out, classified)
	if len(out) == 0 {
		return out
	}

	dist := suggestedDistribution(out)

	inBands := true
	for outcome, band := range HistoricalBands {
		if dist.ProbFor(outcome) < band[0] || dist.ProbFor(outcome) > band[1] {
			inBands = false
			break
		}
	}
	if inBands {
		return out
	}

	// Most-deficient class below its band minimum, if any.
	target, deficit := progol.Outcome(""), 0.0
	for _, outcome := range progol.Outcomes() {
		band := HistoricalBands[outcome]
		if d := band[0] - dist.ProbFor(outcome); d > deficit {
			target, deficit = outcome, d
		}
	}
	if target == "" {
		return out
	}

	for i := range out {
		if out[i].Archetype != ArchetypeNeutral && out[i].Archetype != ArchetypeDivisor {
			continue
		}
		if out[i].Confidence >= c.cfg.RegularizeConfidence {
			continue
		}
		if out[i].Probs.ProbFor(target) > c.cfg.RegularizeMinProb {
			out[i].Suggested = target
		}
	}
	return out
}

func suggestedDistribution(classified []Classified) progol.Distribution {
	var d progol.Distribution
	total := float64(len(classified))
	if total == 0 {
		return d
	}
	for _, c := range classified {
		switch c.Suggested {
		case progol.OutcomeLocal:
			d.Local++
		case progol.OutcomeDraw:
			d.Draw++
		case progol.OutcomeAway:
			d.Away++
		}
	}
	d.Local /= total
	d.Draw /= total
	d.Away /= total
	return d
}

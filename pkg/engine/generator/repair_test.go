package generator

import (
	"testing"

	"github.com/CMCFame/progol-engine/pkg/progol"
)

func allOutcomes(o progol.Outcome, n int) []progol.Outcome {
	out := make([]progol.Outcome, n)
	for i := range out {
		out[i] = o
	}
	return out
}

func TestRepairDrawsAddsDraws(t *testing.T) {
	g := testGenerator(1)
	classified := testClassified()

	in := allOutcomes(progol.OutcomeLocal, 14)
	out := g.RepairDraws(in, classified)

	draws := 0
	for _, o := range out {
		if o == progol.OutcomeDraw {
			draws++
		}
	}
	if draws != g.cfg.DrawsMin {
		t.Fatalf("repaired to %d draws, want %d", draws, g.cfg.DrawsMin)
	}

	// The flips land on the strongest draw probabilities: the TrendDraw
	// slots (0.45) before any Neutral slot (0.27), in stable order.
	for _, slot := range []int{4, 5, 6, 7} {
		if out[slot] != progol.OutcomeDraw {
			t.Errorf("slot %d = %s, want E", slot, out[slot])
		}
	}

	// Anchor slots (draw probability 0.18, below the flip floor) are never
	// eligible.
	for slot := 0; slot < 4; slot++ {
		if out[slot] != progol.OutcomeLocal {
			t.Errorf("anchor slot %d flipped to %s", slot, out[slot])
		}
	}

	for _, o := range in {
		if o != progol.OutcomeLocal {
			t.Fatal("RepairDraws mutated its input")
		}
	}
}

func TestRepairDrawsRemovesDraws(t *testing.T) {
	g := testGenerator(1)
	classified := testClassified()

	out := g.RepairDraws(allOutcomes(progol.OutcomeDraw, 14), classified)

	draws := 0
	for _, o := range out {
		if o == progol.OutcomeDraw {
			draws++
		}
	}
	if draws != g.cfg.DrawsMax {
		t.Fatalf("repaired to %d draws, want %d", draws, g.cfg.DrawsMax)
	}

	// The weakest draws revert first: all four Anchor slots (0.18), then
	// Neutrals (0.27) in stable order, back to their suggestions.
	for slot := 0; slot < 4; slot++ {
		if out[slot] != progol.OutcomeLocal {
			t.Errorf("anchor slot %d = %s, want L", slot, out[slot])
		}
	}
	// TrendDraw slots carry the strongest draw probability and survive.
	for _, slot := range []int{4, 5, 6, 7, 8} {
		if out[slot] != progol.OutcomeDraw {
			t.Errorf("trend slot %d = %s, want E", slot, out[slot])
		}
	}
}

func TestRepairDrawsLeavesRangeAlone(t *testing.T) {
	g := testGenerator(1)
	classified := testClassified()

	in := []progol.Outcome{"L", "L", "L", "L", "E", "E", "E", "E", "E", "L", "L", "L", "L", "L"}
	out := g.RepairDraws(in, classified)

	for i := range in {
		if out[i] != in[i] {
			t.Errorf("slot %d changed from %s to %s", i, in[i], out[i])
		}
	}

	// Same copy semantics: the result is detached from the input.
	out[0] = progol.OutcomeAway
	if in[0] != progol.OutcomeLocal {
		t.Error("repair result aliases the input slice")
	}
}

package generator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// testClassified builds a 14-contest classified slate: 4 Anchors (L), then
// 5 TrendDraw contests, then 5 Neutral contests.
func testClassified() []classify.Classified {
	var out []classify.Classified
	add := func(n int, archetype classify.Archetype, probs progol.Prob3) {
		for i := 0; i < n; i++ {
			out = append(out, classify.Classified{
				Probs:      probs,
				Archetype:  archetype,
				Suggested:  probs.Suggested(),
				Confidence: probs.Confidence(),
				Volatility: probs.Entropy(),
			})
		}
	}
	add(4, classify.ArchetypeAnchor, progol.Prob3{Local: 0.70, Draw: 0.18, Away: 0.12})
	add(5, classify.ArchetypeTrendDraw, progol.Prob3{Local: 0.30, Draw: 0.45, Away: 0.25})
	add(5, classify.ArchetypeNeutral, progol.Prob3{Local: 0.38, Draw: 0.27, Away: 0.35})
	return out
}

// repeatClassified builds a slate where every contest shares one archetype
// and probability triple.
func repeatClassified(archetype classify.Archetype, probs progol.Prob3) []classify.Classified {
	out := make([]classify.Classified, progol.SlateSize)
	for i := range out {
		out[i] = classify.Classified{
			Probs:      probs,
			Archetype:  archetype,
			Suggested:  probs.Suggested(),
			Confidence: probs.Confidence(),
			Volatility: probs.Entropy(),
		}
	}
	return out
}

func testGenerator(seed int64) *Generator {
	cfg := DefaultConfig()
	cfg.Trials = 200
	cfg.HitThreshold = 5
	cfg.Iterations = 50
	return New(cfg, rand.New(rand.NewSource(seed)))
}

func TestBuildCore(t *testing.T) {
	g := testGenerator(1)
	classified := testClassified()

	cores := g.BuildCore(classified)
	if len(cores) != CoreCount {
		t.Fatalf("built %d cores, want %d", len(cores), CoreCount)
	}

	// Core-1 is the deterministic archetype-rule ticket: Anchors fixed,
	// TrendDraws on the draw, Neutrals on their suggestion.
	if got, want := cores[0].Key(), "LLLLEEEEELLLLL"; got != want {
		t.Errorf("Core-1 = %s, want %s", got, want)
	}

	for i, core := range cores {
		if core.ID != []string{"Core-1", "Core-2", "Core-3", "Core-4"}[i] {
			t.Errorf("core %d ID = %s", i, core.ID)
		}
		if core.Type != progol.TicketCore {
			t.Errorf("%s type = %s", core.ID, core.Type)
		}
		if draws := core.Draws(); draws < g.cfg.DrawsMin || draws > g.cfg.DrawsMax {
			t.Errorf("%s has %d draws, want %d-%d", core.ID, draws, g.cfg.DrawsMin, g.cfg.DrawsMax)
		}
		if core.HitProb < 0 || core.HitProb > 1 {
			t.Errorf("%s hit probability %v out of [0,1]", core.ID, core.HitProb)
		}
		// Anchor slots never deviate from their suggestion.
		for slot := 0; slot < 4; slot++ {
			if core.Outcomes[slot] != progol.OutcomeLocal {
				t.Errorf("%s anchor slot %d = %s", core.ID, slot, core.Outcomes[slot])
			}
		}
	}
}

func TestBuildCoreDeterministicWithSeed(t *testing.T) {
	classified := testClassified()
	a := testGenerator(7).BuildCore(classified)
	b := testGenerator(7).BuildCore(classified)
	for i := range a {
		if a[i].Key() != b[i].Key() {
			t.Errorf("core %d differs across identically seeded runs", i+1)
		}
	}
}

func TestBuildSatellites(t *testing.T) {
	g := testGenerator(2)
	classified := testClassified()

	sats := g.BuildSatellites(classified, 5)
	if len(sats) != 5 {
		t.Fatalf("built %d satellites, want 5", len(sats))
	}

	wantIDs := []string{"Sat-1A", "Sat-1B", "Sat-3A", "Sat-3B", "Sat-5"}
	for i, s := range sats {
		if s.ID != wantIDs[i] {
			t.Errorf("satellite %d ID = %s, want %s", i, s.ID, wantIDs[i])
		}
		if s.Type != progol.TicketSatellite {
			t.Errorf("%s type = %s", s.ID, s.Type)
		}
		if draws := s.Draws(); draws < g.cfg.DrawsMin || draws > g.cfg.DrawsMax {
			t.Errorf("%s has %d draws, want %d-%d", s.ID, draws, g.cfg.DrawsMin, g.cfg.DrawsMax)
		}
	}

	// Pair halves share an ID, distinct across pairs; the odd single has none.
	if sats[0].PairID == "" || sats[0].PairID != sats[1].PairID {
		t.Error("first pair halves do not share a pair ID")
	}
	if sats[2].PairID == "" || sats[2].PairID != sats[3].PairID {
		t.Error("second pair halves do not share a pair ID")
	}
	if sats[0].PairID == sats[2].PairID {
		t.Error("distinct pairs share a pair ID")
	}
	if sats[4].PairID != "" {
		t.Errorf("unpaired satellite has pair ID %q", sats[4].PairID)
	}

	// Both halves of a pair hold the Anchor suggestions.
	for _, s := range sats {
		for slot := 0; slot < 4; slot++ {
			if s.Outcomes[slot] != progol.OutcomeLocal {
				t.Errorf("%s anchor slot %d = %s", s.ID, slot, s.Outcomes[slot])
			}
		}
	}
}

func TestBuildCoreUniformSlateRepairsDraws(t *testing.T) {
	g := testGenerator(8)
	classified := repeatClassified(classify.ArchetypeNeutral, progol.Prob3{Local: 0.34, Draw: 0.33, Away: 0.33})

	// Every base ticket starts as 14 Locals; repair has to flip it up to
	// the draw floor because every contest clears the flip threshold.
	for _, core := range g.BuildCore(classified) {
		if draws := core.Draws(); draws < g.cfg.DrawsMin {
			t.Errorf("%s has %d draws after repair, want at least %d", core.ID, draws, g.cfg.DrawsMin)
		}
	}
}

func TestAllAnchorSlateCollapses(t *testing.T) {
	g := testGenerator(9)
	classified := repeatClassified(classify.ArchetypeAnchor, progol.Prob3{Local: 0.90, Draw: 0.05, Away: 0.05})

	allLocal := strings.Repeat("L", progol.SlateSize)
	cores := g.BuildCore(classified)
	for _, core := range cores {
		if core.Key() != allLocal {
			t.Errorf("%s = %s, want %s", core.ID, core.Key(), allLocal)
		}
	}

	sats := g.BuildSatellites(classified, 6)
	for _, s := range sats {
		if s.Key() != allLocal {
			t.Errorf("%s = %s, want %s", s.ID, s.Key(), allLocal)
		}
	}

	// Optimize deduplicates the collapsed pool down to one sequence; the
	// validator is what flags the structural shortfall afterwards.
	portfolio, err := g.Optimize(append(cores, sats...), classified)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(portfolio) != 1 {
		t.Fatalf("portfolio holds %d tickets, want 1", len(portfolio))
	}
	if portfolio[0].Key() != allLocal {
		t.Errorf("surviving ticket = %s", portfolio[0].Key())
	}
}

func TestBuildSatellitesEvenCount(t *testing.T) {
	g := testGenerator(3)
	sats := g.BuildSatellites(testClassified(), 16)
	if len(sats) != 16 {
		t.Fatalf("built %d satellites, want 16", len(sats))
	}
	for i := 0; i < 16; i += 2 {
		if sats[i].PairID == "" || sats[i].PairID != sats[i+1].PairID {
			t.Errorf("satellites %d/%d not paired", i, i+1)
		}
	}
}

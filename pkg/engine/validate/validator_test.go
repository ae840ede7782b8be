package validate

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/CMCFame/progol-engine/pkg/progol"
)

func ticket(t *testing.T, id string, typ progol.TicketType, outcomes string) progol.Ticket {
	t.Helper()
	parsed, err := progol.ParseOutcomes(outcomes)
	if err != nil {
		t.Fatalf("ParseOutcomes(%q): %v", outcomes, err)
	}
	return progol.Ticket{ID: id, Type: typ, Outcomes: parsed, HitProb: 0.1}
}

// balancedPortfolio returns 6 tickets whose aggregate distribution, draw
// counts, concentration, similarity and early entropy all satisfy the rules:
// cyclic shifts of one 5L/4E/5V pattern.
func balancedPortfolio(t *testing.T) progol.Portfolio {
	t.Helper()
	base := "LEVLEVLEVLEVLV"
	shifts := []int{0, 2, 4, 6, 8, 10}

	var p progol.Portfolio
	for i, s := range shifts {
		typ := progol.TicketCore
		id := []string{"Core-1", "Core-2", "Core-3", "Core-4", "Sat-1", "Sat-2"}[i]
		if i >= 4 {
			typ = progol.TicketSatellite
		}
		next, err := p.Add(ticket(t, id, typ, base[s:]+base[:s]))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		p = next
	}
	return p
}

func TestValidateEmptyPortfolio(t *testing.T) {
	r := New(nil).Validate(nil)
	if r.Valid {
		t.Error("empty portfolio reported valid")
	}
	if len(r.Errors) != 1 {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestValidateBalancedPortfolio(t *testing.T) {
	r := New(nil).Validate(balancedPortfolio(t))

	if !r.Valid {
		t.Fatalf("balanced portfolio invalid: errors %v, warnings %v", r.Errors, r.Warnings)
	}
	if len(r.Errors) != 0 || len(r.Warnings) != 0 {
		t.Errorf("expected clean report, got errors %v, warnings %v", r.Errors, r.Warnings)
	}

	m := r.Metrics
	if math.Abs(m.GlobalDistribution.Local-5.0/14) > 1e-9 {
		t.Errorf("global L = %v", m.GlobalDistribution.Local)
	}
	if m.DrawsLow != 4 || m.DrawsHigh != 4 {
		t.Errorf("draw range = %d-%d, want 4-4", m.DrawsLow, m.DrawsHigh)
	}
	if len(m.Concentration) != 14 {
		t.Errorf("concentration rows = %d", len(m.Concentration))
	}
	if m.Structure[progol.TicketCore] != 4 || m.Structure[progol.TicketSatellite] != 2 {
		t.Errorf("structure = %v", m.Structure)
	}
	if m.EarlyEntropy < 0.99 {
		t.Errorf("early entropy = %v, want ~1", m.EarlyEntropy)
	}
	// 6 tickets at $15 each.
	if m.TotalCost.StringFixed(0) != "90" {
		t.Errorf("total cost = %s", m.TotalCost.StringFixed(0))
	}
	if m.Efficiency <= 0 {
		t.Errorf("efficiency = %v", m.Efficiency)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	v := New(nil)
	p := balancedPortfolio(t)

	first := v.Validate(p)
	second := v.Validate(p)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated validation produced different reports")
	}
}

func TestValidateDegeneratePortfolio(t *testing.T) {
	p := progol.Portfolio{ticket(t, "Q1", progol.TicketCore, "LLLLLLLLLLLLLL")}
	r := New(nil).Validate(p)

	if r.Valid {
		t.Fatal("all-home single ticket reported valid")
	}
	assertMessage(t, r.Errors, "distribution L")
	assertMessage(t, r.Errors, "distribution E")
	assertMessage(t, r.Errors, "outside draw range")
}

func TestValidateDuplicates(t *testing.T) {
	p := progol.Portfolio{
		ticket(t, "Q1", progol.TicketCore, "LEVLEVLEVLEVLV"),
		ticket(t, "Q2", progol.TicketCore, "LEVLEVLEVLEVLV"),
	}
	r := New(nil).Validate(p)
	if r.Valid {
		t.Fatal("portfolio with duplicates reported valid")
	}
	assertMessage(t, r.Errors, "duplicated tickets")
}

func TestValidatePairCorrelation(t *testing.T) {
	base := "LEVLEVLEVLEVLV"
	mirror := strings.Map(func(r rune) rune {
		switch r {
		case 'L':
			return 'V'
		case 'V':
			return 'L'
		}
		return r
	}, base)

	a := ticket(t, "Sat-1A", progol.TicketSatellite, base)
	b := ticket(t, "Sat-1B", progol.TicketSatellite, mirror)
	a.PairID, b.PairID = "p-1", "p-1"

	r := New(nil).Validate(progol.Portfolio{a, b})

	if len(r.Metrics.PairCorrelations) != 1 {
		t.Fatalf("pair correlations = %v", r.Metrics.PairCorrelations)
	}
	pc := r.Metrics.PairCorrelations[0]
	if math.Abs(pc.Correlation-(-1)) > 1e-9 {
		t.Errorf("mirror pair correlation = %v, want -1", pc.Correlation)
	}
	for _, w := range r.Warnings {
		if strings.Contains(w, "correlation") {
			t.Errorf("anticorrelated pair warned: %s", w)
		}
	}
}

func TestValidatePositiveCorrelationWarns(t *testing.T) {
	a := ticket(t, "Sat-1A", progol.TicketSatellite, "LEVLEVLEVLEVLV")
	b := ticket(t, "Sat-1B", progol.TicketSatellite, "LEVLEVLEVLEVLE")
	a.PairID, b.PairID = "p-1", "p-1"

	r := New(nil).Validate(progol.Portfolio{a, b})
	if len(r.Metrics.PairCorrelations) != 1 {
		t.Fatalf("pair correlations = %v", r.Metrics.PairCorrelations)
	}
	if r.Metrics.PairCorrelations[0].Correlation < 0.9 {
		t.Errorf("near-identical pair correlation = %v", r.Metrics.PairCorrelations[0].Correlation)
	}
	assertMessage(t, r.Warnings, "correlation")
}

func TestValidateConstantPairCorrelation(t *testing.T) {
	// Zero-variance sequences: identical pairs count as perfectly
	// correlated.
	a := ticket(t, "Sat-1A", progol.TicketSatellite, "LLLLLLLLLLLLLL")
	b := ticket(t, "Sat-1B", progol.TicketSatellite, "LLLLLLLLLLLLLL")
	a.PairID, b.PairID = "p-1", "p-1"

	r := New(nil).Validate(progol.Portfolio{a, b})
	if len(r.Metrics.PairCorrelations) != 1 {
		t.Fatalf("pair correlations = %v", r.Metrics.PairCorrelations)
	}
	if got := r.Metrics.PairCorrelations[0].Correlation; got != 1 {
		t.Errorf("identical constant pair correlation = %v, want 1", got)
	}
	assertMessage(t, r.Errors, "duplicated tickets")
}

func TestValidateTooManyWarningsBecomesError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWarnings = 0
	// A structural warning alone must now reject the portfolio.
	p := balancedPortfolio(t)[:5] // 4 Cores + 1 satellite: odd satellite count
	r := New(cfg).Validate(p)

	if r.Valid {
		t.Fatal("portfolio above the warning ceiling reported valid")
	}
	assertMessage(t, r.Errors, "too many warnings")
}

func assertMessage(t *testing.T, messages []string, fragment string) {
	t.Helper()
	for _, m := range messages {
		if strings.Contains(m, fragment) {
			return
		}
	}
	t.Errorf("no message containing %q in %v", fragment, messages)
}

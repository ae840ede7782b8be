package generator

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// Optimizer precondition failures. These are fatal: the caller supplied an
// unusable candidate pool.
var (
	ErrNoCandidates = errors.New("optimizer: empty candidate pool")
	ErrMissingCores = errors.New("optimizer: fewer than 4 Core candidates")
)

// TargetDistribution is the historical per-symbol target used by the GRASP
// balance score.
var TargetDistribution = progol.Distribution{Local: 0.38, Draw: 0.29, Away: 0.33}

// Optimize selects a portfolio from the candidate tickets: GRASP randomized
// greedy construction followed by simulated-annealing local search. The
// returned portfolio holds the 4 Core tickets plus up to MaxPortfolio-4
// selected candidates, and its objective is never worse than the
// construction's.
func (g *Generator) Optimize(candidates []progol.Ticket, classified []classify.Classified) (progol.Portfolio, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	constructed, err := g.construct(candidates)
	if err != nil {
		return nil, err
	}
	return g.anneal(constructed, classified), nil
}

// construct is the GRASP phase: the 4 Cores first, then repeated draws from
// the top elite fraction of candidates ranked by marginal value.
func (g *Generator) construct(candidates []progol.Ticket) (progol.Portfolio, error) {
	var cores, pool []progol.Ticket
	for _, t := range candidates {
		if t.Type == progol.TicketCore && len(cores) < CoreCount {
			cores = append(cores, t)
		} else if t.Type != progol.TicketCore {
			pool = append(pool, t)
		}
	}
	if len(cores) < CoreCount {
		return nil, fmt.Errorf("%w: got %d", ErrMissingCores, len(cores))
	}

	var portfolio progol.Portfolio
	for _, t := range cores {
		next, err := portfolio.Add(t)
		if err != nil {
			// Degenerate slates (all Anchors) can collapse the Cores into
			// one sequence; the validator reports the structural shortfall.
			continue
		}
		portfolio = next
	}

	for len(portfolio) < g.cfg.MaxPortfolio && len(pool) > 0 {
		type scored struct {
			idx   int
			value float64
		}
		values := make([]scored, len(pool))
		for i, t := range pool {
			values[i] = scored{i, g.marginalValue(t, portfolio)}
		}
		sort.SliceStable(values, func(a, b int) bool {
			return values[a].value > values[b].value
		})

		elite := int(float64(len(values)) * g.cfg.EliteFraction)
		if elite < 1 {
			elite = 1
		}
		pick := values[g.rng.Intn(elite)].idx

		if next, err := portfolio.Add(pool[pick]); err == nil {
			portfolio = next
		}
		pool = append(pool[:pick], pool[pick+1:]...)
	}

	return portfolio, nil
}

// marginalValue scores a candidate against the portfolio built so far:
// 0.5*hitProb + 0.3*diversification + 0.2*distribution balance.
func (g *Generator) marginalValue(candidate progol.Ticket, portfolio progol.Portfolio) float64 {
	diversification := 1.0
	if len(portfolio) > 0 && len(candidate.Outcomes) > 0 {
		sum := 0.0
		for _, t := range portfolio {
			sum += float64(progol.Hamming(candidate, t))
		}
		diversification = sum / float64(len(portfolio)) / float64(len(candidate.Outcomes))
	}

	dist := candidate.Distribution()
	penalty := 0.0
	for _, o := range progol.Outcomes() {
		penalty += math.Abs(dist.ProbFor(o) - TargetDistribution.ProbFor(o))
	}
	balance := math.Max(0, 1-penalty)

	return 0.5*candidate.HitProb + 0.3*diversification + 0.2*balance
}

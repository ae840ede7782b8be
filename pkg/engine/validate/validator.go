// Package validate checks a finished portfolio against the Progol
// methodology rules and produces a structured report.
//
// The validator never fails: every detected problem is classified as a
// warning or an error and returned in the report.
package validate

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

// Config holds the validation thresholds.
type Config struct {
	DrawsMin int
	DrawsMax int

	// DistributionMargin separates a warning from an error when a global
	// proportion falls outside its historical band.
	DistributionMargin float64

	// Concentration caps: EarlyLimit applies to the first EarlyContests
	// slate positions, GeneralLimit to the rest.
	EarlyContests int
	EarlyLimit    float64
	GeneralLimit  float64

	// MaxSimilarity triggers a warning when even the least similar ticket
	// pair exceeds it.
	MaxSimilarity float64

	// PairCorrelationMax is the ceiling a satellite pair's correlation must
	// stay under (pairs should be negatively correlated).
	PairCorrelationMax float64

	// MinEarlyEntropy is the floor for average outcome entropy over the
	// first EarlyContests positions.
	MinEarlyEntropy float64

	// MaxWarnings is the warning ceiling beyond which the portfolio is
	// rejected outright.
	MaxWarnings int

	// TicketPrice is the unit cost per ticket (MXN).
	TicketPrice decimal.Decimal
}

// DefaultConfig returns the methodology thresholds.
func DefaultConfig() *Config {
	return &Config{
		DrawsMin: 4,
		DrawsMax: 6,

		DistributionMargin: 0.03,

		EarlyContests: 3,
		EarlyLimit:    0.60,
		GeneralLimit:  0.70,

		MaxSimilarity:      0.85,
		PairCorrelationMax: -0.20,
		MinEarlyEntropy:    0.40,

		MaxWarnings: 3,
		TicketPrice: decimal.NewFromInt(15),
	}
}

// ContestConcentration is one row of the per-contest concentration table.
type ContestConcentration struct {
	Contest     int                  `json:"contest"` // 1-based slate position
	Proportions progol.Distribution  `json:"proportions"`
	Max         float64              `json:"max_concentration"`
	Dominant    progol.Outcome       `json:"dominant_outcome"`
}

// PairCorrelation is the Pearson correlation of a satellite pair's
// numerically encoded outcome sequences.
type PairCorrelation struct {
	PairID      string  `json:"pair_id"`
	TicketA     string  `json:"ticket_a"`
	TicketB     string  `json:"ticket_b"`
	Correlation float64 `json:"correlation"`
}

// Metrics aggregates the figures attached to every validation report.
type Metrics struct {
	GlobalDistribution progol.Distribution       `json:"global_distribution"`
	DrawsMean          float64                   `json:"draws_mean"`
	DrawsLow           int                       `json:"draws_low"`
	DrawsHigh          int                       `json:"draws_high"`
	Concentration      []ContestConcentration    `json:"concentration"`
	SimilarityMean     float64                   `json:"similarity_mean"`
	SimilarityMin      float64                   `json:"similarity_min"`
	PairCorrelations   []PairCorrelation         `json:"pair_correlations"`
	EarlyEntropy       float64                   `json:"early_entropy"`
	Structure          map[progol.TicketType]int `json:"structure"`

	HitProbMean      float64 `json:"hit_prob_mean"`
	HitProbMin       float64 `json:"hit_prob_min"`
	HitProbMax       float64 `json:"hit_prob_max"`
	PortfolioHitProb float64 `json:"portfolio_hit_prob"`
	AvgEntropy       float64 `json:"avg_entropy"`

	TotalCost  decimal.Decimal `json:"total_cost"`
	Efficiency float64         `json:"efficiency"`
}

// Report is the validation output record.
type Report struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	Metrics  Metrics  `json:"metrics"`
}

// Validator applies the methodology rules to a portfolio.
type Validator struct {
	cfg *Config
}

// New creates a validator. A nil config uses the defaults.
func New(cfg *Config) *Validator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Validator{cfg: cfg}
}

// Validate runs every rule check and returns the combined report. Only an
// empty portfolio short-circuits; all other rules run independently.
func (v *Validator) Validate(p progol.Portfolio) Report {
	r := Report{Valid: true, Warnings: []string{}, Errors: []string{}}

	if len(p) == 0 {
		r.Valid = false
		r.Errors = append(r.Errors, "portfolio has no tickets")
		return r
	}

	v.checkGlobalDistribution(p, &r)
	v.checkDrawRanges(p, &r)
	v.checkConcentration(p, &r)
	v.checkUniqueness(p, &r)
	v.checkHyperdiversification(p, &r)
	v.checkStructure(p, &r)
	v.aggregateMetrics(p, &r)

	if len(r.Errors) > 0 {
		r.Valid = false
	} else if len(r.Warnings) > v.cfg.MaxWarnings {
		r.Valid = false
		r.Errors = append(r.Errors, fmt.Sprintf("too many warnings: %d (max %d)", len(r.Warnings), v.cfg.MaxWarnings))
	}
	return r
}

// checkGlobalDistribution compares aggregate outcome proportions against the
// historical bands. Deviations beyond the margin are errors, smaller ones
// warnings.
func (v *Validator) checkGlobalDistribution(p progol.Portfolio, r *Report) {
	total := 0
	counts := map[progol.Outcome]float64{}
	for _, t := range p {
		for _, o := range t.Outcomes {
			counts[o]++
			total++
		}
	}
	if total == 0 {
		return
	}

	dist := progol.Distribution{
		Local: counts[progol.OutcomeLocal] / float64(total),
		Draw:  counts[progol.OutcomeDraw] / float64(total),
		Away:  counts[progol.OutcomeAway] / float64(total),
	}
	r.Metrics.GlobalDistribution = dist

	for _, o := range progol.Outcomes() {
		band := classify.HistoricalBands[o]
		prop := dist.ProbFor(o)

		switch {
		case prop < band[0]:
			msg := fmt.Sprintf("distribution %s: %.3f below minimum %.2f", o, prop, band[0])
			if band[0]-prop > v.cfg.DistributionMargin {
				r.Errors = append(r.Errors, msg)
			} else {
				r.Warnings = append(r.Warnings, msg)
			}
		case prop > band[1]:
			msg := fmt.Sprintf("distribution %s: %.3f above maximum %.2f", o, prop, band[1])
			if prop-band[1] > v.cfg.DistributionMargin {
				r.Errors = append(r.Errors, msg)
			} else {
				r.Warnings = append(r.Warnings, msg)
			}
		}
	}
}

// checkDrawRanges lists tickets outside the draw range. More than 10% of
// the portfolio out of range collapses into one error.
func (v *Validator) checkDrawRanges(p progol.Portfolio, r *Report) {
	var offenders []string
	sum, low, high := 0, math.MaxInt, 0
	for i, t := range p {
		draws := t.Draws()
		sum += draws
		if draws < low {
			low = draws
		}
		if draws > high {
			high = draws
		}
		if draws < v.cfg.DrawsMin {
			offenders = append(offenders, fmt.Sprintf("Q-%d: %d draws (min %d)", i+1, draws, v.cfg.DrawsMin))
		} else if draws > v.cfg.DrawsMax {
			offenders = append(offenders, fmt.Sprintf("Q-%d: %d draws (max %d)", i+1, draws, v.cfg.DrawsMax))
		}
	}

	r.Metrics.DrawsMean = float64(sum) / float64(len(p))
	r.Metrics.DrawsLow = low
	r.Metrics.DrawsHigh = high

	if len(offenders) == 0 {
		return
	}
	if float64(len(offenders)) > float64(len(p))*0.1 {
		sample := offenders
		if len(sample) > 5 {
			sample = sample[:5]
		}
		r.Errors = append(r.Errors, fmt.Sprintf("too many tickets outside draw range: %v", sample))
	} else {
		r.Warnings = append(r.Warnings, offenders...)
	}
}

// checkConcentration caps the share of tickets agreeing on one outcome per
// contest. The concentration table is always attached to metrics.
func (v *Validator) checkConcentration(p progol.Portfolio, r *Report) {
	slots := v.slateLen(p)
	var violations []string

	for contest := 0; contest < slots; contest++ {
		row := v.concentrationRow(p, contest)
		r.Metrics.Concentration = append(r.Metrics.Concentration, row)

		limit := v.cfg.GeneralLimit
		kind := "general"
		if contest < v.cfg.EarlyContests {
			limit = v.cfg.EarlyLimit
			kind = "early"
		}
		if row.Max > limit {
			violations = append(violations, fmt.Sprintf(
				"contest %d: %.0f%% on %q (%s limit %.0f%%)",
				contest+1, row.Max*100, row.Dominant, kind, limit*100))
		}
	}

	if len(violations) == 0 {
		return
	}
	if len(violations) > 3 {
		r.Errors = append(r.Errors, fmt.Sprintf("multiple concentration violations: %v", violations[:3]))
	} else {
		r.Warnings = append(r.Warnings, violations...)
	}
}

func (v *Validator) concentrationRow(p progol.Portfolio, contest int) ContestConcentration {
	counts := map[progol.Outcome]float64{}
	n := 0.0
	for _, t := range p {
		if contest < len(t.Outcomes) {
			counts[t.Outcomes[contest]]++
			n++
		}
	}
	row := ContestConcentration{Contest: contest + 1}
	if n == 0 {
		return row
	}
	row.Proportions = progol.Distribution{
		Local: counts[progol.OutcomeLocal] / n,
		Draw:  counts[progol.OutcomeDraw] / n,
		Away:  counts[progol.OutcomeAway] / n,
	}
	for _, o := range progol.Outcomes() {
		if prop := row.Proportions.ProbFor(o); prop > row.Max {
			row.Max = prop
			row.Dominant = o
		}
	}
	return row
}

// checkUniqueness reports duplicated outcome sequences as errors and
// attaches pairwise similarity statistics.
func (v *Validator) checkUniqueness(p progol.Portfolio, r *Report) {
	seen := map[string]bool{}
	var duplicates []string
	for i, t := range p {
		key := t.Key()
		if seen[key] {
			duplicates = append(duplicates, fmt.Sprintf("Q-%d", i+1))
		}
		seen[key] = true
	}
	if len(duplicates) > 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("duplicated tickets found: %v", duplicates))
	}

	if len(p) < 2 {
		return
	}
	sum, minSim, pairs := 0.0, 1.0, 0
	for i := 0; i < len(p); i++ {
		for j := i + 1; j < len(p); j++ {
			sim := progol.Similarity(p[i], p[j])
			sum += sim
			if sim < minSim {
				minSim = sim
			}
			pairs++
		}
	}
	r.Metrics.SimilarityMean = sum / float64(pairs)
	r.Metrics.SimilarityMin = minSim

	if minSim > v.cfg.MaxSimilarity {
		r.Warnings = append(r.Warnings, fmt.Sprintf("tickets are too similar (min similarity %.3f)", minSim))
	}
}

// checkHyperdiversification verifies satellite-pair anticorrelation and
// early-contest outcome entropy.
func (v *Validator) checkHyperdiversification(p progol.Portfolio, r *Report) {
	for _, pc := range pairCorrelations(p) {
		r.Metrics.PairCorrelations = append(r.Metrics.PairCorrelations, pc)
		if pc.Correlation > v.cfg.PairCorrelationMax {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"pair %s/%s: correlation %.3f (must be < %.2f)",
				pc.TicketA, pc.TicketB, pc.Correlation, v.cfg.PairCorrelationMax))
		}
	}

	early := v.cfg.EarlyContests
	if slots := v.slateLen(p); early > slots {
		early = slots
	}
	sum, n := 0.0, 0
	for contest := 0; contest < early; contest++ {
		sum += v.contestEntropy(p, contest)
		n++
	}
	if n > 0 {
		r.Metrics.EarlyEntropy = sum / float64(n)
		if r.Metrics.EarlyEntropy < v.cfg.MinEarlyEntropy {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"low diversification on early contests: %.3f", r.Metrics.EarlyEntropy))
		}
	}
}

// checkStructure warns when the Core + Satellites shape is off.
func (v *Validator) checkStructure(p progol.Portfolio, r *Report) {
	r.Metrics.Structure = map[progol.TicketType]int{
		progol.TicketCore:      p.CoreCount(),
		progol.TicketSatellite: p.SatelliteCount(),
	}
	if cores := p.CoreCount(); cores != 4 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("expected 4 Core tickets, found %d", cores))
	}
	if sats := p.SatelliteCount(); sats > 0 && sats%2 != 0 {
		r.Warnings = append(r.Warnings, fmt.Sprintf("odd number of satellites: %d", sats))
	}
}

// aggregateMetrics computes hit-probability, entropy and cost figures.
func (v *Validator) aggregateMetrics(p progol.Portfolio, r *Report) {
	sum, low, high := 0.0, 1.0, 0.0
	miss := 1.0
	for _, t := range p {
		sum += t.HitProb
		if t.HitProb < low {
			low = t.HitProb
		}
		if t.HitProb > high {
			high = t.HitProb
		}
		miss *= 1 - t.HitProb
	}
	r.Metrics.HitProbMean = sum / float64(len(p))
	r.Metrics.HitProbMin = low
	r.Metrics.HitProbMax = high
	r.Metrics.PortfolioHitProb = 1 - miss

	slots := v.slateLen(p)
	entropySum, n := 0.0, 0
	for contest := 0; contest < slots; contest++ {
		entropySum += v.contestEntropy(p, contest)
		n++
	}
	if n > 0 {
		r.Metrics.AvgEntropy = entropySum / float64(n)
	}

	cost := v.cfg.TicketPrice.Mul(decimal.NewFromInt(int64(len(p))))
	r.Metrics.TotalCost = cost
	if cost.IsPositive() {
		normalized, _ := cost.Div(decimal.NewFromInt(1000)).Float64()
		r.Metrics.Efficiency = r.Metrics.PortfolioHitProb / normalized
	}
}

// contestEntropy is the normalized Shannon entropy of the outcome
// distribution across tickets at one slate position.
func (v *Validator) contestEntropy(p progol.Portfolio, contest int) float64 {
	counts := map[progol.Outcome]float64{}
	total := 0.0
	for _, t := range p {
		if contest < len(t.Outcomes) {
			counts[t.Outcomes[contest]]++
			total++
		}
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			q := c / total
			h -= q * math.Log(q)
		}
	}
	return h / math.Log(3)
}

// slateLen returns the slate size covered by the portfolio.
func (v *Validator) slateLen(p progol.Portfolio) int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0].Outcomes)
}

// pairCorrelations computes the Pearson correlation of numerically encoded
// outcomes for each complete satellite pair, in first-seen pair order so
// repeated validation yields identical reports.
func pairCorrelations(p progol.Portfolio) []PairCorrelation {
	var order []string
	grouped := map[string][]progol.Ticket{}
	for _, t := range p {
		if t.Type != progol.TicketSatellite || t.PairID == "" {
			continue
		}
		if _, ok := grouped[t.PairID]; !ok {
			order = append(order, t.PairID)
		}
		grouped[t.PairID] = append(grouped[t.PairID], t)
	}

	var out []PairCorrelation
	for _, id := range order {
		pair := grouped[id]
		if len(pair) != 2 {
			continue
		}
		out = append(out, PairCorrelation{
			PairID:      id,
			TicketA:     pair[0].ID,
			TicketB:     pair[1].ID,
			Correlation: pearson(encode(pair[0].Outcomes), encode(pair[1].Outcomes)),
		})
	}
	return out
}

func encode(outcomes []progol.Outcome) []float64 {
	out := make([]float64, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Value()
	}
	return out
}

// pearson computes the correlation coefficient of two equal-length series.
// A zero-variance series makes the coefficient undefined; identical
// sequences count as perfectly correlated (+1), anything else as 0.
func pearson(a, b []float64) float64 {
	n := float64(len(a))
	if n == 0 || len(a) != len(b) {
		return 0
	}
	meanA, meanB := 0.0, 0.0
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		for i := range a {
			if a[i] != b[i] {
				return 0
			}
		}
		return 1
	}
	return cov / math.Sqrt(varA*varB)
}

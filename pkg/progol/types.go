// Package progol defines the domain types shared by the quiniela decision
// engine: 1X2 outcomes and probabilities, contests, tickets and portfolios.
//
// Tickets and portfolios are value objects: every transformation returns a
// new value instead of mutating shared state.
package progol

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Slate dimensions.
const (
	// SlateSize is the number of contests in the primary slate.
	SlateSize = 14
	// MaxRevanchaSize is the maximum number of contests in the optional
	// secondary ("revancha") slate.
	MaxRevanchaSize = 7
)

// ProbTolerance is the tolerated deviation of a probability triple from 1.
const ProbTolerance = 1e-6

// Outcome represents a 1X2 outcome symbol as printed on a Progol ticket.
type Outcome string

const (
	OutcomeLocal Outcome = "L" // home win
	OutcomeDraw  Outcome = "E" // empate
	OutcomeAway  Outcome = "V" // visitante win
)

// Valid reports whether o is one of the three ticket symbols.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeLocal, OutcomeDraw, OutcomeAway:
		return true
	}
	return false
}

// ParseOutcomes parses a compact outcome string such as "LEVLEVLEVLEVLE".
// Lowercase symbols are accepted.
func ParseOutcomes(s string) ([]Outcome, error) {
	out := make([]Outcome, 0, len(s))
	for i, r := range s {
		o := Outcome(strings.ToUpper(string(r)))
		if !o.Valid() {
			return nil, fmt.Errorf("position %d: invalid outcome %q", i+1, string(r))
		}
		out = append(out, o)
	}
	return out, nil
}

// Value returns the numeric encoding used for correlation math
// (L=+1, E=0, V=-1).
func (o Outcome) Value() float64 {
	switch o {
	case OutcomeLocal:
		return 1
	case OutcomeAway:
		return -1
	default:
		return 0
	}
}

// Outcomes lists the three symbols in their stable ordering (L, E, V).
// Tie-breaks across the engine follow this ordering.
func Outcomes() [3]Outcome {
	return [3]Outcome{OutcomeLocal, OutcomeDraw, OutcomeAway}
}

// Prob3 holds 3-way outcome probabilities (must sum to 1).
type Prob3 struct {
	Local float64 `json:"prob_home"`
	Draw  float64 `json:"prob_draw"`
	Away  float64 `json:"prob_away"`
}

// Normalize ensures probabilities sum to 1. A non-positive sum degrades to
// the uniform distribution.
func (p Prob3) Normalize() Prob3 {
	sum := p.Local + p.Draw + p.Away
	if sum <= 0 {
		return Prob3{Local: 1.0 / 3, Draw: 1.0 / 3, Away: 1.0 / 3}
	}
	return Prob3{
		Local: p.Local / sum,
		Draw:  p.Draw / sum,
		Away:  p.Away / sum,
	}
}

// ProbFor returns the probability for a specific outcome.
func (p Prob3) ProbFor(o Outcome) float64 {
	switch o {
	case OutcomeLocal:
		return p.Local
	case OutcomeDraw:
		return p.Draw
	case OutcomeAway:
		return p.Away
	default:
		return 0
	}
}

// Max returns the highest of the three probabilities.
func (p Prob3) Max() float64 {
	return math.Max(p.Local, math.Max(p.Draw, p.Away))
}

// Suggested returns the argmax outcome. Ties resolve in the stable L, E, V
// ordering.
func (p Prob3) Suggested() Outcome {
	best := OutcomeLocal
	bestP := p.Local
	for _, o := range []Outcome{OutcomeDraw, OutcomeAway} {
		if p.ProbFor(o) > bestP {
			best = o
			bestP = p.ProbFor(o)
		}
	}
	return best
}

// Alternate returns the second-most-probable outcome. Ties resolve in the
// stable L, E, V ordering.
func (p Prob3) Alternate() Outcome {
	top := p.Suggested()
	second := Outcome("")
	secondP := -1.0
	for _, o := range Outcomes() {
		if o == top {
			continue
		}
		if p.ProbFor(o) > secondP {
			second = o
			secondP = p.ProbFor(o)
		}
	}
	return second
}

// Confidence returns the gap between the top-1 and top-2 probabilities.
func (p Prob3) Confidence() float64 {
	return p.ProbFor(p.Suggested()) - p.ProbFor(p.Alternate())
}

// Entropy returns the Shannon entropy of the triple normalized by ln(3),
// so the result lies in [0, 1]. Probabilities are floored at 1e-10 to avoid
// log(0).
func (p Prob3) Entropy() float64 {
	h := 0.0
	for _, o := range Outcomes() {
		q := math.Max(p.ProbFor(o), 1e-10)
		h -= q * math.Log(q)
	}
	return h / math.Log(3)
}

// Validate checks that each probability lies in [0, 1] and the triple sums
// to 1 within ProbTolerance.
func (p Prob3) Validate() error {
	for _, o := range Outcomes() {
		q := p.ProbFor(o)
		if q < 0 || q > 1 {
			return fmt.Errorf("probability for %s out of range: %v", o, q)
		}
	}
	if sum := p.Local + p.Draw + p.Away; math.Abs(sum-1) > ProbTolerance {
		return fmt.Errorf("probabilities sum to %v, want 1", sum)
	}
	return nil
}

// Contest is one match of the slate as supplied by the data-acquisition
// side: raw 1X2 probabilities plus the contextual signals used by
// calibration. Read-only to the engine.
type Contest struct {
	Home string
	Away string

	Probs Prob3

	// Contextual signals.
	IsDecisive   bool    // final, derby, relegation decider
	FormDelta    float64 // home minus away recent form
	InjuryImpact float64 // net injury impact on the home side
}

// contestJSON is the flat wire shape of a contest record.
type contestJSON struct {
	Home         string  `json:"home"`
	Away         string  `json:"away"`
	ProbHome     float64 `json:"prob_home"`
	ProbDraw     float64 `json:"prob_draw"`
	ProbAway     float64 `json:"prob_away"`
	IsDecisive   bool    `json:"is_decisive"`
	FormDelta    float64 `json:"form_delta"`
	InjuryImpact float64 `json:"injury_impact"`
}

// MarshalJSON emits the flat contest record with prob_home/prob_draw/prob_away
// at the top level.
func (c Contest) MarshalJSON() ([]byte, error) {
	return json.Marshal(contestJSON{
		Home:         c.Home,
		Away:         c.Away,
		ProbHome:     c.Probs.Local,
		ProbDraw:     c.Probs.Draw,
		ProbAway:     c.Probs.Away,
		IsDecisive:   c.IsDecisive,
		FormDelta:    c.FormDelta,
		InjuryImpact: c.InjuryImpact,
	})
}

// UnmarshalJSON reads the flat contest record.
func (c *Contest) UnmarshalJSON(data []byte) error {
	var w contestJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*c = Contest{
		Home:         w.Home,
		Away:         w.Away,
		Probs:        Prob3{Local: w.ProbHome, Draw: w.ProbDraw, Away: w.ProbAway},
		IsDecisive:   w.IsDecisive,
		FormDelta:    w.FormDelta,
		InjuryImpact: w.InjuryImpact,
	}
	return nil
}

// Validate rejects malformed contest input before classification.
func (c Contest) Validate() error {
	if c.Home == "" || c.Away == "" {
		return fmt.Errorf("contest %q vs %q: missing team name", c.Home, c.Away)
	}
	if err := c.Probs.Validate(); err != nil {
		return fmt.Errorf("contest %s vs %s: %w", c.Home, c.Away, err)
	}
	return nil
}

// Slate is an ordered set of contests covered by one ticket.
type Slate []Contest

// Validate checks every contest on the slate.
func (s Slate) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("empty slate")
	}
	for i, c := range s {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("slate position %d: %w", i+1, err)
		}
	}
	return nil
}

// TicketType tags a ticket as Core or Satellite.
type TicketType string

const (
	TicketCore      TicketType = "Core"
	TicketSatellite TicketType = "Satellite"
)

// Ticket is one full assignment of outcomes across a slate.
type Ticket struct {
	ID       string     `json:"id"`
	Type     TicketType `json:"type"`
	Outcomes []Outcome  `json:"outcomes"`

	// HitProb is the Monte Carlo estimate of reaching the hit threshold.
	HitProb float64 `json:"hit_probability"`

	// PairID links the two halves of an anticorrelated satellite pair.
	// Empty for Core tickets and the unpaired satellite.
	PairID string `json:"pair_id,omitempty"`
}

// Draws counts the draw symbols on the ticket.
func (t Ticket) Draws() int {
	n := 0
	for _, o := range t.Outcomes {
		if o == OutcomeDraw {
			n++
		}
	}
	return n
}

// Distribution holds per-symbol proportions of a ticket or portfolio.
type Distribution struct {
	Local float64 `json:"L"`
	Draw  float64 `json:"E"`
	Away  float64 `json:"V"`
}

// ProbFor returns the proportion for a specific outcome.
func (d Distribution) ProbFor(o Outcome) float64 {
	switch o {
	case OutcomeLocal:
		return d.Local
	case OutcomeDraw:
		return d.Draw
	case OutcomeAway:
		return d.Away
	default:
		return 0
	}
}

// Distribution returns the per-symbol proportions of the ticket.
func (t Ticket) Distribution() Distribution {
	if len(t.Outcomes) == 0 {
		return Distribution{}
	}
	var d Distribution
	total := float64(len(t.Outcomes))
	for _, o := range t.Outcomes {
		switch o {
		case OutcomeLocal:
			d.Local++
		case OutcomeDraw:
			d.Draw++
		case OutcomeAway:
			d.Away++
		}
	}
	d.Local /= total
	d.Draw /= total
	d.Away /= total
	return d
}

// Key returns the concatenated outcome sequence, used for uniqueness checks.
func (t Ticket) Key() string {
	b := make([]byte, 0, len(t.Outcomes))
	for _, o := range t.Outcomes {
		b = append(b, o[0])
	}
	return string(b)
}

// Clone returns a deep copy of the ticket.
func (t Ticket) Clone() Ticket {
	out := t
	out.Outcomes = make([]Outcome, len(t.Outcomes))
	copy(out.Outcomes, t.Outcomes)
	return out
}

// WithOutcome returns a copy of the ticket with position i replaced.
func (t Ticket) WithOutcome(i int, o Outcome) Ticket {
	out := t.Clone()
	out.Outcomes[i] = o
	return out
}

// Record is the per-ticket output record consumed by downstream
// collaborators (export, persistence, UI).
type Record struct {
	ID           string       `json:"id"`
	Type         TicketType   `json:"type"`
	Outcomes     []Outcome    `json:"outcomes"`
	DrawCount    int          `json:"draw_count"`
	HitProb      float64      `json:"hit_probability"`
	Distribution Distribution `json:"distribution"`
	PairID       *string      `json:"pair_id"`
}

// Record flattens the ticket into its output record shape.
func (t Ticket) Record() Record {
	r := Record{
		ID:           t.ID,
		Type:         t.Type,
		Outcomes:     append([]Outcome(nil), t.Outcomes...),
		DrawCount:    t.Draws(),
		HitProb:      t.HitProb,
		Distribution: t.Distribution(),
	}
	if t.PairID != "" {
		pid := t.PairID
		r.PairID = &pid
	}
	return r
}

// Hamming returns the number of positions where the two tickets disagree.
// Tickets of different lengths disagree on every unshared position.
func Hamming(a, b Ticket) int {
	n := len(a.Outcomes)
	if len(b.Outcomes) < n {
		n = len(b.Outcomes)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a.Outcomes[i] != b.Outcomes[i] {
			d++
		}
	}
	d += len(a.Outcomes) - n
	d += len(b.Outcomes) - n
	return d
}

// Similarity returns 1 - Hamming/slateSize for two tickets over the same
// slate.
func Similarity(a, b Ticket) float64 {
	if len(a.Outcomes) == 0 {
		return 0
	}
	return 1 - float64(Hamming(a, b))/float64(len(a.Outcomes))
}

// Portfolio is an ordered collection of tickets with unique outcome
// sequences. Uniqueness is enforced by Add and Replace, not merely checked.
type Portfolio []Ticket

// ErrDuplicateTicket is returned when an identical outcome sequence is
// already present in the portfolio.
var ErrDuplicateTicket = fmt.Errorf("duplicate ticket sequence")

// Add returns a new portfolio extended by t, refusing duplicates.
func (p Portfolio) Add(t Ticket) (Portfolio, error) {
	key := t.Key()
	for _, existing := range p {
		if existing.Key() == key {
			return p, fmt.Errorf("%w: %s", ErrDuplicateTicket, key)
		}
	}
	out := make(Portfolio, len(p), len(p)+1)
	copy(out, p)
	return append(out, t), nil
}

// Replace returns a new portfolio with position i replaced by t, refusing
// the replacement if t duplicates any other member.
func (p Portfolio) Replace(i int, t Ticket) (Portfolio, error) {
	if i < 0 || i >= len(p) {
		return p, fmt.Errorf("replace index %d out of range", i)
	}
	key := t.Key()
	for j, existing := range p {
		if j != i && existing.Key() == key {
			return p, fmt.Errorf("%w: %s", ErrDuplicateTicket, key)
		}
	}
	out := make(Portfolio, len(p))
	copy(out, p)
	out[i] = t
	return out, nil
}

// Clone returns a deep copy of the portfolio.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for i, t := range p {
		out[i] = t.Clone()
	}
	return out
}

// CoreCount counts the Core-type tickets.
func (p Portfolio) CoreCount() int {
	n := 0
	for _, t := range p {
		if t.Type == TicketCore {
			n++
		}
	}
	return n
}

// SatelliteCount counts the Satellite-type tickets.
func (p Portfolio) SatelliteCount() int {
	n := 0
	for _, t := range p {
		if t.Type == TicketSatellite {
			n++
		}
	}
	return n
}

// Records flattens the portfolio into output records.
func (p Portfolio) Records() []Record {
	out := make([]Record, len(p))
	for i, t := range p {
		out[i] = t.Record()
	}
	return out
}

// Package classify calibrates raw contest probabilities with contextual
// adjustments and labels each contest with an archetype.
//
// Archetypes follow the Progol methodology:
//   - Anchor: >60% confidence in one outcome
//   - Divisor: high uncertainty (40-60% top probability)
//   - TrendDraw: draw leads and exceeds 30%
//   - Neutral: everything else
package classify

import (
	"fmt"
	"math"

	"github.com/CMCFame/progol-engine/pkg/progol"
)

// Archetype labels a contest's outcome-certainty profile.
type Archetype string

const (
	ArchetypeAnchor    Archetype = "Anchor"
	ArchetypeDivisor   Archetype = "Divisor"
	ArchetypeTrendDraw Archetype = "TrendDraw"
	ArchetypeNeutral   Archetype = "Neutral"
)

// Classified is a contest plus its calibrated probabilities and archetype.
// Immutable after classification except for the bounded Regularize pass,
// which only rewrites Suggested on a returned copy.
type Classified struct {
	Contest progol.Contest

	// Probs holds the calibrated probabilities (sum to 1 within tolerance).
	Probs progol.Prob3

	Archetype  Archetype
	Suggested  progol.Outcome
	Confidence float64 // top-1 minus top-2 calibrated probability
	Volatility float64 // normalized Shannon entropy
}

// Alternate returns the contest's second-most-probable outcome.
func (c Classified) Alternate() progol.Outcome {
	return c.Probs.Alternate()
}

// Config holds the classification thresholds and calibration coefficients.
type Config struct {
	AnchorThreshold float64 // top probability above this is an Anchor
	DivisorMin      float64 // Divisor band lower bound (exclusive)
	DivisorMax      float64 // Divisor band upper bound (exclusive)
	DrawThreshold   float64 // TrendDraw requires draw above this

	// Calibration coefficients: factor = 1 + K1*form + K2*injuries + K3*decisive.
	CalibrationForm     float64
	CalibrationInjuries float64
	CalibrationContext  float64

	// Regularization: low-confidence Neutral/Divisor contests may have their
	// suggested outcome redirected toward a deficient class.
	RegularizeConfidence float64 // only contests below this confidence
	RegularizeMinProb    float64 // target class needs at least this probability
}

// DefaultConfig returns the empirically calibrated Progol parameters.
func DefaultConfig() *Config {
	return &Config{
		AnchorThreshold: 0.60,
		DivisorMin:      0.40,
		DivisorMax:      0.60,
		DrawThreshold:   0.30,

		CalibrationForm:     0.15,
		CalibrationInjuries: 0.10,
		CalibrationContext:  0.20,

		RegularizeConfidence: 0.15,
		RegularizeMinProb:    0.20,
	}
}

// HistoricalBands are the long-run Progol outcome proportions per class.
// Suggested-outcome distributions outside these bands are regularized, and
// portfolio distributions outside them are flagged by the validator.
var HistoricalBands = map[progol.Outcome][2]float64{
	progol.OutcomeLocal: {0.35, 0.41},
	progol.OutcomeDraw:  {0.25, 0.33},
	progol.OutcomeAway:  {0.30, 0.36},
}

// Classifier calibrates and labels slate contests.
type Classifier struct {
	cfg *Config
}

// New creates a classifier. A nil config uses the defaults.
func New(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// Classify validates the slate, calibrates every contest and labels it.
// Malformed input is rejected before any calibration happens.
func (c *Classifier) Classify(slate progol.Slate) ([]Classified, error) {
	if err := slate.Validate(); err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	out := make([]Classified, len(slate))
	for i, contest := range slate {
		probs := c.calibrate(contest)
		out[i] = Classified{
			Contest:    contest,
			Probs:      probs,
			Archetype:  c.archetype(probs),
			Suggested:  probs.Suggested(),
			Confidence: probs.Confidence(),
			Volatility: probs.Entropy(),
		}
	}
	return out, nil
}

// calibrate applies the contextual adjustment factor and the draw-propensity
// rule, then renormalizes. Arithmetic failure degrades to the raw
// probabilities rather than raising.
func (c *Classifier) calibrate(contest progol.Contest) progol.Prob3 {
	context := 0.0
	if contest.IsDecisive {
		context = 1.0
	}
	factor := 1 + c.cfg.CalibrationForm*contest.FormDelta +
		c.cfg.CalibrationInjuries*contest.InjuryImpact +
		c.cfg.CalibrationContext*context

	raw := contest.Probs
	home := raw.Local * factor
	away := raw.Away
	if factor > 0 {
		away = raw.Away / factor
	}
	draw := drawPropensity(home, raw.Draw, away)

	sum := home + draw + away
	if sum <= 0 {
		return raw
	}
	return progol.Prob3{Local: home / sum, Draw: draw / sum, Away: away / sum}
}

// drawPropensity boosts the draw when home and away are nearly tied and the
// draw already leads: if |h-a| < 0.08 and e > max(h,a), e += 0.06 capped at
// 0.95.
func drawPropensity(home, draw, away float64) float64 {
	if math.Abs(home-away) < 0.08 && draw > math.Max(home, away) {
		return math.Min(draw+0.06, 0.95)
	}
	return draw
}

// archetype applies the classification rules in precedence order.
func (c *Classifier) archetype(p progol.Prob3) Archetype {
	max := p.Max()

	if max > c.cfg.AnchorThreshold {
		return ArchetypeAnchor
	}
	if p.Draw > c.cfg.DrawThreshold && p.Draw >= math.Max(p.Local, p.Away) {
		return ArchetypeTrendDraw
	}
	if max > c.cfg.DivisorMin && max < c.cfg.DivisorMax {
		return ArchetypeDivisor
	}
	return ArchetypeNeutral
}

// Stats summarizes a classified slate by archetype.
type Stats struct {
	Total     int                   `json:"total"`
	Anchor    int                   `json:"anchor"`
	Divisor   int                   `json:"divisor"`
	TrendDraw int                   `json:"trend_draw"`
	Neutral   int                   `json:"neutral"`
	Percent   map[Archetype]float64 `json:"percent"`
}

// Summarize counts archetypes across the classified slate.
func Summarize(classified []Classified) Stats {
	s := Stats{Total: len(classified), Percent: make(map[Archetype]float64)}
	for _, c := range classified {
		switch c.Archetype {
		case ArchetypeAnchor:
			s.Anchor++
		case ArchetypeDivisor:
			s.Divisor++
		case ArchetypeTrendDraw:
			s.TrendDraw++
		case ArchetypeNeutral:
			s.Neutral++
		}
	}
	if s.Total > 0 {
		s.Percent[ArchetypeAnchor] = float64(s.Anchor) / float64(s.Total)
		s.Percent[ArchetypeDivisor] = float64(s.Divisor) / float64(s.Total)
		s.Percent[ArchetypeTrendDraw] = float64(s.TrendDraw) / float64(s.Total)
		s.Percent[ArchetypeNeutral] = float64(s.Neutral) / float64(s.Total)
	}
	return s
}

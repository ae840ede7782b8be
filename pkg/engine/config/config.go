// Package config loads the engine configuration from YAML. Every key is
// optional: a File starts out populated with the methodology defaults and
// unmarshalling only overrides the keys present in the document.
package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/CMCFame/progol-engine/pkg/engine/classify"
	"github.com/CMCFame/progol-engine/pkg/engine/generator"
	"github.com/CMCFame/progol-engine/pkg/engine/pipeline"
	"github.com/CMCFame/progol-engine/pkg/engine/validate"
)

// File is the on-disk engine configuration.
type File struct {
	// Seed for the run's rand source. Zero seeds from the wall clock.
	Seed int64 `yaml:"seed"`
	// Satellites is the number of satellite candidates built before
	// optimization.
	Satellites int `yaml:"satellites"`

	Classify  ClassifySection  `yaml:"classify"`
	Generator GeneratorSection `yaml:"generator"`
	Validate  ValidateSection  `yaml:"validate"`
}

// ClassifySection mirrors classify.Config.
type ClassifySection struct {
	AnchorThreshold float64 `yaml:"anchor_threshold"`
	DivisorMin      float64 `yaml:"divisor_min"`
	DivisorMax      float64 `yaml:"divisor_max"`
	DrawThreshold   float64 `yaml:"draw_threshold"`

	CalibrationForm     float64 `yaml:"calibration_form"`
	CalibrationInjuries float64 `yaml:"calibration_injuries"`
	CalibrationContext  float64 `yaml:"calibration_context"`

	RegularizeConfidence float64 `yaml:"regularize_confidence"`
	RegularizeMinProb    float64 `yaml:"regularize_min_prob"`
}

// GeneratorSection mirrors generator.Config.
type GeneratorSection struct {
	DrawsMin        int     `yaml:"draws_min"`
	DrawsMax        int     `yaml:"draws_max"`
	DrawFlipMinProb float64 `yaml:"draw_flip_min_prob"`

	PairDivergeProb float64 `yaml:"pair_diverge_prob"`
	SingleFlipProb  float64 `yaml:"single_flip_prob"`

	HitThreshold int `yaml:"hit_threshold"`
	Trials       int `yaml:"trials"`

	MaxPortfolio  int     `yaml:"max_portfolio"`
	EliteFraction float64 `yaml:"elite_fraction"`

	InitialTemp  float64 `yaml:"initial_temp"`
	CoolFactor   float64 `yaml:"cool_factor"`
	CoolEvery    int     `yaml:"cool_every"`
	Iterations   int     `yaml:"iterations"`
	MaxNoImprove int     `yaml:"max_no_improve"`
}

// ValidateSection mirrors validate.Config. TicketPrice is expressed in MXN.
type ValidateSection struct {
	DrawsMin int `yaml:"draws_min"`
	DrawsMax int `yaml:"draws_max"`

	DistributionMargin float64 `yaml:"distribution_margin"`

	EarlyContests int     `yaml:"early_contests"`
	EarlyLimit    float64 `yaml:"early_limit"`
	GeneralLimit  float64 `yaml:"general_limit"`

	MaxSimilarity      float64 `yaml:"max_similarity"`
	PairCorrelationMax float64 `yaml:"pair_correlation_max"`
	MinEarlyEntropy    float64 `yaml:"min_early_entropy"`

	MaxWarnings int     `yaml:"max_warnings"`
	TicketPrice float64 `yaml:"ticket_price"`
}

// Default returns a File populated with the methodology defaults.
func Default() File {
	cc := classify.DefaultConfig()
	gc := generator.DefaultConfig()
	vc := validate.DefaultConfig()
	pc := pipeline.DefaultConfig()

	return File{
		Satellites: pc.SatelliteCount,
		Classify: ClassifySection{
			AnchorThreshold:      cc.AnchorThreshold,
			DivisorMin:           cc.DivisorMin,
			DivisorMax:           cc.DivisorMax,
			DrawThreshold:        cc.DrawThreshold,
			CalibrationForm:      cc.CalibrationForm,
			CalibrationInjuries:  cc.CalibrationInjuries,
			CalibrationContext:   cc.CalibrationContext,
			RegularizeConfidence: cc.RegularizeConfidence,
			RegularizeMinProb:    cc.RegularizeMinProb,
		},
		Generator: GeneratorSection{
			DrawsMin:        gc.DrawsMin,
			DrawsMax:        gc.DrawsMax,
			DrawFlipMinProb: gc.DrawFlipMinProb,
			PairDivergeProb: gc.PairDivergeProb,
			SingleFlipProb:  gc.SingleFlipProb,
			HitThreshold:    gc.HitThreshold,
			Trials:          gc.Trials,
			MaxPortfolio:    gc.MaxPortfolio,
			EliteFraction:   gc.EliteFraction,
			InitialTemp:     gc.InitialTemp,
			CoolFactor:      gc.CoolFactor,
			CoolEvery:       gc.CoolEvery,
			Iterations:      gc.Iterations,
			MaxNoImprove:    gc.MaxNoImprove,
		},
		Validate: ValidateSection{
			DrawsMin:           vc.DrawsMin,
			DrawsMax:           vc.DrawsMax,
			DistributionMargin: vc.DistributionMargin,
			EarlyContests:      vc.EarlyContests,
			EarlyLimit:         vc.EarlyLimit,
			GeneralLimit:       vc.GeneralLimit,
			MaxSimilarity:      vc.MaxSimilarity,
			PairCorrelationMax: vc.PairCorrelationMax,
			MinEarlyEntropy:    vc.MinEarlyEntropy,
			MaxWarnings:        vc.MaxWarnings,
			TicketPrice:        vc.TicketPrice.InexactFloat64(),
		},
	}
}

// Load reads a YAML config file. Keys absent from the document keep their
// defaults.
func Load(path string) (File, error) {
	f := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return f, nil
}

// Pipeline assembles a pipeline.Config from the file.
func (f File) Pipeline() *pipeline.Config {
	return &pipeline.Config{
		Seed:           f.Seed,
		SatelliteCount: f.Satellites,
		Classifier: &classify.Config{
			AnchorThreshold:      f.Classify.AnchorThreshold,
			DivisorMin:           f.Classify.DivisorMin,
			DivisorMax:           f.Classify.DivisorMax,
			DrawThreshold:        f.Classify.DrawThreshold,
			CalibrationForm:      f.Classify.CalibrationForm,
			CalibrationInjuries:  f.Classify.CalibrationInjuries,
			CalibrationContext:   f.Classify.CalibrationContext,
			RegularizeConfidence: f.Classify.RegularizeConfidence,
			RegularizeMinProb:    f.Classify.RegularizeMinProb,
		},
		Generator: &generator.Config{
			DrawsMin:        f.Generator.DrawsMin,
			DrawsMax:        f.Generator.DrawsMax,
			DrawFlipMinProb: f.Generator.DrawFlipMinProb,
			PairDivergeProb: f.Generator.PairDivergeProb,
			SingleFlipProb:  f.Generator.SingleFlipProb,
			HitThreshold:    f.Generator.HitThreshold,
			Trials:          f.Generator.Trials,
			MaxPortfolio:    f.Generator.MaxPortfolio,
			EliteFraction:   f.Generator.EliteFraction,
			InitialTemp:     f.Generator.InitialTemp,
			CoolFactor:      f.Generator.CoolFactor,
			CoolEvery:       f.Generator.CoolEvery,
			Iterations:      f.Generator.Iterations,
			MaxNoImprove:    f.Generator.MaxNoImprove,
		},
		Validator: &validate.Config{
			DrawsMin:           f.Validate.DrawsMin,
			DrawsMax:           f.Validate.DrawsMax,
			DistributionMargin: f.Validate.DistributionMargin,
			EarlyContests:      f.Validate.EarlyContests,
			EarlyLimit:         f.Validate.EarlyLimit,
			GeneralLimit:       f.Validate.GeneralLimit,
			MaxSimilarity:      f.Validate.MaxSimilarity,
			PairCorrelationMax: f.Validate.PairCorrelationMax,
			MinEarlyEntropy:    f.Validate.MinEarlyEntropy,
			MaxWarnings:        f.Validate.MaxWarnings,
			TicketPrice:        decimal.NewFromFloat(f.Validate.TicketPrice),
		},
	}
}

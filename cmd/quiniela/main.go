// quiniela builds a Progol ticket portfolio from a slate of match
// probabilities and prints the validation report.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/CMCFame/progol-engine/pkg/engine/config"
	"github.com/CMCFame/progol-engine/pkg/engine/metrics"
	"github.com/CMCFame/progol-engine/pkg/engine/pipeline"
	"github.com/CMCFame/progol-engine/pkg/engine/validate"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

var (
	// Input flags
	slateFile  = flag.String("slate", "", "Path to slate file (JSON or CSV)")
	configFile = flag.String("config", "", "Path to YAML engine config (defaults used when empty)")
	outputFile = flag.String("output", "", "Output file for the portfolio (JSON)")

	// Run flags
	seed       = flag.Int64("seed", 0, "Random seed (0 = wall clock)")
	noRevancha = flag.Bool("no-revancha", false, "Skip the revancha slate even when present")
	httpAddr   = flag.String("metrics", "", "Address to serve Prometheus metrics on (empty = disabled)")
	verbose    = flag.Bool("verbose", false, "Verbose logging")
)

// output is the JSON document written with -output.
type output struct {
	Main     *pipeline.Result `json:"main"`
	Revancha *pipeline.Result `json:"revancha,omitempty"`
}

func main() {
	flag.Parse()

	logger := newLogger(*verbose)

	if *slateFile == "" {
		fmt.Fprintln(os.Stderr, "usage: quiniela -slate <file.json|file.csv> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configFile).Msg("load config")
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	primary, revancha, err := loadSlate(*slateFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *slateFile).Msg("load slate")
	}

	em := metrics.New()
	if *httpAddr != "" {
		go serveMetrics(logger, em, *httpAddr)
	}

	pcfg := cfg.Pipeline()
	p := pipeline.New(pcfg, logger, em)

	out := output{}
	out.Main, err = p.Run(primary, "main")
	if err != nil {
		logger.Fatal().Err(err).Msg("primary run failed")
	}
	fmt.Println(validate.RenderText(out.Main.Report))

	if len(revancha) > 0 && !*noRevancha {
		rp := pipeline.New(pcfg.ForSlateSize(len(revancha)), logger, em)
		out.Revancha, err = rp.Run(revancha, "revancha")
		if err != nil {
			logger.Fatal().Err(err).Msg("revancha run failed")
		}
		fmt.Println(validate.RenderText(out.Revancha.Report))
	}

	if *outputFile != "" {
		if err := writeOutput(out, *outputFile); err != nil {
			logger.Fatal().Err(err).Str("path", *outputFile).Msg("write output")
		}
		logger.Info().Str("path", *outputFile).Msg("portfolio written")
	}

	if !out.Main.Report.Valid {
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func loadSlate(path string) (primary, revancha progol.Slate, err error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return progol.LoadSlateJSON(path)
	case strings.HasSuffix(path, ".csv"):
		return progol.LoadSlateCSV(path)
	default:
		return nil, nil, fmt.Errorf("unknown slate format %q (expected .json or .csv)", path)
	}
}

func serveMetrics(logger zerolog.Logger, em *metrics.EngineMetrics, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(em.Registry(), promhttp.HandlerOpts{}))
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}

func writeOutput(out output, path string) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

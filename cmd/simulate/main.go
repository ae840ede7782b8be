// simulate scores a saved quiniela portfolio against the actual contest
// results and reports hits, winners and cost.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/CMCFame/progol-engine/pkg/engine/generator"
	"github.com/CMCFame/progol-engine/pkg/progol"
)

var (
	portfolioFile = flag.String("portfolio", "", "Portfolio JSON written by quiniela -output")
	results       = flag.String("results", "", `Actual outcomes as a compact string, e.g. "LEVLLEVELEVLLE"`)
	threshold     = flag.Int("threshold", 11, "Correct outcomes needed to count a ticket as a winner")
	price         = flag.Float64("price", 15, "Ticket price in MXN")
	revancha      = flag.Bool("revancha", false, "Score the revancha portfolio instead of the primary one")
)

// savedOutput mirrors the quiniela -output document.
type savedOutput struct {
	Main     *savedRun `json:"main"`
	Revancha *savedRun `json:"revancha"`
}

type savedRun struct {
	RunID   string          `json:"run_id"`
	Tickets []progol.Record `json:"tickets"`
}

func main() {
	flag.Parse()

	if *portfolioFile == "" || *results == "" {
		fmt.Fprintln(os.Stderr, "usage: simulate -portfolio <out.json> -results <LEV...> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	actual, err := progol.ParseOutcomes(*results)
	if err != nil {
		log.Fatalf("parse results: %v", err)
	}

	run, err := loadRun(*portfolioFile, *revancha)
	if err != nil {
		log.Fatalf("load portfolio: %v", err)
	}
	if len(run.Tickets) == 0 {
		log.Fatal("portfolio holds no tickets")
	}
	if len(run.Tickets[0].Outcomes) != len(actual) {
		log.Fatalf("results cover %d contests, tickets cover %d", len(actual), len(run.Tickets[0].Outcomes))
	}

	type scored struct {
		id   string
		hits int
	}
	scores := make([]scored, 0, len(run.Tickets))
	winners := 0
	best := 0
	for _, rec := range run.Tickets {
		hits := generator.CountHits(rec.Outcomes, actual)
		scores = append(scores, scored{id: rec.ID, hits: hits})
		if hits >= *threshold {
			winners++
		}
		if hits > best {
			best = hits
		}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].hits > scores[j].hits })

	ticketPrice := decimal.NewFromFloat(*price)
	cost := ticketPrice.Mul(decimal.NewFromInt(int64(len(run.Tickets))))

	fmt.Printf("Run %s: %d tickets, %d contests\n", run.RunID, len(run.Tickets), len(actual))
	fmt.Printf("Results: %s\n\n", *results)
	for _, s := range scores {
		marker := " "
		if s.hits >= *threshold {
			marker = "*"
		}
		fmt.Printf("  %s %-8s %2d/%d\n", marker, s.id, s.hits, len(actual))
	}
	fmt.Printf("\nBest ticket: %d/%d correct\n", best, len(actual))
	fmt.Printf("Winners (>=%d): %d of %d\n", *threshold, winners, len(run.Tickets))
	fmt.Printf("Total cost: $%s MXN\n", cost.StringFixed(2))

	if winners == 0 {
		os.Exit(1)
	}
}

func loadRun(path string, revancha bool) (*savedRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out savedOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse portfolio JSON: %w", err)
	}
	run := out.Main
	if revancha {
		run = out.Revancha
	}
	if run == nil {
		return nil, fmt.Errorf("no %s run in %s", runLabel(revancha), path)
	}
	return run, nil
}

func runLabel(revancha bool) string {
	if revancha {
		return "revancha"
	}
	return "main"
}

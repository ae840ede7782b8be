package progol

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SlateFile is the JSON record shape exchanged with the data-acquisition
// side: exactly 14 primary contests plus up to 7 revancha contests.
type SlateFile struct {
	Main     Slate `json:"main"`
	Revancha Slate `json:"revancha,omitempty"`
}

// LoadSlateJSON reads a slate file in the JSON record shape.
func LoadSlateJSON(path string) (main, revancha Slate, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open slate: %w", err)
	}
	defer f.Close()

	var sf SlateFile
	if err := json.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, fmt.Errorf("failed to decode slate JSON: %w", err)
	}
	if err := checkSlateSizes(sf.Main, sf.Revancha); err != nil {
		return nil, nil, err
	}
	return sf.Main, sf.Revancha, nil
}

// ParseSlateCSV reads a slate from CSV.
// Expected columns: home, away, prob_home, prob_draw, prob_away, is_decisive,
// form_delta, injury_impact, revancha. Rows with revancha=1 form the
// secondary slate.
func ParseSlateCSV(r io.Reader) (main, revancha Slate, err error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, required := range []string{"home", "away", "prob_home", "prob_draw", "prob_away"} {
		if _, ok := colIndex[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}

	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read record: %w", err)
		}
		row++

		c := Contest{
			Home: strings.TrimSpace(record[colIndex["home"]]),
			Away: strings.TrimSpace(record[colIndex["away"]]),
		}

		c.Probs.Local, err = parseProb(record[colIndex["prob_home"]])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d prob_home: %w", row, err)
		}
		c.Probs.Draw, err = parseProb(record[colIndex["prob_draw"]])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d prob_draw: %w", row, err)
		}
		c.Probs.Away, err = parseProb(record[colIndex["prob_away"]])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d prob_away: %w", row, err)
		}

		if idx, ok := colIndex["is_decisive"]; ok {
			c.IsDecisive = record[idx] == "1" || strings.EqualFold(record[idx], "true")
		}
		if idx, ok := colIndex["form_delta"]; ok && record[idx] != "" {
			if c.FormDelta, err = strconv.ParseFloat(record[idx], 64); err != nil {
				return nil, nil, fmt.Errorf("row %d form_delta: %w", row, err)
			}
		}
		if idx, ok := colIndex["injury_impact"]; ok && record[idx] != "" {
			if c.InjuryImpact, err = strconv.ParseFloat(record[idx], 64); err != nil {
				return nil, nil, fmt.Errorf("row %d injury_impact: %w", row, err)
			}
		}

		if err := c.Validate(); err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", row, err)
		}

		isRevancha := false
		if idx, ok := colIndex["revancha"]; ok {
			isRevancha = record[idx] == "1"
		}
		if isRevancha {
			revancha = append(revancha, c)
		} else {
			main = append(main, c)
		}
	}

	if err := checkSlateSizes(main, revancha); err != nil {
		return nil, nil, err
	}
	return main, revancha, nil
}

// LoadSlateCSV reads a slate CSV from disk.
func LoadSlateCSV(path string) (main, revancha Slate, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open slate: %w", err)
	}
	defer f.Close()
	return ParseSlateCSV(f)
}

func checkSlateSizes(main, revancha Slate) error {
	if len(main) != SlateSize {
		return fmt.Errorf("expected exactly %d primary contests, got %d", SlateSize, len(main))
	}
	if len(revancha) > MaxRevanchaSize {
		return fmt.Errorf("at most %d revancha contests allowed, got %d", MaxRevanchaSize, len(revancha))
	}
	if err := main.Validate(); err != nil {
		return fmt.Errorf("primary slate: %w", err)
	}
	if err := checkDuplicateFixtures(main); err != nil {
		return fmt.Errorf("primary slate: %w", err)
	}
	if len(revancha) > 0 {
		if err := revancha.Validate(); err != nil {
			return fmt.Errorf("revancha slate: %w", err)
		}
		if err := checkDuplicateFixtures(revancha); err != nil {
			return fmt.Errorf("revancha slate: %w", err)
		}
	}
	return nil
}

// checkDuplicateFixtures rejects a slate listing the same fixture twice.
// Fixtures are compared by canonical contest key, so accent and prefix
// variants of a team name ("Club León" vs "leon") still collide.
func checkDuplicateFixtures(s Slate) error {
	seen := make(map[string]int, len(s))
	for i, c := range s {
		key := ContestKey(c)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("position %d: fixture %s vs %s duplicates position %d", i+1, c.Home, c.Away, prev)
		}
		seen[key] = i + 1
	}
	return nil
}

func parseProb(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("probability %v out of [0,1]", v)
	}
	return v, nil
}

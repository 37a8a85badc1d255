package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/averlon/folioperf/internal/common"
	"github.com/averlon/folioperf/internal/models"
	"github.com/averlon/folioperf/internal/services/twr"
)

// inputDocument is the JSON shape collaborators hand to the engine: one or
// more portfolios sharing a map of price histories.
type inputDocument struct {
	Portfolios []portfolioInput               `json:"portfolios"`
	Histories  map[string]models.PriceHistory `json:"histories"`
}

type portfolioInput struct {
	ID              string               `json:"id,omitempty"`
	Name            string               `json:"name"`
	Color           string               `json:"color,omitempty"`
	Transactions    []models.Transaction `json:"transactions"`
	AssetCurrencies map[string]string    `json:"asset_currencies,omitempty"`
}

func main() {
	configPath := flag.String("config", os.Getenv("FOLIOPERF_CONFIG"), "path to TOML config file")
	inputPath := flag.String("input", "-", "input JSON document ('-' for stdin)")
	rangeName := flag.String("range", "max", "chart window: ytd, 6m, 1y, 2y, 5y, max")
	rebase := flag.Bool("rebase", false, "re-zero the cumulative return at the window start")
	downsample := flag.String("downsample", "", "reduce output density: weekly or monthly")
	asOf := flag.String("as-of", "", "compute as of this date (YYYY-MM-DD) instead of today")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := common.NewLogger(cfg.Logging.Level)

	doc, err := readInput(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	if *asOf != "" {
		now, err = time.Parse("2006-01-02", *asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -as-of date %q: %v\n", *asOf, err)
			os.Exit(1)
		}
	}

	service := twr.NewService(cfg.Engine, logger)

	inputs := make([]twr.Input, len(doc.Portfolios))
	for i, p := range doc.Portfolios {
		inputs[i] = twr.Input{
			PortfolioID:     p.ID,
			PortfolioName:   p.Name,
			Color:           p.Color,
			Transactions:    p.Transactions,
			Histories:       doc.Histories,
			AssetCurrencies: p.AssetCurrencies,
			AsOf:            now,
		}
	}

	logger.Info().Int("portfolios", len(inputs)).Str("range", *rangeName).Msg("Computing TWR")
	results := service.ComputeAll(inputs)

	for i := range results {
		results[i].DataPoints = twr.FilterByRange(results[i].DataPoints, twr.Range(*rangeName), now)
		if *rebase {
			results[i].DataPoints = twr.RebaseTWR(results[i].DataPoints)
		}
		switch *downsample {
		case "weekly":
			results[i].DataPoints = twr.DownsampleToWeekly(results[i].DataPoints)
		case "monthly":
			results[i].DataPoints = twr.DownsampleToMonthly(results[i].DataPoints)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode results: %v\n", err)
		os.Exit(1)
	}
}

// readInput loads and decodes the input document from a file or stdin.
func readInput(path string) (*inputDocument, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var doc inputDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid input document: %w", err)
	}
	return &doc, nil
}

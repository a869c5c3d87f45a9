// Command simulate builds one deficit forecast outside the service. Weather
// inputs come from a JSON fixture, or from the live upstreams with -fetch,
// and the forecast is written as indented JSON.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -request request.json \
//	  -inputs cmd/simulate/testdata/inputs.json \
//	  -as-of 2024-03-10
//
//	go run ./cmd/simulate -request request.json -fetch -save-inputs inputs.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/adapter/weather"
	"github.com/couchcryptid/water-deficit-service/internal/config"
	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	requestPath := fs.String("request", "", "path to a JSON deficit request")
	inputsPath := fs.String("inputs", "", "path to JSON weather inputs")
	fetch := fs.Bool("fetch", false, "fetch weather inputs from the configured upstreams")
	saveInputs := fs.String("save-inputs", "", "write the weather inputs used to this path")
	asOf := fs.String("as-of", "", "simulation date YYYY-MM-DD (default: last observed day, or today with -fetch)")
	horizon := fs.Int("horizon", domain.DefaultOutlookHorizonDays, "days PET is extended past the observed record")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *requestPath == "" || (*inputsPath != "") == *fetch {
		fs.Usage()
		return errors.New("need -request and exactly one of -inputs or -fetch")
	}
	if *horizon < 1 {
		return errors.New("-horizon must be at least 1")
	}

	reqData, err := os.ReadFile(*requestPath)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	req, err := domain.DecodeDeficitRequest(reqData)
	if err != nil {
		return err
	}

	var in domain.WeatherInputs
	if *inputsPath != "" {
		if in, err = loadInputs(*inputsPath); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	switch {
	case *asOf != "":
		d, err := domain.ParseDate(*asOf)
		if err != nil {
			return fmt.Errorf("parse -as-of: %w", err)
		}
		now = d.Add(12 * time.Hour)
	case !*fetch && len(in.ObservedPrecip.Dates) > 0:
		now = in.ObservedPrecip.Dates[len(in.ObservedPrecip.Dates)-1].Add(12 * time.Hour)
	}
	domain.SetClock(clockwork.NewFakeClockAt(now))
	defer domain.SetClock(nil)
	season := domain.CurrentSeason()

	if *fetch {
		if in, err = fetchInputs(ctx, req.Location(), season); err != nil {
			return err
		}
	}
	if *saveInputs != "" {
		if err := writeJSON(*saveInputs, in); err != nil {
			return err
		}
	}

	fc, err := domain.BuildForecast(domain.NewEngine(domain.NewModelData()), req, in, season, *horizon)
	if err != nil {
		return fmt.Errorf("build forecast: %w", err)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(fc)
}

func loadInputs(path string) (domain.WeatherInputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.WeatherInputs{}, fmt.Errorf("read inputs: %w", err)
	}
	var in domain.WeatherInputs
	if err := json.Unmarshal(data, &in); err != nil {
		return domain.WeatherInputs{}, fmt.Errorf("decode inputs: %w", err)
	}
	return in, nil
}

func fetchInputs(ctx context.Context, loc domain.Location, season domain.Season) (domain.WeatherInputs, error) {
	cfg, err := config.Load()
	if err != nil {
		return domain.WeatherInputs{}, fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	source := weather.NewSource(
		weather.NewACISClient(cfg.ACISURL, cfg.UpstreamTimeout, metrics, logger),
		weather.NewOutlookClient(cfg.OutlookURL, cfg.OutlookToken, domain.DefaultPercentiles, cfg.UpstreamTimeout, metrics, logger),
		weather.NewPETClient(cfg.PETURL, cfg.PETToken, cfg.UpstreamTimeout, metrics, logger),
	)
	return source.FetchWeather(ctx, loc, season)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

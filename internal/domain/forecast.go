package domain

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultOutlookHorizonDays is how far past the last observed day the PET
// axis is extended to cover the outlook ensemble.
const DefaultOutlookHorizonDays = 28

// SpreadPoint summarizes the outlook ensemble on one date.
type SpreadPoint struct {
	Date   time.Time `json:"date"`
	Mean   float64   `json:"mean"`
	StdDev float64   `json:"std_dev"`
}

// BuildForecast turns acquired weather into a deficit forecast: it trims the
// observed precipitation, extends PET over the outlook horizon, runs the
// scenario chain, and classifies the latest observed deficit.
func BuildForecast(engine *Engine, req DeficitRequest, in WeatherInputs, season Season, horizonDays int) (DeficitForecast, error) {
	planting, irrigation, err := req.Dates(season)
	if err != nil {
		return DeficitForecast{}, err
	}

	observed, err := in.ObservedPrecip.TrimTrailingMissing()
	if err != nil {
		return DeficitForecast{}, fmt.Errorf("observed precipitation: %w", err)
	}

	pet, err := ExtendPET(in.PETObserved, in.PETForecast, in.ObservedPrecip.Len()+horizonDays)
	if err != nil {
		return DeficitForecast{}, err
	}

	chain, err := engine.RunScenarioChain(ScenarioInputs{
		PET:            pet,
		Observed:       observed,
		QPF:            in.QPF,
		Outlook:        in.Outlook,
		Soil:           req.Soil,
		Crop:           req.Crop,
		PlantingDate:   planting,
		IrrigationDate: irrigation,
	})
	if err != nil {
		return DeficitForecast{}, err
	}

	bands, err := engine.Data().ReferenceBands(req.Soil)
	if err != nil {
		return DeficitForecast{}, err
	}

	forecast := DeficitForecast{
		ID:           req.ID,
		Request:      req,
		Season:       season,
		PlantingDate: planting,
		Chain:        chain,
		Bands:        bands,
		Spread:       outlookSpread(chain),
		ProcessedAt:  clock.Now().UTC(),
	}
	if current := lastPresent(chain.Observed); current != nil {
		forecast.CurrentDeficit = current
		forecast.CurrentStatus = bands.Classify(*current)
	}
	return forecast, nil
}

// outlookSpread computes the ensemble mean and standard deviation on every
// date where all percentile members have a value.
func outlookSpread(chain ScenarioChainResult) []SpreadPoint {
	if len(chain.Percentiles) == 0 {
		return nil
	}

	var points []SpreadPoint
	members := make([]float64, 0, len(chain.Percentiles))
	for i, d := range chain.Dates {
		members = members[:0]
		for _, series := range chain.Percentiles {
			if i < len(series) && series[i] != nil {
				members = append(members, *series[i])
			}
		}
		if len(members) != len(chain.Percentiles) {
			continue
		}
		mean, std := stat.MeanStdDev(members, nil)
		if len(members) < 2 {
			std = 0
		}
		points = append(points, SpreadPoint{Date: d, Mean: mean, StdDev: std})
	}
	return points
}

func lastPresent(values []*float64) *float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			return values[i]
		}
	}
	return nil
}

package domain

import (
	"fmt"
	"time"
)

const hoursPerDay = 24

// NoIrrigation is the IrrigationIndex value for a run without an irrigation date.
const NoIrrigation = -1

// SimulationInput describes one water balance run. Precip and PET are daily
// totals in inches, index-aligned, with StartDate the date of index 0.
type SimulationInput struct {
	Precip       []float64
	PET          []float64
	InitDeficit  float64
	StartDate    time.Time
	PlantingDate time.Time
	Soil         SoilCapacity
	Crop         CropType

	// IsContinuation marks a run that picks up where a previous run ended.
	// InitDeficit is then the state before index 0 and index 0 is simulated.
	// Otherwise index 0 is the initialization day and reports InitDeficit.
	IsContinuation bool

	// IrrigationIndex is the index of the irrigation date inside this run, or
	// NoIrrigation. It is carried through unchanged.
	IrrigationIndex int
}

// SimulationResult holds one entry per input day. Auxiliary entries are nil
// for the initialization day of a non-continuation run. Drainage, runoff, and
// PET are reported as non-positive amounts of water removed.
type SimulationResult struct {
	DeficitDaily       []float64  `json:"deficit_daily"`
	DeficitDailyChange []*float64 `json:"deficit_daily_change"`
	DrainageDaily      []*float64 `json:"drainage_daily"`
	RunoffDaily        []*float64 `json:"runoff_daily"`
	PETDaily           []*float64 `json:"pet_daily"`
	PrecipDaily        []*float64 `json:"precip_daily"`
	IrrigationIndex    int        `json:"irrigation_index"`
}

// Len returns the number of simulated days.
func (r SimulationResult) Len() int {
	return len(r.DeficitDaily)
}

// FinalDeficit returns the last daily deficit. ok is false for an empty result.
func (r SimulationResult) FinalDeficit() (deficit float64, ok bool) {
	if len(r.DeficitDaily) == 0 {
		return 0, false
	}
	return r.DeficitDaily[len(r.DeficitDaily)-1], true
}

func (r *SimulationResult) appendDay(deficit float64, change, drainage, runoff, pet, precip *float64) {
	r.DeficitDaily = append(r.DeficitDaily, deficit)
	r.DeficitDailyChange = append(r.DeficitDailyChange, change)
	r.DrainageDaily = append(r.DrainageDaily, drainage)
	r.RunoffDaily = append(r.RunoffDaily, runoff)
	r.PETDaily = append(r.PETDaily, pet)
	r.PrecipDaily = append(r.PrecipDaily, precip)
}

func (r SimulationResult) dropFirst() SimulationResult {
	return SimulationResult{
		DeficitDaily:       r.DeficitDaily[1:],
		DeficitDailyChange: r.DeficitDailyChange[1:],
		DrainageDaily:      r.DrainageDaily[1:],
		RunoffDaily:        r.RunoffDaily[1:],
		PETDaily:           r.PETDaily[1:],
		PrecipDaily:        r.PrecipDaily[1:],
		IrrigationIndex:    r.IrrigationIndex,
	}
}

// Engine runs the water balance model against a fixed set of reference tables.
// It holds no per-run state and is safe for concurrent use.
type Engine struct {
	data *ModelData
}

// NewEngine creates an Engine over the given tables.
func NewEngine(data *ModelData) *Engine {
	return &Engine{data: data}
}

// Data returns the reference tables the engine simulates against.
func (e *Engine) Data() *ModelData {
	return e.data
}

// Run integrates the daily water balance with 24 hourly sub-steps per day and
// returns the daily deficit together with its components.
func (e *Engine) Run(in SimulationInput) (SimulationResult, error) {
	if len(in.Precip) != len(in.PET) {
		return SimulationResult{}, fmt.Errorf("%w: %d precip days for %d PET days", ErrInvalidParameter, len(in.Precip), len(in.PET))
	}
	if !in.IsContinuation && len(in.PET) == 0 {
		return SimulationResult{}, fmt.Errorf("%w: a non-continuation run needs an initialization day", ErrInvalidParameter)
	}

	soil, err := e.data.Soil(in.Soil)
	if err != nil {
		return SimulationResult{}, err
	}
	crop, err := e.data.Crop(in.Crop)
	if err != nil {
		return SimulationResult{}, err
	}

	taw := soil.TotalAvailableWater()
	maxSurplus := soil.MaxSurplus()
	hourlyPotentialDrainage := soil.PotentialDailyDrainage() / hoursPerDay

	if in.InitDeficit < -taw || in.InitDeficit > maxSurplus {
		return SimulationResult{}, fmt.Errorf("%w: initial deficit %g outside [%g, %g]", ErrInvalidParameter, in.InitDeficit, -taw, maxSurplus)
	}

	deficit := in.InitDeficit
	result := SimulationResult{IrrigationIndex: in.IrrigationIndex}
	result.appendDay(deficit, nil, nil, nil, nil, nil)

	startIdx := 1
	// Days since planting is tied to the date of each index so that a run
	// split into a base run and a continuation matches the unsplit run.
	daysSincePlanting := DaysBetween(in.PlantingDate, in.StartDate)
	if in.IsContinuation {
		startIdx = 0
		daysSincePlanting--
	}

	for idx := startIdx; idx < len(in.PET); idx++ {
		daysSincePlanting++

		ks, err := WaterStressCoefficient(deficit, taw)
		if err != nil {
			return SimulationResult{}, err
		}
		kc := crop.Coefficient(daysSincePlanting)

		dailyPET := -in.PET[idx] * kc * ks
		dailyPrecip := in.Precip[idx]
		hourlyPrecip := dailyPrecip / hoursPerDay
		hourlyPET := -dailyPET / hoursPerDay

		var dailyDrainage, dailyRunoff float64
		previous := deficit
		for hr := 0; hr < hoursPerDay; hr++ {
			hourlyDrainage := 0.0
			if deficit > 0 {
				hourlyDrainage = min(deficit, hourlyPotentialDrainage)
			}
			dailyDrainage -= hourlyDrainage

			next := deficit + hourlyPrecip - hourlyPET - hourlyDrainage
			dailyRunoff -= max(next-maxSurplus, 0)

			deficit = max(min(next, maxSurplus), -taw)
		}

		change := deficit - previous
		result.appendDay(deficit, &change, &dailyDrainage, &dailyRunoff, &dailyPET, &dailyPrecip)
	}

	if in.IsContinuation {
		return result.dropFirst(), nil
	}
	return result, nil
}

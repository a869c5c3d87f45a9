package domain

import (
	"fmt"
	"slices"
	"time"
)

// DefaultPercentiles are the outlook ensemble members requested upstream.
var DefaultPercentiles = []int{0, 10, 25, 50, 75, 90, 100}

// Outlook is a percentile-keyed precipitation ensemble sharing one date axis.
type Outlook struct {
	Dates       []time.Time       `json:"dates"`
	Percentiles map[int][]float64 `json:"percentiles"`
}

// SortedPercentiles returns the ensemble keys in ascending order.
func (o Outlook) SortedPercentiles() []int {
	keys := make([]int, 0, len(o.Percentiles))
	for p := range o.Percentiles {
		keys = append(keys, p)
	}
	slices.Sort(keys)
	return keys
}

// ScenarioInputs are the aligned inputs for one scenario chain. Observed must
// already be trimmed of trailing missing days.
type ScenarioInputs struct {
	PET            DailySeries
	Observed       DailySeries
	QPF            DailySeries
	Outlook        Outlook
	Soil           SoilCapacity
	Crop           CropType
	PlantingDate   time.Time
	IrrigationDate *time.Time
}

// ScenarioChainResult is the deficit of every scenario on the PET date axis.
// Each series has one entry per date and is nil outside its coverage.
type ScenarioChainResult struct {
	Dates       []time.Time        `json:"dates"`
	Observed    []*float64         `json:"observed"`
	QPF         []*float64         `json:"qpf"`
	Percentiles map[int][]*float64 `json:"percentiles"`
}

// window is a half-open index range [start, end) on the PET axis.
type window struct {
	start, end int
}

func (w window) len() int {
	return max(w.end-w.start, 0)
}

// irrigationIndex returns the position of the irrigation date inside w, or
// NoIrrigation when there is no date or it falls outside.
func (w window) irrigationIndex(pet DailySeries, date *time.Time) int {
	if date == nil {
		return NoIrrigation
	}
	for i := w.start; i < w.end; i++ {
		if pet.Dates[i].Equal(Day(*date)) {
			return i - w.start
		}
	}
	return NoIrrigation
}

// RunScenarioChain simulates the observed, QPF, and outlook scenarios in turn,
// carrying each run's final deficit into the next, and lays the results out on
// the PET date axis. Runs are strictly sequential.
func (e *Engine) RunScenarioChain(in ScenarioInputs) (ScenarioChainResult, error) {
	axis := in.PET.Len()
	if len(in.PET.Dates) != axis {
		return ScenarioChainResult{}, fmt.Errorf("%w: PET has %d dates for %d values", ErrInvalidParameter, len(in.PET.Dates), axis)
	}
	if in.Observed.Len() == 0 {
		return ScenarioChainResult{}, fmt.Errorf("%w: no observed precipitation", ErrInvalidParameter)
	}

	result := ScenarioChainResult{
		Dates:       in.PET.Dates,
		Percentiles: make(map[int][]*float64, len(in.Outlook.Percentiles)),
	}

	// Observed: anchored at the first observed date, non-continuation.
	obsWin, err := observedWindow(in.PET, in.Observed)
	if err != nil {
		return ScenarioChainResult{}, err
	}
	observed, err := e.Run(SimulationInput{
		Precip:          in.Observed.Values,
		PET:             in.PET.Values[obsWin.start:obsWin.end],
		InitDeficit:     0,
		StartDate:       in.PET.Dates[obsWin.start],
		PlantingDate:    in.PlantingDate,
		Soil:            in.Soil,
		Crop:            in.Crop,
		IrrigationIndex: obsWin.irrigationIndex(in.PET, in.IrrigationDate),
	})
	if err != nil {
		return ScenarioChainResult{}, fmt.Errorf("observed run: %w", err)
	}
	result.Observed = padToAxis(observed.DeficitDaily, obsWin.start, axis)
	carried, _ := observed.FinalDeficit()

	// QPF: trimmed against the observed window, continuation.
	qpfWin, qpfTrim, err := continuationWindow("qpf", in.PET, in.QPF.First(), in.QPF.Len(), obsWin.end)
	if err != nil {
		return ScenarioChainResult{}, err
	}
	qpf, err := e.runContinuation(in, in.QPF.Values[qpfTrim:qpfTrim+qpfWin.len()], qpfWin, carried)
	if err != nil {
		return ScenarioChainResult{}, fmt.Errorf("qpf run: %w", err)
	}
	result.QPF = padToAxis(qpf.DeficitDaily, qpfWin.start, axis)
	if final, ok := qpf.FinalDeficit(); ok {
		carried = final
	}
	prevEnd := max(obsWin.end, qpfWin.end)

	// Outlook: every percentile starts from the QPF final deficit.
	if len(in.Outlook.Percentiles) == 0 {
		return result, nil
	}
	outWin, outTrim, err := continuationWindow("outlook", in.PET, firstDate(in.Outlook.Dates), len(in.Outlook.Dates), prevEnd)
	if err != nil {
		return ScenarioChainResult{}, err
	}
	for _, p := range in.Outlook.SortedPercentiles() {
		precip := in.Outlook.Percentiles[p]
		if len(precip) < outTrim+outWin.len() {
			return ScenarioChainResult{}, fmt.Errorf("%w: outlook percentile %d has %d days, need %d", ErrInvalidParameter, p, len(precip), outTrim+outWin.len())
		}
		run, err := e.runContinuation(in, precip[outTrim:outTrim+outWin.len()], outWin, carried)
		if err != nil {
			return ScenarioChainResult{}, fmt.Errorf("outlook run p%d: %w", p, err)
		}
		result.Percentiles[p] = padToAxis(run.DeficitDaily, outWin.start, axis)
	}
	return result, nil
}

func (e *Engine) runContinuation(in ScenarioInputs, precip []float64, w window, initDeficit float64) (SimulationResult, error) {
	if w.len() == 0 {
		return SimulationResult{}, nil
	}
	return e.Run(SimulationInput{
		Precip:          precip,
		PET:             in.PET.Values[w.start:w.end],
		InitDeficit:     initDeficit,
		StartDate:       in.PET.Dates[w.start],
		PlantingDate:    in.PlantingDate,
		Soil:            in.Soil,
		Crop:            in.Crop,
		IsContinuation:  true,
		IrrigationIndex: w.irrigationIndex(in.PET, in.IrrigationDate),
	})
}

// observedWindow locates the observed dates on the PET axis and checks that
// the window covers exactly the observed days.
func observedWindow(pet DailySeries, obs DailySeries) (window, error) {
	start, err := pet.IndexOf("observed", obs.First())
	if err != nil {
		return window{}, err
	}
	last, err := pet.IndexOf("observed", obs.Last())
	if err != nil {
		return window{}, err
	}
	w := window{start: start, end: last + 1}
	if w.len() != obs.Len() {
		return window{}, &AlignmentError{
			Series: "observed",
			Date:   obs.Last(),
			Reason: fmt.Sprintf("%d observed days span %d PET days", obs.Len(), w.len()),
		}
	}
	return w, nil
}

// continuationWindow places a scenario of n days starting at first on the PET
// axis, drops the leading days that overlap the previous run ending at
// prevEnd, and bounds the window by the PET length. trim is the number of
// scenario days dropped from the front.
func continuationWindow(series string, pet DailySeries, first time.Time, n, prevEnd int) (w window, trim int, err error) {
	if n == 0 {
		return window{start: prevEnd, end: prevEnd}, 0, nil
	}
	start, err := pet.IndexOf(series, first)
	if err != nil {
		return window{}, 0, err
	}
	trim = min(max(prevEnd-start, 0), n)
	w = window{start: start + trim, end: min(start+n, pet.Len())}
	if w.end < w.start {
		w.end = w.start
	}
	return w, trim, nil
}

// padToAxis places values at offset on an axis of the given length, leaving
// every other slot nil.
func padToAxis(values []float64, offset, length int) []*float64 {
	out := make([]*float64, length)
	for i, v := range values {
		if offset+i >= length {
			break
		}
		out[offset+i] = &v
	}
	return out
}

func firstDate(dates []time.Time) time.Time {
	if len(dates) == 0 {
		return time.Time{}
	}
	return dates[0]
}

package domain

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ExtendPET joins the observed and forecast PET blocks into one consecutive
// daily series and pads it with the mean of the retained values until it
// holds targetLength days. The padding supplies PET for outlook days that lie
// beyond the PET forecast.
//
// Trailing missing days are trimmed from both blocks and forecast days already
// covered by the observed block are dropped. The joined dates must be
// consecutive; a gap is reported as an *AlignmentError.
func ExtendPET(observed, forecast OptionalSeries, targetLength int) (DailySeries, error) {
	obs, err := observed.TrimTrailingMissing()
	if err != nil {
		return DailySeries{}, err
	}
	fcst, err := forecast.TrimTrailingMissing()
	if err != nil {
		return DailySeries{}, err
	}

	covered := make(map[time.Time]struct{}, obs.Len())
	for _, d := range obs.Dates {
		covered[d] = struct{}{}
	}

	out := DailySeries{
		Dates:  append(make([]time.Time, 0, max(targetLength, obs.Len()+fcst.Len())), obs.Dates...),
		Values: append(make([]float64, 0, max(targetLength, obs.Len()+fcst.Len())), obs.Values...),
	}
	for i, d := range fcst.Dates {
		if _, dup := covered[d]; dup {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, fcst.Values[i])
	}

	if out.Len() == 0 {
		return DailySeries{}, fmt.Errorf("%w: extend pet: no PET values available", ErrMissingValue)
	}
	for i := 1; i < len(out.Dates); i++ {
		if DaysBetween(out.Dates[i-1], out.Dates[i]) != 1 {
			return DailySeries{}, &AlignmentError{Series: "pet", Date: out.Dates[i], Reason: "dates are not consecutive"}
		}
	}

	mean := stat.Mean(out.Values, nil)
	last := out.Last()
	for i := 1; out.Len() < targetLength; i++ {
		out.Dates = append(out.Dates, last.AddDate(0, 0, i))
		out.Values = append(out.Values, mean)
	}
	return out, nil
}

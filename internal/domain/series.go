package domain

import (
	"fmt"
	"time"
)

const (
	// MissingValue is the upstream sentinel for a day without data.
	MissingValue = -999.0

	// DateLayout is the calendar date format used on the wire.
	DateLayout = "2006-01-02"

	day = 24 * time.Hour
)

// Day normalizes t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DaysBetween returns the whole number of days from a to b (negative when b is
// before a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / day)
}

// DailySeries is a run of consecutive daily values with their dates.
type DailySeries struct {
	Dates  []time.Time `json:"dates"`
	Values []float64   `json:"values"`
}

// Len returns the number of days in the series.
func (s DailySeries) Len() int {
	return len(s.Values)
}

// First returns the first date, or the zero time for an empty series.
func (s DailySeries) First() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[0]
}

// Last returns the last date, or the zero time for an empty series.
func (s DailySeries) Last() time.Time {
	if len(s.Dates) == 0 {
		return time.Time{}
	}
	return s.Dates[len(s.Dates)-1]
}

// IndexOf locates date in the series. A miss is an *AlignmentError naming the
// series being aligned.
func (s DailySeries) IndexOf(series string, date time.Time) (int, error) {
	date = Day(date)
	for i, d := range s.Dates {
		if d.Equal(date) {
			return i, nil
		}
	}
	return -1, &AlignmentError{Series: series, Date: date}
}

// OptionalSeries is the ingestion form of a daily series, where nil marks a
// missing day.
type OptionalSeries struct {
	Dates  []time.Time `json:"dates"`
	Values []*float64  `json:"values"`
}

// OptionalFromRaw converts sentinel-encoded values into an OptionalSeries.
func OptionalFromRaw(dates []time.Time, raw []float64) OptionalSeries {
	values := make([]*float64, len(raw))
	for i, v := range raw {
		if v == MissingValue {
			continue
		}
		values[i] = &v
	}
	return OptionalSeries{Dates: dates, Values: values}
}

// Len returns the number of days, present or missing.
func (s OptionalSeries) Len() int {
	return len(s.Values)
}

// TrimTrailingMissing drops the trailing run of missing days and returns the
// remaining values. A missing day before the last present value is rejected
// with ErrMissingValue rather than silently shifting the series.
func (s OptionalSeries) TrimTrailingMissing() (DailySeries, error) {
	if len(s.Dates) != len(s.Values) {
		return DailySeries{}, fmt.Errorf("%w: %d dates for %d values", ErrInvalidParameter, len(s.Dates), len(s.Values))
	}

	end := len(s.Values)
	for end > 0 && s.Values[end-1] == nil {
		end--
	}

	out := DailySeries{
		Dates:  make([]time.Time, end),
		Values: make([]float64, end),
	}
	for i := 0; i < end; i++ {
		if s.Values[i] == nil {
			return DailySeries{}, fmt.Errorf("%w: %s", ErrMissingValue, s.Dates[i].Format(DateLayout))
		}
		out.Dates[i] = Day(s.Dates[i])
		out.Values[i] = *s.Values[i]
	}
	return out, nil
}

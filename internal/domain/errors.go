package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidParameter marks inputs the engine cannot simulate, such as
	// mismatched series lengths or a soil with zero available water.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnknownSoil is returned for a soil capacity key outside the tables.
	ErrUnknownSoil = fmt.Errorf("%w: unknown soil capacity", ErrInvalidParameter)

	// ErrUnknownCrop is returned for a crop type key outside the tables.
	ErrUnknownCrop = fmt.Errorf("%w: unknown crop type", ErrInvalidParameter)

	// ErrMissingValue is returned when a missing value appears before the
	// trailing run of missing days.
	ErrMissingValue = errors.New("missing value inside series")

	// ErrInvalidRequest wraps deficit request decoding and validation failures.
	ErrInvalidRequest = errors.New("invalid deficit request")

	// ErrUpstream marks a weather service that failed, returned a non-2xx
	// status, or is behind an open circuit breaker.
	ErrUpstream = errors.New("upstream unavailable")
)

// AlignmentError reports a date that could not be located on the PET axis,
// or a series whose dates do not line up with it.
type AlignmentError struct {
	Series string
	Date   time.Time
	Reason string
}

func (e *AlignmentError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "date not on PET axis"
	}
	return fmt.Sprintf("align %s series at %s: %s", e.Series, e.Date.Format(DateLayout), reason)
}

// Package domain models crop-available soil water deficit and projects it
// forward through observed, forecast, and outlook precipitation scenarios.
//
// # Deficit Convention
//
// Deficit is soil water content relative to field capacity, in inches:
//
//	 0            soil is at field capacity
//	<0            drier than field capacity, bounded below by -(FC - WP)
//	>0            wetter than field capacity, bounded above by SAT - FC
//
// The lower bound is the wilting point. Values near it should be read as
// "danger of wilting exists" rather than as literal wilting.
//
// # Water Balance
//
// Each simulated day converts precipitation, crop-adjusted PET, and potential
// drainage to uniform hourly rates and integrates 24 hourly steps:
//
//	drainage = min(deficit, SAT-FC / daysToDrain / 24)   only when deficit > 0
//	deficit  = clamp(deficit + precip - pet*Kc*Ks - drainage, -(FC-WP), SAT-FC)
//
// Runoff is the amount clipped at saturation. It is reported for bookkeeping
// and never fed back into the balance.
//
// Coefficients follow FAO-56:
//
//	Kc: single crop coefficient, piecewise linear over four growth stages
//	    (initial, development, mid-season, late). Pre-planting days use Kcini.
//	Ks: water stress coefficient (FAO-56 eq. 84) with depletion fraction p = 0.5.
//
// # Scenario Chaining
//
// A season forecast is three sequential engine runs over one PET axis:
//
//	observed  ->  QPF  ->  outlook percentiles (0, 10, 25, 50, 75, 90, 100)
//
// Each run starts from the previous run's final deficit. Overlapping leading
// days are trimmed against the previous run's window so the chained series
// never repeats a date. Every series is padded with nulls to the full PET axis.
//
// # Upstream Conventions
//
// Missing days arrive as the sentinel -999 ([MissingValue]) and are converted
// to nil at the ingestion boundary ([OptionalFromRaw]). Only trailing missing
// days are tolerated; a gap in the middle of a series is rejected with
// [ErrMissingValue].
//
// PET API dates are "MM/DD" strings and are anchored to the season year by the
// weather adapter before they reach this package. All dates here are UTC
// midnights.
package domain

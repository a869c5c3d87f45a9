package domain

import "context"

// WeatherInputs are the raw upstream series a forecast is computed from.
type WeatherInputs struct {
	ObservedPrecip OptionalSeries `json:"observed_precip"`
	QPF            DailySeries    `json:"qpf"`
	Outlook        Outlook        `json:"outlook"`
	PETObserved    OptionalSeries `json:"pet_observed"`
	PETForecast    OptionalSeries `json:"pet_forecast"`
}

// WeatherSource acquires the inputs of a season forecast for one location.
type WeatherSource interface {
	FetchWeather(ctx context.Context, loc Location, season Season) (WeatherInputs, error)
}

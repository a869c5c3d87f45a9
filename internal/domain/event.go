package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the request topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Location is a WGS-84 point a deficit forecast is computed for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DeficitForecast is the published result of one deficit request.
type DeficitForecast struct {
	ID             string              `json:"id"`
	Request        DeficitRequest      `json:"request"`
	Season         Season              `json:"season"`
	PlantingDate   time.Time           `json:"planting_date"`
	Chain          ScenarioChainResult `json:"chain"`
	Bands          ReferenceBands      `json:"bands"`
	Spread         []SpreadPoint       `json:"outlook_spread,omitempty"`
	CurrentDeficit *float64            `json:"current_deficit,omitempty"`
	CurrentStatus  string              `json:"current_status,omitempty"`
	ProcessedAt    time.Time           `json:"processed_at"`
}

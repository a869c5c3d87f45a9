package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
)

// OutlookClient fetches the short-range QPF and the percentile precipitation
// outlook for a point.
type OutlookClient struct {
	up          *upstream
	baseURL     string
	percentiles []int
}

// NewOutlookClient creates an outlook client requesting the given percentiles.
func NewOutlookClient(baseURL, token string, percentiles []int, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *OutlookClient {
	return &OutlookClient{
		up:          newUpstream("outlook", token, timeout, metrics, logger),
		baseURL:     baseURL,
		percentiles: percentiles,
	}
}

// FetchOutlook returns the QPF series and the outlook ensemble. Every
// requested percentile must be present with one value per outlook date.
func (c *OutlookClient) FetchOutlook(ctx context.Context, loc domain.Location) (domain.DailySeries, domain.Outlook, error) {
	body, err := c.up.post(ctx, c.baseURL, outlookRequest{
		LngLat:      [2]float64{loc.Lon, loc.Lat},
		Percentiles: c.percentiles,
	})
	if err != nil {
		return domain.DailySeries{}, domain.Outlook{}, err
	}

	var resp outlookResponse
	if err := c.up.decode(body, &resp); err != nil {
		return domain.DailySeries{}, domain.Outlook{}, err
	}

	qpfDates, err := parseDates(resp.QPF.Dates)
	if err != nil {
		return domain.DailySeries{}, domain.Outlook{}, err
	}
	if len(qpfDates) != len(resp.QPF.Values) {
		return domain.DailySeries{}, domain.Outlook{}, fmt.Errorf("%w: qpf has %d dates for %d values", domain.ErrUpstream, len(qpfDates), len(resp.QPF.Values))
	}
	qpf := domain.DailySeries{Dates: qpfDates, Values: resp.QPF.Values}

	outlook, err := c.parseOutlook(resp.Outlook)
	if err != nil {
		return domain.DailySeries{}, domain.Outlook{}, err
	}
	return qpf, outlook, nil
}

func (c *OutlookClient) parseOutlook(raw map[string]json.RawMessage) (domain.Outlook, error) {
	var rawDates []string
	if err := json.Unmarshal(raw["dates"], &rawDates); err != nil {
		return domain.Outlook{}, fmt.Errorf("%w: outlook dates: %w", domain.ErrUpstream, err)
	}
	dates, err := parseDates(rawDates)
	if err != nil {
		return domain.Outlook{}, err
	}

	out := domain.Outlook{Dates: dates, Percentiles: make(map[int][]float64, len(c.percentiles))}
	for _, p := range c.percentiles {
		member, ok := raw[strconv.Itoa(p)]
		if !ok {
			return domain.Outlook{}, fmt.Errorf("%w: outlook percentile %d missing", domain.ErrUpstream, p)
		}
		var values []float64
		if err := json.Unmarshal(member, &values); err != nil {
			return domain.Outlook{}, fmt.Errorf("%w: outlook percentile %d: %w", domain.ErrUpstream, p, err)
		}
		if len(values) != len(dates) {
			return domain.Outlook{}, fmt.Errorf("%w: outlook percentile %d has %d values for %d dates", domain.ErrUpstream, p, len(values), len(dates))
		}
		out.Percentiles[p] = values
	}
	return out, nil
}

func parseDates(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, len(raw))
	for i, s := range raw {
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
		}
		dates[i] = d
	}
	return dates, nil
}

// Outlook service wire types.

type outlookRequest struct {
	LngLat      [2]float64 `json:"lngLatArr"`
	Percentiles []int      `json:"percentiles"`
}

type outlookResponse struct {
	QPF struct {
		Dates  []string  `json:"dates"`
		Values []float64 `json:"values"`
	} `json:"qpf"`
	// Outlook holds "dates" plus one array per percentile keyed by its number.
	Outlook map[string]json.RawMessage `json:"outlook"`
}

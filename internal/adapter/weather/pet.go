package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
)

// PETClient fetches observed and forecast potential evapotranspiration from
// the irrigation service.
type PETClient struct {
	up      *upstream
	baseURL string
}

// NewPETClient creates a PET client for the given endpoint.
func NewPETClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *PETClient {
	return &PETClient{
		up:      newUpstream("pet", token, timeout, metrics, logger),
		baseURL: baseURL,
	}
}

// FetchPET returns the observed and forecast PET blocks for the season year.
// The service reports MM/DD dates, which are placed in the season year.
func (c *PETClient) FetchPET(ctx context.Context, loc domain.Location, season domain.Season) (observed, forecast domain.OptionalSeries, err error) {
	params := url.Values{
		"lat":  {strconv.FormatFloat(loc.Lat, 'f', -1, 64)},
		"lon":  {strconv.FormatFloat(loc.Lon, 'f', -1, 64)},
		"year": {strconv.Itoa(season.Year)},
	}
	body, err := c.up.get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return domain.OptionalSeries{}, domain.OptionalSeries{}, err
	}

	var resp petResponse
	if err := c.up.decode(body, &resp); err != nil {
		return domain.OptionalSeries{}, domain.OptionalSeries{}, err
	}

	if observed, err = petSeries(season.Year, resp.Dates, resp.PET); err != nil {
		return domain.OptionalSeries{}, domain.OptionalSeries{}, fmt.Errorf("observed pet: %w", err)
	}
	if forecast, err = petSeries(season.Year, resp.ForecastDates, resp.ForecastPET); err != nil {
		return domain.OptionalSeries{}, domain.OptionalSeries{}, fmt.Errorf("forecast pet: %w", err)
	}
	return observed, forecast, nil
}

// petSeries pairs values with their dates. The service may report more dates
// than values; the extra dates are dropped.
func petSeries(year int, rawDates []string, values []float64) (domain.OptionalSeries, error) {
	if len(values) > len(rawDates) {
		return domain.OptionalSeries{}, fmt.Errorf("%w: %d values for %d dates", domain.ErrUpstream, len(values), len(rawDates))
	}
	dates := make([]time.Time, len(values))
	for i := range values {
		d, err := parseMonthDay(year, rawDates[i])
		if err != nil {
			return domain.OptionalSeries{}, err
		}
		dates[i] = d
	}
	return domain.OptionalFromRaw(dates, values), nil
}

func parseMonthDay(year int, s string) (time.Time, error) {
	d, err := domain.ParseDate(strconv.Itoa(year) + "-" + strings.Replace(s, "/", "-", 1))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	return d, nil
}

// PET service wire types.

type petResponse struct {
	Dates         []string  `json:"dates_pet"`
	ForecastDates []string  `json:"dates_pet_fcst"`
	PET           []float64 `json:"pet"`
	ForecastPET   []float64 `json:"pet_fcst"`
}

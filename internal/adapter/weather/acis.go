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

const acisGrid = "nrcc-model"

// ACISClient fetches gridded daily precipitation from the ACIS GridData service.
type ACISClient struct {
	up      *upstream
	baseURL string
}

// NewACISClient creates an ACIS GridData client for the given endpoint.
func NewACISClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *ACISClient {
	return &ACISClient{
		up:      newUpstream("acis", "", timeout, metrics, logger),
		baseURL: baseURL,
	}
}

// FetchObserved returns daily precipitation from the season start through its
// end date. Missing days are nil.
func (c *ACISClient) FetchObserved(ctx context.Context, loc domain.Location, season domain.Season) (domain.OptionalSeries, error) {
	body, err := c.up.post(ctx, c.baseURL, acisRequest{
		Loc:   formatLonLat(loc),
		Grid:  acisGrid,
		SDate: season.Start.Format(domain.DateLayout),
		EDate: season.End.Format(domain.DateLayout),
		Elems: []acisElem{{Name: "pcpn"}},
	})
	if err != nil {
		return domain.OptionalSeries{}, err
	}

	var resp acisResponse
	if err := c.up.decode(body, &resp); err != nil {
		return domain.OptionalSeries{}, err
	}
	if resp.Error != "" {
		return domain.OptionalSeries{}, fmt.Errorf("%w: acis: %s", domain.ErrUpstream, resp.Error)
	}

	dates := make([]time.Time, 0, len(resp.Data))
	values := make([]float64, 0, len(resp.Data))
	for _, row := range resp.Data {
		d, err := domain.ParseDate(row.Date)
		if err != nil {
			return domain.OptionalSeries{}, fmt.Errorf("%w: acis: %w", domain.ErrUpstream, err)
		}
		dates = append(dates, d)
		values = append(values, row.Value)
	}
	return domain.OptionalFromRaw(dates, values), nil
}

func formatLonLat(loc domain.Location) string {
	return strconv.FormatFloat(loc.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Lat, 'f', -1, 64)
}

// ACIS GridData wire types.

type acisRequest struct {
	Loc   string     `json:"loc"`
	Grid  string     `json:"grid"`
	SDate string     `json:"sDate"`
	EDate string     `json:"eDate"`
	Elems []acisElem `json:"elems"`
}

type acisElem struct {
	Name string `json:"name"`
}

type acisResponse struct {
	Data  []acisRow `json:"data"`
	Error string    `json:"error"`
}

// acisRow is one ["YYYY-MM-DD", value] pair. Values arrive as numbers or as
// strings; anything non-numeric ("M") is treated as missing.
type acisRow struct {
	Date  string
	Value float64
}

func (r *acisRow) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("acis row has %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Date); err != nil {
		return fmt.Errorf("acis row date: %w", err)
	}

	if string(pair[1]) == "null" {
		r.Value = domain.MissingValue
		return nil
	}
	if err := json.Unmarshal(pair[1], &r.Value); err == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(pair[1], &s); err != nil {
		return fmt.Errorf("acis row value: %w", err)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v = domain.MissingValue
	}
	r.Value = v
	return nil
}

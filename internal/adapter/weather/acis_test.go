package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLocation = domain.Location{Lat: 42.45, Lon: -76.48}
	testSeason   = domain.Season{
		Year:  2024,
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
	}
)

func TestACISClient_FetchObserved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req acisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "-76.48,42.45", req.Loc)
		assert.Equal(t, "nrcc-model", req.Grid)
		assert.Equal(t, "2024-03-01", req.SDate)
		assert.Equal(t, "2024-03-04", req.EDate)
		assert.Equal(t, []acisElem{{Name: "pcpn"}}, req.Elems)

		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"data":[["2024-03-01",0.12],["2024-03-02","0.30"],["2024-03-03",-999],["2024-03-04","M"]]}`))
	}))
	defer srv.Close()

	c := NewACISClient(srv.URL, 5*time.Second, observability.NewMetricsForTesting(), discardLogger())
	obs, err := c.FetchObserved(context.Background(), testLocation, testSeason)
	require.NoError(t, err)

	require.Equal(t, 4, obs.Len())
	assert.Equal(t, testSeason.Start, obs.Dates[0])
	require.NotNil(t, obs.Values[0])
	assert.Equal(t, 0.12, *obs.Values[0])
	require.NotNil(t, obs.Values[1])
	assert.Equal(t, 0.30, *obs.Values[1])
	assert.Nil(t, obs.Values[2])
	assert.Nil(t, obs.Values[3])
}

func TestACISClient_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"bad location"}`))
	}))
	defer srv.Close()

	c := NewACISClient(srv.URL, 5*time.Second, observability.NewMetricsForTesting(), discardLogger())
	_, err := c.FetchObserved(context.Background(), testLocation, testSeason)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "bad location")
}

func TestACISRow_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`["2024-03-01",1.5]`, 1.5, false},
		{`["2024-03-01","T"]`, domain.MissingValue, false},
		{`["2024-03-01",null]`, domain.MissingValue, false},
		{`["2024-03-01"]`, 0, true},
		{`["2024-03-01",{}]`, 0, true},
	}

	for _, tc := range tests {
		var row acisRow
		err := json.Unmarshal([]byte(tc.in), &row)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, "2024-03-01", row.Date)
		assert.Equal(t, tc.want, row.Value, tc.in)
	}
}

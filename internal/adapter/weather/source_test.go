package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"github.com/couchcryptid/water-deficit-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func newTestSource(acisURL, outlookURL, petURL string) *Source {
	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	return NewSource(
		NewACISClient(acisURL, 5*time.Second, metrics, logger),
		NewOutlookClient(outlookURL, testToken, []int{10, 50, 90}, 5*time.Second, metrics, logger),
		NewPETClient(petURL, testToken, 5*time.Second, metrics, logger),
	)
}

const (
	acisBody = `{"data":[["2024-03-01",0.1],["2024-03-02",0],["2024-03-03",0.2],["2024-03-04",-999]]}`
	petBody  = `{"dates_pet":["03/01","03/02","03/03","03/04"],"pet":[0.05,0.05,0.06,-999],"dates_pet_fcst":["03/04","03/05"],"pet_fcst":[0.07,0.07]}`
)

func TestSource_FetchWeather(t *testing.T) {
	acis := jsonServer(acisBody, http.StatusOK)
	defer acis.Close()
	outlook := jsonServer(outlookBody, http.StatusOK)
	defer outlook.Close()
	pet := jsonServer(petBody, http.StatusOK)
	defer pet.Close()

	in, err := newTestSource(acis.URL, outlook.URL, pet.URL).FetchWeather(context.Background(), testLocation, testSeason)
	require.NoError(t, err)

	assert.Equal(t, 4, in.ObservedPrecip.Len())
	assert.Equal(t, 2, in.QPF.Len())
	assert.Len(t, in.Outlook.Percentiles, 3)
	assert.Equal(t, 4, in.PETObserved.Len())
	assert.Equal(t, 2, in.PETForecast.Len())

	// The acquired inputs feed straight into the model.
	fc, err := domain.BuildForecast(
		domain.NewEngine(domain.NewModelData()),
		domain.DeficitRequest{ID: "src", Lat: testLocation.Lat, Lon: testLocation.Lon, Soil: domain.SoilMedium, Crop: domain.CropGrass},
		in, testSeason, 5,
	)
	require.NoError(t, err)
	assert.Len(t, fc.Chain.Dates, 4+5)
}

func TestSource_FirstFailureFailsFetch(t *testing.T) {
	acis := jsonServer(acisBody, http.StatusOK)
	defer acis.Close()
	outlook := jsonServer(`upstream down`, http.StatusServiceUnavailable)
	defer outlook.Close()
	pet := jsonServer(petBody, http.StatusOK)
	defer pet.Close()

	_, err := newTestSource(acis.URL, outlook.URL, pet.URL).FetchWeather(context.Background(), testLocation, testSeason)
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "fetch precipitation outlook")
}

func TestSource_CancelledContext(t *testing.T) {
	acis := jsonServer(acisBody, http.StatusOK)
	defer acis.Close()
	outlook := jsonServer(outlookBody, http.StatusOK)
	defer outlook.Close()
	pet := jsonServer(petBody, http.StatusOK)
	defer pet.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSource(acis.URL, outlook.URL, pet.URL).FetchWeather(ctx, testLocation, testSeason)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

package weather

import (
	"context"
	"fmt"

	"github.com/couchcryptid/water-deficit-service/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Source implements domain.WeatherSource over the three weather services.
type Source struct {
	acis    *ACISClient
	outlook *OutlookClient
	pet     *PETClient
}

// NewSource combines the service clients into a weather source.
func NewSource(acis *ACISClient, outlook *OutlookClient, pet *PETClient) *Source {
	return &Source{acis: acis, outlook: outlook, pet: pet}
}

// FetchWeather requests all three services concurrently. The first failure
// cancels the remaining requests.
func (s *Source) FetchWeather(ctx context.Context, loc domain.Location, season domain.Season) (domain.WeatherInputs, error) {
	var in domain.WeatherInputs
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		obs, err := s.acis.FetchObserved(gCtx, loc, season)
		if err != nil {
			return fmt.Errorf("fetch observed precipitation: %w", err)
		}
		in.ObservedPrecip = obs
		return nil
	})
	g.Go(func() error {
		qpf, outlook, err := s.outlook.FetchOutlook(gCtx, loc)
		if err != nil {
			return fmt.Errorf("fetch precipitation outlook: %w", err)
		}
		in.QPF, in.Outlook = qpf, outlook
		return nil
	})
	g.Go(func() error {
		observed, forecast, err := s.pet.FetchPET(gCtx, loc, season)
		if err != nil {
			return fmt.Errorf("fetch pet: %w", err)
		}
		in.PETObserved, in.PETForecast = observed, forecast
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.WeatherInputs{}, err
	}
	return in, nil
}

package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is shared because validator caches struct metadata per instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// DeficitRequest asks for a season deficit forecast at one location for one
// soil and crop selection. Dates are YYYY-MM-DD; an empty planting date means
// the season default and an empty irrigation date means none.
type DeficitRequest struct {
	ID             string       `json:"id,omitempty" validate:"omitempty,max=64"`
	Lat            float64      `json:"lat" validate:"latitude"`
	Lon            float64      `json:"lon" validate:"longitude"`
	Soil           SoilCapacity `json:"soil" validate:"required,oneof=low medium high"`
	Crop           CropType     `json:"crop" validate:"required,oneof=grass cereals forages grapes legumes rootstubers vegsmallshort vegsmalllong vegsolanum vegcucumber"`
	PlantingDate   string       `json:"planting_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IrrigationDate string       `json:"irrigation_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Location returns the request coordinates.
func (r DeficitRequest) Location() Location {
	return Location{Lat: r.Lat, Lon: r.Lon}
}

// Validate checks field formats and catalog membership.
func (r DeficitRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Dates resolves the planting and irrigation dates against the season.
func (r DeficitRequest) Dates(season Season) (planting time.Time, irrigation *time.Time, err error) {
	planting = season.DefaultPlantingDate()
	if r.PlantingDate != "" {
		if planting, err = ParseDate(r.PlantingDate); err != nil {
			return time.Time{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	if r.IrrigationDate != "" {
		d, err := ParseDate(r.IrrigationDate)
		if err != nil {
			return time.Time{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		irrigation = &d
	}
	return planting, irrigation, nil
}

// DecodeDeficitRequest unmarshals and validates a JSON deficit request.
func DecodeDeficitRequest(data []byte) (DeficitRequest, error) {
	var req DeficitRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return DeficitRequest{}, fmt.Errorf("%w: decode: %w", ErrInvalidRequest, err)
	}
	if err := req.Validate(); err != nil {
		return DeficitRequest{}, err
	}
	return req, nil
}

// ParseRawEvent decodes a request message. The message key is used as the
// request ID when the payload does not carry one.
func ParseRawEvent(raw RawEvent) (DeficitRequest, error) {
	req, err := DecodeDeficitRequest(raw.Value)
	if err != nil {
		return DeficitRequest{}, fmt.Errorf("parse raw event: %w", err)
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	return req, nil
}

package domain

import (
	"fmt"
	"slices"
)

// SoilCapacity selects a soil water holding capacity class.
type SoilCapacity string

const (
	SoilLow    SoilCapacity = "low"
	SoilMedium SoilCapacity = "medium"
	SoilHigh   SoilCapacity = "high"
)

// CropType selects a crop from the coefficient catalog.
type CropType string

const (
	CropGrass         CropType = "grass"
	CropCereals       CropType = "cereals"
	CropForages       CropType = "forages"
	CropGrapes        CropType = "grapes"
	CropLegumes       CropType = "legumes"
	CropRootsTubers   CropType = "rootstubers"
	CropVegSmallShort CropType = "vegsmallshort"
	CropVegSmallLong  CropType = "vegsmalllong"
	CropVegSolanum    CropType = "vegsolanum"
	CropVegCucumber   CropType = "vegcucumber"
)

// SoilProfile holds soil moisture thresholds in inches of water and the time
// a saturated profile takes to drain to field capacity.
type SoilProfile struct {
	Label                      string  `json:"label"`
	WiltingPoint               float64 `json:"wilting_point"`
	PrewiltingPoint            float64 `json:"prewilting_point"`
	StressThreshold            float64 `json:"stress_threshold"`
	FieldCapacity              float64 `json:"field_capacity"`
	Saturation                 float64 `json:"saturation"`
	DaysToDrainToFieldCapacity float64 `json:"days_to_drain_to_field_capacity"`
}

// TotalAvailableWater is field capacity minus wilting point (TAW).
func (s SoilProfile) TotalAvailableWater() float64 {
	return s.FieldCapacity - s.WiltingPoint
}

// MaxSurplus is the largest positive deficit, saturation minus field capacity.
func (s SoilProfile) MaxSurplus() float64 {
	return s.Saturation - s.FieldCapacity
}

// PotentialDailyDrainage is the drainage rate while the soil is wetter than
// field capacity.
func (s SoilProfile) PotentialDailyDrainage() float64 {
	return s.MaxSurplus() / s.DaysToDrainToFieldCapacity
}

// Validate checks WP < PWP < stress threshold < FC < SAT and a positive drain time.
func (s SoilProfile) Validate() error {
	ordered := s.WiltingPoint < s.PrewiltingPoint &&
		s.PrewiltingPoint < s.StressThreshold &&
		s.StressThreshold < s.FieldCapacity &&
		s.FieldCapacity < s.Saturation
	if !ordered {
		return fmt.Errorf("%w: soil %q thresholds out of order", ErrInvalidParameter, s.Label)
	}
	if s.DaysToDrainToFieldCapacity <= 0 {
		return fmt.Errorf("%w: soil %q drain time must be positive", ErrInvalidParameter, s.Label)
	}
	return nil
}

// CropProfile holds FAO-56 growth stage lengths (days) and crop coefficients.
type CropProfile struct {
	Label string  `json:"label"`
	Lini  int     `json:"l_ini"`
	Ldev  int     `json:"l_dev"`
	Lmid  int     `json:"l_mid"`
	Llate int     `json:"l_late"`
	Kcini float64 `json:"kc_ini"`
	Kcmid float64 `json:"kc_mid"`
	Kcend float64 `json:"kc_end"`
}

// Validate checks non-negative stage lengths and positive coefficients.
func (c CropProfile) Validate() error {
	if c.Lini < 0 || c.Ldev < 0 || c.Lmid < 0 || c.Llate < 0 {
		return fmt.Errorf("%w: crop %q has a negative stage length", ErrInvalidParameter, c.Label)
	}
	if c.Kcini <= 0 || c.Kcmid <= 0 || c.Kcend <= 0 {
		return fmt.Errorf("%w: crop %q coefficients must be positive", ErrInvalidParameter, c.Label)
	}
	return nil
}

// ModelData is the immutable soil and crop reference table set. Build it once
// with NewModelData and share the pointer.
type ModelData struct {
	soils map[SoilCapacity]SoilProfile
	crops map[CropType]CropProfile
}

// NewModelData builds the Northeast US reference tables. Soil drainage times
// and crop stages come from the Cornell Climate Smart Farming calculator.
func NewModelData() *ModelData {
	m := &ModelData{
		soils: map[SoilCapacity]SoilProfile{
			SoilLow:    {Label: "Low (Sand)", WiltingPoint: 1.0, PrewiltingPoint: 1.15, StressThreshold: 1.5, FieldCapacity: 2.0, Saturation: 5.0, DaysToDrainToFieldCapacity: 0.125},
			SoilMedium: {Label: "Medium (Loam)", WiltingPoint: 2.0, PrewiltingPoint: 2.225, StressThreshold: 2.8, FieldCapacity: 3.5, Saturation: 5.5, DaysToDrainToFieldCapacity: 1.0},
			SoilHigh:   {Label: "High (Clay)", WiltingPoint: 3.0, PrewiltingPoint: 3.3, StressThreshold: 4.0, FieldCapacity: 5.0, Saturation: 6.5, DaysToDrainToFieldCapacity: 2.0},
		},
		crops: map[CropType]CropProfile{
			CropGrass:         {Label: "Grass Reference", Lini: 0, Ldev: 0, Lmid: 240, Llate: 0, Kcini: 1.00, Kcmid: 1.00, Kcend: 1.00},
			CropCereals:       {Label: "Cereals", Lini: 20, Ldev: 35, Lmid: 60, Llate: 25, Kcini: 0.30, Kcmid: 1.15, Kcend: 0.30},
			CropForages:       {Label: "Forages", Lini: 10, Ldev: 15, Lmid: 20, Llate: 10, Kcini: 0.40, Kcmid: 1.20, Kcend: 1.10},
			CropGrapes:        {Label: "Grapes (wine)", Lini: 30, Ldev: 60, Lmid: 40, Llate: 80, Kcini: 0.30, Kcmid: 0.70, Kcend: 0.45},
			CropLegumes:       {Label: "Legumes", Lini: 20, Ldev: 30, Lmid: 30, Llate: 10, Kcini: 0.50, Kcmid: 1.10, Kcend: 1.00},
			CropRootsTubers:   {Label: "Roots and Tubers", Lini: 20, Ldev: 30, Lmid: 50, Llate: 20, Kcini: 0.50, Kcmid: 1.15, Kcend: 0.70},
			CropVegSmallShort: {Label: "Vegetables (Small) - Short Season", Lini: 20, Ldev: 35, Lmid: 35, Llate: 10, Kcini: 0.70, Kcmid: 1.05, Kcend: 0.95},
			CropVegSmallLong:  {Label: "Vegetables (Small) - Long Season", Lini: 30, Ldev: 45, Lmid: 75, Llate: 30, Kcini: 0.70, Kcmid: 1.05, Kcend: 0.95},
			CropVegSolanum:    {Label: "Vegetables (Solanum Family)", Lini: 30, Ldev: 40, Lmid: 80, Llate: 30, Kcini: 0.60, Kcmid: 1.15, Kcend: 0.80},
			CropVegCucumber:   {Label: "Vegetables (Cucumber Family)", Lini: 25, Ldev: 40, Lmid: 35, Llate: 20, Kcini: 0.50, Kcmid: 1.00, Kcend: 0.80},
		},
	}

	for _, s := range m.soils {
		if err := s.Validate(); err != nil {
			panic(err)
		}
	}
	for _, c := range m.crops {
		if err := c.Validate(); err != nil {
			panic(err)
		}
	}
	return m
}

// Soil returns the profile for a capacity class.
func (m *ModelData) Soil(capacity SoilCapacity) (SoilProfile, error) {
	s, ok := m.soils[capacity]
	if !ok {
		return SoilProfile{}, fmt.Errorf("%w: %q", ErrUnknownSoil, capacity)
	}
	return s, nil
}

// Crop returns the profile for a crop type.
func (m *ModelData) Crop(crop CropType) (CropProfile, error) {
	c, ok := m.crops[crop]
	if !ok {
		return CropProfile{}, fmt.Errorf("%w: %q", ErrUnknownCrop, crop)
	}
	return c, nil
}

// SoilCapacities lists the known capacity keys in sorted order.
func (m *ModelData) SoilCapacities() []SoilCapacity {
	keys := make([]SoilCapacity, 0, len(m.soils))
	for k := range m.soils {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// CropTypes lists the crop catalog keys in sorted order.
func (m *ModelData) CropTypes() []CropType {
	keys := make([]CropType, 0, len(m.crops))
	for k := range m.crops {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package domain

import "math"

// Deficit status labels, from wettest to driest.
const (
	StatusNoDeficit       = "no_deficit"
	StatusDeficitNoStress = "deficit_no_stress"
	StatusStressLikely    = "stress_likely"
	StatusSevereStress    = "severe_stress"
)

// ReferenceLine is a soil moisture threshold expressed as a deficit.
type ReferenceLine struct {
	Label   string  `json:"label"`
	Deficit float64 `json:"deficit"`
}

// ReferenceBands are the plotting thresholds for one soil, wettest first:
// saturation, field capacity, stress threshold, prewilting point.
type ReferenceBands struct {
	Soil  SoilCapacity    `json:"soil"`
	Lines []ReferenceLine `json:"lines"`
}

// ReferenceBands returns the soil moisture thresholds of a soil relative to
// field capacity, rounded to three decimals.
func (m *ModelData) ReferenceBands(capacity SoilCapacity) (ReferenceBands, error) {
	s, err := m.Soil(capacity)
	if err != nil {
		return ReferenceBands{}, err
	}
	return ReferenceBands{
		Soil: capacity,
		Lines: []ReferenceLine{
			{Label: "Saturation", Deficit: round3(s.Saturation - s.FieldCapacity)},
			{Label: "Field Capacity", Deficit: 0},
			{Label: "Plant Stress Begins", Deficit: round3(s.StressThreshold - s.FieldCapacity)},
			{Label: "Wilting Danger Exists", Deficit: round3(s.PrewiltingPoint - s.FieldCapacity)},
		},
	}, nil
}

// Classify maps a deficit to the band it falls in. Values at a threshold
// belong to the wetter band.
func (b ReferenceBands) Classify(deficit float64) string {
	if len(b.Lines) < 4 {
		return ""
	}
	switch {
	case deficit >= b.Lines[1].Deficit:
		return StatusNoDeficit
	case deficit >= b.Lines[2].Deficit:
		return StatusDeficitNoStress
	case deficit >= b.Lines[3].Deficit:
		return StatusStressLikely
	default:
		return StatusSevereStress
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

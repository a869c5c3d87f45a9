package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelData_Catalog(t *testing.T) {
	data := NewModelData()

	assert.Equal(t, []SoilCapacity{SoilHigh, SoilLow, SoilMedium}, data.SoilCapacities())
	assert.Len(t, data.CropTypes(), 10)

	for _, key := range data.SoilCapacities() {
		soil, err := data.Soil(key)
		require.NoError(t, err)
		assert.NoError(t, soil.Validate())
		assert.Positive(t, soil.TotalAvailableWater())
	}
	for _, key := range data.CropTypes() {
		crop, err := data.Crop(key)
		require.NoError(t, err)
		assert.NoError(t, crop.Validate())
	}
}

func TestModelData_UnknownKeys(t *testing.T) {
	data := NewModelData()

	_, err := data.Soil("peat")
	require.ErrorIs(t, err, ErrUnknownSoil)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, err = data.Crop("rice")
	require.ErrorIs(t, err, ErrUnknownCrop)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSoilProfile_Derived(t *testing.T) {
	low, err := NewModelData().Soil(SoilLow)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, low.TotalAvailableWater(), 1e-12)
	assert.InDelta(t, 3.0, low.MaxSurplus(), 1e-12)
	assert.InDelta(t, 24.0, low.PotentialDailyDrainage(), 1e-12)
}

func TestSoilProfile_Validate(t *testing.T) {
	t.Run("out of order", func(t *testing.T) {
		s := SoilProfile{Label: "bad", WiltingPoint: 2, PrewiltingPoint: 2, StressThreshold: 2.5, FieldCapacity: 3, Saturation: 4, DaysToDrainToFieldCapacity: 1}
		assert.ErrorIs(t, s.Validate(), ErrInvalidParameter)
	})

	t.Run("zero drain time", func(t *testing.T) {
		s := SoilProfile{Label: "bad", WiltingPoint: 1, PrewiltingPoint: 1.2, StressThreshold: 1.5, FieldCapacity: 2, Saturation: 3}
		assert.ErrorIs(t, s.Validate(), ErrInvalidParameter)
	})
}

func TestCropProfile_Validate(t *testing.T) {
	assert.ErrorIs(t, CropProfile{Label: "neg", Lini: -1, Kcini: 1, Kcmid: 1, Kcend: 1}.Validate(), ErrInvalidParameter)
	assert.ErrorIs(t, CropProfile{Label: "zero", Kcini: 0, Kcmid: 1, Kcend: 1}.Validate(), ErrInvalidParameter)
}

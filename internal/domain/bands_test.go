package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceBands(t *testing.T) {
	data := NewModelData()

	tests := []struct {
		soil SoilCapacity
		want []float64
	}{
		{SoilLow, []float64{3.0, 0, -0.5, -0.85}},
		{SoilMedium, []float64{2.0, 0, -0.7, -1.275}},
		{SoilHigh, []float64{1.5, 0, -1.0, -1.7}},
	}

	for _, tc := range tests {
		t.Run(string(tc.soil), func(t *testing.T) {
			bands, err := data.ReferenceBands(tc.soil)
			require.NoError(t, err)
			require.Len(t, bands.Lines, 4)

			got := make([]float64, len(bands.Lines))
			for i, l := range bands.Lines {
				got[i] = l.Deficit
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, "Saturation", bands.Lines[0].Label)
			assert.Equal(t, "Wilting Danger Exists", bands.Lines[3].Label)
		})
	}

	_, err := data.ReferenceBands("peat")
	assert.ErrorIs(t, err, ErrUnknownSoil)
}

func TestReferenceBands_Classify(t *testing.T) {
	bands, err := NewModelData().ReferenceBands(SoilMedium)
	require.NoError(t, err)

	tests := []struct {
		deficit float64
		want    string
	}{
		{0.4, StatusNoDeficit},
		{0, StatusNoDeficit},
		{-0.3, StatusDeficitNoStress},
		{-0.7, StatusDeficitNoStress},
		{-1.0, StatusStressLikely},
		{-1.275, StatusStressLikely},
		{-1.4, StatusSevereStress},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, bands.Classify(tc.deficit), "deficit %g", tc.deficit)
	}

	assert.Empty(t, ReferenceBands{}.Classify(-1))
}

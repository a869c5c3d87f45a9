package domain

import "fmt"

// stressDepletionFraction is the FAO-56 fraction p of TAW that can be depleted
// before transpiration is reduced.
const stressDepletionFraction = 0.5

// Coefficient returns the single crop coefficient Kc for the given number of
// days since planting. Negative values (before planting) fall in the initial
// stage. Development and late stages interpolate linearly between the
// neighbouring stage coefficients; a zero-length stage is skipped because its
// open interval is empty.
func (c CropProfile) Coefficient(daysSincePlanting int) float64 {
	d := float64(daysSincePlanting)
	endIni := float64(c.Lini)
	endDev := endIni + float64(c.Ldev)
	endMid := endDev + float64(c.Lmid)
	endLate := endMid + float64(c.Llate)

	switch {
	case d <= endIni:
		return c.Kcini
	case d < endDev:
		return c.Kcini + (d-endIni)*(c.Kcmid-c.Kcini)/float64(c.Ldev)
	case d <= endMid:
		return c.Kcmid
	case d < endLate:
		return c.Kcmid - (d-endMid)*(c.Kcmid-c.Kcend)/float64(c.Llate)
	default:
		return c.Kcend
	}
}

// WaterStressCoefficient returns Ks (FAO-56 eq. 84) for the antecedent deficit
// and total available water. Ks is 1 until depletion exceeds p*TAW, then falls
// linearly to 0 at the wilting point.
func WaterStressCoefficient(deficit, taw float64) (float64, error) {
	if taw <= 0 {
		return 0, fmt.Errorf("%w: total available water must be positive, got %g", ErrInvalidParameter, taw)
	}

	depletion := -deficit
	if depletion <= stressDepletionFraction*taw {
		return 1, nil
	}

	ks := (taw - depletion) / ((1 - stressDepletionFraction) * taw)
	return max(ks, 0), nil
}

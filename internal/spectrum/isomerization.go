package spectrum

import "fmt"

const (
	PlanckConstant = 6.63e-34  // J·s
	SpeedOfLight   = 299792458 // m/s

	// unitScale brings µW/cm², nm and µm² into a common unit system.
	unitScale = 1e-23

	// photonFluxScale converts isomerizations/s/µm² to photons/cm²/s.
	photonFluxScale = 1e8

	// StepIndex is the wavelength axis index the bin width is read at:
	// step = wavelengths[StepIndex] - wavelengths[StepIndex-1].
	StepIndex = 10
)

// Compute calculates the isomerization rate of the light source for every
// photoreceptor type in the sensitivity set.
//
// The source amplitude is expected in µW/cm², sensitivity curves normalized to
// 1 at the peak and the wavelength axis in nm. The result is in
// isomerizations per second.
//
// The spectral overlap integral is approximated with a single bin width read
// at StepIndex, so the axis is assumed to be uniformly spaced. Non-uniform
// axes silently produce a wrong rate.
func Compute(source []float64, set SensitivitySet, wavelengths []float64) (Rates, error) {
	if len(source) != len(wavelengths) {
		return nil, fmt.Errorf("%w: source has %d samples, wavelength axis has %d",
			ErrShapeMismatch, len(source), len(wavelengths))
	}
	if len(wavelengths) <= StepIndex {
		return nil, fmt.Errorf("%w: wavelength axis needs at least %d samples, got %d",
			ErrInsufficientSamples, StepIndex+1, len(wavelengths))
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: empty sensitivity set", ErrNoData)
	}

	for p, curve := range set {
		if !p.Valid() {
			return nil, fmt.Errorf("unknown photoreceptor %d", int(p))
		}
		if len(curve) != len(wavelengths) {
			return nil, fmt.Errorf("%w: %s sensitivity has %d samples, wavelength axis has %d",
				ErrShapeMismatch, p, len(curve), len(wavelengths))
		}
	}

	step := wavelengths[StepIndex] - wavelengths[StepIndex-1]
	hc := PlanckConstant * SpeedOfLight

	rates := make(Rates, len(set))
	for p, curve := range set {
		area := p.EffectiveArea()

		var rate float64
		for i := range source {
			rate += source[i] * curve[i] * wavelengths[i] * step * area / hc * unitScale
		}
		rates[p] = rate
	}

	return rates, nil
}

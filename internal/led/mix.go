package led

import (
	"fmt"

	"github.com/roman-kulish/lightcal/internal/spectrum"
)

// Scale returns a copy of the curve with every sample multiplied by weight.
func Scale(curve []float64, weight float64) []float64 {
	out := make([]float64, len(curve))
	for i, v := range curve {
		out[i] = v * weight
	}
	return out
}

// Component is a single LED contribution to a Mix.
type Component struct {
	Channel Channel
	Weight  float64
	Curve   []float64 // Spectral curve scaled by Weight
}

// Mix is a weighted combination of LED spectral curves over a shared
// wavelength axis.
type Mix struct {
	Wavelengths []float64
	Components  []Component // Ordered by channel index
	Total       []float64   // Element-wise sum of all component curves
}

// NewMix scales the spectral curve of every weighted channel and sums them
// into the stimulus spectrum. Channels without a weight are left out of the
// mix; a weight for a channel with no curve is an error.
func NewMix(wavelengths []float64, curves map[Channel][]float64, weights map[Channel]float64) (*Mix, error) {
	if len(wavelengths) == 0 {
		return nil, fmt.Errorf("%w: empty wavelength axis", spectrum.ErrNoData)
	}

	mix := &Mix{
		Wavelengths: wavelengths,
		Total:       make([]float64, len(wavelengths)),
	}

	for _, ch := range Channels() {
		weight, ok := weights[ch]
		if !ok {
			continue
		}
		if weight < 0 {
			return nil, fmt.Errorf("negative weight %g for %s channel", weight, ch)
		}

		curve, ok := curves[ch]
		if !ok {
			return nil, fmt.Errorf("%w: no spectral curve for %s channel", spectrum.ErrNoData, ch)
		}
		if len(curve) != len(wavelengths) {
			return nil, fmt.Errorf("%w: %s curve has %d samples, wavelength axis has %d",
				spectrum.ErrShapeMismatch, ch, len(curve), len(wavelengths))
		}

		scaled := Scale(curve, weight)
		for i, v := range scaled {
			mix.Total[i] += v
		}
		mix.Components = append(mix.Components, Component{
			Channel: ch,
			Weight:  weight,
			Curve:   scaled,
		})
	}

	return mix, nil
}

// Weights returns the weight of every channel in the mix.
func (m *Mix) Weights() map[Channel]float64 {
	w := make(map[Channel]float64, len(m.Components))
	for _, c := range m.Components {
		w[c.Channel] = c.Weight
	}
	return w
}

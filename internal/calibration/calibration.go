package calibration

import (
	"fmt"
	"math"

	"github.com/roman-kulish/lightcal/internal/led"
	"github.com/roman-kulish/lightcal/internal/spectrum"
)

// Calibration holds the measured output power of every LED channel against
// the applied voltage. Each curve is co-indexed with Voltages; missing
// measurements are NaN.
type Calibration struct {
	Voltages []float64
	Curves   map[led.Channel][]float64
}

// New creates a calibration set and checks every curve against the voltage axis.
func New(voltages []float64, curves map[led.Channel][]float64) (*Calibration, error) {
	cal := &Calibration{Voltages: voltages, Curves: curves}
	for ch := range curves {
		if _, err := cal.curve(ch); err != nil {
			return nil, err
		}
	}
	return cal, nil
}

func (c *Calibration) curve(ch led.Channel) ([]float64, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown LED channel %d", int(ch))
	}
	curve, ok := c.Curves[ch]
	if !ok {
		return nil, fmt.Errorf("%w: no calibration curve for %s channel", spectrum.ErrNoData, ch)
	}
	if len(curve) != len(c.Voltages) {
		return nil, fmt.Errorf("%w: %s calibration has %d samples, voltage axis has %d",
			spectrum.ErrShapeMismatch, ch, len(curve), len(c.Voltages))
	}
	return curve, nil
}

// Peak returns the maximum measured output power of the channel, ignoring
// missing samples.
func (c *Calibration) Peak(ch led.Channel) (float64, error) {
	curve, err := c.curve(ch)
	if err != nil {
		return 0, err
	}
	peak, ok := nanMax(curve)
	if !ok {
		return 0, fmt.Errorf("%w: %s calibration curve has no valid samples", spectrum.ErrNoData, ch)
	}
	return peak, nil
}

// VoltageForFraction returns the voltage that drives the channel closest to
// the requested fraction of its peak output power.
//
// The fraction is not range-checked: values outside [0, 1] resolve to the
// voltage of the lowest or highest measured power.
func VoltageForFraction(fraction float64, ch led.Channel, cal *Calibration) (float64, error) {
	curve, err := cal.curve(ch)
	if err != nil {
		return 0, err
	}
	peak, err := cal.Peak(ch)
	if err != nil {
		return 0, err
	}

	idx := nearestIndex(curve, fraction*peak)
	if idx < 0 {
		return 0, fmt.Errorf("%w: no sample near %g of %s peak", spectrum.ErrNoData, fraction, ch)
	}
	return cal.Voltages[idx], nil
}

// FractionForVoltage returns the output power of the channel, as a fraction
// of its peak, at the calibration voltage closest to the given voltage.
func FractionForVoltage(voltage float64, ch led.Channel, cal *Calibration) (float64, error) {
	curve, err := cal.curve(ch)
	if err != nil {
		return 0, err
	}
	peak, err := cal.Peak(ch)
	if err != nil {
		return 0, err
	}
	if peak == 0 {
		return 0, fmt.Errorf("%w: %s calibration peak is %g", spectrum.ErrNoData, ch, peak)
	}

	idx := nearestIndex(cal.Voltages, voltage)
	if idx < 0 {
		return 0, fmt.Errorf("%w: voltage axis has no valid samples", spectrum.ErrNoData)
	}

	power := curve[idx]
	if math.IsNaN(power) {
		return 0, fmt.Errorf("%w: %s calibration is missing a sample at %gV",
			spectrum.ErrNoData, ch, cal.Voltages[idx])
	}
	return power / peak, nil
}

// nanMax returns the largest non-NaN value. ok is false when there is none.
func nanMax(values []float64) (peak float64, ok bool) {
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !ok || v > peak {
			peak, ok = v, true
		}
	}
	return
}

// nearestIndex returns the index of the value closest to target, the lowest
// index on ties. NaN values are skipped; -1 means no candidate.
func nearestIndex(values []float64, target float64) int {
	idx := -1
	best := math.Inf(1)
	for i, v := range values {
		d := math.Abs(v - target)
		if math.IsNaN(d) {
			continue
		}
		if idx < 0 || d < best {
			idx, best = i, d
		}
	}
	return idx
}

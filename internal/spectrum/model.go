package spectrum

import (
	"fmt"
	"strings"
)

const (
	SCone      Photoreceptor = iota // Short-wavelength cone opsin
	Melanopsin                      // Melanopsin (ipRGC)
	Rhodopsin                       // Rod opsin
	MCone                           // Medium-wavelength cone opsin
	RedOpsin                        // Long-wavelength (red) opsin

	numPhotoreceptors = 5
)

// Photoreceptor identifies one of the five photoreceptor types the
// isomerization rate is computed for.
type Photoreceptor int

var photoreceptorNames = [numPhotoreceptors]string{
	SCone:      "scone",
	Melanopsin: "melanopsin",
	Rhodopsin:  "rhodopsin",
	MCone:      "mcone",
	RedOpsin:   "redopsin",
}

var photoreceptorLabels = [numPhotoreceptors]string{
	SCone:      "S-cones",
	Melanopsin: "Melanopsin",
	Rhodopsin:  "Rhodopsin",
	MCone:      "M-cones",
	RedOpsin:   "Red opsin",
}

// effectiveAreas holds the assumed collecting area of each photoreceptor in µm².
var effectiveAreas = [numPhotoreceptors]float64{
	SCone:      0.2,
	Melanopsin: 0.2,
	Rhodopsin:  0.5,
	MCone:      0.2,
	RedOpsin:   0.2,
}

// Photoreceptors returns all photoreceptor types in their canonical order.
func Photoreceptors() []Photoreceptor {
	return []Photoreceptor{SCone, Melanopsin, Rhodopsin, MCone, RedOpsin}
}

// ParsePhotoreceptor resolves a photoreceptor from its name. Matching is
// case-insensitive and ignores '-', '_' and spaces, so "S-cone", "s_cones"
// and "scone" are the same.
func ParsePhotoreceptor(name string) (Photoreceptor, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("-", "", "_", "", " ", "").Replace(n)
	n = strings.TrimSuffix(n, "s")

	for i, known := range photoreceptorNames {
		if n == known {
			return Photoreceptor(i), nil
		}
	}
	return 0, fmt.Errorf("unknown photoreceptor '%s'", name)
}

func (p Photoreceptor) Valid() bool {
	return p >= 0 && p < numPhotoreceptors
}

// String returns the short machine name, e.g. "scone".
func (p Photoreceptor) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Photoreceptor(%d)", int(p))
	}
	return photoreceptorNames[p]
}

// Label returns a human readable name for reports and legends.
func (p Photoreceptor) Label() string {
	if !p.Valid() {
		return p.String()
	}
	return photoreceptorLabels[p]
}

// EffectiveArea returns the collecting area in µm².
func (p Photoreceptor) EffectiveArea() float64 {
	if !p.Valid() {
		return 0
	}
	return effectiveAreas[p]
}

// SensitivitySet maps a photoreceptor type to its spectral sensitivity curve,
// normalized to 1 at the peak and co-indexed with a wavelength axis.
type SensitivitySet map[Photoreceptor][]float64

// Rate is the isomerization rate of a single photoreceptor type.
type Rate struct {
	Photoreceptor Photoreceptor // Photoreceptor type
	Value         float64       // Isomerizations per second
}

// Rates maps a photoreceptor type to its isomerization rate in isomerizations/s.
type Rates map[Photoreceptor]float64

// Ordered returns the rates in canonical photoreceptor order, skipping
// types with no rate.
func (r Rates) Ordered() []Rate {
	out := make([]Rate, 0, len(r))
	for _, p := range Photoreceptors() {
		if v, ok := r[p]; ok {
			out = append(out, Rate{Photoreceptor: p, Value: v})
		}
	}
	return out
}

// PhotonFlux converts each rate to photons/cm²/s by scaling with 1e8 and
// dividing by the photoreceptor effective area.
func (r Rates) PhotonFlux() Rates {
	out := make(Rates, len(r))
	for p, v := range r {
		out[p] = v * photonFluxScale / p.EffectiveArea()
	}
	return out
}

package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/lightcal/internal/led"
)

const labelWidth = 10

func formatValue(v float64, format NumberFormat) string {
	if format == FormatFixed {
		return fmt.Sprintf("%16.0f", v)
	}
	return fmt.Sprintf("%.2e", v)
}

func writeReport(w io.Writer, r *Results, format NumberFormat) error {
	var sb strings.Builder

	for _, src := range r.Sources {
		fmt.Fprintf(&sb, "Source: %s\n", src.Name)
		fmt.Fprintf(&sb, "  %-*s   %-16s   %s\n", labelWidth, "", "isomerizations/s", "photons/cm²/s")

		flux := src.Rates.PhotonFlux()
		for _, rate := range src.Rates.Ordered() {
			fmt.Fprintf(&sb, "  %-*s : %-16s   %s\n",
				labelWidth, rate.Photoreceptor.Label(),
				formatValue(rate.Value, format),
				formatValue(flux[rate.Photoreceptor], format))
		}
		sb.WriteString("\n")
	}

	if len(r.Voltages) > 0 {
		sb.WriteString("Drive voltages\n")
		for _, ch := range led.Channels() {
			if v, ok := r.Voltages[ch]; ok {
				fmt.Fprintf(&sb, "  %-*s : %.3f V\n", labelWidth, ch, v)
			}
		}
		sb.WriteString("\n")
	}

	if len(r.Fractions) > 0 {
		sb.WriteString("Power fractions\n")
		for _, ch := range led.Channels() {
			if f, ok := r.Fractions[ch]; ok {
				fmt.Fprintf(&sb, "  %-*s : %s%%\n", labelWidth, ch, humanize.FormatFloat("#.##", f*100))
			}
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

package mixplot

import (
	"fmt"
	"image"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/roman-kulish/lightcal/internal/led"
)

const (
	dpi         = 96.0
	leftMargin  = 12
	swatchSize  = 10
	swatchGap   = 4
	itemSpacing = 18
	lineSpacing = 1.6
)

type annotatorConfig struct {
	FontSize float64
	Top      int // Y coordinate where the info bar starts
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	parsedFont, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(config.FontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, mix *led.Mix) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	lineHeight := int(float64(fontHeight) * lineSpacing)

	baseline := a.config.Top + lineHeight
	if err := a.drawLegend(img, mix, baseline, fontHeight); err != nil {
		return fmt.Errorf("drawing legend: %w", err)
	}
	if err := a.drawInfo(mix, baseline+lineHeight); err != nil {
		return fmt.Errorf("drawing info: %w", err)
	}

	return nil
}

// drawLegend writes every channel weight next to a swatch of its colour.
func (a *annotator) drawLegend(img *image.RGBA, mix *led.Mix, baseline, fontHeight int) error {
	x := leftMargin
	for _, c := range mix.Components {
		top := baseline - fontHeight/2 - swatchSize/2
		for dy := 0; dy < swatchSize; dy++ {
			for dx := 0; dx < swatchSize; dx++ {
				img.Set(x+dx, top+dy, c.Channel.Color())
			}
		}
		x += swatchSize + swatchGap

		label := fmt.Sprintf("%s %s%%", c.Channel, humanize.FormatFloat("#.#", c.Weight*100))
		pt := freetype.Pt(x, baseline)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing %s label: %w", c.Channel, err)
		}
		x += font.MeasureString(a.fontFace, label).Round() + itemSpacing
	}
	return nil
}

func (a *annotator) drawInfo(mix *led.Mix, baseline int) error {
	wl := mix.Wavelengths

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Band: %s - %s nm", formatNumber(wl[0]), formatNumber(wl[len(wl)-1])))

	if peak, ok := peakIndex(mix.Total); ok {
		sb.WriteString("; ")
		sb.WriteString(fmt.Sprintf("Peak: %s nm", formatNumber(wl[peak])))
	}

	if len(wl) > 1 {
		step := (wl[len(wl)-1] - wl[0]) / float64(len(wl)-1)
		var total float64
		for _, v := range mix.Total {
			if isFinite(v) {
				total += v
			}
		}
		sb.WriteString("; ")
		sb.WriteString(fmt.Sprintf("Integrated power: %s µW/cm²", formatNumber(total*step)))
	}

	pt := freetype.Pt(leftMargin, baseline)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info text: %w", err)
	}
	return nil
}

func peakIndex(values []float64) (int, bool) {
	idx := -1
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		if idx < 0 || v > values[idx] {
			idx = i
		}
	}
	return idx, idx >= 0
}

func formatNumber(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

package mixplot

import (
	"fmt"
	"image"
	"image/color"
	imgdraw "image/draw"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/roman-kulish/lightcal/internal/led"
)

const (
	defaultWidth         = 1200
	defaultHeight        = 800
	defaultInfoBarHeight = 60
	defaultTitle         = "LED spectral mix"
	defaultFontSize      = 11.0

	xLabel = "Wavelength (nm)"
	yLabel = "Power (µW/cm²)"

	totalLabel = "total"
)

// RenderConfig holds the configuration options for the mix plot
type RenderConfig struct {
	Width         int     // Plot width in pixels
	Height        int     // Plot height in pixels, without the info bar
	InfoBarHeight int     // Height of the annotated info bar below the plot
	Title         string  // Plot title
	FontSize      float64 // Info bar font size in points
	HideTotal     bool    // Do not draw the summed spectrum
}

// Renderer draws an LED mix over its wavelength axis
type Renderer struct {
	config RenderConfig
}

// NewRenderer creates a new mix renderer with the given configuration
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.Width == 0 {
		config.Width = defaultWidth
	}
	if config.Height == 0 {
		config.Height = defaultHeight
	}
	if config.InfoBarHeight == 0 {
		config.InfoBarHeight = defaultInfoBarHeight
	}
	if config.Title == "" {
		config.Title = defaultTitle
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}

	if config.Width < 0 || config.Height < 0 || config.InfoBarHeight < 0 {
		return nil, fmt.Errorf("invalid image size %dx%d (info bar %d)", config.Width, config.Height, config.InfoBarHeight)
	}

	return &Renderer{config: config}, nil
}

// Render draws every mix component in its channel colour, the summed
// spectrum and an info bar with the mix weights.
func (r *Renderer) Render(mix *led.Mix) (*image.RGBA, error) {
	if mix == nil || len(mix.Wavelengths) == 0 {
		return nil, fmt.Errorf("rendering mix: nothing to draw")
	}

	p, err := r.newPlot(mix)
	if err != nil {
		return nil, err
	}

	// Render the plot on its own canvas, then place it above the info bar
	canvas := vgimg.NewWith(
		vgimg.UseWH(pixels(r.config.Width), pixels(r.config.Height)),
		vgimg.UseDPI(dpi),
	)
	p.Draw(draw.New(canvas))

	img := image.NewRGBA(image.Rect(0, 0, r.config.Width, r.config.Height+r.config.InfoBarHeight))
	imgdraw.Draw(img, img.Bounds(), image.White, image.Point{}, imgdraw.Src)
	imgdraw.Draw(img, image.Rect(0, 0, r.config.Width, r.config.Height), canvas.Image(), image.Point{}, imgdraw.Over)

	ann, err := newAnnotator(annotatorConfig{
		FontSize: r.config.FontSize,
		Top:      r.config.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	if err = ann.annotate(img, mix); err != nil {
		return nil, fmt.Errorf("drawing annotations: %w", err)
	}

	return img, nil
}

func (r *Renderer) newPlot(mix *led.Mix) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = r.config.Title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for _, c := range mix.Components {
		line, err := newLine(mix.Wavelengths, c.Curve, c.Channel.Color())
		if err != nil {
			return nil, fmt.Errorf("plotting %s channel: %w", c.Channel, err)
		}
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%s x%.2f", c.Channel, c.Weight), line)
	}

	if !r.config.HideTotal {
		line, err := newLine(mix.Wavelengths, mix.Total, color.Black)
		if err != nil {
			return nil, fmt.Errorf("plotting total: %w", err)
		}
		line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		p.Add(line)
		p.Legend.Add(totalLabel, line)
	}

	return p, nil
}

// newLine builds a line over the finite samples of the curve; missing
// samples leave a straight segment between their neighbours.
func newLine(wavelengths, curve []float64, c color.Color) (*plotter.Line, error) {
	pts := make(plotter.XYs, 0, len(curve))
	for i, y := range curve {
		x := wavelengths[i]
		if isFinite(x) && isFinite(y) {
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = c
	return line, nil
}

// pixels converts a pixel count to a length at the canvas resolution.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / dpi
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/roman-kulish/lightcal/internal/calibration"
	"github.com/roman-kulish/lightcal/internal/led"
	"github.com/roman-kulish/lightcal/internal/mixplot"
	"github.com/roman-kulish/lightcal/internal/spectrum"
	"github.com/roman-kulish/lightcal/internal/storage"
)

const mixSourceName = "mix"

// SourceRates holds the isomerization rates of a single light source
type SourceRates struct {
	Name  string
	Rates spectrum.Rates
}

// Results holds everything computed for a configuration
type Results struct {
	Sources   []SourceRates
	Voltages  map[led.Channel]float64 // drive voltage for every mix weight
	Fractions map[led.Channel]float64 // power fraction for every probed voltage
}

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.Storage.Database); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.Storage.Database, err)
	}

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	return run(ctx, config, store, logger, os.Stdout)
}

func run(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger, out io.Writer) error {
	wavelengths, err := store.Load(ctx, config.Spectra.Wavelengths)
	if err != nil {
		return fmt.Errorf("loading wavelength axis: %w", err)
	}

	logger.Info("loaded wavelength axis",
		slog.String("name", config.Spectra.Wavelengths),
		slog.Int("samples", len(wavelengths)))

	var mix *led.Mix
	if config.HasMix() {
		if mix, err = loadMix(ctx, config, store, wavelengths); err != nil {
			return err
		}
		logger.Info("built LED mix", slog.Int("channels", len(mix.Components)))
	}

	results, err := compute(ctx, config, store, wavelengths, mix, logger)
	if err != nil {
		return err
	}

	if err = writeReport(out, results, config.Report.Format); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if config.Report.SaveAs != "" && mix != nil {
		if err = store.Save(ctx, config.Report.SaveAs, orderedValues(results.Sources[0].Rates)); err != nil {
			return fmt.Errorf("saving mix rates: %w", err)
		}
		logger.Info("saved mix rates", slog.String("name", config.Report.SaveAs))
	}

	if config.Plot.Output != "" {
		if mix == nil {
			logger.Warn("no mix weights configured, skipping plot")
			return nil
		}
		return renderPlot(config, mix, logger)
	}

	return nil
}

func compute(ctx context.Context, config *Config, store storage.Store, wavelengths []float64, mix *led.Mix, logger *slog.Logger) (*Results, error) {
	set := make(spectrum.SensitivitySet, len(config.sensitivities))
	for p, name := range config.sensitivities {
		curve, err := store.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading %s sensitivity: %w", p, err)
		}
		set[p] = curve
	}

	results := &Results{
		Voltages:  make(map[led.Channel]float64),
		Fractions: make(map[led.Channel]float64),
	}

	if mix != nil {
		rates, err := spectrum.Compute(mix.Total, set, wavelengths)
		if err != nil {
			return nil, fmt.Errorf("computing mix isomerization rates: %w", err)
		}
		results.Sources = append(results.Sources, SourceRates{Name: mixSourceName, Rates: rates})
	}

	for _, name := range config.Spectra.Sources {
		source, err := store.Load(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("loading source: %w", err)
		}
		rates, err := spectrum.Compute(source, set, wavelengths)
		if err != nil {
			return nil, fmt.Errorf("computing isomerization rates of '%s': %w", name, err)
		}
		results.Sources = append(results.Sources, SourceRates{Name: name, Rates: rates})
	}

	if len(results.Sources) == 0 {
		logger.Warn("neither mix weights nor sources configured, no rates computed")
	}

	if !config.HasCalibration() {
		return results, nil
	}

	cal, err := loadCalibration(ctx, config, store)
	if err != nil {
		return nil, err
	}

	for ch, weight := range config.weights {
		if _, ok := cal.Curves[ch]; !ok {
			logger.Warn("no calibration for mix channel", slog.String("channel", ch.String()))
			continue
		}
		v, err := calibration.VoltageForFraction(weight, ch, cal)
		if err != nil {
			return nil, fmt.Errorf("resolving %s drive voltage: %w", ch, err)
		}
		results.Voltages[ch] = v
	}

	for ch, voltage := range config.probes {
		f, err := calibration.FractionForVoltage(voltage, ch, cal)
		if err != nil {
			return nil, fmt.Errorf("probing %s at %gV: %w", ch, voltage, err)
		}
		results.Fractions[ch] = f
	}

	return results, nil
}

func loadMix(ctx context.Context, config *Config, store storage.Store, wavelengths []float64) (*led.Mix, error) {
	curves := make(map[led.Channel][]float64, len(config.weights))
	for ch := range config.weights {
		curve, err := store.Load(ctx, config.leds[ch])
		if err != nil {
			return nil, fmt.Errorf("loading %s LED spectrum: %w", ch, err)
		}
		curves[ch] = curve
	}

	mix, err := led.NewMix(wavelengths, curves, config.weights)
	if err != nil {
		return nil, fmt.Errorf("building LED mix: %w", err)
	}
	return mix, nil
}

func loadCalibration(ctx context.Context, config *Config, store storage.Store) (*calibration.Calibration, error) {
	voltages, err := store.Load(ctx, config.Calibration.Voltages)
	if err != nil {
		return nil, fmt.Errorf("loading voltage axis: %w", err)
	}

	curves := make(map[led.Channel][]float64, len(config.calCurves))
	for ch, name := range config.calCurves {
		if curves[ch], err = store.Load(ctx, name); err != nil {
			return nil, fmt.Errorf("loading %s calibration: %w", ch, err)
		}
	}

	cal, err := calibration.New(voltages, curves)
	if err != nil {
		return nil, fmt.Errorf("building calibration: %w", err)
	}
	return cal, nil
}

func renderPlot(config *Config, mix *led.Mix, logger *slog.Logger) (err error) {
	renderer, err := mixplot.NewRenderer(mixplot.RenderConfig{
		Width:  config.Plot.Width,
		Height: config.Plot.Height,
		Title:  config.Plot.Title,
	})
	if err != nil {
		return fmt.Errorf("creating mix renderer: %w", err)
	}

	logger.Info("rendering mix",
		slog.Group("image",
			slog.String("destination", config.Plot.Output),
			slog.String("format", config.Plot.Format),
		))

	img, err := renderer.Render(mix)
	if err != nil {
		return fmt.Errorf("rendering mix: %w", err)
	}

	out, err := os.Create(config.Plot.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := out.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	return mixplot.Encode(out, img, mixplot.ImageFormat(config.Plot.Format))
}

// orderedValues lays the rates out in photoreceptor order, NaN where a
// photoreceptor was not evaluated.
func orderedValues(rates spectrum.Rates) []float64 {
	all := spectrum.Photoreceptors()
	values := make([]float64, len(all))
	for i, p := range all {
		v, ok := rates[p]
		if !ok {
			v = math.NaN()
		}
		values[i] = v
	}
	return values
}

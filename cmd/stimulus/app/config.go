package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/lightcal/internal/led"
	"github.com/roman-kulish/lightcal/internal/mixplot"
	"github.com/roman-kulish/lightcal/internal/spectrum"
)

const (
	FormatScientific NumberFormat = "scientific"
	FormatFixed      NumberFormat = "fixed"
)

type NumberFormat string

// Config represents the main application configuration
type Config struct {
	Settings    Settings          `yaml:"settings"`
	Storage     StorageConfig     `yaml:"storage"`
	Spectra     SpectraConfig     `yaml:"spectra"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Mix         MixConfig         `yaml:"mix"`
	Probe       ProbeConfig       `yaml:"probe"`
	Report      ReportConfig      `yaml:"report"`
	Plot        PlotConfig        `yaml:"plot"`

	// Resolved from the string keyed maps above by Validate
	leds          map[led.Channel]string
	sensitivities map[spectrum.Photoreceptor]string
	calCurves     map[led.Channel]string
	weights       map[led.Channel]float64
	probes        map[led.Channel]float64
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// StorageConfig points at the array store
type StorageConfig struct {
	Database string `yaml:"database"`
}

// SpectraConfig names the stored arrays holding spectral data. Every array
// is co-indexed with the wavelength axis.
type SpectraConfig struct {
	Wavelengths   string            `yaml:"wavelengths"`   // wavelength axis in nm
	LEDs          map[string]string `yaml:"leds"`          // LED channel -> spectral curve
	Sensitivities map[string]string `yaml:"sensitivities"` // photoreceptor -> sensitivity curve
	Sources       []string          `yaml:"sources"`       // extra light sources to evaluate
}

// CalibrationConfig names the stored arrays holding the voltage calibration
type CalibrationConfig struct {
	Voltages string            `yaml:"voltages"` // voltage axis
	Curves   map[string]string `yaml:"curves"`   // LED channel -> measured output power
}

// MixConfig holds the LED mix weights as fractions of each channel peak power
type MixConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

// ProbeConfig lists drive voltages to convert back to power fractions
type ProbeConfig struct {
	Voltages map[string]float64 `yaml:"voltages"`
}

// ReportConfig controls the printed results
type ReportConfig struct {
	Format NumberFormat `yaml:"format"`
	SaveAs string       `yaml:"saveAs"` // store the mix rates under this name
}

// PlotConfig controls the mix plot
type PlotConfig struct {
	Output string `yaml:"output"`
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// LoadConfig reads and validates the YAML configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML configuration
func ParseConfig(data []byte) (*Config, error) {
	c := &Config{
		Settings: Settings{LogLevel: "info"},
		Report:   ReportConfig{Format: FormatScientific},
		Plot:     PlotConfig{Format: string(mixplot.ImagePNG)},
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Settings.LogLevel)); err != nil {
		return fmt.Errorf("settings.logLevel: %w", err)
	}

	if c.Storage.Database == "" {
		return errors.New("storage.database is required")
	}
	if c.Spectra.Wavelengths == "" {
		return errors.New("spectra.wavelengths is required")
	}
	if len(c.Spectra.Sensitivities) == 0 {
		return errors.New("spectra.sensitivities requires at least one photoreceptor")
	}

	var err error
	if c.leds, err = parseChannelKeys("spectra.leds", c.Spectra.LEDs); err != nil {
		return err
	}
	if c.calCurves, err = parseChannelKeys("calibration.curves", c.Calibration.Curves); err != nil {
		return err
	}
	if c.weights, err = parseChannelKeys("mix.weights", c.Mix.Weights); err != nil {
		return err
	}
	if c.probes, err = parseChannelKeys("probe.voltages", c.Probe.Voltages); err != nil {
		return err
	}

	c.sensitivities = make(map[spectrum.Photoreceptor]string, len(c.Spectra.Sensitivities))
	for key, name := range c.Spectra.Sensitivities {
		p, pErr := spectrum.ParsePhotoreceptor(key)
		if pErr != nil {
			return fmt.Errorf("spectra.sensitivities: %w", pErr)
		}
		if _, dup := c.sensitivities[p]; dup {
			return fmt.Errorf("spectra.sensitivities: %s listed twice", p)
		}
		c.sensitivities[p] = name
	}

	for ch, w := range c.weights {
		if w < 0 {
			return fmt.Errorf("mix.weights: negative weight %g for %s channel", w, ch)
		}
		if _, ok := c.leds[ch]; !ok {
			return fmt.Errorf("mix.weights: no spectra.leds curve for %s channel", ch)
		}
	}

	if len(c.calCurves) > 0 && c.Calibration.Voltages == "" {
		return errors.New("calibration.voltages is required with calibration.curves")
	}
	for ch := range c.probes {
		if _, ok := c.calCurves[ch]; !ok {
			return fmt.Errorf("probe.voltages: no calibration.curves entry for %s channel", ch)
		}
	}

	switch c.Report.Format {
	case FormatScientific, FormatFixed:
	default:
		return fmt.Errorf("report.format: unknown format '%s'", c.Report.Format)
	}

	if c.Plot.Output != "" {
		format, fErr := mixplot.ParseImageFormat(c.Plot.Format)
		if fErr != nil {
			return fmt.Errorf("plot.format: %w", fErr)
		}
		c.Plot.Format = string(format)
		if filepath.Ext(c.Plot.Output) == "" {
			c.Plot.Output = fmt.Sprintf("%s.%s", c.Plot.Output, c.Plot.Format)
		}
	}

	return nil
}

// HasMix reports whether the configuration describes an LED mix.
func (c *Config) HasMix() bool {
	return len(c.weights) > 0
}

// HasCalibration reports whether calibration curves are configured.
func (c *Config) HasCalibration() bool {
	return len(c.calCurves) > 0
}

func parseChannelKeys[T any](field string, in map[string]T) (map[led.Channel]T, error) {
	out := make(map[led.Channel]T, len(in))
	for key, v := range in {
		ch, err := led.ParseChannel(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		if _, dup := out[ch]; dup {
			return nil, fmt.Errorf("%s: %s channel listed twice", field, ch)
		}
		out[ch] = v
	}
	return out, nil
}

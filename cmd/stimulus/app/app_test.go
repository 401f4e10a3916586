package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/lightcal/internal/spectrum"
	"github.com/roman-kulish/lightcal/internal/storage"
)

func seedStore(t *testing.T, path string) {
	t.Helper()

	wl := make([]float64, 41)
	for i := range wl {
		wl[i] = 380 + float64(i)*10
	}
	bump := func(peak, width float64) []float64 {
		out := make([]float64, len(wl))
		for i, w := range wl {
			out[i] = math.Exp(-math.Pow(w-peak, 2) / (2 * width * width))
		}
		return out
	}

	volts := make([]float64, 21)
	ramp := make([]float64, 21)
	for i := range volts {
		volts[i] = float64(i) * 0.25
		ramp[i] = float64(i) * 10
	}

	store := storage.NewSqliteStore(path)
	defer store.Close()

	require.NoError(t, store.SaveAll(context.Background(), map[string][]float64{
		"wl":       wl,
		"led_r":    bump(630, 10),
		"led_b":    bump(460, 12),
		"sens_s":   bump(420, 30),
		"sens_rho": bump(498, 40),
		"daylight": bump(550, 120),
		"vnew":     volts,
		"vcurve_r": ramp,
		"vcurve_b": ramp,
	}))
}

func newTestConfig(t *testing.T, dir string) *Config {
	t.Helper()

	c, err := ParseConfig([]byte(`
storage:
  database: ` + filepath.Join(dir, "arrays.sqlite") + `
spectra:
  wavelengths: wl
  leds:
    r: led_r
    b: led_b
  sensitivities:
    scone: sens_s
    rhodopsin: sens_rho
  sources: [daylight]
calibration:
  voltages: vnew
  curves:
    r: vcurve_r
    b: vcurve_b
mix:
  weights:
    r: 0.5
    b: 1
probe:
  voltages:
    b: 1.3
report:
  saveAs: mix_rates
plot:
  output: ` + filepath.Join(dir, "mix") + `
  width: 320
  height: 240
`))
	require.NoError(t, err)
	return c
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	config := newTestConfig(t, dir)
	seedStore(t, config.Storage.Database)

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(context.Background(), config, store, logger, &out))

	report := out.String()
	assert.Contains(t, report, "Source: mix")
	assert.Contains(t, report, "Source: daylight")
	assert.Contains(t, report, "S-cones")
	assert.Contains(t, report, "Rhodopsin")
	assert.Contains(t, report, "Drive voltages")
	assert.Contains(t, report, "red        : 2.500 V")
	assert.Contains(t, report, "blue       : 5.000 V")
	assert.Contains(t, report, "Power fractions")
	assert.Contains(t, report, "blue       : 25.00%")

	saved, err := store.Load(context.Background(), "mix_rates")
	require.NoError(t, err)
	require.Len(t, saved, 5)
	assert.Greater(t, saved[spectrum.SCone], 0.0)
	assert.Greater(t, saved[spectrum.Rhodopsin], 0.0)
	assert.True(t, math.IsNaN(saved[spectrum.MCone]))

	info, err := os.Stat(filepath.Join(dir, "mix.png"))
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestCompute(t *testing.T) {
	dir := t.TempDir()
	config := newTestConfig(t, dir)
	seedStore(t, config.Storage.Database)

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	wl, err := store.Load(ctx, "wl")
	require.NoError(t, err)
	mix, err := loadMix(ctx, config, store, wl)
	require.NoError(t, err)

	results, err := compute(ctx, config, store, wl, mix, logger)
	require.NoError(t, err)
	require.Len(t, results.Sources, 2)

	sens := make(spectrum.SensitivitySet)
	for p, name := range config.sensitivities {
		sens[p], err = store.Load(ctx, name)
		require.NoError(t, err)
	}
	expected, err := spectrum.Compute(mix.Total, sens, wl)
	require.NoError(t, err)
	assert.Equal(t, expected, results.Sources[0].Rates)
	assert.Equal(t, "daylight", results.Sources[1].Name)
}

func TestRun_MissingArray(t *testing.T) {
	dir := t.TempDir()
	config := newTestConfig(t, dir)
	seedStore(t, config.Storage.Database)
	config.sensitivities[spectrum.MCone] = "sens_m"

	store := storage.NewSqliteStore(config.Storage.Database)
	defer store.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := run(context.Background(), config, store, logger, io.Discard)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRun_MissingDatabase(t *testing.T) {
	config := newTestConfig(t, t.TempDir())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Error(t, Run(context.Background(), config, logger))
}

func TestWriteReport_Fixed(t *testing.T) {
	var out bytes.Buffer
	err := writeReport(&out, &Results{
		Sources: []SourceRates{{
			Name:  "led",
			Rates: spectrum.Rates{spectrum.Melanopsin: 1234567.8},
		}},
	}, FormatFixed)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Melanopsin")
	assert.Contains(t, out.String(), "         1234568")
	assert.NotContains(t, out.String(), ",")
}

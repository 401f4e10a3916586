package app

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/lightcal/internal/storage"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("curves", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestNewConfigFromArgs(t *testing.T) {
	c, err := newConfigFromArgs(newFlagSet(), []string{
		"-db", "arrays.sqlite", "-export", "wl, led_r,,", "-o", "out.csv", "-list",
	})
	require.NoError(t, err)

	assert.Equal(t, "arrays.sqlite", c.DBPath)
	assert.Equal(t, []string{"wl", "led_r"}, c.Export)
	assert.Equal(t, "out.csv", c.OutputFile)
	assert.True(t, c.List)
}

func TestNewConfigFromArgs_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing db", []string{"-list"}},
		{"nothing to do", []string{"-db", "a.sqlite"}},
		{"output without export", []string{"-db", "a.sqlite", "-list", "-o", "out.csv"}},
		{"unknown flag", []string{"-db", "a.sqlite", "-frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newConfigFromArgs(newFlagSet(), tt.args)
			assert.Error(t, err)
		})
	}
}

func TestRun_ImportExportListDelete(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("wl,led_b\n380,0.5\n390,1\n400,\n"), 0o600))

	store := storage.NewSqliteStore(filepath.Join(dir, "arrays.sqlite"))
	defer store.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, run(ctx, &Config{ImportFile: csvPath}, store, logger, io.Discard))

	wl, err := store.Load(ctx, "wl")
	require.NoError(t, err)
	assert.Equal(t, []float64{380, 390, 400}, wl)

	ledB, err := store.Load(ctx, "led_b")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1}, ledB)

	var out bytes.Buffer
	require.NoError(t, run(ctx, &Config{Export: []string{"led_b", "wl"}}, store, logger, &out))
	assert.Equal(t, "led_b,wl\n0.5,380\n1,390\n,400\n", out.String())

	out.Reset()
	require.NoError(t, run(ctx, &Config{List: true}, store, logger, &out))
	assert.Contains(t, out.String(), "SAMPLES")
	assert.Contains(t, out.String(), "led_b")
	assert.Contains(t, out.String(), "wl")

	require.NoError(t, run(ctx, &Config{Delete: "led_b"}, store, logger, io.Discard))
	names, err := store.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"wl"}, names)
}

func TestRun_ExportToFile(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewSqliteStore(filepath.Join(dir, "arrays.sqlite"))
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "vnew", []float64{0, 0.25, 0.5}))

	output := filepath.Join(dir, "out.csv")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, run(ctx, &Config{Export: []string{"vnew"}, OutputFile: output}, store, logger, io.Discard))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "vnew\n0\n0.25\n0.5\n", string(data))
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewSqliteStore(filepath.Join(dir, "arrays.sqlite"))
	defer store.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, store.Save(ctx, "wl", []float64{380}))

	err := run(ctx, &Config{Export: []string{"missing"}}, store, logger, io.Discard)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = run(ctx, &Config{Delete: "missing"}, store, logger, io.Discard)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = run(ctx, &Config{ImportFile: filepath.Join(dir, "missing.csv")}, store, logger, io.Discard)
	assert.Error(t, err)
}

func TestRun_MissingDatabase(t *testing.T) {
	config := &Config{DBPath: filepath.Join(t.TempDir(), "missing.sqlite"), List: true}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Error(t, Run(context.Background(), config, logger))
}

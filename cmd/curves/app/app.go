package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/lightcal/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if config.ImportFile == "" {
		if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
			return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
		}
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return run(ctx, config, store, logger, os.Stdout)
}

func run(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger, out io.Writer) error {
	if config.ImportFile != "" {
		if err := importFile(ctx, config.ImportFile, store, logger); err != nil {
			return err
		}
	}

	if config.Delete != "" {
		if err := store.Delete(ctx, config.Delete); err != nil {
			return err
		}
		logger.Info("deleted array", slog.String("name", config.Delete))
	}

	if len(config.Export) > 0 {
		if err := exportArrays(ctx, config, store, logger, out); err != nil {
			return err
		}
	}

	if config.List {
		return listArrays(ctx, store, out)
	}

	return nil
}

func importFile(ctx context.Context, path string, store storage.Store, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	names, arrays, err := readCSV(f)
	if err != nil {
		return fmt.Errorf("parsing '%s': %w", path, err)
	}

	if err = store.SaveAll(ctx, arrays); err != nil {
		return fmt.Errorf("importing arrays: %w", err)
	}

	var samples int64
	for _, name := range names {
		samples += int64(len(arrays[name]))
		logger.Debug("imported array",
			slog.String("name", name),
			slog.Int("samples", len(arrays[name])))
	}

	logger.Info("imported arrays",
		slog.String("file", path),
		slog.Int("arrays", len(names)),
		slog.String("samples", humanize.Comma(samples)))
	return nil
}

func exportArrays(ctx context.Context, config *Config, store storage.Store, logger *slog.Logger, out io.Writer) (err error) {
	arrays := make(map[string][]float64, len(config.Export))
	for _, name := range config.Export {
		if arrays[name], err = store.Load(ctx, name); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
	}

	w := out
	if config.OutputFile != "" {
		f, cErr := os.Create(config.OutputFile)
		if cErr != nil {
			return cErr
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		w = f
	}

	if err = writeCSV(w, config.Export, arrays); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}

	if config.OutputFile != "" {
		logger.Info("exported arrays",
			slog.String("file", config.OutputFile),
			slog.Int("arrays", len(config.Export)))
	}
	return nil
}

func listArrays(ctx context.Context, store storage.Store, out io.Writer) error {
	arrays, err := store.Arrays(ctx)
	if err != nil {
		return err
	}

	width := len("NAME")
	for _, a := range arrays {
		width = max(width, len(a.Name))
	}

	fmt.Fprintf(out, "%-*s  %10s  %s\n", width, "NAME", "SAMPLES", "UPDATED")
	for _, a := range arrays {
		fmt.Fprintf(out, "%-*s  %10s  %s\n", width, a.Name, humanize.Comma(int64(a.Length)), humanize.Time(a.UpdatedAt))
	}
	return nil
}

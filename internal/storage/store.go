package storage

import (
	"context"
)

// Store persists named float arrays such as wavelength axes, spectra and
// calibration curves, so intermediate results can be cached between runs.
type Store interface {
	// Save stores the values under the given name, replacing any array
	// previously stored under that name.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - name: Array name; surrounding spaces and a ".pkl" suffix are ignored
	//   - values: Samples to store, NaN included
	//
	// Returns:
	//   - error: If the name is empty, storage fails or context is cancelled
	Save(ctx context.Context, name string, values []float64) error

	// SaveAll stores every array of the map in a single transaction.
	SaveAll(ctx context.Context, arrays map[string][]float64) error

	// Load returns the array stored under the given name.
	//
	// Returns:
	//   - values: Stored samples, bit-exact with what was saved
	//   - error: ErrNotFound if there is no such array, including when the
	//     database does not exist yet, or if retrieval fails
	Load(ctx context.Context, name string) (values []float64, err error)

	// Arrays returns metadata of every stored array ordered by name. A store
	// that nothing was saved to has no arrays.
	Arrays(ctx context.Context) ([]*ArrayInfo, error)

	// Names returns the names of every stored array ordered by name.
	Names(ctx context.Context) ([]string, error)

	// Delete removes the array stored under the given name.
	//
	// Returns:
	//   - error: ErrNotFound if there is no such array, or if removal fails
	Delete(ctx context.Context, name string) error

	// Close releases all database connections and resources.
	// After Close is called, the store instance cannot be reused.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)

package storage

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	float64Size = 8
	pickleExt   = ".pkl"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

// normalizeName trims the name and drops a ".pkl" suffix, so names used with
// pickle files resolve to the same array.
func normalizeName(name string) (string, error) {
	n := strings.TrimSuffix(strings.TrimSpace(name), pickleExt)
	if n == "" {
		return "", fmt.Errorf("invalid array name '%s'", name)
	}
	return n, nil
}

// encodeFloats packs values as little-endian IEEE-754 float64.
func encodeFloats(values []float64) []byte {
	buf := make([]byte, len(values)*float64Size)
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*float64Size:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(data []byte, length int) ([]float64, error) {
	if len(data) != length*float64Size {
		return nil, fmt.Errorf("corrupted array: %d bytes for %d samples", len(data), length)
	}
	values := make([]float64, length)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*float64Size:]))
	}
	return values, nil
}

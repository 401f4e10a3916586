package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// readCSV parses a CSV whose header row names one array per column. Empty
// cells read as NaN, except at the end of a column where they mark a shorter
// array.
func readCSV(r io.Reader) (names []string, arrays map[string][]float64, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("empty CSV: header row expected")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	arrays = make(map[string][]float64, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, nil, fmt.Errorf("column %d has no name", i+1)
		}
		if _, dup := arrays[name]; dup {
			return nil, nil, fmt.Errorf("column '%s' appears twice", name)
		}
		arrays[name] = nil
		names = append(names, name)
	}

	// length of every column up to its last non-empty cell
	lengths := make([]int, len(names))
	columns := make([][]float64, len(names))

	for {
		record, rErr := cr.Read()
		if errors.Is(rErr, io.EOF) {
			break
		}
		if rErr != nil {
			return nil, nil, fmt.Errorf("reading CSV: %w", rErr)
		}

		line, _ := cr.FieldPos(0)
		if len(record) > len(names) {
			return nil, nil, fmt.Errorf("line %d: %d cells for %d columns", line, len(record), len(names))
		}

		for i := range names {
			cell := ""
			if i < len(record) {
				cell = strings.TrimSpace(record[i])
			}

			v := math.NaN()
			if cell != "" {
				if v, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, nil, fmt.Errorf("line %d, column '%s': %w", line, names[i], err)
				}
			}

			columns[i] = append(columns[i], v)
			if cell != "" {
				lengths[i] = len(columns[i])
			}
		}
	}

	for i, name := range names {
		values := columns[i][:lengths[i]]
		if values == nil {
			values = []float64{}
		}
		arrays[name] = values
	}
	return names, arrays, nil
}

// writeCSV writes the arrays as columns in the given order, padding shorter
// columns with empty cells.
func writeCSV(w io.Writer, names []string, arrays map[string][]float64) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(names); err != nil {
		return err
	}

	rows := 0
	for _, name := range names {
		rows = max(rows, len(arrays[name]))
	}

	record := make([]string, len(names))
	for row := 0; row < rows; row++ {
		for i, name := range names {
			record[i] = ""
			if values := arrays[name]; row < len(values) {
				record[i] = strconv.FormatFloat(values[row], 'g', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

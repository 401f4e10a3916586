package app

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "wl, led_r ,sens\n380,0.1,1\n390,,nan\n400,0.3\n410\n"

	names, arrays, err := readCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"wl", "led_r", "sens"}, names)
	assert.Equal(t, []float64{380, 390, 400, 410}, arrays["wl"])

	require.Len(t, arrays["led_r"], 3)
	assert.Equal(t, 0.1, arrays["led_r"][0])
	assert.True(t, math.IsNaN(arrays["led_r"][1]))
	assert.Equal(t, 0.3, arrays["led_r"][2])

	require.Len(t, arrays["sens"], 2)
	assert.Equal(t, 1.0, arrays["sens"][0])
	assert.True(t, math.IsNaN(arrays["sens"][1]))
}

func TestReadCSV_EmptyColumn(t *testing.T) {
	_, arrays, err := readCSV(strings.NewReader("a,b\n1,\n2,\n"))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2}, arrays["a"])
	assert.NotNil(t, arrays["b"])
	assert.Empty(t, arrays["b"])
}

func TestReadCSV_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"unnamed column", "a,,c\n1,2,3\n"},
		{"duplicate column", "a,a\n1,2\n"},
		{"too many cells", "a,b\n1,2,3\n"},
		{"not a number", "a\nfoo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := readCSV(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	var out bytes.Buffer
	err := writeCSV(&out, []string{"wl", "short"}, map[string][]float64{
		"wl":    {380, 390.5, 400},
		"short": {math.NaN()},
	})
	require.NoError(t, err)

	assert.Equal(t, "wl,short\n380,NaN\n390.5,\n400,\n", out.String())
}

func TestCSV_RoundTrip(t *testing.T) {
	arrays := map[string][]float64{
		"a": {1e-23, math.Inf(1), 0.1},
		"b": {math.NaN(), 2},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, []string{"a", "b"}, arrays))

	names, got, err := readCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, arrays["a"], got["a"])
	require.Len(t, got["b"], 2)
	assert.True(t, math.IsNaN(got["b"][0]))
	assert.Equal(t, 2.0, got["b"][1])
}

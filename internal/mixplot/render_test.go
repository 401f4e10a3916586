package mixplot

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/lightcal/internal/led"
)

func testMix(t *testing.T) *led.Mix {
	t.Helper()

	wl := make([]float64, 81)
	for i := range wl {
		wl[i] = 380 + float64(i)*5
	}
	bump := func(peak float64) []float64 {
		out := make([]float64, len(wl))
		for i, w := range wl {
			out[i] = math.Exp(-math.Pow(w-peak, 2) / 200)
		}
		return out
	}

	mix, err := led.NewMix(wl,
		map[led.Channel][]float64{
			led.Red:    bump(630),
			led.Green:  bump(525),
			led.Violet: bump(405),
		},
		map[led.Channel]float64{
			led.Red:    0.5,
			led.Green:  1,
			led.Violet: 0.25,
		})
	require.NoError(t, err)
	return mix
}

func TestRenderer_Render(t *testing.T) {
	r, err := NewRenderer(RenderConfig{Width: 640, Height: 400, InfoBarHeight: 50})
	require.NoError(t, err)

	img, err := r.Render(testMix(t))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 450), img.Bounds())

	background := img.RGBAAt(0, 0)
	assert.Equal(t, uint8(0xff), background.A, "plot area should be opaque")
	assert.Equal(t, uint8(0xff), background.R)

	var coloured int
	for y := 0; y < 400; y++ {
		for x := 0; x < 640; x++ {
			c := img.RGBAAt(x, y)
			if c.R != c.G || c.G != c.B {
				coloured++
			}
		}
	}
	assert.Greater(t, coloured, 100, "channel lines should be drawn in colour")

	var inked int
	for y := 400; y < 450; y++ {
		for x := 0; x < 640; x++ {
			if c := img.RGBAAt(x, y); c.R < 0xff || c.G < 0xff || c.B < 0xff {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 0, "info bar should be annotated")
}

func TestRenderer_Defaults(t *testing.T) {
	r, err := NewRenderer(RenderConfig{})
	require.NoError(t, err)
	assert.Equal(t, defaultWidth, r.config.Width)
	assert.Equal(t, defaultHeight, r.config.Height)
	assert.Equal(t, defaultTitle, r.config.Title)

	_, err = NewRenderer(RenderConfig{Width: -1})
	assert.Error(t, err)

	_, err = r.Render(nil)
	assert.Error(t, err)
}

func TestRenderer_MissingSamples(t *testing.T) {
	mix := testMix(t)
	mix.Total[10] = math.NaN()

	r, err := NewRenderer(RenderConfig{Width: 320, Height: 240})
	require.NoError(t, err)

	_, err = r.Render(mix)
	assert.NoError(t, err)
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, ImagePNG))

	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	assert.NoError(t, Encode(&buf, img, ImageJPEG))
	assert.NotZero(t, buf.Len())

	assert.Error(t, Encode(&buf, img, "gif"))
}

func TestParseImageFormat(t *testing.T) {
	f, err := ParseImageFormat("PNG")
	require.NoError(t, err)
	assert.Equal(t, ImagePNG, f)

	f, err = ParseImageFormat("jpg")
	require.NoError(t, err)
	assert.Equal(t, ImageJPEG, f)

	_, err = ParseImageFormat("bmp")
	assert.Error(t, err)
}

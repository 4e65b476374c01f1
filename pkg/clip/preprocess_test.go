package clip

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func expectedValue(p uint8, c int) float32 {
	return (float32(p)/255 - Mean[c]) / Std[c]
}

func TestPreprocessShape(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"Tall", 1, 1000},
		{"Wide", 1000, 1},
		{"Upscale", 50, 50},
		{"Landscape", 640, 480},
		{"Exact", 224, 224},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tensor := Preprocess(uniformImage(tt.w, tt.h, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

			assert.Equal(t, [4]int{1, 3, 224, 224}, tensor.Shape)
			assert.Len(t, tensor.Data, tensor.Len())
			assert.Equal(t, 3*224*224, tensor.Len())
		})
	}
}

func TestPreprocessUniformColorKeepsValue(t *testing.T) {
	px := color.NRGBA{R: 128, G: 64, B: 200, A: 255}

	tensor := Preprocess(uniformImage(300, 400, px))

	for _, pt := range [][2]int{{0, 0}, {111, 111}, {223, 223}, {0, 223}} {
		assert.InDelta(t, expectedValue(px.R, 0), tensor.At(0, pt[1], pt[0]), 1e-6)
		assert.InDelta(t, expectedValue(px.G, 1), tensor.At(1, pt[1], pt[0]), 1e-6)
		assert.InDelta(t, expectedValue(px.B, 2), tensor.At(2, pt[1], pt[0]), 1e-6)
	}
}

func TestPreprocessExactSizeIsIdentity(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 224, 224))
	for y := 0; y < 224; y++ {
		for x := 0; x < 224; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8((x + y) % 256), A: 255})
		}
	}

	tensor := Preprocess(img)

	assert.Equal(t, expectedValue(5, 0), tensor.At(0, 7, 5))
	assert.Equal(t, expectedValue(7, 1), tensor.At(1, 7, 5))
	assert.Equal(t, expectedValue(12, 2), tensor.At(2, 7, 5))
	assert.Equal(t, expectedValue(223, 0), tensor.At(0, 100, 223))
}

func TestPreprocessDeterministic(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 317, 251))
	for y := 0; y < 251; y++ {
		for x := 0; x < 317; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 3), B: uint8(x ^ y), A: 255})
		}
	}

	first := Preprocess(img)
	second := Preprocess(img)

	assert.Equal(t, first.Data, second.Data)
}

func TestPreprocessDropsAlphaWithoutCompositing(t *testing.T) {
	px := color.NRGBA{R: 200, G: 100, B: 50, A: 0}

	tensor := Preprocess(uniformImage(224, 224, px))

	assert.Equal(t, expectedValue(200, 0), tensor.At(0, 0, 0))
	assert.Equal(t, expectedValue(100, 1), tensor.At(1, 0, 0))
	assert.Equal(t, expectedValue(50, 2), tensor.At(2, 0, 0))
}

func TestPreprocessZeroSizeImage(t *testing.T) {
	tensor := Preprocess(image.NewNRGBA(image.Rect(0, 0, 0, 0)))

	assert.Equal(t, [4]int{1, 3, 224, 224}, tensor.Shape)
	assert.Equal(t, expectedValue(0, 0), tensor.At(0, 0, 0))
}

func TestResizedSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"Landscape", 640, 480, 298, 224},
		{"Portrait", 480, 640, 224, 298},
		{"Square", 50, 50, 224, 224},
		{"Tall", 1, 1000, 224, 224000},
		{"Wide", 1000, 1, 224000, 224},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := resizedSize(tt.w, tt.h)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestToRGB(t *testing.T) {
	t.Run("Gray", func(t *testing.T) {
		img := image.NewGray(image.Rect(0, 0, 2, 1))
		img.SetGray(1, 0, color.Gray{Y: 77})

		rgb := ToRGB(img)

		assert.Equal(t, []uint8{0, 0, 0, 77, 77, 77}, rgb.Pix)
	})

	t.Run("Paletted", func(t *testing.T) {
		pal := color.Palette{color.RGBA{R: 255, A: 255}, color.RGBA{G: 255, B: 10, A: 255}}
		img := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
		img.SetColorIndex(1, 0, 1)

		rgb := ToRGB(img)

		assert.Equal(t, []uint8{255, 0, 0, 0, 255, 10}, rgb.Pix)
	})

	t.Run("PremultipliedRGBA", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, color.RGBA{R: 100, G: 50, B: 0, A: 255})

		rgb := ToRGB(img)

		require.Len(t, rgb.Pix, 3)
		assert.Equal(t, []uint8{100, 50, 0}, rgb.Pix)
	})

	t.Run("SubImageBounds", func(t *testing.T) {
		img := uniformImage(4, 4, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
		img.SetNRGBA(2, 2, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
		sub := img.SubImage(image.Rect(2, 2, 4, 4))

		rgb := ToRGB(sub)

		assert.Equal(t, 2, rgb.Width)
		assert.Equal(t, []uint8{9, 9, 9}, rgb.Pix[:3])
	})
}

func TestTextInputs(t *testing.T) {
	ids, mask := TextInputs()

	require.Len(t, ids, 77)
	require.Len(t, mask, 77)
	assert.Equal(t, []int64{49406, 49407, 0}, ids[:3])
	assert.Equal(t, []int64{1, 1, 0}, mask[:3])
	assert.Equal(t, int64(0), ids[76])
}

package clip

import (
	"image"
	"image/color"
)

// RGBImage - 8-битное RGB-изображение в раскладке HWC.
type RGBImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRGBImage создаёт чёрное изображение заданного размера.
func NewRGBImage(width, height int) *RGBImage {
	return &RGBImage{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*Channels),
	}
}

func (m *RGBImage) offset(x, y int) int {
	return (y*m.Width + x) * Channels
}

// ToRGB переводит декодированное изображение в RGB.
// Оттенки серого дублируются в три канала, палитра раскрывается,
// альфа-канал отбрасывается без смешивания с фоном.
func ToRGB(img image.Image) *RGBImage {
	b := img.Bounds()
	out := NewRGBImage(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < out.Width; x++ {
				copy(out.Pix[out.offset(x, y):out.offset(x, y)+Channels], row[x*4:x*4+3])
			}
		}
	case *image.Gray:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < out.Width; x++ {
				o := out.offset(x, y)
				out.Pix[o], out.Pix[o+1], out.Pix[o+2] = row[x], row[x], row[x]
			}
		}
	default:
		// RGBA хранит цвет с предумноженной альфой, NRGBAModel возвращает исходный цвет.
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				o := out.offset(x, y)
				out.Pix[o], out.Pix[o+1], out.Pix[o+2] = c.R, c.G, c.B
			}
		}
	}

	return out
}

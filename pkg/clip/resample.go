package clip

import "math"

// Бикубическая свёртка в фиксированной точке, совместимая с ресэмплингом Pillow для 8-битных изображений:
// ядро a = -0.5, носитель расширяется на коэффициент уменьшения,
// сначала горизонтальный проход, затем вертикальный, между проходами - округление до uint8.

const (
	precisionBits  = 32 - 8 - 2
	bicubicSupport = 2.0
	bicubicA       = -0.5
)

func bicubicFilter(x float64) float64 {
	if x < 0 {
		x = -x
	}
	if x < 1 {
		return ((bicubicA+2)*x-(bicubicA+3))*x*x + 1
	}
	if x < 2 {
		return (((x-5)*x+8)*x - 4) * bicubicA
	}
	return 0
}

// kernel хранит веса для диапазона выходных пикселей.
// Для i-го пикселя: bounds[2i] - первый входной индекс, bounds[2i+1] - число весов.
type kernel struct {
	bounds []int
	k      []int32
	size   int
}

// precomputeKernel считает веса для выходных индексов [outStart, outStart+outCount)
// при масштабировании оси длины inSize в outSize.
func precomputeKernel(inSize, outSize, outStart, outCount int) kernel {
	scale := float64(inSize) / float64(outSize)
	filterScale := math.Max(scale, 1)
	support := bicubicSupport * filterScale
	size := int(math.Ceil(support))*2 + 1

	kr := kernel{
		bounds: make([]int, outCount*2),
		k:      make([]int32, outCount*size),
		size:   size,
	}

	weights := make([]float64, size)
	for i := 0; i < outCount; i++ {
		center := (float64(outStart+i) + 0.5) * scale
		ss := 1 / filterScale

		xmin := int(center - support + 0.5)
		if xmin < 0 {
			xmin = 0
		}
		xmax := int(center + support + 0.5)
		if xmax > inSize {
			xmax = inSize
		}
		xmax -= xmin

		var total float64
		for x := 0; x < xmax; x++ {
			w := bicubicFilter((float64(x+xmin) - center + 0.5) * ss)
			weights[x] = w
			total += w
		}

		row := kr.k[i*size : (i+1)*size]
		for x := 0; x < xmax; x++ {
			w := weights[x]
			if total != 0 {
				w /= total
			}
			row[x] = toFixed(w)
		}

		kr.bounds[i*2] = xmin
		kr.bounds[i*2+1] = xmax
	}

	return kr
}

func toFixed(w float64) int32 {
	if w < 0 {
		return int32(-0.5 + w*(1<<precisionBits))
	}
	return int32(0.5 + w*(1<<precisionBits))
}

func clip8(v int64) uint8 {
	v >>= precisionBits
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// resizeCrop масштабирует src до newW×newH и возвращает только окно size×size с левым верхним углом (left, top).
// Вычисляются лишь пиксели окна, результат побитово совпадает с полным масштабированием и последующей обрезкой.
func resizeCrop(src *RGBImage, newW, newH, left, top, size int) *RGBImage {
	needHorizontal := newW != src.Width
	needVertical := newH != src.Height

	// Диапазон входных строк, нужных вертикальному проходу.
	var vk kernel
	y0, y1 := top, top+size
	if needVertical {
		vk = precomputeKernel(src.Height, newH, top, size)
		y0, y1 = src.Height, 0
		for i := 0; i < size; i++ {
			ymin, n := vk.bounds[i*2], vk.bounds[i*2+1]
			y0 = min(y0, ymin)
			y1 = max(y1, ymin+n)
		}
	}

	tmp := NewRGBImage(size, y1-y0)
	if needHorizontal {
		hk := precomputeKernel(src.Width, newW, left, size)
		for y := y0; y < y1; y++ {
			for i := 0; i < size; i++ {
				xmin, n := hk.bounds[i*2], hk.bounds[i*2+1]
				k := hk.k[i*hk.size : i*hk.size+n]
				for c := 0; c < Channels; c++ {
					acc := int64(1) << (precisionBits - 1)
					for x, w := range k {
						acc += int64(src.Pix[src.offset(xmin+x, y)+c]) * int64(w)
					}
					tmp.Pix[tmp.offset(i, y-y0)+c] = clip8(acc)
				}
			}
		}
	} else {
		for y := y0; y < y1; y++ {
			copy(tmp.Pix[tmp.offset(0, y-y0):tmp.offset(0, y-y0)+size*Channels], src.Pix[src.offset(left, y):])
		}
	}

	if !needVertical {
		return tmp
	}

	out := NewRGBImage(size, size)
	for j := 0; j < size; j++ {
		ymin, n := vk.bounds[j*2], vk.bounds[j*2+1]
		k := vk.k[j*vk.size : j*vk.size+n]
		for x := 0; x < size; x++ {
			for c := 0; c < Channels; c++ {
				acc := int64(1) << (precisionBits - 1)
				for y, w := range k {
					acc += int64(tmp.Pix[tmp.offset(x, ymin-y0+y)+c]) * int64(w)
				}
				out.Pix[out.offset(x, j)+c] = clip8(acc)
			}
		}
	}

	return out
}

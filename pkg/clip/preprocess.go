package clip

import "image"

// Preprocess готовит декодированное изображение к инференсу:
// RGB, масштабирование по короткой стороне до 224 бикубическим фильтром,
// центральная обрезка 224×224, перевод в [0, 1] и нормализация по каналам.
func Preprocess(img image.Image) Tensor {
	return PreprocessRGB(ToRGB(img))
}

// PreprocessRGB выполняет те же шаги для изображения, уже переведённого в RGB.
// Для изображения нулевого размера возвращается тензор, соответствующий чёрному кадру.
func PreprocessRGB(src *RGBImage) Tensor {
	if src.Width <= 0 || src.Height <= 0 {
		return normalize(NewRGBImage(ImageSize, ImageSize))
	}

	newW, newH := resizedSize(src.Width, src.Height)
	left := (newW - ImageSize) / 2
	top := (newH - ImageSize) / 2

	return normalize(resizeCrop(src, newW, newH, left, top, ImageSize))
}

// resizedSize возвращает размеры после масштабирования: короткая сторона ровно 224,
// длинная - int(long * 224 / short), но не меньше 224.
func resizedSize(w, h int) (int, int) {
	short, long := w, h
	if short > long {
		short, long = long, short
	}

	scaled := int(float64(long) * (float64(ImageSize) / float64(short)))
	if scaled < ImageSize {
		scaled = ImageSize
	}

	if w <= h {
		return ImageSize, scaled
	}
	return scaled, ImageSize
}

func normalize(img *RGBImage) Tensor {
	t := newImageTensor()
	plane := ImageSize * ImageSize

	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			o := img.offset(x, y)
			for c := 0; c < Channels; c++ {
				v := float32(img.Pix[o+c]) / 255
				t.Data[c*plane+y*ImageSize+x] = (v - Mean[c]) / Std[c]
			}
		}
	}

	return t
}

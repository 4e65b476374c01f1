// Package clip реализует числовой контракт модели CLIP ViT-B/32:
// подготовку изображения к инференсу и извлечение эмбеддинга из выходов модели.
package clip

const (
	// ImageSize - сторона квадратного входа модели.
	ImageSize = 224
	// Channels - количество каналов (RGB).
	Channels = 3
	// EmbeddingDim - размерность эмбеддинга изображения.
	EmbeddingDim = 512
	// SequenceLength - длина текстовой последовательности, которую ждёт объединённая модель.
	SequenceLength = 77

	bosToken = 49406
	eosToken = 49407
)

// Нормализация каналов R, G, B.
var (
	Mean = [Channels]float32{0.48145466, 0.4578275, 0.40821073}
	Std  = [Channels]float32{0.26862954, 0.26130258, 0.27577711}
)

// Tensor - плотный float32-тензор в раскладке NCHW.
type Tensor struct {
	Shape [4]int
	Data  []float32
}

func newImageTensor() Tensor {
	return Tensor{
		Shape: [4]int{1, Channels, ImageSize, ImageSize},
		Data:  make([]float32, Channels*ImageSize*ImageSize),
	}
}

// At возвращает значение канала c в точке (x, y) первого элемента батча.
func (t Tensor) At(c, y, x int) float32 {
	h, w := t.Shape[2], t.Shape[3]
	return t.Data[c*h*w+y*w+x]
}

// Len возвращает количество элементов тензора.
func (t Tensor) Len() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// TextInputs возвращает фиктивные input_ids и attention_mask формы (1, 77).
// Для поиска по изображению они не несут смысла, но обязательны для формата модели:
// BOS, EOS и нули, маска - единицы для двух реальных токенов.
func TextInputs() (inputIDs []int64, attentionMask []int64) {
	inputIDs = make([]int64, SequenceLength)
	attentionMask = make([]int64, SequenceLength)

	inputIDs[0], inputIDs[1] = bosToken, eosToken
	attentionMask[0], attentionMask[1] = 1, 1

	return inputIDs, attentionMask
}

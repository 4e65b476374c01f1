package clip

import (
	"fmt"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/vecmath"
)

// ImageEmbedsOutput - имя выхода модели с эмбеддингом изображения.
const ImageEmbedsOutput = "image_embeds"

// NamedTensor - один выход модели.
type NamedTensor struct {
	Name  string
	Shape []int64
	Data  []float32
}

// SelectOutput выбирает выход image_embeds, а при его отсутствии - последний выход.
// Выбор по позиции зависит от порядка выходов при экспорте модели.
func SelectOutput(outputs []NamedTensor) (NamedTensor, error) {
	if len(outputs) == 0 {
		return NamedTensor{}, e.Mark(e.ErrEmbedding, e.ErrOutputNotFound)
	}

	for _, o := range outputs {
		if o.Name == ImageEmbedsOutput {
			return o, nil
		}
	}

	return outputs[len(outputs)-1], nil
}

// ExtractEmbedding возвращает первые 512 значений выбранного выхода, нормализованные по L2.
// Нулевой вектор возвращается как есть.
func ExtractEmbedding(outputs []NamedTensor) ([]float32, error) {
	out, err := SelectOutput(outputs)
	if err != nil {
		return nil, err
	}

	if len(out.Data) < EmbeddingDim {
		return nil, e.Mark(e.ErrEmbedding, fmt.Errorf("output %q has %d values, need %d", out.Name, len(out.Data), EmbeddingDim))
	}

	return vecmath.NormalizedCopy(out.Data[:EmbeddingDim]), nil
}

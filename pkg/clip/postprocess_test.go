package clip

import (
	"testing"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(i%17) - 8
	}
	return v
}

func TestExtractEmbeddingPrefersImageEmbeds(t *testing.T) {
	outputs := []NamedTensor{
		{Name: "logits_per_image", Data: []float32{1}},
		{Name: ImageEmbedsOutput, Data: ramp(512)},
		{Name: "text_embeds", Data: make([]float32, 512)},
	}

	emb, err := ExtractEmbedding(outputs)

	require.NoError(t, err)
	assert.Len(t, emb, 512)
	assert.InDelta(t, 1.0, vecmath.Norm(emb), 1e-5)
}

// Без image_embeds берётся последний выход; поведение зависит от порядка выходов в экспортированной модели.
func TestExtractEmbeddingFallsBackToLastOutput(t *testing.T) {
	last := make([]float32, 512)
	last[3] = 2

	emb, err := ExtractEmbedding([]NamedTensor{
		{Name: "a", Data: ramp(512)},
		{Name: "b", Data: last},
	})

	require.NoError(t, err)
	assert.Equal(t, float32(1), emb[3])
	assert.Equal(t, float32(0), emb[0])
}

func TestExtractEmbeddingTruncates(t *testing.T) {
	data := ramp(768)

	emb, err := ExtractEmbedding([]NamedTensor{{Name: ImageEmbedsOutput, Data: data}})

	require.NoError(t, err)
	assert.Len(t, emb, 512)
	assert.Equal(t, vecmath.NormalizedCopy(data[:512]), emb)
	assert.Equal(t, float32(-8), data[0])
}

func TestExtractEmbeddingTooShort(t *testing.T) {
	_, err := ExtractEmbedding([]NamedTensor{{Name: ImageEmbedsOutput, Data: ramp(100)}})

	assert.ErrorIs(t, err, e.ErrEmbedding)
}

func TestExtractEmbeddingNoOutputs(t *testing.T) {
	_, err := ExtractEmbedding(nil)

	assert.ErrorIs(t, err, e.ErrEmbedding)
	assert.ErrorIs(t, err, e.ErrOutputNotFound)
}

func TestExtractEmbeddingZeroVector(t *testing.T) {
	emb, err := ExtractEmbedding([]NamedTensor{{Name: ImageEmbedsOutput, Data: make([]float32, 512)}})

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 512), emb)
}

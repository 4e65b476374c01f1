package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalizeInPlace(t *testing.T) {
	v := []float32{3, 4}

	ok := NormalizeInPlace(v)

	assert.True(t, ok)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, Norm(v), 1e-6)
}

func TestNormalizeZeroVectorUntouched(t *testing.T) {
	v := []float32{0, 0, 0}

	ok := NormalizeInPlace(v)

	assert.False(t, ok)
	assert.Equal(t, []float32{0, 0, 0}, v)
}

func TestNormalizedCopyLeavesSource(t *testing.T) {
	src := []float32{0, 2}

	dst := NormalizedCopy(src)

	assert.Equal(t, []float32{0, 2}, src)
	assert.Equal(t, []float32{0, 1}, dst)
}

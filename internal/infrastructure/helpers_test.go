package infrastructure

import (
	"testing"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestGetExtensionFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		ext  string
		err  error
	}{
		{"image/jpeg", "jpg", nil},
		{"image/JPG", "jpg", nil},
		{"image/png; charset=binary", "png", nil},
		{"image/webp", "webp", nil},
		{"image/gif", "gif", nil},
		{"image/tiff", "bin", e.ErrUnsupportedMediaType},
		{"text/html", "bin", e.ErrUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			ext, err := GetExtensionFromMIME(tt.mime)
			assert.Equal(t, tt.ext, ext)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

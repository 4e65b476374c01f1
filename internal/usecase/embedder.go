package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/clip"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cacheKeyPrefix  = "emb:"
	cacheSetTimeout = 500 * time.Millisecond
)

// Embedder превращает изображение в нормализованный эмбеддинг:
// подготовка тензора, вызов модели, извлечение выхода.
type Embedder struct {
	ml      MlServiceInfra
	fetcher ImageFetcher
	cache   EmbeddingCache // может быть nil
	logger  logger.Logger
}

func NewEmbedder(ml MlServiceInfra, fetcher ImageFetcher, cache EmbeddingCache, logger logger.Logger) *Embedder {
	return &Embedder{
		ml:      ml,
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
	}
}

// EmbedBytes декодирует изображение и считает его эмбеддинг.
// Результат кешируется по SHA-256 содержимого, ошибки кеша только логируются.
func (m *Embedder) EmbedBytes(ctx context.Context, data []byte) (domain.Vector, error) {
	const op = "Embedder.EmbedBytes"

	key := cacheKey(data)
	if vector, ok := m.cached(ctx, key); ok {
		return vector, nil
	}

	img, _, err := m.fetcher.Decode(data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	vector, err := m.EmbedImage(ctx, img)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if m.cache != nil {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), cacheSetTimeout)
			defer cancel()

			if err := m.cache.Set(bgCtx, key, vector); err != nil {
				m.logger.Warnf("Failed to cache query embedding: %v", e.Wrap(op, err))
			}
		}()
	}

	return vector, nil
}

// EmbedImage считает эмбеддинг уже декодированного изображения.
func (m *Embedder) EmbedImage(ctx context.Context, img image.Image) (domain.Vector, error) {
	ctx, span := tracing.Start(ctx, "embedder.embed",
		attribute.Int("image.width", img.Bounds().Dx()),
		attribute.Int("image.height", img.Bounds().Dy()),
	)
	defer span.End()

	tensor := clip.Preprocess(img)

	outputs, err := m.ml.Infer(ctx, tensor)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, e.Mark(e.ErrEmbedding, err)
	}

	vector, err := clip.ExtractEmbedding(outputs)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	return vector, nil
}

func (m *Embedder) cached(ctx context.Context, key string) (domain.Vector, bool) {
	if m.cache == nil {
		return nil, false
	}

	vector, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger.Warnf("Failed to read query embedding from cache: %v", err)
		return nil, false
	}

	if !ok || len(vector) != clip.EmbeddingDim {
		return nil, false
	}

	return vector, true
}

func cacheKey(data []byte) string {
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

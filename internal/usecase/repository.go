package usecase

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
)

// CatalogSource отдаёт сохранённый каталог.
// Отсутствие каталога сообщается ошибкой e.ErrCatalogNotFound.
type CatalogSource interface {
	Fetch(ctx context.Context) ([]catalog.Record, error)
}

// CatalogSink сохраняет собранный каталог целиком.
type CatalogSink interface {
	Save(ctx context.Context, records []catalog.Record) error
}

// EmbeddingMirror повторяет загруженное поколение каталога во внешнем векторном индексе.
type EmbeddingMirror interface {
	Replace(ctx context.Context, gen *catalog.Generation) error
}

// EmbeddingCache кеширует эмбеддинги изображений-запросов по хешу содержимого.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) (domain.Vector, bool, error)
	Set(ctx context.Context, key string, vector domain.Vector) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Get(ctx context.Context, key string) (*domain.Image, error)
	Delete(ctx context.Context, key string) error
}

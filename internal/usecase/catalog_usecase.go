package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// CatalogUseCase перезагружает каталог из источника и публикует его в зеркало.
type CatalogUseCase struct {
	store      *catalog.Store
	source     CatalogSource
	sourceName string
	mirror     EmbeddingMirror // может быть nil
	logger     logger.Logger

	mu     sync.Mutex
	loaded atomic.Bool
}

func NewCatalogUC(store *catalog.Store, source CatalogSource, sourceName string, mirror EmbeddingMirror, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		store:      store,
		source:     source,
		sourceName: sourceName,
		mirror:     mirror,
		logger:     logger,
	}
}

// Reload читает каталог из источника и атомарно заменяет текущее поколение.
// Отсутствующий каталог загружается как пустой. При ошибке чтения или разбора
// прежнее поколение остаётся, возвращается ошибка e.ErrCatalogLoad.
// Ошибка зеркалирования только логируется.
func (c *CatalogUseCase) Reload(ctx context.Context) (*ReloadRes, error) {
	const op = "CatalogUseCase.Reload"

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := tracing.Start(ctx, "catalog.reload", attribute.String("catalog.source", c.sourceName))
	defer span.End()

	records, err := c.source.Fetch(ctx)
	switch {
	case errors.Is(err, e.ErrCatalogNotFound):
		c.logger.Warnf("Product catalog not found in %s source, starting with empty catalog", c.sourceName)
		records = nil
	case err != nil:
		tracing.RecordError(span, err)
		c.logger.Errorf(err, "failed to load catalog from %s source, keeping previous generation", c.sourceName)
		return nil, e.Wrap(op, e.Mark(e.ErrCatalogLoad, err))
	}

	summary := c.store.Load(records)
	c.loaded.Store(true)

	span.SetAttributes(
		attribute.Int("catalog.kept", summary.Kept),
		attribute.Int("catalog.skipped", summary.Skipped),
	)
	if summary.Skipped > 0 {
		c.logger.Warnf("Skipped %d catalog records without usable embedding (%d duplicate ids)", summary.Skipped, summary.Duplicates)
	}
	c.logger.Infof("Loaded %d products with embeddings from %s catalog (generation %d)", summary.Kept, c.sourceName, summary.Version)

	if c.mirror != nil {
		if err := c.mirror.Replace(ctx, c.store.Snapshot()); err != nil {
			c.logger.Warnf("Failed to mirror catalog generation %d: %v", summary.Version, e.Wrap(op, err))
		}
	}

	return &ReloadRes{Source: c.sourceName, Summary: summary}, nil
}

// Status возвращает состояние текущего поколения.
func (c *CatalogUseCase) Status() CatalogStatus {
	gen := c.store.Snapshot()

	return CatalogStatus{
		Loaded:   c.loaded.Load(),
		Version:  gen.Version(),
		Products: gen.Len(),
		LoadedAt: gen.LoadedAt(),
	}
}

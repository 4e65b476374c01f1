package app

import (
	"context"
	"net/http"

	"github.com/DRSN-tech/visual-matcher/internal/infrastructure/dummyjson"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
)

// BuildCatalog собирает каталог из внешнего источника товаров, сохраняет его
// в хранилище CATALOG_SOURCE и оповещает серверы через Kafka, если она настроена.
func (a *App) BuildCatalog(ctx context.Context) (*usecase.BuildRes, error) {
	sink, err := a.catalogRepo()
	if err != nil {
		a.logger.Errorf(err, "catalog sink %q is unavailable", a.cfg.Catalog.Source)
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	var publisher usecase.CatalogPublisher
	if p := a.publisher(); p != nil {
		publisher = p
	}

	source := dummyjson.NewSource(a.cfg.Builder, &http.Client{Timeout: a.cfg.Builder.RequestTimeout}, a.logger)

	builder := usecase.NewBuilderUC(source, a.fetcher, a.embedder(), sink, publisher, usecase.BuilderOptions{
		Total:       a.cfg.Builder.Total,
		Concurrency: a.cfg.Builder.Concurrency,
		DownloadRPS: a.cfg.Builder.RequestsPerSecond,
		SinkName:    a.cfg.Catalog.Source,
	}, a.logger)

	res, err := builder.Build(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return res, nil
}

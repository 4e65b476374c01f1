package usecase

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// SearchUseCase реализует визуальный поиск товаров.
type SearchUseCase struct {
	store    *catalog.Store
	embedder *Embedder
	fetcher  ImageFetcher
	logger   logger.Logger
}

func NewSearchUC(store *catalog.Store, embedder *Embedder, fetcher ImageFetcher, logger logger.Logger) *SearchUseCase {
	return &SearchUseCase{
		store:    store,
		embedder: embedder,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// SearchByImage ищет товары, похожие на загруженное изображение.
func (s *SearchUseCase) SearchByImage(ctx context.Context, req *SearchByImageReq) (*SearchRes, error) {
	const op = "SearchUseCase.SearchByImage"

	if err := validateFileName(req.Filename); err != nil {
		return nil, e.Wrap(op, err)
	}

	vector, err := s.embedder.EmbedBytes(ctx, req.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := s.rank(ctx, vector, req.Params)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewSearchRes(results, QueryInfo{Type: QueryTypeFile, Filename: req.Filename}), nil
}

// SearchByURL скачивает изображение по ссылке и ищет похожие товары.
func (s *SearchUseCase) SearchByURL(ctx context.Context, req *SearchByURLReq) (*SearchRes, error) {
	const op = "SearchUseCase.SearchByURL"

	url, err := validateURL(req.URL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	img, err := s.fetcher.Download(ctx, url)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	vector, err := s.embedder.EmbedBytes(ctx, img.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := s.rank(ctx, vector, req.Params)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewSearchRes(results, QueryInfo{Type: QueryTypeURL, URL: url}), nil
}

// SearchByVector ищет по готовому эмбеддингу.
func (s *SearchUseCase) SearchByVector(ctx context.Context, req *SearchByVectorReq) (*SearchRes, error) {
	const op = "SearchUseCase.SearchByVector"

	if len(req.Vector) == 0 {
		return nil, e.Wrap(op, e.Mark(e.ErrStatusBadRequest, e.ErrVectorEmbeddingEmpty))
	}

	results, err := s.rank(ctx, req.Vector, req.Params)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewSearchRes(results, QueryInfo{Type: QueryTypeVector}), nil
}

func (s *SearchUseCase) rank(ctx context.Context, vector domain.Vector, params SearchParams) ([]domain.SearchResult, error) {
	gen := s.store.Snapshot()

	_, span := tracing.Start(ctx, "catalog.search",
		attribute.Int("catalog.size", gen.Len()),
		attribute.Int("search.limit", params.Limit),
		attribute.Float64("search.min_score", params.MinScore),
	)
	defer span.End()

	if gen.Len() == 0 {
		s.logger.Warnf("Search called with empty catalog")
	}

	results, err := catalog.Search(gen, vector, params.Limit, params.MinScore)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results, nil
}

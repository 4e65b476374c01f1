package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const unknownBrand = "Unknown"

// BuilderOptions - параметры сборки каталога.
type BuilderOptions struct {
	Total       int     // сколько товаров взять из источника
	Concurrency int     // сколько товаров обрабатывается одновременно
	DownloadRPS float64 // ограничение скачиваний изображений, 0 - без ограничения
	SinkName    string
}

// BuilderUseCase собирает каталог: товары источника, их изображения и эмбеддинги.
type BuilderUseCase struct {
	source    ProductSource
	fetcher   ImageFetcher
	embedder  *Embedder
	sink      CatalogSink
	publisher CatalogPublisher // может быть nil
	opts      BuilderOptions
	logger    logger.Logger
}

func NewBuilderUC(
	source ProductSource,
	fetcher ImageFetcher,
	embedder *Embedder,
	sink CatalogSink,
	publisher CatalogPublisher,
	opts BuilderOptions,
	logger logger.Logger,
) *BuilderUseCase {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	return &BuilderUseCase{
		source:    source,
		fetcher:   fetcher,
		embedder:  embedder,
		sink:      sink,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}

// Build получает товары, скачивает изображение каждого (миниатюра или первое из списка),
// считает эмбеддинги и сохраняет удачные записи в порядке источника.
// Ошибки отдельных товаров пропускаются и учитываются в Failed.
func (b *BuilderUseCase) Build(ctx context.Context) (*BuildRes, error) {
	const op = "BuilderUseCase.Build"

	products, err := b.source.Products(ctx, b.opts.Total)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	b.logger.Infof("Fetched %d products from source", len(products))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if b.opts.DownloadRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(b.opts.DownloadRPS), 1)
	}

	records := make([]*catalog.Record, len(products))
	var failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, p := range products {
		g.Go(func() error {
			if err := limiter.Wait(gCtx); err != nil {
				return err
			}

			record, err := b.buildRecord(gCtx, p)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				failed.Add(1)
				b.logger.Warnf("[%d/%d] %s skipped: %v", i+1, len(products), p.Title, err)
				return nil
			}

			b.logger.Infof("[%d/%d] %s embedded (%d dims)", i+1, len(products), p.Title, len(record.Embedding))
			records[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, e.Wrap(op, err)
	}

	kept := make([]catalog.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			kept = append(kept, *r)
		}
	}

	if err := b.sink.Save(ctx, kept); err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &BuildRes{Saved: len(kept), Failed: int(failed.Load())}
	b.logger.Infof("Catalog built: %d products saved, %d failed, sink=%s", res.Saved, res.Failed, b.opts.SinkName)

	if b.publisher != nil {
		event := &CatalogPublishedEvent{
			EventID:     uuid.NewString(),
			Source:      b.opts.SinkName,
			Products:    res.Saved,
			Failed:      res.Failed,
			PublishedAt: time.Now().UTC(),
		}
		if err := b.publisher.PublishCatalog(ctx, event); err != nil {
			return res, e.Wrap(op, err)
		}
	}

	return res, nil
}

func (b *BuilderUseCase) buildRecord(ctx context.Context, p SourceProduct) (*catalog.Record, error) {
	imageURL := p.Thumbnail
	if imageURL == "" && len(p.Images) > 0 {
		imageURL = p.Images[0]
	}
	if imageURL == "" {
		return nil, e.ErrMissingURL
	}

	img, err := b.fetcher.Download(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	vector, err := b.embedder.EmbedBytes(ctx, img.Data)
	if err != nil {
		return nil, err
	}

	thumbnail := p.Thumbnail
	if thumbnail == "" {
		thumbnail = imageURL
	}

	category := p.Category
	if category == "" {
		category = domain.UnknownCategory
	}

	brand := p.Brand
	if brand == "" {
		brand = unknownBrand
	}

	return &catalog.Record{
		Product: domain.Product{
			ID:          p.ID,
			Name:        p.Title,
			Category:    category,
			Brand:       brand,
			Description: p.Description,
			Price:       p.Price,
			Image:       imageURL,
			Thumbnail:   thumbnail,
			Rating:      p.Rating,
		},
		Embedding: vector,
	}, nil
}

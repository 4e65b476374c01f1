package app

import (
	"context"
	"net/http"
	"time"

	config "github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/infrastructure/fetcher"
	"github.com/DRSN-tech/visual-matcher/internal/infrastructure/kafka"
	ml_service "github.com/DRSN-tech/visual-matcher/internal/infrastructure/ml-service"
	fileRepo "github.com/DRSN-tech/visual-matcher/internal/repository/file"
	s3Repo "github.com/DRSN-tech/visual-matcher/internal/repository/minio"
	"github.com/DRSN-tech/visual-matcher/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/visual-matcher/internal/repository/qdrant"
	"github.com/DRSN-tech/visual-matcher/internal/repository/redis"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/clients"
	"github.com/DRSN-tech/visual-matcher/pkg/closer"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/DRSN-tech/visual-matcher/pkg/postgres"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/qdrant/go-client/qdrant"
	r "github.com/redis/go-redis/v9"
)

const initTimeout = 10 * time.Second

// App держит общие для serve и catalog build клиенты и порядок их закрытия.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	minio  *minio.Client
	db     *postgres.PgDatabase
	qdrant *qdrant.Client
	redis  *r.Client

	ml      *ml_service.MLService
	fetcher *fetcher.Fetcher
}

// NewApp подключается к настроенным внешним системам. Незаданные интеграции пропускаются.
func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(cfg.Http.ShutdownTimeout),
	}

	if err := a.initClients(); err != nil {
		_ = a.closer.Close(context.Background())
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.ml = ml_service.NewMLService(cfg.Ml, &http.Client{}, logger)
	a.fetcher = fetcher.NewFetcher(cfg.Upload, &http.Client{})

	return a, nil
}

func (a *App) initClients() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	provider, err := tracing.Init(ctx, a.cfg.Tracing)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize tracing")
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("tracing", provider.Shutdown)

	if a.cfg.Minio != nil {
		a.minio, err = clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize minio client")
			return e.Wrap(whereami.WhereAmI(), err)
		}

		if err := clients.EnsureBucket(ctx, a.minio, a.cfg.Minio.BucketName); err != nil {
			a.logger.Errorf(err, "failed to initialize MinIO bucket")
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if a.cfg.Db != nil {
		a.db, err = initPGDB(ctx, a.logger, a.cfg)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddFunc("postgres", func() error {
			a.db.Close()
			return nil
		})
	}

	if a.cfg.Qdrant != nil {
		a.qdrant, err = clients.NewQdrantClient(a.cfg.Qdrant)
		if err != nil {
			a.logger.Errorf(err, "failed to initialize qdrant")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddFunc("qdrant", a.qdrant.Close)
	}

	if a.cfg.Redis != nil {
		a.redis, err = clients.NewRedisClient(ctx, a.cfg.Redis)
		if err != nil {
			a.logger.Errorf(err, "failed to connect to redis")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddFunc("redis", a.redis.Close)
	}

	return nil
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(ctx); err != nil {
		logger.Errorf(err, "failed to ping database")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

// catalogRepo - хранилище каталога по CATALOG_SOURCE: читается сервером, пишется сборщиком.
type catalogRepo interface {
	usecase.CatalogSource
	usecase.CatalogSink
}

func (a *App) catalogRepo() (catalogRepo, error) {
	switch a.cfg.Catalog.Source {
	case config.CatalogSourceFile:
		return fileRepo.NewCatalogRepo(a.cfg.Catalog.Path), nil
	case config.CatalogSourceMinIO:
		if a.minio == nil {
			return nil, e.Wrap(a.cfg.Catalog.Source, e.ErrSourceUnavailable)
		}
		return s3Repo.NewCatalogRepo(a.minio, a.cfg.Minio, a.cfg.Catalog.ObjectKey), nil
	case config.CatalogSourcePostgres:
		if a.db == nil {
			return nil, e.Wrap(a.cfg.Catalog.Source, e.ErrSourceUnavailable)
		}
		return pgdb.NewCatalogRepo(a.db.Pool), nil
	default:
		return nil, e.Wrap(a.cfg.Catalog.Source, e.ErrSourceUnavailable)
	}
}

// imageRepo - хранилище загрузок: MinIO, если настроен, иначе локальный каталог.
func (a *App) imageRepo() usecase.ImageRepository {
	if a.minio != nil {
		return s3Repo.NewImageRepo(a.minio, a.cfg.Minio)
	}
	return fileRepo.NewImageRepo(a.cfg.Upload.Dir)
}

func (a *App) embeddingCache() usecase.EmbeddingCache {
	if a.redis == nil {
		return nil
	}
	return redis.NewCacheRepo(a.redis, a.cfg.Redis)
}

func (a *App) embeddingMirror() usecase.EmbeddingMirror {
	if a.qdrant == nil {
		return nil
	}
	return qdrantRepo.NewEmbeddingRepo(a.qdrant, a.cfg.Qdrant, a.cfg.Ml.ModelName)
}

// publisher возвращает продюсер событий каталога или nil без Kafka.
func (a *App) publisher() *kafka.Producer {
	if a.cfg.Kafka == nil {
		return nil
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	a.closer.AddFunc("kafka producer", producer.Close)
	return producer
}

func (a *App) embedder() *usecase.Embedder {
	return usecase.NewEmbedder(a.ml, a.fetcher, a.embeddingCache(), a.logger)
}

// Close закрывает клиенты в обратном порядке.
func (a *App) Close(ctx context.Context) error {
	return a.closer.Close(ctx)
}

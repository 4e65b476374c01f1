package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	v1Grpc "github.com/DRSN-tech/visual-matcher/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/visual-matcher/internal/delivery/v1/http"
	"github.com/DRSN-tech/visual-matcher/internal/infrastructure/kafka"
	"github.com/DRSN-tech/visual-matcher/internal/infrastructure/storage"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const cleanupWait = 5 * time.Second

// Run поднимает HTTP и gRPC серверы и блокируется до сигнала остановки или фатальной ошибки.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Ml.CheckOnStart {
		readyCtx, cancel := context.WithTimeout(ctx, a.cfg.Ml.Timeout)
		err := a.ml.Ready(readyCtx)
		cancel()
		if err != nil {
			a.logger.Errorf(err, "embedding model is not ready")
			return e.Wrap(whereami.WhereAmI(), err)
		}
		a.logger.Infof("Embedding model %s is ready", a.cfg.Ml.ModelName)
	}

	repo, err := a.catalogRepo()
	if err != nil {
		a.logger.Errorf(err, "catalog source %q is unavailable", a.cfg.Catalog.Source)
		return e.Wrap(whereami.WhereAmI(), err)
	}

	store := catalog.NewStore()
	catalogUC := usecase.NewCatalogUC(store, repo, a.cfg.Catalog.Source, a.embeddingMirror(), a.logger)
	searchUC := usecase.NewSearchUC(store, a.embedder(), a.fetcher, a.logger)
	productUC := usecase.NewProductUC(store, a.logger)

	// shutdownCtx отменяется после остановки серверов.
	shutdownCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()

	imageRepo := a.imageRepo()
	cleanupTimeout := 30 * time.Second
	if a.cfg.Minio != nil {
		cleanupTimeout = a.cfg.Minio.CleanupTimeout
	}
	imagesInfra := storage.NewStorageInfrastructure(shutdownCtx, imageRepo, cleanupTimeout, a.logger)
	uploadUC := usecase.NewUploadUC(imagesInfra, imageRepo, a.fetcher, a.logger)

	grpcSrv := v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	grpcSrv.RegisterServices(searchUC, productUC)

	if _, err := catalogUC.Reload(ctx); err != nil {
		a.logger.Errorf(err, "initial catalog load failed, serving an empty catalog")
	}
	grpcSrv.SetServing(true)

	var consumer *kafka.CatalogConsumer
	if a.cfg.Kafka != nil {
		if err := a.publisher().EnsureTopic(initTimeout); err != nil {
			a.logger.Warnf("Failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
		}

		consumer = kafka.NewCatalogConsumer(kafka.NewReader(a.cfg.Kafka), catalogUC, a.logger)
		consumer.Start(ctx)
	}

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(v1Http.Usecases{
		Search:  searchUC,
		Product: productUC,
		Upload:  uploadUC,
		Catalog: catalogUC,
	}, a.cfg.Http.CORSOrigins, a.cfg.Upload.MaxFileSize)

	httpSrv := v1Http.NewServer(r, a.cfg.Http)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := httpSrv.Run(); err != nil {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-ctx.Done():
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.cfg.Http.ShutdownTimeout)
	defer stopCancel()

	grpcSrv.SetServing(false)

	if err := httpSrv.Stop(stopCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := grpcSrv.Stop(stopCtx); err != nil {
		a.logger.Warnf("gRPC server shutdown: %v", err)
	} else {
		a.logger.Infof("gRPC server stopped")
	}

	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			a.logger.Warnf("Kafka consumer close error: %v", err)
		}
	}

	cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupWait)
	if err := imagesInfra.WaitForCleanup(cleanupCtx); err != nil {
		a.logger.Warnf("Upload cleanup did not finish before shutdown, some objects may remain: %v", err)
	}
	cleanupCancel()
	cancelCleanup()

	if err := a.Close(stopCtx); err != nil {
		a.logger.Warnf("Failed to close resources: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

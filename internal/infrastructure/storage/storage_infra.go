// Package storage управляет загрузкой изображений в хранилище и их фоновой очисткой.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/jitter"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	defaultUploadLimit = 4
	cleanupAttempts    = 3
)

// StorageInfrastructure загружает изображения через ImageRepository и подчищает
// частично загруженные наборы. Работает с любым хранилищем: MinIO или файловой системой.
type StorageInfrastructure struct {
	repo           usecase.ImageRepository
	logger         logger.Logger
	shutdownCtx    context.Context
	cleanupTimeout time.Duration
	backoff        jitter.Backoff
	uploadLimit    int
	wg             sync.WaitGroup
}

func NewStorageInfrastructure(
	shutdownCtx context.Context,
	repo usecase.ImageRepository,
	cleanupTimeout time.Duration,
	logger logger.Logger,
) *StorageInfrastructure {
	return &StorageInfrastructure{
		repo:           repo,
		logger:         logger,
		shutdownCtx:    shutdownCtx,
		cleanupTimeout: cleanupTimeout,
		backoff: jitter.Backoff{
			Base:   time.Second,
			Max:    10 * time.Second,
			Factor: jitter.DefaultFactor,
		},
		uploadLimit: defaultUploadLimit,
	}
}

// UploadImages загружает изображения параллельно с ограничением одновременных операций.
// При первой ошибке отменяет остальные загрузки и запускает очистку уже загруженных объектов.
// Ключи возвращаются в порядке запроса.
func (s *StorageInfrastructure) UploadImages(ctx context.Context, req *usecase.UploadImagesReq) (*usecase.UploadImagesRes, error) {
	const op = "StorageInfrastructure.UploadImages"

	keys := make([]string, len(req.Images))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.uploadLimit)
	for i, image := range req.Images {
		g.Go(func() error {
			key, err := s.repo.Upload(gCtx, image)
			if err != nil {
				return fmt.Errorf("upload %s failed: %w", image.Name, err)
			}

			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		uploaded := make([]string, 0, len(keys))
		for _, key := range keys {
			if key != "" {
				uploaded = append(uploaded, key)
			}
		}
		s.CleanupImages(uploaded)

		return nil, e.Wrap(op, err)
	}

	return usecase.NewUploadImagesRes(keys), nil
}

// CleanupImages запускает фоновую очистку указанных ключей.
func (s *StorageInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}

	s.wg.Add(1)
	go s.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и джиттером.
func (s *StorageInfrastructure) cleanupUploadedKeys(keys []string) {
	defer s.wg.Done()
	const op = "StorageInfrastructure.cleanupUploadedKeys"
	s.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(s.shutdownCtx, s.cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := s.repo.Delete(ctx, key)
			if err == nil {
				break
			}

			if ctx.Err() != nil {
				s.logger.Warnf("cleanup interrupted by shutdown, key=%v", key)
				return
			}

			if attempt == cleanupAttempts-1 {
				s.logger.Errorf(err, "%s: giving up on key=%v", op, key)
				break
			}

			select {
			case <-time.After(s.backoff.Delay(attempt)):
			case <-ctx.Done():
				s.logger.Warnf("cleanup interrupted by shutdown during backoff, key=%v", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых очисток с учётом таймаута завершения приложения.
func (s *StorageInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("storage cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

package usecase

import (
	"context"
	"image"

	"github.com/DRSN-tech/visual-matcher/pkg/clip"
)

// MlServiceInfra - граница вызова модели эмбеддингов.
type MlServiceInfra interface {
	Infer(ctx context.Context, tensor clip.Tensor) ([]clip.NamedTensor, error)
	Ready(ctx context.Context) error
}

// ImageFetcher скачивает и декодирует изображения.
type ImageFetcher interface {
	Download(ctx context.Context, url string) (*DownloadedImage, error)
	Decode(data []byte) (image.Image, string, error)
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

// ProductSource отдаёт товары внешнего источника для сборки каталога.
type ProductSource interface {
	Products(ctx context.Context, total int) ([]SourceProduct, error)
}

// CatalogPublisher оповещает серверы о новом каталоге.
type CatalogPublisher interface {
	PublishCatalog(ctx context.Context, event *CatalogPublishedEvent) error
}

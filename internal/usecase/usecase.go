package usecase

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
)

type SearchUC interface {
	SearchByImage(ctx context.Context, req *SearchByImageReq) (*SearchRes, error)
	SearchByURL(ctx context.Context, req *SearchByURLReq) (*SearchRes, error)
	SearchByVector(ctx context.Context, req *SearchByVectorReq) (*SearchRes, error)
}

type ProductUC interface {
	ListProducts(ctx context.Context, req *ListProductsReq) (*ListProductsRes, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProducts(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
	Categories(ctx context.Context) ([]string, error)
}

type UploadUC interface {
	UploadFile(ctx context.Context, req *UploadFileReq) (*UploadRes, error)
	UploadFromURL(ctx context.Context, req *UploadURLReq) (*UploadRes, error)
	GetUpload(ctx context.Context, filename string) (*domain.Image, error)
}

type CatalogUC interface {
	Reload(ctx context.Context) (*ReloadRes, error)
	Status() CatalogStatus
}

type BuilderUC interface {
	Build(ctx context.Context) (*BuildRes, error)
}

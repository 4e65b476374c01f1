package usecase

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
)

// ProductUseCase отдаёт товары текущего поколения каталога.
type ProductUseCase struct {
	store  *catalog.Store
	logger logger.Logger
}

func NewProductUC(store *catalog.Store, logger logger.Logger) *ProductUseCase {
	return &ProductUseCase{
		store:  store,
		logger: logger,
	}
}

// ListProducts возвращает страницу товаров с необязательным фильтром по категории.
func (p *ProductUseCase) ListProducts(_ context.Context, req *ListProductsReq) (*ListProductsRes, error) {
	products, total := p.store.ListPage(req.Page, req.PerPage, req.Category)

	return &ListProductsRes{
		Products: products,
		Total:    total,
		Page:     req.Page,
		PerPage:  req.PerPage,
	}, nil
}

// GetProduct возвращает товар по идентификатору.
func (p *ProductUseCase) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := p.store.GetByID(id)
	if !ok {
		return nil, e.Wrap("ProductUseCase.GetProduct", e.ErrProductNotFound)
	}

	return &product, nil
}

// GetProducts возвращает информацию о товарах по их идентификаторам.
// Все идентификаторы ищутся в одном поколении каталога.
func (p *ProductUseCase) GetProducts(_ context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "ProductUseCase.GetProducts"

	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.Mark(e.ErrStatusBadRequest, e.ErrNoProducts))
	}

	gen := p.store.Snapshot()

	result := make([]domain.Product, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := gen.Get(id); ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// Categories возвращает отсортированный список категорий.
func (p *ProductUseCase) Categories(_ context.Context) ([]string, error) {
	return p.store.Categories(), nil
}

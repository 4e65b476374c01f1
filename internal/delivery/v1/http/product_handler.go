package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// listProducts
//
//	@Summary		Список товаров
//	@Tags			products
//	@Produce		json
//	@Param			page		query		int		false	"Номер страницы"				default(1)
//	@Param			per_page	query		int		false	"Товаров на странице (1-100)"	default(20)
//	@Param			category	query		string	false	"Фильтр по категории"
//	@Success		200			{object}	ProductsResponse
//	@Router			/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, perPage := parsePaging(r)

	res, err := p.productUsecase.ListProducts(r.Context(), &usecase.ListProductsReq{
		Page:     page,
		PerPage:  perPage,
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		p.logger.Errorf(err, "list products failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ProductsResponse{
		Products: toProductDTOs(res.Products),
		Total:    res.Total,
		Page:     res.Page,
		PerPage:  res.PerPage,
	})
}

// listCategories
//
//	@Summary		Категории каталога
//	@Tags			products
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Router			/products/categories [get]
func (p *ProductHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := p.productUsecase.Categories(r.Context())
	if err != nil {
		p.logger.Errorf(err, "list categories failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// getProduct
//
//	@Summary		Товар по идентификатору
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"Идентификатор товара"
//	@Success		200	{object}	ProductDTO
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.ErrProductNotFound)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductDTO(*product))
}

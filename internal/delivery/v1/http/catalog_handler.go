package http

import (
	"net/http"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
)

const (
	serviceName    = "visual-product-matcher"
	serviceVersion = "1.0.0"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, logger: logger}
}

// health
//
//	@Summary	Состояние сервиса
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (c *CatalogHandler) health(w http.ResponseWriter, _ *http.Request) {
	status := c.catalogUsecase.Status()

	WriteSuccess(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
		Catalog: CatalogDTO{
			Loaded:   status.Loaded,
			Version:  status.Version,
			Products: status.Products,
		},
	})
}

// reload
//
//	@Summary		Перезагрузка каталога
//	@Description	Перечитывает каталог из настроенного источника и атомарно заменяет текущий
//	@Tags			admin
//	@Produce		json
//	@Success		200	{object}	ReloadResponse
//	@Failure		500	{object}	ErrorResponse	"Каталог не загружен, прежний сохранён"
//	@Router			/admin/catalog/reload [post]
func (c *CatalogHandler) reload(w http.ResponseWriter, r *http.Request) {
	res, err := c.catalogUsecase.Reload(r.Context())
	if err != nil {
		c.logger.Errorf(err, "catalog reload failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ReloadResponse{
		Source:     res.Source,
		Version:    res.Summary.Version,
		Kept:       res.Summary.Kept,
		Skipped:    res.Summary.Skipped,
		Duplicates: res.Summary.Duplicates,
	})
}

package http

import (
	"net/http"
	"time"

	_ "github.com/DRSN-tech/visual-matcher/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Usecases - зависимости HTTP-слоя.
type Usecases struct {
	Search  usecase.SearchUC
	Product usecase.ProductUC
	Upload  usecase.UploadUC
	Catalog usecase.CatalogUC
}

// Init регистрирует middleware и маршруты. maxFileSize ограничивает тело multipart-запросов.
func (r *Router) Init(uc Usecases, corsOrigins []string, maxFileSize int64) {
	r.router.Use(middleware.RequestID)
	r.router.Use(middleware.RealIP)
	r.router.Use(r.requestLogger)
	r.router.Use(middleware.Recoverer)
	r.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.router.Use(securityHeaders)

	r.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusNotFound, NewErrorResponse("Not found."))
	})
	r.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteSuccess(w, http.StatusMethodNotAllowed, NewErrorResponse("Method not allowed."))
	})

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(api chi.Router) {
		registerCatalogRoutes(api, NewCatalogHandler(uc.Catalog, r.logger))
		registerSearchRoutes(api, NewSearchHandler(uc.Search, maxFileSize, r.logger))
		registerProductRoutes(api, NewProductHandler(uc.Product, r.logger))
		registerUploadRoutes(api, NewUploadHandler(uc.Upload, maxFileSize, r.logger))
	})
}

func registerCatalogRoutes(router chi.Router, h *CatalogHandler) {
	router.Get("/health", h.health)
	router.Post("/admin/catalog/reload", h.reload)
}

func registerSearchRoutes(router chi.Router, h *SearchHandler) {
	router.Post("/search", h.searchByFile)
	router.Post("/search-url", h.searchByURL)
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.listProducts)
		pr.Get("/categories", h.listCategories)
		pr.Get("/{id}", h.getProduct)
	})
}

func registerUploadRoutes(router chi.Router, h *UploadHandler) {
	router.Post("/upload", h.upload)
	router.Post("/upload-url", h.uploadURL)
	router.Get("/uploads/{filename}", h.serveUpload)
}

func (r *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, req)

		r.logger.Infof("%s %s -> %d (%d bytes) in %s [%s]",
			req.Method, req.URL.Path, ww.Status(), ww.BytesWritten(),
			time.Since(start), middleware.GetReqID(req.Context()))
	})
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaxFileSize = 1 << 10

type stubSearch struct {
	lastImage *usecase.SearchByImageReq
	lastURL   *usecase.SearchByURLReq
	err       error
}

func (s *stubSearch) SearchByImage(_ context.Context, req *usecase.SearchByImageReq) (*usecase.SearchRes, error) {
	s.lastImage = req
	if s.err != nil {
		return nil, s.err
	}
	return usecase.NewSearchRes([]domain.SearchResult{{Product: testProduct(1), Score: 0.987654}},
		usecase.QueryInfo{Type: usecase.QueryTypeFile, Filename: req.Filename}), nil
}

func (s *stubSearch) SearchByURL(_ context.Context, req *usecase.SearchByURLReq) (*usecase.SearchRes, error) {
	s.lastURL = req
	if s.err != nil {
		return nil, s.err
	}
	return usecase.NewSearchRes(nil, usecase.QueryInfo{Type: usecase.QueryTypeURL, URL: req.URL}), nil
}

func (s *stubSearch) SearchByVector(context.Context, *usecase.SearchByVectorReq) (*usecase.SearchRes, error) {
	return nil, e.ErrStatusBadRequest
}

type stubProduct struct {
	lastList *usecase.ListProductsReq
}

func (s *stubProduct) ListProducts(_ context.Context, req *usecase.ListProductsReq) (*usecase.ListProductsRes, error) {
	s.lastList = req
	return &usecase.ListProductsRes{Products: []domain.Product{testProduct(1)}, Total: 1, Page: req.Page, PerPage: req.PerPage}, nil
}

func (s *stubProduct) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if id != 1 {
		return nil, e.ErrProductNotFound
	}
	p := testProduct(1)
	return &p, nil
}

func (s *stubProduct) GetProducts(context.Context, *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	return nil, nil
}

func (s *stubProduct) Categories(context.Context) ([]string, error) {
	return []string{"beauty", "groceries"}, nil
}

type stubUpload struct{}

func (stubUpload) UploadFile(_ context.Context, req *usecase.UploadFileReq) (*usecase.UploadRes, error) {
	return &usecase.UploadRes{Filename: "abc.png", PreviewURL: usecase.PreviewPath + "abc.png", Message: "Image uploaded successfully."}, nil
}

func (stubUpload) UploadFromURL(context.Context, *usecase.UploadURLReq) (*usecase.UploadRes, error) {
	return nil, e.ErrDownloadTimeout
}

func (stubUpload) GetUpload(_ context.Context, filename string) (*domain.Image, error) {
	if filename != "abc.png" {
		return nil, e.ErrFileNotFound
	}
	return domain.NewImage(filename, "uploads/abc.png", "image/png", []byte("png-bytes")), nil
}

type stubCatalog struct {
	err error
}

func (s stubCatalog) Reload(context.Context) (*usecase.ReloadRes, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecase.ReloadRes{Source: "file", Summary: catalog.LoadSummary{Version: 2, Kept: 3, Skipped: 1, Duplicates: 1}}, nil
}

func (stubCatalog) Status() usecase.CatalogStatus {
	return usecase.CatalogStatus{Loaded: true, Version: 2, Products: 3}
}

func testProduct(id int64) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Mascara",
		Category: "beauty",
		Brand:    "Essence",
		Price:    decimal.RequireFromString("9.99"),
		Image:    "https://cdn.example.com/1.png",
		Rating:   4.5,
	}
}

type testEnv struct {
	handler http.Handler
	search  *stubSearch
	product *stubProduct
}

func newTestEnv(t *testing.T, cat stubCatalog) *testEnv {
	t.Helper()

	env := &testEnv{search: &stubSearch{}, product: &stubProduct{}}
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNopLogger()).Init(Usecases{
		Search:  env.search,
		Product: env.product,
		Upload:  stubUpload{},
		Catalog: cat,
	}, []string{"http://localhost:5173"}, testMaxFileSize)
	env.handler = mux

	return env
}

func (env *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func multipartRequest(t *testing.T, path, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", res.Status)
	assert.Equal(t, "visual-product-matcher", res.Service)
	assert.Equal(t, CatalogDTO{Loaded: true, Version: 2, Products: 3}, res.Catalog)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
}

func TestSearchByFile(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	req := multipartRequest(t, "/api/v1/search?limit=500&min_score=-3", "image", "query.png", []byte("data"))
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[SearchResponse](t, rec)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 0.9877, res.Results[0].SimilarityScore)
	assert.Equal(t, 9.99, res.Results[0].Price)
	assert.Equal(t, QueryDTO{Type: "file", Filename: "query.png"}, res.Query)

	assert.Equal(t, "query.png", env.search.lastImage.Filename)
	assert.Equal(t, []byte("data"), env.search.lastImage.Data)
	assert.Equal(t, usecase.SearchParams{Limit: 100, MinScore: 0}, env.search.lastImage.Params)
}

func TestSearchByFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
	}{
		{
			name: "not multipart",
			req: func(*testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{}"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/search", "file", "a.png", []byte("x"))
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/api/v1/search", "image", "a.png", bytes.Repeat([]byte("x"), 2*testMaxFileSize))
			},
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, stubCatalog{})

			rec := env.do(tt.req(t))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
			assert.Nil(t, env.search.lastImage)
		})
	}
}

func TestSearchByFile_UsecaseError(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})
	env.search.err = e.Mark(e.ErrEmbedding, assert.AnError)

	rec := env.do(multipartRequest(t, "/api/v1/search", "image", "a.png", []byte("x")))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestToHTTPResponse_QueryVector(t *testing.T) {
	for _, err := range []error{
		e.Wrap("rank", e.ErrDimensionMismatch),
		e.Mark(e.ErrNonFiniteVector, assert.AnError),
	} {
		code, msg := ToHTTPResponse(err)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Invalid query vector.", msg)
	}
}

func TestSearchByURL(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search-url?limit=5&min_score=0.5",
		strings.NewReader(`{"url":"https://example.com/a.png"}`))
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[SearchResponse](t, rec)
	assert.Empty(t, res.Results)
	assert.Equal(t, QueryDTO{Type: "url", URL: "https://example.com/a.png"}, res.Query)
	assert.Equal(t, usecase.SearchParams{Limit: 5, MinScore: 0.5}, env.search.lastURL.Params)
}

func TestSearchByURL_BadBody(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})
	env.search.err = e.ErrMissingURL

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/search-url", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "", env.search.lastURL.URL)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products?page=0&per_page=1000&category=beauty", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[ProductsResponse](t, rec)
	assert.Len(t, res.Products, 1)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 100, res.PerPage)
	assert.Equal(t, "beauty", env.product.lastList.Category)
}

func TestProductByID(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decode[ProductDTO](t, rec).ID)

	for _, path := range []string{"/api/v1/products/2", "/api/v1/products/abc"} {
		rec = env.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Product not found.", decode[ErrorResponse](t, rec).Error)
	}
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/products/categories", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"beauty", "groceries"}, decode[CategoriesResponse](t, rec).Categories)
}

func TestUploadAndServe(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(multipartRequest(t, "/api/v1/upload", "image", "a.png", []byte("x")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/v1/uploads/abc.png", decode[UploadResponse](t, rec).PreviewURL)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/uploads/abc.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/uploads/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadURL_Timeout(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/upload-url", strings.NewReader(`{"url":"https://slow"}`)))

	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
}

func TestReload(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/reload", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ReloadResponse{Source: "file", Version: 2, Kept: 3, Skipped: 1, Duplicates: 1}, decode[ReloadResponse](t, rec))
}

func TestReload_Failure(t *testing.T) {
	env := newTestEnv(t, stubCatalog{err: e.Mark(e.ErrCatalogLoad, assert.AnError)})

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/v1/admin/catalog/reload", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, stubCatalog{})

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/v1/search", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

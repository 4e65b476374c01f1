package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
)

const (
	defaultLimit    = 20
	maxLimit        = 100
	defaultPerPage  = 20
	maxPerPage      = 100
	maxJSONBodySize = 1 << 20
	multipartMemory = 32 << 20
)

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// ToHTTPResponse сопоставляет ошибку статусу и сообщению для клиента.
func ToHTTPResponse(err error) (int, string) {
	switch {
	// 400
	case errors.Is(err, e.ErrNoImages):
		return http.StatusBadRequest, "No image file provided. Use field name 'image'."
	case errors.Is(err, e.ErrNoFileSelected):
		return http.StatusBadRequest, "No file selected."
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusBadRequest, "Invalid file type. Allowed: " + strings.Join(usecase.AllowedExtensions, ", ")
	case errors.Is(err, e.ErrMissingURL):
		return http.StatusBadRequest, "Missing 'url' field in request body."
	case errors.Is(err, e.ErrInvalidURL):
		return http.StatusBadRequest, "Invalid URL format."
	case errors.Is(err, e.ErrNotAnImage):
		return http.StatusBadRequest, "URL does not point to a valid image."
	case errors.Is(err, e.ErrDownloadFailed):
		return http.StatusBadRequest, "Failed to download image from URL."
	case errors.Is(err, e.ErrDecode):
		return http.StatusBadRequest, "Failed to process image."
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, "Expected multipart/form-data."
	case errors.Is(err, e.ErrInvalidFileName):
		return http.StatusBadRequest, "Invalid file name."
	case errors.Is(err, e.ErrNoProducts):
		return http.StatusBadRequest, "No product ids requested."
	case errors.Is(err, e.ErrVectorEmbeddingEmpty), errors.Is(err, e.ErrDimensionMismatch),
		errors.Is(err, e.ErrNonFiniteVector):
		return http.StatusBadRequest, "Invalid query vector."
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, "Bad request."
	// 404
	case errors.Is(err, e.ErrProductNotFound):
		return http.StatusNotFound, "Product not found."
	case errors.Is(err, e.ErrFileNotFound):
		return http.StatusNotFound, "File not found."
	// 408
	case errors.Is(err, e.ErrDownloadTimeout):
		return http.StatusRequestTimeout, "Timed out downloading image from URL."
	// 413
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10MB."
	// 422
	case errors.Is(err, e.ErrEmbedding):
		return http.StatusUnprocessableEntity, "Failed to analyze the image."
	// 500 / 503
	case errors.Is(err, e.ErrCatalogLoad):
		return http.StatusInternalServerError, "Catalog reload failed, previous catalog kept."
	case errors.Is(err, e.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, e.ErrSourceUnavailable.Error()
	default:
		return http.StatusInternalServerError, "Internal server error. Please try again later."
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// intParam читает целый параметр запроса; нечисловое значение даёт def.
func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func floatParam(r *http.Request, name string, def float64) float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return def
	}
	return v
}

func clamp[T int | float64](v, lo, hi T) T {
	return max(lo, min(v, hi))
}

// parseSearchParams: limit 1..100 (по умолчанию 20), min_score 0..1 (по умолчанию 0).
func parseSearchParams(r *http.Request) usecase.SearchParams {
	minScore := floatParam(r, "min_score", 0)
	if minScore != minScore { // NaN
		minScore = 0
	}

	return usecase.SearchParams{
		Limit:    clamp(intParam(r, "limit", defaultLimit), 1, maxLimit),
		MinScore: clamp(minScore, 0, 1),
	}
}

// parsePaging: page от 1, per_page 1..100 (по умолчанию 20).
func parsePaging(r *http.Request) (page, perPage int) {
	page = max(1, intParam(r, "page", 1))
	perPage = clamp(intParam(r, "per_page", defaultPerPage), 1, maxPerPage)
	return page, perPage
}

// readImageField читает файл из поля image формы, ограничивая тело запроса maxSize.
func readImageField(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return "", nil, e.Wrap(whereami.WhereAmI(), e.ErrNoImages)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, e.Wrap(whereami.WhereAmI(), tooLarge(err, e.ErrExpectedMultipart))
	}

	src, fh, err := r.FormFile("image")
	if err != nil {
		return "", nil, e.Wrap(whereami.WhereAmI(), e.ErrNoImages)
	}
	defer src.Close()

	if fh.Filename == "" {
		return "", nil, e.Wrap(whereami.WhereAmI(), e.ErrNoFileSelected)
	}

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return "", nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if int64(len(data)) > maxSize {
		return "", nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	return fh.Filename, data, nil
}

// readURLField читает {"url": "..."} из тела; неразборчивое тело считается пустым.
func readURLField(w http.ResponseWriter, r *http.Request) string {
	var body URLRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}

	return body.URL
}

func tooLarge(err error, fallback error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return e.Mark(e.ErrFileTooLarge, err)
	}
	return e.Mark(fallback, err)
}

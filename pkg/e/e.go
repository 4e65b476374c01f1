package e

import "fmt"

var (
	// Ошибки ядра поиска
	ErrDecode            = fmt.Errorf("image cannot be decoded")
	ErrEmbedding         = fmt.Errorf("embedding generation failed")
	ErrCatalogLoad       = fmt.Errorf("catalog load failed")
	ErrCatalogNotFound   = fmt.Errorf("catalog not found")
	ErrDimensionMismatch = fmt.Errorf("vector dimension mismatch")
	ErrNonFiniteVector   = fmt.Errorf("vector contains non-finite values")

	// Внутренние ошибки с векторами
	ErrEmptyVectors         = fmt.Errorf("empty vectors")
	ErrVectorEmbeddingEmpty = fmt.Errorf("vector embedding is empty")
	ErrOutputNotFound       = fmt.Errorf("model output not found")
	ErrModelNotReady        = fmt.Errorf("model is not ready")
	ErrNoProducts           = fmt.Errorf("no products requested")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrNoImages             = fmt.Errorf("no image file provided, use field name 'image'")
	ErrNoFileSelected       = fmt.Errorf("no file selected")
	ErrUnsupportedMediaType = fmt.Errorf("invalid file type, allowed: gif, jpeg, jpg, png, webp")
	ErrMissingURL           = fmt.Errorf("missing 'url' field in request body")
	ErrInvalidURL           = fmt.Errorf("invalid URL, must start with http:// or https://")
	ErrNotAnImage           = fmt.Errorf("URL does not point to a valid image")
	ErrDownloadFailed       = fmt.Errorf("failed to download image from URL")
	ErrInvalidFileName      = fmt.Errorf("invalid file name")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrFileNotFound    = fmt.Errorf("file not found")

	// 408 Request Timeout
	ErrDownloadTimeout = fmt.Errorf("timed out downloading image from URL")

	// 413 Request Entity Too Large
	ErrFileTooLarge = fmt.Errorf("file too large, maximum size is 10MB")

	// 500 / 503
	ErrInternalServerError = fmt.Errorf("internal server error, please try again later")
	ErrSourceUnavailable   = fmt.Errorf("catalog source is not configured")

	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
	ErrTransactionNotFound  = fmt.Errorf("transaction not found in context")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Mark помечает ошибку сентинелом kind, сохраняя исходную причину в цепочке.
// errors.Is срабатывает и для kind, и для err.
func Mark(kind error, err error) error {
	if err == nil {
		return kind
	}

	return fmt.Errorf("%w: %w", kind, err)
}

package usecase

import (
	"path"
	"strings"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
)

// AllowedExtensions - расширения изображений, принимаемых от клиентов.
var AllowedExtensions = []string{"gif", "jpeg", "jpg", "png", "webp"}

const defaultExtension = "jpg"

// fileExtension возвращает расширение после последней точки в нижнем регистре.
func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func isAllowedExtension(ext string) bool {
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// validateFileName проверяет имя файла из multipart-формы.
func validateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return e.ErrNoFileSelected
	}

	if !isAllowedExtension(fileExtension(name)) {
		return e.ErrUnsupportedMediaType
	}

	return nil
}

// validateURL возвращает очищенный URL или ошибку валидации.
func validateURL(raw string) (string, error) {
	url := strings.TrimSpace(raw)
	if url == "" {
		return "", e.ErrMissingURL
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "", e.ErrInvalidURL
	}

	return url, nil
}

// storedExtension выбирает расширение для сохранения: исходное, если оно разрешено, иначе jpg.
func storedExtension(originalName string) string {
	if ext := fileExtension(path.Base(originalName)); isAllowedExtension(ext) {
		return ext
	}
	return defaultExtension
}

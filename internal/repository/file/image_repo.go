package file

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
)

// ImageRepo хранит изображения в каталоге на диске, ключ объекта - относительный путь.
type ImageRepo struct {
	root string
}

func NewImageRepo(root string) *ImageRepo {
	return &ImageRepo{root: root}
}

func (i *ImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	path, err := i.resolve(image.ObjectKey)
	if err != nil {
		return "", err
	}

	if err := writeFileAtomic(path, image.Data); err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return image.ObjectKey, nil
}

// Get читает файл. Отсутствующий ключ - e.ErrFileNotFound.
func (i *ImageRepo) Get(_ context.Context, key string) (*domain.Image, error) {
	path, err := i.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrFileNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return domain.NewImage(filepath.Base(path), key, contentType, data), nil
}

func (i *ImageRepo) Delete(_ context.Context, key string) error {
	path, err := i.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// resolve переводит ключ в путь внутри корня, не выпуская его наружу.
func (i *ImageRepo) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", e.Wrap(whereami.WhereAmI(), e.ErrInvalidFileName)
	}

	return filepath.Join(i.root, clean), nil
}

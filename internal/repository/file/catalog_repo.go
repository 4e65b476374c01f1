// Package file хранит каталог и загруженные изображения на локальном диске.
package file

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
)

// CatalogRepo читает и пишет JSON-каталог в файле.
type CatalogRepo struct {
	path string
}

func NewCatalogRepo(path string) *CatalogRepo {
	return &CatalogRepo{path: path}
}

// Fetch читает каталог. Отсутствующий файл - e.ErrCatalogNotFound.
func (c *CatalogRepo) Fetch(_ context.Context) ([]catalog.Record, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, e.Wrap(c.path, e.ErrCatalogNotFound)
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	records, err := catalog.DecodeJSON(data)
	if err != nil {
		return nil, e.Wrap(c.path, err)
	}

	return records, nil
}

// Save атомарно заменяет файл каталога: запись во временный файл и переименование.
func (c *CatalogRepo) Save(_ context.Context, records []catalog.Record) error {
	data, err := catalog.EncodeJSON(records)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := writeFileAtomic(c.path, data); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

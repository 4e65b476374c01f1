package minio

import (
	"bytes"
	"context"
	"errors"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

const catalogContentType = "application/json"

// CatalogRepo хранит каталог JSON-объектом в бакете.
type CatalogRepo struct {
	mc        *minio.Client
	bucket    string
	objectKey string
}

func NewCatalogRepo(mc *minio.Client, cfg *cfg.MinIOCfg, objectKey string) *CatalogRepo {
	return &CatalogRepo{
		mc:        mc,
		bucket:    cfg.BucketName,
		objectKey: objectKey,
	}
}

// Fetch читает и разбирает объект каталога. Отсутствующий объект - e.ErrCatalogNotFound.
func (c *CatalogRepo) Fetch(ctx context.Context) ([]catalog.Record, error) {
	data, _, err := getObject(ctx, c.mc, c.bucket, c.objectKey)
	if errors.Is(err, e.ErrFileNotFound) {
		return nil, e.Wrap(whereami.WhereAmI(), e.Mark(e.ErrCatalogNotFound, err))
	}
	if err != nil {
		return nil, err
	}

	records, err := catalog.DecodeJSON(data)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return records, nil
}

// Save перезаписывает объект каталога.
func (c *CatalogRepo) Save(ctx context.Context, records []catalog.Record) error {
	data, err := catalog.EncodeJSON(records)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	_, err = c.mc.PutObject(ctx, c.bucket, c.objectKey, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: catalogContentType,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

package minio

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo реализует репозиторий изображений поверх MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload загружает изображение в MinIO и возвращает ключ объекта.
func (i *ImageRepo) Upload(ctx context.Context, image *domain.Image) (string, error) {
	reader := bytes.NewReader(image.Data)

	info, err := i.mc.PutObject(ctx, i.cfg.BucketName, image.ObjectKey, reader, image.Size, minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// Get читает объект целиком. Отсутствующий ключ - e.ErrFileNotFound.
func (i *ImageRepo) Get(ctx context.Context, key string) (*domain.Image, error) {
	data, contentType, err := getObject(ctx, i.mc, i.cfg.BucketName, key)
	if err != nil {
		return nil, err
	}

	return domain.NewImage(path.Base(key), key, contentType, data), nil
}

// Delete удаляет объект из MinIO по указанному ключу.
func (i *ImageRepo) Delete(ctx context.Context, key string) error {
	if err := i.mc.RemoveObject(ctx, i.cfg.BucketName, key, minio.RemoveObjectOptions{}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func getObject(ctx context.Context, mc *minio.Client, bucket, key string) ([]byte, string, error) {
	obj, err := mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), notFound(err))
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), notFound(err))
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", e.Wrap(whereami.WhereAmI(), err)
	}

	return data, info.ContentType, nil
}

// notFound помечает ошибку отсутствия объекта или бакета как e.ErrFileNotFound.
func notFound(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return e.Mark(e.ErrFileNotFound, err)
	default:
		return err
	}
}

package usecase

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/google/uuid"
)

const (
	// UploadsPrefix - префикс ключей загруженных изображений.
	UploadsPrefix = "uploads/"
	// PreviewPath - путь, по которому загруженные изображения отдаются клиенту.
	PreviewPath = "/api/v1/uploads/"
)

var uploadNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// UploadUseCase сохраняет изображения пользователей для предпросмотра.
type UploadUseCase struct {
	imagesInfra ImagesInfra
	imageRepo   ImageRepository
	fetcher     ImageFetcher
	logger      logger.Logger
}

func NewUploadUC(imagesInfra ImagesInfra, imageRepo ImageRepository, fetcher ImageFetcher, logger logger.Logger) *UploadUseCase {
	return &UploadUseCase{
		imagesInfra: imagesInfra,
		imageRepo:   imageRepo,
		fetcher:     fetcher,
		logger:      logger,
	}
}

// UploadFile проверяет и сохраняет изображение из multipart-формы.
func (u *UploadUseCase) UploadFile(ctx context.Context, req *UploadFileReq) (*UploadRes, error) {
	const op = "UploadUseCase.UploadFile"

	if err := validateFileName(req.Filename); err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := u.store(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res.Message = "Image uploaded successfully."
	return res, nil
}

// UploadFromURL скачивает изображение по ссылке и сохраняет его.
func (u *UploadUseCase) UploadFromURL(ctx context.Context, req *UploadURLReq) (*UploadRes, error) {
	const op = "UploadUseCase.UploadFromURL"

	rawURL, err := validateURL(req.URL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	img, err := u.fetcher.Download(ctx, rawURL)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	name := img.Name
	if name == "" {
		name = nameFromURL(rawURL)
	}

	res, err := u.store(ctx, name, img.Data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res.Message = "Image downloaded and saved successfully."
	return res, nil
}

// GetUpload возвращает ранее сохранённое изображение по имени файла.
func (u *UploadUseCase) GetUpload(ctx context.Context, filename string) (*domain.Image, error) {
	const op = "UploadUseCase.GetUpload"

	if !uploadNamePattern.MatchString(filename) || strings.Contains(filename, "..") {
		return nil, e.Wrap(op, e.ErrInvalidFileName)
	}

	img, err := u.imageRepo.Get(ctx, UploadsPrefix+filename)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	img.Name = filename
	return img, nil
}

func (u *UploadUseCase) store(ctx context.Context, originalName string, data []byte) (*UploadRes, error) {
	_, format, err := u.fetcher.Decode(data)
	if err != nil {
		return nil, err
	}
	u.logger.Debugf("upload %q decoded as %s", originalName, format)

	ext := storedExtension(originalName)
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
	img := domain.NewImage(name, UploadsPrefix+name, contentTypeFor(ext), data)

	if _, err := u.imagesInfra.UploadImages(ctx, NewUploadImagesReq(img)); err != nil {
		return nil, err
	}

	u.logger.Infof("Saved uploaded image %s", img.ObjectKey)
	return &UploadRes{Filename: name, PreviewURL: PreviewPath + name}, nil
}

// nameFromURL берёт имя файла из пути URL без query и fragment.
func nameFromURL(raw string) string {
	if parsed, err := url.Parse(raw); err == nil {
		if name := path.Base(parsed.Path); name != "." && name != "/" {
			return name
		}
	}
	return "downloaded." + defaultExtension
}

func contentTypeFor(ext string) string {
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/" + ext
	}
}

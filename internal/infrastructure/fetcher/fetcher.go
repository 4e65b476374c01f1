// Package fetcher скачивает изображения по ссылкам и декодирует их.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/infrastructure"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	_ "golang.org/x/image/webp"
)

// Fetcher скачивает изображения с ограничением по времени и размеру.
type Fetcher struct {
	client    *http.Client
	maxSize   int64
	timeout   time.Duration
	userAgent string
}

func NewFetcher(c *cfg.UploadCfg, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}

	return &Fetcher{
		client:    client,
		maxSize:   c.MaxFileSize,
		timeout:   c.DownloadTimeout,
		userAgent: c.UserAgent,
	}
}

// Download скачивает изображение. Ответ должен иметь Content-Type image/*,
// тело читается не больше лимита размера.
func (f *Fetcher) Download(ctx context.Context, rawURL string) (*usecase.DownloadedImage, error) {
	const op = "Fetcher.Download"

	ctx, span := tracing.StartClient(ctx, "image.download", attribute.String("url.full", rawURL))
	defer span.End()

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, e.Wrap(op, e.Mark(e.ErrInvalidURL, err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, e.Wrap(op, classify(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("%w: status %d", e.ErrDownloadFailed, resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, e.Wrap(op, fmt.Errorf("%w: content type %q", e.ErrNotAnImage, contentType))
	}

	if f.maxSize > 0 && resp.ContentLength > f.maxSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	reader := io.Reader(resp.Body)
	if f.maxSize > 0 {
		reader = io.LimitReader(resp.Body, f.maxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, e.Wrap(op, classify(err))
	}

	if f.maxSize > 0 && int64(len(data)) > f.maxSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	span.SetAttributes(attribute.Int("image.bytes", len(data)))
	return &usecase.DownloadedImage{
		Data:        data,
		ContentType: contentType,
		Name:        fileName(req.URL.Path, contentType),
	}, nil
}

// fileName берёт имя из пути URL; без расширения оно достраивается по Content-Type.
func fileName(urlPath, contentType string) string {
	name := path.Base(urlPath)
	if name == "." || name == "/" {
		name = "downloaded"
	}

	if path.Ext(name) == "" {
		if ext, err := infrastructure.GetExtensionFromMIME(contentType); err == nil {
			name += "." + ext
		}
	}

	return name
}

// Decode декодирует PNG, JPEG, GIF или WebP.
func (f *Fetcher) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", e.Wrap("Fetcher.Decode", e.Mark(e.ErrDecode, err))
	}

	return img, format, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return e.Mark(e.ErrDownloadTimeout, err)
	}

	return e.Mark(e.ErrDownloadFailed, err)
}

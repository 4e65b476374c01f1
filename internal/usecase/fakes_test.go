package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/clip"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
)

func pngBytes(c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func unitVector(i int) domain.Vector {
	v := make(domain.Vector, clip.EmbeddingDim)
	v[i] = 1
	return v
}

// fakeML возвращает вектор, выбранный по красному каналу левого верхнего пикселя.
type fakeML struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeML) Infer(_ context.Context, tensor clip.Tensor) ([]clip.NamedTensor, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	idx := 0
	if tensor.At(0, 0, 0) > 0 {
		idx = 1
	}
	return []clip.NamedTensor{{
		Name:  clip.ImageEmbedsOutput,
		Shape: []int64{1, clip.EmbeddingDim},
		Data:  unitVector(idx),
	}}, nil
}

func (f *fakeML) Ready(context.Context) error { return f.err }

func (f *fakeML) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeFetcher struct {
	images map[string][]byte
	err    error
}

func (f *fakeFetcher) Download(_ context.Context, url string) (*DownloadedImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.images[url]
	if !ok {
		return nil, e.ErrDownloadFailed
	}
	return &DownloadedImage{Data: data, ContentType: "image/png"}, nil
}

func (f *fakeFetcher) Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", e.Mark(e.ErrDecode, err)
	}
	return img, format, nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]domain.Vector
	set  chan string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]domain.Vector), set: make(chan string, 8)}
}

func (c *fakeCache) Get(_ context.Context, key string) (domain.Vector, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, vector domain.Vector) error {
	c.mu.Lock()
	c.data[key] = vector
	c.mu.Unlock()
	c.set <- key
	return nil
}

func (c *fakeCache) waitSet(d time.Duration) bool {
	select {
	case <-c.set:
		return true
	case <-time.After(d):
		return false
	}
}

type fakeSource struct {
	records []catalog.Record
	err     error
}

func (s *fakeSource) Fetch(context.Context) ([]catalog.Record, error) {
	return s.records, s.err
}

type fakeSink struct {
	saved []catalog.Record
	err   error
}

func (s *fakeSink) Save(_ context.Context, records []catalog.Record) error {
	s.saved = records
	return s.err
}

type fakeMirror struct {
	versions []uint64
	err      error
}

func (m *fakeMirror) Replace(_ context.Context, gen *catalog.Generation) error {
	m.versions = append(m.versions, gen.Version())
	return m.err
}

type fakeImagesInfra struct {
	repo *fakeImageRepo
}

func (f *fakeImagesInfra) UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error) {
	keys := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		key, err := f.repo.Upload(ctx, img)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return NewUploadImagesRes(keys), nil
}

func (f *fakeImagesInfra) CleanupImages([]string) {}

type fakeImageRepo struct {
	mu      sync.Mutex
	objects map[string]*domain.Image
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{objects: make(map[string]*domain.Image)}
}

func (r *fakeImageRepo) Upload(_ context.Context, img *domain.Image) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[img.ObjectKey] = img
	return img.ObjectKey, nil
}

func (r *fakeImageRepo) Get(_ context.Context, key string) (*domain.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.objects[key]
	if !ok {
		return nil, e.ErrFileNotFound
	}
	cp := *img
	return &cp, nil
}

func (r *fakeImageRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, key)
	return nil
}

type fakeProductSource struct {
	products []SourceProduct
}

func (s *fakeProductSource) Products(_ context.Context, total int) ([]SourceProduct, error) {
	if total < len(s.products) {
		return s.products[:total], nil
	}
	return s.products, nil
}

type fakePublisher struct {
	events []*CatalogPublishedEvent
}

func (p *fakePublisher) PublishCatalog(_ context.Context, event *CatalogPublishedEvent) error {
	p.events = append(p.events, event)
	return nil
}

package usecase

import (
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/shopspring/decimal"
)

// SEARCH USECASE

// Тип запроса поиска.
const (
	QueryTypeFile   = "file"
	QueryTypeURL    = "url"
	QueryTypeVector = "vector"
)

// SearchParams - параметры выдачи, уже приведённые к допустимым диапазонам.
type SearchParams struct {
	Limit    int
	MinScore float64
}

// SearchByImageReq - поиск по загруженному файлу.
type SearchByImageReq struct {
	Filename string
	Data     []byte
	Params   SearchParams
}

// SearchByURLReq - поиск по изображению по ссылке.
type SearchByURLReq struct {
	URL    string
	Params SearchParams
}

// SearchByVectorReq - поиск по готовому эмбеддингу.
type SearchByVectorReq struct {
	Vector domain.Vector
	Params SearchParams
}

// QueryInfo описывает запрос для ответа клиенту.
type QueryInfo struct {
	Type     string
	Filename string
	URL      string
}

type SearchRes struct {
	Results []domain.SearchResult
	Query   QueryInfo
}

// PRODUCT USECASE

type ListProductsReq struct {
	Page     int
	PerPage  int
	Category string
}

type ListProductsRes struct {
	Products []domain.Product
	Total    int
	Page     int
	PerPage  int
}

// GetProductsReq запрос информации о товарах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes - найденные товары в порядке запроса и ненайденные идентификаторы.
type GetProductsRes struct {
	Products         []domain.Product
	NotFoundProducts []int64
}

// UPLOAD USECASE

type UploadFileReq struct {
	Filename string
	Data     []byte
}

type UploadURLReq struct {
	URL string
}

type UploadRes struct {
	Filename   string
	PreviewURL string
	Message    string
}

// CATALOG USECASE

type ReloadRes struct {
	Source  string
	Summary catalog.LoadSummary
}

// CatalogStatus - состояние каталога для health-проверок.
type CatalogStatus struct {
	Loaded   bool // была хотя бы одна успешная загрузка
	Version  uint64
	Products int
	LoadedAt time.Time
}

// BUILDER USECASE

// SourceProduct - товар внешнего источника до получения эмбеддинга.
type SourceProduct struct {
	ID          int64
	Title       string
	Category    string
	Brand       string
	Description string
	Price       decimal.Decimal
	Rating      float64
	Thumbnail   string
	Images      []string
}

type BuildRes struct {
	Saved  int
	Failed int
}

// INFRASTRUCTURE

// DownloadedImage - скачанное изображение.
type DownloadedImage struct {
	Data        []byte
	ContentType string
	Name        string // имя файла из пути URL
}

// CatalogPublishedEvent - событие публикации нового каталога.
type CatalogPublishedEvent struct {
	EventID     string
	Source      string
	Products    int
	Failed      int
	PublishedAt time.Time
}

// UploadImagesReq - запрос на сохранение изображений.
type UploadImagesReq struct {
	Images []*domain.Image
}

// UploadImagesRes - ключи сохранённых объектов.
type UploadImagesRes struct {
	ImagesKeys []string
}

// MAPPERS

func NewUploadImagesReq(images ...*domain.Image) *UploadImagesReq {
	return &UploadImagesReq{Images: images}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{ImagesKeys: imagesKeys}
}

func NewGetProductsRes(pr []domain.Product, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewSearchRes(results []domain.SearchResult, query QueryInfo) *SearchRes {
	return &SearchRes{Results: results, Query: query}
}

package http

import (
	"math"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type URLRequest struct {
	URL string `json:"url"`
}

type ProductDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Thumbnail   string  `json:"thumbnail"`
	Rating      float64 `json:"rating"`
}

type SearchResultDTO struct {
	ProductDTO
	SimilarityScore float64 `json:"similarity_score"`
}

type QueryDTO struct {
	Type     string `json:"type"`
	Filename string `json:"filename,omitempty"`
	URL      string `json:"url,omitempty"`
}

type SearchResponse struct {
	Results []SearchResultDTO `json:"results"`
	Total   int               `json:"total"`
	Query   QueryDTO          `json:"query"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PerPage  int          `json:"per_page"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type UploadResponse struct {
	Filename   string `json:"filename"`
	PreviewURL string `json:"preview_url"`
	Message    string `json:"message"`
}

type CatalogDTO struct {
	Loaded   bool   `json:"loaded"`
	Version  uint64 `json:"version"`
	Products int    `json:"products"`
}

type HealthResponse struct {
	Status  string     `json:"status"`
	Service string     `json:"service"`
	Version string     `json:"version"`
	Catalog CatalogDTO `json:"catalog"`
}

type ReloadResponse struct {
	Source     string `json:"source"`
	Version    uint64 `json:"version"`
	Kept       int    `json:"kept"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Image:       p.Image,
		Thumbnail:   p.Thumbnail,
		Rating:      p.Rating,
	}
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	result := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		result = append(result, toProductDTO(p))
	}
	return result
}

// roundScore округляет оценку до 4 знаков для ответа.
func roundScore(score float64) float64 {
	return math.Round(score*1e4) / 1e4
}

func toSearchResponse(res *usecase.SearchRes) SearchResponse {
	results := make([]SearchResultDTO, 0, len(res.Results))
	for _, r := range res.Results {
		results = append(results, SearchResultDTO{
			ProductDTO:      toProductDTO(r.Product),
			SimilarityScore: roundScore(r.Score),
		})
	}

	return SearchResponse{
		Results: results,
		Total:   len(results),
		Query: QueryDTO{
			Type:     res.Query.Type,
			Filename: res.Query.Filename,
			URL:      res.Query.URL,
		},
	}
}

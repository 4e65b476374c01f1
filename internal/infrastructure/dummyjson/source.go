// Package dummyjson читает товары из публичного API DummyJSON для сборки каталога.
package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type product struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Thumbnail   string          `json:"thumbnail"`
	Images      []string        `json:"images"`
}

type page struct {
	Products []product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Source постранично читает товары с ограничением частоты запросов.
type Source struct {
	client   *http.Client
	baseURL  string
	pageSize int
	timeout  time.Duration
	limiter  *rate.Limiter
	logger   logger.Logger
}

func NewSource(c *cfg.BuilderCfg, client *http.Client, logger logger.Logger) *Source {
	if client == nil {
		client = &http.Client{}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if c.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RequestsPerSecond), 1)
	}

	return &Source{
		client:   client,
		baseURL:  c.SourceURL,
		pageSize: c.PageSize,
		timeout:  c.RequestTimeout,
		limiter:  limiter,
		logger:   logger,
	}
}

// Products возвращает до total товаров в порядке API.
func (s *Source) Products(ctx context.Context, total int) ([]usecase.SourceProduct, error) {
	result := make([]usecase.SourceProduct, 0, total)

	for skip := 0; len(result) < total; {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		limit := min(s.pageSize, total-len(result))
		p, err := s.fetchPage(ctx, limit, skip)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		s.logger.Debugf("fetched %d products (skip=%d, total=%d)", len(p.Products), skip, p.Total)

		for _, pr := range p.Products {
			result = append(result, toSourceProduct(pr))
		}

		skip += len(p.Products)
		if len(p.Products) == 0 || skip >= p.Total {
			break
		}
	}

	if len(result) > total {
		result = result[:total]
	}

	return result, nil
}

func (s *Source) fetchPage(ctx context.Context, limit, skip int) (*page, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("skip", strconv.Itoa(skip))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("product source returned %d", resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode product page: %w", err)
	}

	return &p, nil
}

func toSourceProduct(p product) usecase.SourceProduct {
	return usecase.SourceProduct{
		ID:          p.ID,
		Title:       p.Title,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		Price:       p.Price,
		Rating:      p.Rating,
		Thumbnail:   p.Thumbnail,
		Images:      p.Images,
	}
}

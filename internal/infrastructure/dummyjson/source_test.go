package dummyjson

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogServer отдаёт n товаров в формате DummyJSON.
func catalogServer(t *testing.T, n int, requests *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		require.NoError(t, err)
		skip, err := strconv.Atoi(r.URL.Query().Get("skip"))
		require.NoError(t, err)

		items := make([]string, 0, limit)
		for id := skip + 1; id <= min(skip+limit, n); id++ {
			items = append(items, fmt.Sprintf(
				`{"id":%d,"title":"Product %d","category":"beauty","price":9.99,"rating":4.1,"thumbnail":"https://cdn/%d.png","images":["https://cdn/%d/0.png"]}`,
				id, id, id, id))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"products":[%s],"total":%d,"skip":%d,"limit":%d}`,
			strings.Join(items, ","), n, skip, limit)
	}))
}

func newSource(url string) *Source {
	return NewSource(&cfg.BuilderCfg{
		SourceURL:      url,
		PageSize:       30,
		RequestTimeout: time.Second,
	}, nil, logger.NewNopLogger())
}

func TestProductsPaginates(t *testing.T) {
	var requests atomic.Int32
	srv := catalogServer(t, 100, &requests)
	defer srv.Close()

	products, err := newSource(srv.URL).Products(context.Background(), 65)

	require.NoError(t, err)
	require.Len(t, products, 65)
	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, int64(65), products[64].ID)
	assert.Equal(t, "https://cdn/1.png", products[0].Thumbnail)
	assert.True(t, decimal.RequireFromString("9.99").Equal(products[0].Price))
}

func TestProductsStopsAtSourceEnd(t *testing.T) {
	var requests atomic.Int32
	srv := catalogServer(t, 40, &requests)
	defer srv.Close()

	products, err := newSource(srv.URL).Products(context.Background(), 100)

	require.NoError(t, err)
	assert.Len(t, products, 40)
	assert.Equal(t, int32(2), requests.Load())
}

func TestProductsSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newSource(srv.URL).Products(context.Background(), 10)

	assert.ErrorContains(t, err, "502")
}

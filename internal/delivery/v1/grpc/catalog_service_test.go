package grpc

import (
	"context"
	"math"
	"net"
	"testing"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubSearch struct {
	last *usecase.SearchByVectorReq
}

func (s *stubSearch) SearchByImage(context.Context, *usecase.SearchByImageReq) (*usecase.SearchRes, error) {
	return nil, e.ErrStatusBadRequest
}

func (s *stubSearch) SearchByURL(context.Context, *usecase.SearchByURLReq) (*usecase.SearchRes, error) {
	return nil, e.ErrStatusBadRequest
}

func (s *stubSearch) SearchByVector(_ context.Context, req *usecase.SearchByVectorReq) (*usecase.SearchRes, error) {
	s.last = req
	if len(req.Vector) != 2 {
		return nil, e.Wrap("rank", e.ErrDimensionMismatch)
	}
	return usecase.NewSearchRes([]domain.SearchResult{{Product: product(7), Score: 0.75}},
		usecase.QueryInfo{Type: usecase.QueryTypeVector}), nil
}

type stubProducts struct{}

func (stubProducts) ListProducts(context.Context, *usecase.ListProductsReq) (*usecase.ListProductsRes, error) {
	return nil, nil
}

func (stubProducts) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, e.ErrProductNotFound
}

func (stubProducts) GetProducts(_ context.Context, req *usecase.GetProductsReq) (*usecase.GetProductsRes, error) {
	if len(req.IDs) == 0 {
		return nil, e.Mark(e.ErrStatusBadRequest, e.ErrNoProducts)
	}

	var found []domain.Product
	var missing []int64
	for _, id := range req.IDs {
		if id == 7 {
			found = append(found, product(7))
		} else {
			missing = append(missing, id)
		}
	}
	return usecase.NewGetProductsRes(found, missing), nil
}

func (stubProducts) Categories(context.Context) ([]string, error) {
	return nil, nil
}

func product(id int64) domain.Product {
	return domain.Product{ID: id, Name: "Lamp", Category: "home", Price: decimal.RequireFromString("12.50")}
}

type testServer struct {
	server *GRPCServer
	search *stubSearch
	conn   *grpc.ClientConn
}

func startServer(t *testing.T) *testServer {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ts := &testServer{
		server: NewGRPCServer(&cfg.GRPCConfig{NetworkMode: "tcp"}, logger.NewNopLogger()),
		search: &stubSearch{},
	}
	ts.server.RegisterServices(ts.search, stubProducts{})

	go func() { _ = ts.server.Serve(lis) }()
	t.Cleanup(func() { _ = ts.server.Stop(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ts.conn = conn

	return ts
}

func (ts *testServer) invoke(t *testing.T, method string, req map[string]any) (*structpb.Struct, error) {
	t.Helper()

	in, err := structpb.NewStruct(req)
	require.NoError(t, err)

	out := new(structpb.Struct)
	err = ts.conn.Invoke(context.Background(), method, in, out)
	return out, err
}

func TestSearchByVector(t *testing.T) {
	ts := startServer(t)

	out, err := ts.invoke(t, SearchByVectorMethod, map[string]any{
		"vector":    []any{0.6, 0.8},
		"limit":     1000,
		"min_score": 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, usecase.SearchParams{Limit: maxLimit, MinScore: 0.5}, ts.search.last.Params)
	assert.Equal(t, domain.Vector{0.6, 0.8}, ts.search.last.Vector)

	res := out.AsMap()
	assert.Equal(t, float64(1), res["total"])
	results := res["results"].([]any)
	require.Len(t, results, 1)
	item := results[0].(map[string]any)
	assert.Equal(t, float64(7), item["id"])
	assert.Equal(t, 12.5, item["price"])
	assert.Equal(t, 0.75, item["similarity_score"])
}

func TestSearchByVector_Defaults(t *testing.T) {
	ts := startServer(t)

	_, err := ts.invoke(t, SearchByVectorMethod, map[string]any{"vector": []any{1, 0}})
	require.NoError(t, err)

	assert.Equal(t, usecase.SearchParams{Limit: defaultLimit}, ts.search.last.Params)
}

func TestSearchByVector_InvalidArgument(t *testing.T) {
	ts := startServer(t)

	tests := []struct {
		name string
		req  map[string]any
	}{
		{name: "missing vector", req: map[string]any{}},
		{name: "empty vector", req: map[string]any{"vector": []any{}}},
		{name: "not numbers", req: map[string]any{"vector": []any{"a", "b"}}},
		{name: "dimension mismatch", req: map[string]any{"vector": []any{1, 0, 0}}},
		{name: "mixed kinds", req: map[string]any{"vector": []any{1, true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.invoke(t, SearchByVectorMethod, tt.req)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGetProducts(t *testing.T) {
	ts := startServer(t)

	out, err := ts.invoke(t, GetProductsMethod, map[string]any{"ids": []any{7, 8}})
	require.NoError(t, err)

	res := out.AsMap()
	products := res["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Lamp", products[0].(map[string]any)["name"])
	assert.Equal(t, []any{float64(8)}, res["products_not_found"])

	_, err = ts.invoke(t, GetProductsMethod, map[string]any{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSearchByVector_OutOfFloat32Range(t *testing.T) {
	for name, vector := range map[string][]any{
		"overflow":          {1e39, 0},
		"negative overflow": {0, -1e39},
	} {
		t.Run(name, func(t *testing.T) {
			ts := startServer(t)

			_, err := ts.invoke(t, SearchByVectorMethod, map[string]any{"vector": vector})

			assert.Equal(t, codes.InvalidArgument, status.Code(err))
			assert.Nil(t, ts.search.last)
		})
	}
}

func TestVectorField(t *testing.T) {
	req, err := structpb.NewStruct(map[string]any{"vector": []any{0.5, "x"}})
	require.NoError(t, err)

	_, err = vectorField(req)
	require.ErrorIs(t, err, e.ErrStatusBadRequest)
	assert.Contains(t, err.Error(), "vector element 1 is not a number")

	req, err = structpb.NewStruct(map[string]any{"vector": []any{float64(math.MaxFloat32), -1}})
	require.NoError(t, err)

	vector, err := vectorField(req)
	require.NoError(t, err)
	assert.Equal(t, domain.Vector{math.MaxFloat32, -1}, vector)
}

func TestGetProducts_InvalidIDs(t *testing.T) {
	ts := startServer(t)

	tests := []struct {
		name string
		ids  []any
	}{
		{name: "string", ids: []any{7, "8"}},
		{name: "bool", ids: []any{true}},
		{name: "fraction", ids: []any{7.5}},
		{name: "too large", ids: []any{1e20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.invoke(t, GetProductsMethod, map[string]any{"ids": tt.ids})
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestHealth(t *testing.T) {
	ts := startServer(t)
	client := healthpb.NewHealthClient(ts.conn)

	res, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, res.GetStatus())

	ts.server.SetServing(true)

	res, err = client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: CatalogServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, res.GetStatus())
}

func TestGRPCErrorResponse(t *testing.T) {
	assert.Equal(t, codes.NotFound, status.Code(GRPCErrorResponse(e.Wrap("op", e.ErrProductNotFound))))
	assert.Equal(t, codes.InvalidArgument, status.Code(GRPCErrorResponse(e.Mark(e.ErrNonFiniteVector, assert.AnError))))
	assert.Equal(t, codes.Unavailable, status.Code(GRPCErrorResponse(e.ErrSourceUnavailable)))
	assert.Equal(t, codes.Internal, status.Code(GRPCErrorResponse(assert.AnError)))
}

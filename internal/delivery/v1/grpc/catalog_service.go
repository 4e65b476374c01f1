package grpc

import (
	"context"
	"fmt"
	"math"

	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/internal/usecase"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type CatalogService struct {
	searchUC usecase.SearchUC
	prUC     usecase.ProductUC
	logger   logger.Logger
}

func NewCatalogService(searchUC usecase.SearchUC, prUC usecase.ProductUC, logger logger.Logger) *CatalogService {
	return &CatalogService{searchUC: searchUC, prUC: prUC, logger: logger}
}

// SearchByVector ожидает {"vector": [...], "limit": n, "min_score": s}.
func (g *CatalogService) SearchByVector(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.SearchByVector"

	vector, err := vectorField(req)
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := g.searchUC.SearchByVector(ctx, &usecase.SearchByVectorReq{
		Vector: vector,
		Params: searchParams(req),
	})
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	results := make([]any, 0, len(res.Results))
	for _, r := range res.Results {
		item := productMap(r.Product)
		item["similarity_score"] = r.Score
		results = append(results, item)
	}

	return newStruct(op, map[string]any{
		"results": results,
		"total":   len(results),
	})
}

// GetProducts ожидает {"ids": [...]}; возвращает найденные товары и ненайденные идентификаторы.
func (g *CatalogService) GetProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	const op = "grpc.GetProducts"

	ids, err := idsField(req)
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := g.prUC.GetProducts(ctx, usecase.NewGetProductsReq(ids))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	products := make([]any, 0, len(res.Products))
	for _, p := range res.Products {
		products = append(products, productMap(p))
	}
	notFound := make([]any, 0, len(res.NotFoundProducts))
	for _, id := range res.NotFoundProducts {
		notFound = append(notFound, id)
	}

	return newStruct(op, map[string]any{
		"products":           products,
		"products_not_found": notFound,
	})
}

func vectorField(req *structpb.Struct) (domain.Vector, error) {
	list := req.GetFields()["vector"].GetListValue()
	if list == nil || len(list.GetValues()) == 0 {
		return nil, e.Mark(e.ErrStatusBadRequest, e.ErrVectorEmbeddingEmpty)
	}

	vector := make(domain.Vector, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, e.Mark(e.ErrStatusBadRequest, fmt.Errorf("vector element %d is not a number", i))
		}
		x := v.GetNumberValue()
		// float32(x) за пределами диапазона даёт Inf.
		if math.IsNaN(x) || math.Abs(x) > math.MaxFloat32 {
			return nil, e.Mark(e.ErrStatusBadRequest, fmt.Errorf("vector element %d is out of float32 range", i))
		}
		vector = append(vector, float32(x))
	}
	return vector, nil
}

// idsField принимает только целые числа, точно представимые в float64.
func idsField(req *structpb.Struct) ([]int64, error) {
	values := req.GetFields()["ids"].GetListValue().GetValues()
	ids := make([]int64, 0, len(values))
	for i, v := range values {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, e.Mark(e.ErrStatusBadRequest, fmt.Errorf("id %d is not a number", i))
		}
		x := v.GetNumberValue()
		if x != math.Trunc(x) || math.Abs(x) > 1<<53 {
			return nil, e.Mark(e.ErrStatusBadRequest, fmt.Errorf("id %d is not an integer", i))
		}
		ids = append(ids, int64(x))
	}
	return ids, nil
}

// searchParams: limit 1..100 (по умолчанию 20), min_score 0..1.
func searchParams(req *structpb.Struct) usecase.SearchParams {
	params := usecase.SearchParams{Limit: defaultLimit}

	fields := req.GetFields()
	if v, ok := fields["limit"]; ok {
		params.Limit = max(1, min(int(v.GetNumberValue()), maxLimit))
	}
	if v, ok := fields["min_score"]; ok {
		s := v.GetNumberValue()
		if s == s { // не NaN
			params.MinScore = max(0, min(s, 1))
		}
	}
	return params
}

func productMap(p domain.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"brand":       p.Brand,
		"description": p.Description,
		"price":       p.Price.InexactFloat64(),
		"image":       p.Image,
		"thumbnail":   p.Thumbnail,
		"rating":      p.Rating,
	}
}

func newStruct(op string, fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}
	return s, nil
}

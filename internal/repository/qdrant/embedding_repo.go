package qdrant

import (
	"context"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

const upsertBatchSize = 256

// collectionsAPI - операции клиента Qdrant, нужные зеркалу.
type collectionsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
}

// EmbeddingRepo зеркалирует поколения каталога в коллекцию Qdrant.
type EmbeddingRepo struct {
	client       collectionsAPI
	cfg          *cfg.QdrantCfg
	modelVersion string
}

func NewEmbeddingRepo(client *qdrant.Client, cfg *cfg.QdrantCfg, modelVersion string) *EmbeddingRepo {
	return newEmbeddingRepo(client, cfg, modelVersion)
}

func newEmbeddingRepo(client collectionsAPI, cfg *cfg.QdrantCfg, modelVersion string) *EmbeddingRepo {
	return &EmbeddingRepo{
		client:       client,
		cfg:          cfg,
		modelVersion: modelVersion,
	}
}

// Replace пересоздаёт коллекцию и записывает в неё все строки поколения.
func (q *EmbeddingRepo) Replace(ctx context.Context, gen *catalog.Generation) error {
	name := q.cfg.QdrantCollectionName

	exists, err := q.client.CollectionExists(ctx, name)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if exists {
		if err := q.client.DeleteCollection(ctx, name); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	points := make([]*domain.QdrantPoint, 0, gen.Len())
	for i := 0; i < gen.Len(); i++ {
		p := gen.Product(i)
		points = append(points, domain.NewQdrantPoint(uint64(p.ID), gen.Row(i), domain.NewPayload(p, q.modelVersion)))
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(points))
		if err := q.upsert(ctx, points[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (q *EmbeddingRepo) upsert(ctx context.Context, points []*domain.QdrantPoint) error {
	reqPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		reqPoints = append(reqPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(point.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Wait:           qdrant.PtrOf(true),
		Points:         reqPoints,
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

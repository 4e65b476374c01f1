package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/DRSN-tech/visual-matcher/internal/cfg"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// embeddingModel - форма эмбеддинга в кеше.
type embeddingModel struct {
	Vector   []float32 `json:"vector"`
	CachedAt int64     `json:"cached_at"`
}

// CacheRepo кеширует эмбеддинги изображений-запросов.
type CacheRepo struct {
	client r.Cmdable
	ttl    time.Duration
}

func NewCacheRepo(client r.Cmdable, cfg *cfg.RedisCfg) *CacheRepo {
	return &CacheRepo{
		client: client,
		ttl:    cfg.EmbeddingTTL,
	}
}

// Get возвращает эмбеддинг по ключу; промах - (nil, false, nil).
func (c *CacheRepo) Get(ctx context.Context, key string) (domain.Vector, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, r.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	vector, err := unmarshalEmbedding(data)
	if err != nil {
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return vector, true, nil
}

// Set сохраняет эмбеддинг с TTL из конфигурации.
func (c *CacheRepo) Set(ctx context.Context, key string, vector domain.Vector) error {
	data, err := marshalEmbedding(vector)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func marshalEmbedding(vector domain.Vector) ([]byte, error) {
	return json.Marshal(embeddingModel{Vector: vector, CachedAt: time.Now().Unix()})
}

func unmarshalEmbedding(data []byte) (domain.Vector, error) {
	var model embeddingModel
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	if len(model.Vector) == 0 {
		return nil, e.ErrVectorEmbeddingEmpty
	}

	return model.Vector, nil
}

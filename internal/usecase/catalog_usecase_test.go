package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/visual-matcher/internal/catalog"
	"github.com/DRSN-tech/visual-matcher/internal/domain"
	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/DRSN-tech/visual-matcher/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadLoadsAndMirrors(t *testing.T) {
	store := catalog.NewStore()
	mirror := &fakeMirror{err: errors.New("qdrant down")}
	source := &fakeSource{records: []catalog.Record{
		{Product: domain.Product{ID: 1, Category: "a"}, Embedding: unitVector(0)},
		{Product: domain.Product{ID: 2, Category: "a"}, Embedding: []float32{1}},
	}}
	uc := NewCatalogUC(store, source, "file", mirror, logger.NewNopLogger())

	assert.False(t, uc.Status().Loaded)

	res, err := uc.Reload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "file", res.Source)
	assert.Equal(t, 1, res.Summary.Kept)
	assert.Equal(t, 1, res.Summary.Skipped)
	assert.Equal(t, []uint64{1}, mirror.versions)

	status := uc.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, 1, status.Products)
	assert.Equal(t, uint64(1), status.Version)
}

func TestReloadMissingCatalogStartsEmpty(t *testing.T) {
	uc := NewCatalogUC(catalog.NewStore(), &fakeSource{err: e.Wrap("read", e.ErrCatalogNotFound)}, "file", nil, logger.NewNopLogger())

	res, err := uc.Reload(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.Kept)
	assert.True(t, uc.Status().Loaded)
	assert.Equal(t, 0, uc.Status().Products)
}

func TestReloadFailureKeepsPreviousGeneration(t *testing.T) {
	store := testStore()
	source := &fakeSource{err: errors.New("connection refused")}
	uc := NewCatalogUC(store, source, "postgres", nil, logger.NewNopLogger())

	_, err := uc.Reload(context.Background())

	assert.ErrorIs(t, err, e.ErrCatalogLoad)
	assert.Equal(t, 2, store.Snapshot().Len())
	assert.Equal(t, uint64(1), store.Snapshot().Version())
}

package e

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsChain(t *testing.T) {
	err := Wrap("CatalogStore.Load", ErrCatalogLoad)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCatalogLoad))
	assert.Equal(t, "CatalogStore.Load: catalog load failed", err.Error())
}

func TestMarkMatchesKindAndCause(t *testing.T) {
	err := Mark(ErrEmbedding, context.DeadlineExceeded)

	assert.True(t, errors.Is(err, ErrEmbedding))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrDecode))
}

func TestMarkNilCause(t *testing.T) {
	err := Mark(ErrDecode, nil)

	assert.Same(t, ErrDecode, err)
}

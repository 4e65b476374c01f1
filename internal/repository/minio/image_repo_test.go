package minio

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	missing := minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
	assert.ErrorIs(t, notFound(missing), e.ErrFileNotFound)

	denied := minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}
	assert.NotErrorIs(t, notFound(denied), e.ErrFileNotFound)

	assert.NotErrorIs(t, notFound(errors.New("dial tcp: refused")), e.ErrFileNotFound)
}

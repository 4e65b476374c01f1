package grpc

import (
	"errors"

	"github.com/DRSN-tech/visual-matcher/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrVectorEmbeddingEmpty), errors.Is(err, e.ErrDimensionMismatch),
		errors.Is(err, e.ErrNonFiniteVector):
		return status.Error(codes.InvalidArgument, "invalid query vector")
	case errors.Is(err, e.ErrNoProducts):
		return status.Error(codes.InvalidArgument, e.ErrNoProducts.Error())
	case errors.Is(err, e.ErrStatusBadRequest):
		return status.Error(codes.InvalidArgument, e.ErrStatusBadRequest.Error())
	case errors.Is(err, e.ErrProductNotFound):
		return status.Error(codes.NotFound, e.ErrProductNotFound.Error())
	case errors.Is(err, e.ErrSourceUnavailable):
		return status.Error(codes.Unavailable, e.ErrSourceUnavailable.Error())
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

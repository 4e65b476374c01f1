package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	CatalogServiceName = "visualmatcher.v1.CatalogService"

	SearchByVectorMethod = "/" + CatalogServiceName + "/SearchByVector"
	GetProductsMethod    = "/" + CatalogServiceName + "/GetProducts"
)

// CatalogServiceServer - сервис каталога. Запросы и ответы передаются как google.protobuf.Struct.
type CatalogServiceServer interface {
	SearchByVector(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SearchByVector", Handler: searchByVectorHandler},
		{MethodName: "GetProducts", Handler: getProductsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "visualmatcher/v1/catalog.proto",
}

func RegisterCatalogServiceServer(s grpc.ServiceRegistrar, srv CatalogServiceServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

func searchByVectorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).SearchByVector(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SearchByVectorMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).SearchByVector(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getProductsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetProducts(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetProductsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetProducts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// RoutingServiceName is the fully-qualified gRPC service name.
const RoutingServiceName = "trackline.v1.RoutingService"

const healthMethod = "/" + RoutingServiceName + "/Health"

// RoutingServiceServer is the gRPC surface of the service. Requests and
// responses are google.protobuf.Struct values carrying the same JSON objects
// as the HTTP API.
type RoutingServiceServer interface {
	CreateRoute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRoute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRoutes(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DistanceStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListStations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetStation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListLinks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DistanceBetween(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type structCall func(RoutingServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(name string, call structCall) grpc.MethodDesc {
	fullMethod := "/" + RoutingServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RoutingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(RoutingServiceServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// RoutingServiceDesc describes RoutingServiceServer for grpc.ServiceRegistrar.
var RoutingServiceDesc = grpc.ServiceDesc{
	ServiceName: RoutingServiceName,
	HandlerType: (*RoutingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("CreateRoute", RoutingServiceServer.CreateRoute),
		unaryMethod("GetRoute", RoutingServiceServer.GetRoute),
		unaryMethod("ListRoutes", RoutingServiceServer.ListRoutes),
		unaryMethod("DistanceStats", RoutingServiceServer.DistanceStats),
		unaryMethod("ListStations", RoutingServiceServer.ListStations),
		unaryMethod("GetStation", RoutingServiceServer.GetStation),
		unaryMethod("ListLinks", RoutingServiceServer.ListLinks),
		unaryMethod("DistanceBetween", RoutingServiceServer.DistanceBetween),
		unaryMethod("Health", RoutingServiceServer.Health),
	},
	Metadata: "trackline/v1/routing.proto",
}

// NewGRPCServer creates a gRPC server with recovery, logging and auth
// interceptors and registers the routing service.
func NewGRPCServer(s *Server, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)
	srv.RegisterService(&RoutingServiceDesc, s)
	return srv
}

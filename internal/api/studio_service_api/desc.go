package studio_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "classbooking.v1.StudioService"

// StudioServiceServer exposes the callables with google.protobuf.Struct
// request and response bodies, mirroring their JSON shape.
type StudioServiceServer interface {
	GenerateOccurrences(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	BookClass(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CheckInBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetClassRoster(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv StudioServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

var StudioServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StudioServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("GenerateOccurrences", StudioServiceServer.GenerateOccurrences),
		method("BookClass", StudioServiceServer.BookClass),
		method("CancelBooking", StudioServiceServer.CancelBooking),
		method("CheckInBooking", StudioServiceServer.CheckInBooking),
		method("GetClassRoster", StudioServiceServer.GetClassRoster),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "classbooking/v1/studio.proto",
}

func RegisterStudioServiceServer(s grpc.ServiceRegistrar, srv StudioServiceServer) {
	s.RegisterService(&StudioServiceDesc, srv)
}

// FullMethod returns the wire name of a method, e.g. for client Invoke calls.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(StudioServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(StudioServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

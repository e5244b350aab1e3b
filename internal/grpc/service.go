package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are google.protobuf.Struct on the wire, so the service needs no
// generated stubs. Clients invoke e.g. /zerostrike.v1.LayerService/GetLayer.
const serviceName = "zerostrike.v1.LayerService"

type LayerServiceServer interface {
	GetLayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StreamLayers(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
	StreamTimeLapse(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

var LayerServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*LayerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetLayer",
			Handler:    getLayerHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamLayers",
			Handler:       streamLayersHandler,
			ServerStreams: true,
		},
		{
			StreamName:    "StreamTimeLapse",
			Handler:       streamTimeLapseHandler,
			ServerStreams: true,
		},
	},
	Metadata: "zerostrike/v1/layers.proto",
}

func RegisterLayerServiceServer(s grpc.ServiceRegistrar, srv LayerServiceServer) {
	s.RegisterService(&LayerServiceDesc, srv)
}

func getLayerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(LayerServiceServer).GetLayer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetLayer",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(LayerServiceServer).GetLayer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func streamLayersHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LayerServiceServer).StreamLayers(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

func streamTimeLapseHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(LayerServiceServer).StreamTimeLapse(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

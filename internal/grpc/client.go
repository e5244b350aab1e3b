package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// LayerClient calls LayerService over an existing connection.
type LayerClient struct {
	cc grpc.ClientConnInterface
}

func NewLayerClient(cc grpc.ClientConnInterface) *LayerClient {
	return &LayerClient{cc: cc}
}

func (c *LayerClient) GetLayer(ctx context.Context, layer string) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(map[string]any{"layer": layer})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetLayer", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *LayerClient) StreamLayers(ctx context.Context, layers ...string) (grpc.ServerStreamingClient[structpb.Struct], error) {
	names := make([]any, len(layers))
	for i, l := range layers {
		names[i] = l
	}
	req, err := structpb.NewStruct(map[string]any{"layers": names})
	if err != nil {
		return nil, err
	}
	return c.openStream(ctx, &LayerServiceDesc.Streams[0], req)
}

func (c *LayerClient) StreamTimeLapse(ctx context.Context, scenario string, durationMs int) (grpc.ServerStreamingClient[structpb.Struct], error) {
	req, err := structpb.NewStruct(map[string]any{"scenario": scenario, "duration_ms": durationMs})
	if err != nil {
		return nil, err
	}
	return c.openStream(ctx, &LayerServiceDesc.Streams[1], req)
}

func (c *LayerClient) openStream(ctx context.Context, desc *grpc.StreamDesc, req *structpb.Struct) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, desc, "/"+serviceName+"/"+desc.StreamName)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(req); err != nil {
		return nil, fmt.Errorf("error sending %s request: %w", desc.StreamName, err)
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

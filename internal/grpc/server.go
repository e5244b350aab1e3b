package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/timelapse"
)

const maxTimeLapseDuration = 10 * time.Minute

type LayerReader interface {
	Layer(l geojson.Layer) (*geojson.FeatureCollection, time.Time)
}

type ScenarioReader interface {
	Scenario(name string) (timelapse.Scenario, bool)
}

type Server struct {
	layers      LayerReader
	scenarios   ScenarioReader
	broadcaster *Broadcaster
	grpcServer  *grpc.Server
}

func NewServer(layers LayerReader, scenarios ScenarioReader, broadcaster *Broadcaster) *Server {
	return &Server{
		layers:      layers,
		scenarios:   scenarios,
		broadcaster: broadcaster,
	}
}

func (s *Server) Start(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	s.grpcServer = grpc.NewServer()
	RegisterLayerServiceServer(s.grpcServer, s)

	slog.Info("gRPC server listening", "addr", addr)
	return s.grpcServer.Serve(lis)
}

func (s *Server) Stop() {
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
}

func (s *Server) GetLayer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.GetFields()["layer"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "layer is required")
	}
	layer, ok := geojson.ParseLayer(name)
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown layer: %s", name)
	}

	fc, updatedAt := s.layers.Layer(layer)
	resp, err := layerMessage(layer, updatedAt, fc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode layer: %v", err)
	}
	return resp, nil
}

// StreamLayers sends every rebuilt layer whose name is in req.layers, or all
// layers when the list is empty.
func (s *Server) StreamLayers(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	wanted := make(map[geojson.Layer]bool)
	for _, v := range req.GetFields()["layers"].GetListValue().GetValues() {
		layer, ok := geojson.ParseLayer(v.GetStringValue())
		if !ok {
			return status.Errorf(codes.InvalidArgument, "unknown layer: %s", v.GetStringValue())
		}
		wanted[layer] = true
	}

	id, ch := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(id)

	slog.Info("client subscribed to layer stream", "subscriber_id", id, "layers", len(wanted))

	for {
		select {
		case <-stream.Context().Done():
			slog.Info("client disconnected from layer stream", "subscriber_id", id)
			return nil
		case u, ok := <-ch:
			if !ok {
				return nil
			}
			if len(wanted) > 0 && !wanted[u.Layer] {
				continue
			}

			msg, err := layerMessage(u.Layer, u.UpdatedAt, u.Collection)
			if err != nil {
				return status.Errorf(codes.Internal, "failed to encode layer: %v", err)
			}
			if err := stream.Send(msg); err != nil {
				slog.Error("failed to send layer to stream", "error", err, "subscriber_id", id)
				return err
			}
		}
	}
}

// StreamTimeLapse plays a scenario from 0 and sends one frame per tick until
// it completes or the client goes away.
func (s *Server) StreamTimeLapse(req *structpb.Struct, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	fields := req.GetFields()
	name := fields["scenario"].GetStringValue()
	scenario, ok := s.scenarios.Scenario(name)
	if !ok {
		return status.Errorf(codes.NotFound, "unknown scenario: %s", name)
	}

	duration := time.Duration(fields["duration_ms"].GetNumberValue()) * time.Millisecond
	tick := time.Duration(fields["tick_ms"].GetNumberValue()) * time.Millisecond
	if duration < 0 || duration > maxTimeLapseDuration || tick < 0 {
		return status.Errorf(codes.InvalidArgument, "invalid duration_ms or tick_ms")
	}

	player := timelapse.NewPlayer(duration, tick)
	err := player.Run(stream.Context(), func(progress float64) error {
		msg, err := toStruct(timelapse.BuildFrame(scenario, progress))
		if err != nil {
			return status.Errorf(codes.Internal, "failed to encode frame: %v", err)
		}
		return stream.Send(msg)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Info("client left time-lapse stream", "scenario", name, "progress", player.Progress())
		return nil
	}
	return err
}

func layerMessage(layer geojson.Layer, updatedAt time.Time, fc *geojson.FeatureCollection) (*structpb.Struct, error) {
	msg := map[string]any{
		"layer":      string(layer),
		"collection": fc,
		"updated_at": "",
	}
	if !updatedAt.IsZero() {
		msg["updated_at"] = updatedAt.UTC().Format(time.RFC3339Nano)
	}
	return toStruct(msg)
}

// toStruct round-trips v through JSON so GeoJSON keeps its exact shape.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("error encoding message: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("error decoding message: %w", err)
	}
	return out, nil
}

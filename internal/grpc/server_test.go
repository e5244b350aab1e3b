package grpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/timelapse"
)

type fakeLayers map[geojson.Layer]*geojson.FeatureCollection

func (f fakeLayers) Layer(l geojson.Layer) (*geojson.FeatureCollection, time.Time) {
	fc, ok := f[l]
	if !ok {
		return nil, time.Time{}
	}
	return fc, time.Date(2024, 10, 29, 9, 0, 0, 0, time.UTC)
}

type fakeScenarios map[string]timelapse.Scenario

func (f fakeScenarios) Scenario(name string) (timelapse.Scenario, bool) {
	s, ok := f[name]
	return s, ok
}

// fakeStream captures messages sent on a server stream
type fakeStream struct {
	grpc.ServerStream
	ctx  context.Context
	mu   sync.Mutex
	sent []*structpb.Struct
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) Send(m *structpb.Struct) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, m)
	return nil
}

func (f *fakeStream) messages() []*structpb.Struct {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*structpb.Struct(nil), f.sent...)
}

func request(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	return s
}

func testServer() *Server {
	coverage := geojson.BuildCoverageGeoJSON([]models.Drone{{ID: "ZS-01", Lng: 23.7, Lat: 38.2, Status: models.DroneStatusDeployed}})
	layers := fakeLayers{geojson.LayerCoverage: &coverage}
	scenarios := fakeScenarios{
		"optimized": {
			Name:            "optimized",
			MaxAreaHectares: 4200,
			Zones:           []timelapse.FireZone{{ID: "1", Label: "Chiva", Lng: -0.72, Lat: 39.47, RadiusKm: 6}},
		},
	}
	return NewServer(layers, scenarios, NewBroadcaster())
}

func TestServer_GetLayer(t *testing.T) {
	s := testServer()

	resp, err := s.GetLayer(context.Background(), request(t, map[string]any{"layer": "coverage"}))
	if err != nil {
		t.Fatalf("GetLayer failed: %v", err)
	}

	fields := resp.GetFields()
	if fields["layer"].GetStringValue() != "coverage" {
		t.Errorf("unexpected layer %v", fields["layer"])
	}
	if fields["updated_at"].GetStringValue() != "2024-10-29T09:00:00Z" {
		t.Errorf("unexpected updated_at %v", fields["updated_at"])
	}
	fc := fields["collection"].GetStructValue().GetFields()
	if fc["type"].GetStringValue() != "FeatureCollection" || len(fc["features"].GetListValue().GetValues()) != 1 {
		t.Errorf("unexpected collection %v", fc)
	}
}

func TestServer_GetLayer_EmptyLayerIsNull(t *testing.T) {
	s := testServer()

	resp, err := s.GetLayer(context.Background(), request(t, map[string]any{"layer": "collisions"}))
	if err != nil {
		t.Fatalf("GetLayer failed: %v", err)
	}
	if _, isNull := resp.GetFields()["collection"].GetKind().(*structpb.Value_NullValue); !isNull {
		t.Errorf("expected null collection, got %v", resp.GetFields()["collection"])
	}
}

func TestServer_GetLayer_InvalidArgument(t *testing.T) {
	s := testServer()

	for _, req := range []map[string]any{{}, {"layer": "forecast"}} {
		_, err := s.GetLayer(context.Background(), request(t, req))
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("expected InvalidArgument for %v, got %v", req, err)
		}
	}
}

func TestServer_StreamLayers_Filters(t *testing.T) {
	s := testServer()
	ctx, cancel := context.WithCancel(context.Background())
	stream := &fakeStream{ctx: ctx}

	req := request(t, map[string]any{"layers": []any{"collisions"}})
	done := make(chan error, 1)
	go func() {
		done <- s.StreamLayers(req, stream)
	}()

	deadline := time.Now().Add(time.Second)
	for s.broadcaster.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	fc := geojson.NewFeatureCollection(nil)
	s.broadcaster.Broadcast(&LayerUpdate{Layer: geojson.LayerThreats, UpdatedAt: time.Now(), Collection: &fc})
	s.broadcaster.Broadcast(&LayerUpdate{Layer: geojson.LayerCollisions, UpdatedAt: time.Now()})

	deadline = time.Now().Add(time.Second)
	for len(stream.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("StreamLayers returned error: %v", err)
	}

	msgs := stream.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 filtered message, got %d", len(msgs))
	}
	if msgs[0].GetFields()["layer"].GetStringValue() != "collisions" {
		t.Errorf("unexpected layer %v", msgs[0].GetFields()["layer"])
	}
	if s.broadcaster.SubscriberCount() != 0 {
		t.Error("expected subscriber to be removed on disconnect")
	}
}

func TestServer_StreamLayers_UnknownLayer(t *testing.T) {
	s := testServer()
	stream := &fakeStream{ctx: context.Background()}

	err := s.StreamLayers(request(t, map[string]any{"layers": []any{"nope"}}), stream)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("expected InvalidArgument, got %v", err)
	}
}

func TestServer_StreamLayers_BroadcasterClosed(t *testing.T) {
	s := testServer()
	stream := &fakeStream{ctx: context.Background()}

	req := request(t, map[string]any{})
	done := make(chan error, 1)
	go func() {
		done <- s.StreamLayers(req, stream)
	}()

	deadline := time.Now().Add(time.Second)
	for s.broadcaster.SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.broadcaster.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean exit, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not exit after broadcaster close")
	}
}

func TestServer_StreamTimeLapse(t *testing.T) {
	s := testServer()
	stream := &fakeStream{ctx: context.Background()}

	err := s.StreamTimeLapse(request(t, map[string]any{
		"scenario":    "optimized",
		"duration_ms": 50,
		"tick_ms":     10,
	}), stream)
	if err != nil {
		t.Fatalf("StreamTimeLapse failed: %v", err)
	}

	msgs := stream.messages()
	if len(msgs) == 0 {
		t.Fatal("expected frames")
	}
	last := msgs[len(msgs)-1].GetFields()
	if last["progress"].GetNumberValue() != 1 {
		t.Errorf("expected final frame at progress 1, got %v", last["progress"])
	}
	if last["hectares"].GetNumberValue() != 4200 {
		t.Errorf("expected 4200 ha at the end, got %v", last["hectares"])
	}
}

func TestServer_StreamTimeLapse_UnknownScenario(t *testing.T) {
	s := testServer()
	stream := &fakeStream{ctx: context.Background()}

	err := s.StreamTimeLapse(request(t, map[string]any{"scenario": "forecast"}), stream)
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestServer_StreamTimeLapse_ClientLeaves(t *testing.T) {
	s := testServer()
	ctx, cancel := context.WithCancel(context.Background())
	stream := &fakeStream{ctx: ctx}

	req := request(t, map[string]any{"scenario": "optimized", "duration_ms": 60000})
	done := make(chan error, 1)
	go func() {
		done <- s.StreamTimeLapse(req, stream)
	}()

	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil on client disconnect, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("time-lapse stream did not stop")
	}
}

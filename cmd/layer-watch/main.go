// layer-watch tails LayerService.StreamLayers and logs one line per update.
// LAYER_WATCH_LAYERS takes a comma-separated filter, e.g. "collisions,coverage".
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/mr1hm/zerostrike/internal/config"
	internalgrpc "github.com/mr1hm/zerostrike/internal/grpc"
	"github.com/mr1hm/zerostrike/internal/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	var layers []string
	if v := os.Getenv("LAYER_WATCH_LAYERS"); v != "" {
		layers = strings.Split(v, ",")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.GRPC.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logging.Fatalf("Failed to create gRPC client: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := internalgrpc.NewLayerClient(conn).StreamLayers(ctx, layers...)
	if err != nil {
		logging.Fatalf("Failed to open layer stream: %v", err)
	}
	slog.Info("watching layers", "addr", addr, "layers", layers)

	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) || ctx.Err() != nil {
			slog.Info("stream closed")
			return
		}
		if err != nil {
			logging.Fatalf("stream error: %v", err)
		}

		fields := msg.GetFields()
		features := len(fields["collection"].GetStructValue().GetFields()["features"].GetListValue().GetValues())
		slog.Info("layer updated",
			"layer", fields["layer"].GetStringValue(),
			"updated_at", fields["updated_at"].GetStringValue(),
			"features", features)
	}
}

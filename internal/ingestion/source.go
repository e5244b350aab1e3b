package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/models"
)

// ErrNoUpstream is returned by every fetch when no upstream API is configured.
var ErrNoUpstream = errors.New("no upstream API configured")

// Source fetches the raw collections the service derives its layers from.
type Source interface {
	FetchFleet(ctx context.Context) ([]models.Drone, error)
	FetchThreats(ctx context.Context) ([]models.Threat, error)
	FetchLandRisk(ctx context.Context) ([]models.LandRiskPolygon, error)
	// FetchCollisions returns nil when the upstream has no collision layer.
	FetchCollisions(ctx context.Context) (*geojson.FeatureCollection, error)
	FetchPredictions(ctx context.Context) ([]models.Prediction, error)
}

// APIClient reads the dashboard's REST API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNoUpstream
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading resp.Body: %w", err)
	}
	return body, nil
}

func getJSON[T any](ctx context.Context, c *APIClient, path string) ([]T, error) {
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return out, nil
}

func (c *APIClient) FetchFleet(ctx context.Context) ([]models.Drone, error) {
	return getJSON[models.Drone](ctx, c, "/api/fleet")
}

func (c *APIClient) FetchThreats(ctx context.Context) ([]models.Threat, error) {
	return getJSON[models.Threat](ctx, c, "/api/threats")
}

func (c *APIClient) FetchPredictions(ctx context.Context) ([]models.Prediction, error) {
	return getJSON[models.Prediction](ctx, c, "/api/predictions")
}

func (c *APIClient) FetchLandRisk(ctx context.Context) ([]models.LandRiskPolygon, error) {
	body, err := c.get(ctx, "/api/map/land-risk")
	if err != nil {
		return nil, err
	}
	if err := validateFeatureCollection(body); err != nil {
		return nil, fmt.Errorf("land risk: %w", err)
	}
	return geojson.ParseLandRisk(body)
}

func (c *APIClient) FetchCollisions(ctx context.Context) (*geojson.FeatureCollection, error) {
	body, err := c.get(ctx, "/api/map/collisions")
	if err != nil {
		return nil, err
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, nil
	}
	if err := validateFeatureCollection(body); err != nil {
		return nil, fmt.Errorf("collisions: %w", err)
	}
	return geojson.ParseFeatureCollection(body)
}

package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/zerostrike/internal/geojson"
	"github.com/mr1hm/zerostrike/internal/ingestion"
	"github.com/mr1hm/zerostrike/internal/metrics"
	"github.com/mr1hm/zerostrike/internal/models"
	"github.com/mr1hm/zerostrike/internal/repository"
	"github.com/mr1hm/zerostrike/internal/timelapse"
)

const contentTypeGeoJSON = "application/geo+json"

type SnapshotReader interface {
	Snapshot() *ingestion.Snapshot
}

type ScenarioReader interface {
	Scenario(name string) (timelapse.Scenario, bool)
}

// RoutePlanner plans drone sorties against the current threat picture.
type RoutePlanner interface {
	Routes(ctx context.Context) (geojson.FeatureCollection, error)
}

type Handler struct {
	store     SnapshotReader
	scenarios ScenarioReader
	events    repository.CollisionEventRepository
	routes    RoutePlanner
}

func NewHandler(store SnapshotReader, scenarios ScenarioReader, events repository.CollisionEventRepository) *Handler {
	return &Handler{
		store:     store,
		scenarios: scenarios,
		events:    events,
	}
}

// WithRoutes enables /api/routes. Without a planner the route answers 404.
func (h *Handler) WithRoutes(p RoutePlanner) *Handler {
	h.routes = p
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/fleet", h.getFleet)
	api.GET("/threats", h.getThreats)
	api.GET("/predictions", h.getPredictions)

	api.GET("/map/land-risk", h.getLayer(geojson.LayerLandRisk))
	api.GET("/map/collisions", h.getLayer(geojson.LayerCollisions))
	api.GET("/map/threats", h.getLayer(geojson.LayerThreats))
	api.GET("/map/coverage", h.getLayer(geojson.LayerCoverage))
	api.GET("/map/trajectories", h.getLayer(geojson.LayerTrajectories))

	api.GET("/timelapse/:scenario", h.getTimeLapse)
	api.GET("/collisions/events", h.getCollisionEvents)
	api.GET("/routes", h.getRoutes)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getFleet(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.store.Snapshot().Fleet))
}

func (h *Handler) getThreats(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.store.Snapshot().Threats))
}

func (h *Handler) getPredictions(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.store.Snapshot().Predictions))
}

// getLayer serves a layer as GeoJSON. A layer with nothing to draw is
// returned as JSON null.
func (h *Handler) getLayer(layer geojson.Layer) gin.HandlerFunc {
	return func(c *gin.Context) {
		fc, updatedAt := h.store.Snapshot().Layer(layer)
		if !updatedAt.IsZero() {
			c.Header("Last-Modified", updatedAt.UTC().Format(http.TimeFormat))
		}
		c.Header("Content-Type", contentTypeGeoJSON)
		c.JSON(http.StatusOK, fc)
	}
}

func (h *Handler) getTimeLapse(c *gin.Context) {
	name := c.Param("scenario")
	scenario, ok := h.scenarios.Scenario(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "unknown scenario: " + name,
		})
		return
	}

	progress := 0.0
	if p := c.Query("progress"); p != "" {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(v) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "progress must be a number between 0 and 1",
			})
			return
		}
		progress = v
	}

	c.JSON(http.StatusOK, timelapse.BuildFrame(scenario, progress))
}

func (h *Handler) getCollisionEvents(c *gin.Context) {
	filter := repository.Filter{
		Limit: 50, // Default to 50 events if limit param not supplied
	}

	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if s := c.Query("severity"); s != "" {
		if level, ok := parseThreatLevel(s); ok {
			filter.Severity = &level
		}
	}
	filter.ThreatID = c.Query("threat_id")

	if h.events == nil {
		c.JSON(http.StatusOK, []models.CollisionEvent{})
		return
	}

	events, err := h.events.ListCollisionEvents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch collision events",
		})
		return
	}

	c.JSON(http.StatusOK, nonNil(events))
}

func (h *Handler) getRoutes(c *gin.Context) {
	if h.routes == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "route planning is not enabled",
		})
		return
	}

	fc, err := h.routes.Routes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to plan routes",
		})
		return
	}
	c.Header("Content-Type", contentTypeGeoJSON)
	c.JSON(http.StatusOK, fc)
}

func parseThreatLevel(s string) (models.ThreatLevel, bool) {
	switch level := models.ThreatLevel(strings.ToLower(s)); level {
	case models.ThreatLevelCritical, models.ThreatLevelWarning, models.ThreatLevelHigh,
		models.ThreatLevelWatch, models.ThreatLevelMedium, models.ThreatLevelLow:
		return level, true
	default:
		return "", false
	}
}

// nonNil keeps empty collections encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

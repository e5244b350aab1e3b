package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/mr1hm/zerostrike/internal/metrics"
	"github.com/mr1hm/zerostrike/internal/models"
)

// Engine runs Detect over a fixed grid with inputs from a Provider.
type Engine struct {
	cfg      Config
	provider Provider
	grid     Grid
	mask     models.Ring
}

func NewEngine(cfg Config, provider Provider, b BBox, mask models.Ring) *Engine {
	return &Engine{
		cfg:      cfg,
		provider: provider,
		grid:     NewGrid(b, cfg.ResolutionDeg),
		mask:     mask,
	}
}

func (e *Engine) Config() Config { return e.cfg }
func (e *Engine) Grid() Grid     { return e.grid }

// Run samples the provider at when and returns the threatened cells,
// highest priority first.
func (e *Engine) Run(ctx context.Context, when time.Time) ([]Hit, error) {
	start := time.Now()

	cells, err := e.provider.Sample(ctx, e.grid, when)
	if err != nil {
		return nil, fmt.Errorf("error sampling grid: %w", err)
	}
	if len(cells) != e.grid.Rows() {
		return nil, fmt.Errorf("provider returned %d rows, grid has %d", len(cells), e.grid.Rows())
	}
	for r, row := range cells {
		if len(row) != e.grid.Cols() {
			return nil, fmt.Errorf("provider returned %d cells in row %d, grid has %d", len(row), r, e.grid.Cols())
		}
	}

	storms, err := e.provider.StormCells(ctx, e.grid.BBox, when)
	if err != nil {
		return nil, fmt.Errorf("error fetching storm cells: %w", err)
	}

	hits := Detect(e.cfg, e.grid, cells, storms, e.mask)

	metrics.EngineRunDuration.Observe(time.Since(start).Seconds())
	metrics.EngineHits.Set(float64(len(hits)))
	return hits, nil
}

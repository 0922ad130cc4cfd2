// Package service wires the four external entry points of spec §6
// (location_supported, get_height_at_point, search_from_point, place_search)
// to the reachability core: pkg/elevation for terrain, pkg/reach for the
// search itself, pkg/placeindex for autocomplete, and pkg/tilecache +
// pkg/memo for whole-result memoization.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"hikefly/pkg/config"
	"hikefly/pkg/elevation"
	"hikefly/pkg/gridmath"
	"hikefly/pkg/memo"
	"hikefly/pkg/placeindex"
	"hikefly/pkg/reach"
	"hikefly/pkg/tilecache"
)

// Service is the boundary-facing façade over the core packages. It holds
// no per-request state; concurrent callers each get their own
// reach.Arena/Queue (spec §5 "per-search state owned exclusively by the
// thread running that search").
type Service struct {
	cfg    *config.Config
	elev   *elevation.Store
	places *placeindex.Index
	cache  *tilecache.Cache
	log    *slog.Logger
}

// New constructs a Service. places and cache may be nil, disabling
// place_search and result memoization respectively.
func New(cfg *config.Config, elev *elevation.Store, places *placeindex.Index, cache *tilecache.Cache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{cfg: cfg, elev: elev, places: places, cache: cache, log: log}
}

// LocationSupported implements spec §6 location_supported.
func (s *Service) LocationSupported(lat, lon float64) bool {
	return s.elev.LocationSupported(lat, lon)
}

// GetHeightAtPoint implements spec §6 get_height_at_point.
func (s *Service) GetHeightAtPoint(lat, lon float64) (int16, error) {
	return s.elev.GetHeightAtPoint(lat, lon)
}

// PlaceSearch implements spec §6 place_search.
func (s *Service) PlaceSearch(query string, maxResults int) []placeindex.Result {
	if s.places == nil {
		return nil
	}
	return s.places.Search(query, s.cfg.PlaceIndex.MaxEditDistance, maxResults, true)
}

// SearchParams is the caller-supplied, not-yet-clamped parameter block for
// search_from_point, named per spec §6's "Parameter recognition and
// clamping" table. Zero values mean "use the default".
type SearchParams struct {
	CellSize         float64
	GlideNumber      float64
	AdditionalHeight float64
	WindSpeed        float64
	WindDirectionDeg float64 // degrees; converted to radians internally
	TrimSpeed        float64
	SafetyMargin     float64
	StartDistance    float64
	StartHeight      *float64
}

// Clamp applies the defaults and bounds of spec §6 in place.
func (p *SearchParams) Clamp(cfg config.SearchConfig) {
	if p.CellSize == 0 {
		p.CellSize = float64(cfg.DefaultCellSize)
	}
	p.CellSize = clampF(p.CellSize, float64(cfg.MinCellSize), float64(cfg.MaxCellSize))

	if p.GlideNumber == 0 {
		p.GlideNumber = cfg.DefaultGlideNumber
	}
	p.GlideNumber = clampF(p.GlideNumber, cfg.MinGlideNumber, cfg.MaxGlideNumber)

	if p.AdditionalHeight == 0 {
		p.AdditionalHeight = float64(cfg.DefaultAdditionalHeight)
	}
	p.AdditionalHeight = clampF(p.AdditionalHeight, 0, float64(cfg.MaxAdditionalHeight))

	p.WindSpeed = clampF(p.WindSpeed, 0, cfg.MaxWindSpeed)

	if p.TrimSpeed == 0 {
		p.TrimSpeed = cfg.DefaultTrimSpeed
	}
	p.TrimSpeed = clampF(p.TrimSpeed, 0, cfg.MaxTrimSpeed)

	if p.SafetyMargin < 0 {
		p.SafetyMargin = 0
	}
	if p.StartDistance < 0 {
		p.StartDistance = 0
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NodeResult is the wire-format rendering of a reach.Node: a dense array
// entry is nil when the cell was never reached.
type NodeResult struct {
	Height         float64 `json:"height"`
	Row            int     `json:"row"`
	Col            int     `json:"col"`
	HasReference   bool    `json:"has_reference"`
	RefRow         int     `json:"ref_row,omitempty"`
	RefCol         int     `json:"ref_col,omitempty"`
	Distance       float64 `json:"distance"`
	Reachable      bool    `json:"reachable"`
	InSafetyMargin bool    `json:"in_safety_margin"`
}

// Result is the self-contained, JSON-serializable response to
// search_from_point: spec §6's SearchResult{explored, height_grid,
// ground_height, start_ix}, flattened for the wire and for
// pkg/tilecache's result memoization (round-tripping through JSON must
// reproduce it exactly, unlike reach.ReachabilitySurface which carries
// unexported-field types).
type Result struct {
	Rows          int           `json:"rows"`
	Cols          int           `json:"cols"`
	CellSize      float64       `json:"cell_size"`
	StartRow      int           `json:"start_row"`
	StartCol      int           `json:"start_col"`
	Explored      []*NodeResult `json:"explored"`
	GroundHeights []int16       `json:"ground_height"`
}

func toResult(surface *reach.ReachabilitySurface, ground *elevation.Grid) *Result {
	r := &Result{
		Rows:     surface.Rows,
		Cols:     surface.Cols,
		CellSize: ground.CellSize(),
		StartRow: int(surface.StartIx.Row),
		StartCol: int(surface.StartIx.Col),
	}
	if surface.Rows == 0 || surface.Cols == 0 {
		return r
	}

	r.Explored = make([]*NodeResult, len(surface.Nodes))
	for i, n := range surface.Nodes {
		if n == nil {
			continue
		}
		nr := &NodeResult{
			Height:         n.Height,
			Row:            int(n.Index.Row),
			Col:            int(n.Index.Col),
			Distance:       n.Distance,
			Reachable:      n.Reachable,
			InSafetyMargin: n.InSafetyMargin,
		}
		if n.Reference != nil {
			nr.HasReference = true
			nr.RefRow = int(n.Reference.Row)
			nr.RefCol = int(n.Reference.Col)
		}
		r.Explored[i] = nr
	}

	r.GroundHeights = make([]int16, surface.Rows*surface.Cols)
	for row := 0; row < surface.Rows; row++ {
		for col := 0; col < surface.Cols; col++ {
			r.GroundHeights[row*surface.Cols+col] = ground.Height(row, col)
		}
	}
	return r
}

// SearchFromPoint implements spec §6 search_from_point end to end,
// following the search-preparation algorithm of spec §4.3.7:
//  1. sample ground altitude at the exact point,
//  2. clamp the start height against that ground,
//  3. bound the maximum possible ground distance assuming permanent
//     tailwind,
//  4. load an elevation grid of that half-side,
//  5. resample to the requested cell size,
//  6. start from the grid's geometric centre.
//
// Whole results are memoized in pkg/tilecache under the pkg/memo canonical
// key, so two requests that quantize to the same key skip the search.
func (s *Service) SearchFromPoint(ctx context.Context, lat, lon, targetCellSize float64, params SearchParams) (*Result, error) {
	params.Clamp(s.cfg.Search)
	glideRatio := 1 / params.GlideNumber
	windDirRad := params.WindDirectionDeg * math.Pi / 180

	key := memo.NewKey(memo.QueryParams{
		Lat: lat, Lon: lon,
		GlideRatio:       glideRatio,
		TrimSpeed:        params.TrimSpeed,
		WindDirection:    windDirRad,
		WindSpeed:        params.WindSpeed,
		StartHeight:      params.StartHeight,
		AdditionalHeight: params.AdditionalHeight,
		SafetyMargin:     params.SafetyMargin,
		StartDistance:    params.StartDistance,
		TargetCellSize:   targetCellSize,
	}).String()

	if s.cache != nil {
		if blob, ok := s.cache.GetSearchResult(ctx, key); ok {
			var cached Result
			if err := json.Unmarshal(blob, &cached); err == nil {
				s.log.Debug("search_from_point cache hit", "key", key)
				return &cached, nil
			}
		}
	}

	result, err := s.runSearch(ctx, lat, lon, targetCellSize, glideRatio, windDirRad, params)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if blob, err := json.Marshal(result); err == nil {
			if err := s.cache.SetSearchResult(ctx, key, blob); err != nil {
				s.log.Warn("failed to persist search_from_point result", "error", err)
			}
		}
	}

	return result, nil
}

func (s *Service) runSearch(ctx context.Context, lat, lon, targetCellSize, glideRatio, windDirRad float64, params SearchParams) (*Result, error) {
	groundHeight, err := s.elev.GetHeightAtPoint(lat, lon)
	if err != nil {
		return nil, fmt.Errorf("service: sampling ground height at (%f,%f): %w", lat, lon, err)
	}

	startHeight := float64(groundHeight)
	if params.StartHeight != nil {
		startHeight = math.Max(startHeight, *params.StartHeight)
	} else {
		startHeight = math.Max(startHeight, startHeight+params.AdditionalHeight)
	}

	// spec §4.3.7 step 3: conservative bound on ground distance assuming a
	// permanent tailwind equal to params.WindSpeed.
	maxD := startHeight / (glideRatio / ((params.WindSpeed + params.TrimSpeed) / params.TrimSpeed))

	grid, err := s.elev.GetHeightDataAroundPoint(ctx, lat, lon, maxD+1)
	if err != nil {
		return nil, fmt.Errorf("service: loading elevation grid: %w", err)
	}

	if targetCellSize >= grid.CellSize() {
		grid = grid.Scale(targetCellSize)
	}

	startRow, startCol := grid.Centre()
	startIx := gridmath.Index{Row: uint16(startRow), Col: uint16(startCol)}

	q := &reach.SearchQuery{
		GlideRatio:       glideRatio,
		TrimSpeed:        params.TrimSpeed,
		WindDirection:    windDirRad,
		WindSpeed:        params.WindSpeed,
		StartHeight:      &startHeight,
		AdditionalHeight: params.AdditionalHeight,
		SafetyMargin:     params.SafetyMargin,
		StartDistance:    params.StartDistance,
	}

	arena := reach.Run(grid, grid.CellSize(), q, startIx, s.cfg.Search.QueueKind)
	surface := reach.Finalize(arena)

	croppedGround := grid
	if surface.Rows > 0 && surface.Cols > 0 {
		croppedGround = grid.Crop(int(surface.Origin.Row), int(surface.Origin.Row)+surface.Rows,
			int(surface.Origin.Col), int(surface.Origin.Col)+surface.Cols)
	}

	return toResult(surface, croppedGround), nil
}

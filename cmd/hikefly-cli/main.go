// Command hikefly-cli is a debugging tool to exercise location_supported,
// search_from_point and place_search directly against the elevation store
// and place index, without going through the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"hikefly/internal/service"
	"hikefly/pkg/config"
	"hikefly/pkg/elevation"
	"hikefly/pkg/placeindex"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfgPath := flag.String("config", "./hikefly.yaml", "Path to config file")
	lat := flag.Float64("lat", 0, "Launch latitude")
	lon := flag.Float64("lon", 0, "Launch longitude")
	query := flag.String("query", "", "Place-name query to autocomplete instead of running a search")
	glideNumber := flag.Float64("glide-number", 0, "Glide number (1/glide_ratio); 0 uses the configured default")
	windSpeed := flag.Float64("wind-speed", 0, "Wind speed, m/s")
	windDirection := flag.Float64("wind-direction", 0, "Wind direction, degrees")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	elev, err := elevation.NewStore(cfg.Elevation.TileDir, cfg.Elevation.CacheTiles,
		elevation.WithMinCellSize(float64(cfg.Elevation.MinCellSize)))
	if err != nil {
		return fmt.Errorf("failed to open elevation store: %w", err)
	}

	var places *placeindex.Index
	if f, err := os.Open(cfg.PlaceIndex.IndexPath); err == nil {
		places, err = placeindex.Deserialize(f)
		f.Close()
		if err != nil {
			fmt.Printf("WARN: failed to load place index: %v\n", err)
		}
	}

	svc := service.New(cfg, elev, places, nil, slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if *query != "" {
		results := svc.PlaceSearch(*query, 10)
		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%-30s (%.4f, %.4f) edit_distance=%d\n", r.Key, r.Record.Lat, r.Record.Lon, r.Distance)
		}
		return nil
	}

	if !svc.LocationSupported(*lat, *lon) {
		return fmt.Errorf("no elevation data available at %.4f, %.4f", *lat, *lon)
	}

	height, err := svc.GetHeightAtPoint(*lat, *lon)
	if err != nil {
		return fmt.Errorf("get_height_at_point failed: %w", err)
	}
	fmt.Printf("Ground height: %d m MSL\n", height)

	params := service.SearchParams{
		GlideNumber:      *glideNumber,
		WindSpeed:        *windSpeed,
		WindDirectionDeg: *windDirection,
	}
	result, err := svc.SearchFromPoint(context.Background(), *lat, *lon, 0, params)
	if err != nil {
		return fmt.Errorf("search_from_point failed: %w", err)
	}

	reached := 0
	for _, n := range result.Explored {
		if n != nil && n.Reachable {
			reached++
		}
	}
	fmt.Printf("Reachability surface: %dx%d cells, %d reachable, cell_size=%.0fm\n",
		result.Rows, result.Cols, reached, result.CellSize)
	return nil
}

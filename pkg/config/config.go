package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Elevation  ElevationConfig  `yaml:"elevation"`
	Search     SearchConfig     `yaml:"search"`
	PlaceIndex PlaceIndexConfig `yaml:"place_index"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// ElevationConfig holds settings for the DEM tile store (spec §4.1).
type ElevationConfig struct {
	TileDir     string   `yaml:"tile_dir"`
	CacheTiles  int      `yaml:"cache_tiles"`
	MinCellSize Distance `yaml:"min_cell_size"`
}

// SearchConfig holds the default/clamped reachability-search parameters
// (spec §6 "Parameter recognition and clamping").
type SearchConfig struct {
	DefaultCellSize         Distance `yaml:"default_cell_size"`
	MinCellSize             Distance `yaml:"min_cell_size"`
	MaxCellSize             Distance `yaml:"max_cell_size"`
	DefaultGlideNumber      float64  `yaml:"default_glide_number"`
	MinGlideNumber          float64  `yaml:"min_glide_number"`
	MaxGlideNumber          float64  `yaml:"max_glide_number"`
	DefaultAdditionalHeight Distance `yaml:"default_additional_height"`
	MaxAdditionalHeight     Distance `yaml:"max_additional_height"`
	DefaultWindSpeed        float64  `yaml:"default_wind_speed"`
	MaxWindSpeed            float64  `yaml:"max_wind_speed"`
	DefaultTrimSpeed        float64  `yaml:"default_trim_speed"`
	MaxTrimSpeed            float64  `yaml:"max_trim_speed"`
	QueueKind               string   `yaml:"queue_kind"` // "dense", "map", or "radix"
}

// PlaceIndexConfig holds settings for the place-name autocomplete index.
type PlaceIndexConfig struct {
	IndexPath      string `yaml:"index_path"`
	MaxEditDistance int   `yaml:"max_edit_distance"`
}

// CacheConfig holds settings for the tile/result cache (pkg/tilecache).
type CacheConfig struct {
	Path          string `yaml:"path"`
	TileLRUSize   int    `yaml:"tile_lru_size"`
	ResultLRUSize int    `yaml:"result_lru_size"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration, with the clamping
// defaults from spec §6 baked in.
func DefaultConfig() *Config {
	return &Config{
		Elevation: ElevationConfig{
			TileDir:     "./data/dem",
			CacheTiles:  64,
			MinCellSize: Distance(30),
		},
		Search: SearchConfig{
			DefaultCellSize:         Distance(200),
			MinCellSize:             Distance(30),
			MaxCellSize:             Distance(500),
			DefaultGlideNumber:      8,
			MinGlideNumber:          1,
			MaxGlideNumber:          15,
			DefaultAdditionalHeight: Distance(10),
			MaxAdditionalHeight:     Distance(1000),
			DefaultWindSpeed:        0,
			MaxWindSpeed:            50,
			DefaultTrimSpeed:        38,
			MaxTrimSpeed:            80,
			QueueKind:               "dense",
		},
		PlaceIndex: PlaceIndexConfig{
			IndexPath:       "./data/places.bin",
			MaxEditDistance: 2,
		},
		Cache: CacheConfig{
			Path:          "./data/hikefly.db",
			TileLRUSize:   64,
			ResultLRUSize: 256,
		},
		Server: ServerConfig{
			Address: "localhost:1920",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		// We ignore errors here because it's valid to rely solely on system env vars.
		_ = godotenv.Load(".env.local", ".env")
		applyEnvOverrides(cfg)

		return cfg, nil
	}

	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# hikefly configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Distance: m (meters), km (kilometers), nm (nautical miles)

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}

func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("HIKEFLY_TILE_DIR"); dir != "" {
		cfg.Elevation.TileDir = dir
	}
	if p := os.Getenv("HIKEFLY_PLACE_INDEX_PATH"); p != "" {
		cfg.PlaceIndex.IndexPath = p
	}
	if addr := os.Getenv("HIKEFLY_SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
}

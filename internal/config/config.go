// Package config loads the analysis configuration: per-track clustering
// parameters, sampling knobs, and the team roster used to annotate and
// colour results. The configuration is loaded once at startup and passed
// explicitly into each component; nothing reads it ambiently.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paddock-data/drivestyle/internal/cluster"
)

// UnknownTeam is the team assigned to drivers absent from the roster.
const UnknownTeam = "Unknown"

// unknownTeamColor is the render colour for UnknownTeam.
const unknownTeamColor = "#666666"

// Config represents the root analysis configuration. All fields are
// optional in the JSON file; the accessor methods provide compiled-in
// defaults for anything omitted, so partial configs are safe.
type Config struct {
	// TrackParams maps a track identifier to its DBSCAN tuning.
	TrackParams map[string]cluster.Params `json:"track_clustering_params,omitempty"`

	// DefaultParams is the fallback DBSCAN tuning for unrecognised tracks.
	DefaultParams *cluster.Params `json:"default_clustering_params,omitempty"`

	// SamplesPerDriver caps each driver's rows in the pooled cluster table.
	SamplesPerDriver *int `json:"samples_per_driver,omitempty"`

	// SampleSeed seeds the per-driver subsample.
	SampleSeed *int64 `json:"sample_seed,omitempty"`

	// Teams maps a team name to its driver codes, in seat order.
	Teams map[string][]string `json:"teams,omitempty"`

	// TeamColors maps a team name to its render colour (hex).
	TeamColors map[string]string `json:"team_colors,omitempty"`
}

// Default returns the compiled-in configuration: the 2025 early-season
// roster and the per-track DBSCAN tuning.
func Default() *Config {
	return &Config{
		TrackParams: map[string]cluster.Params{
			"Australia": {Eps: 0.4, MinSamples: 40},
			"Bahrain":   {Eps: 0.35, MinSamples: 50},
			"China":     {Eps: 0.45, MinSamples: 45},
			"Japan":     {Eps: 0.4, MinSamples: 35},
		},
		Teams: map[string][]string{
			"Williams": {"ALB", "SAI"},
			"Mercedes": {"ANT", "RUS"},
			"Ferrari":  {"HAM", "LEC"},
			"RedBull":  {"VER", "TSU"},
			"McLaren":  {"PIA", "NOR"},
		},
		TeamColors: map[string]string{
			"Williams": "#37BEDD",
			"Mercedes": "#00D2BE",
			"Ferrari":  "#DC143C",
			"RedBull":  "#1E41FF",
			"McLaren":  "#FF8000",
		},
	}
}

// Load reads a Config from a JSON file. The file must have a .json
// extension and stay under the size cap. Fields omitted from the JSON
// retain their defaults via the accessor methods.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from the compiled-in defaults so a partial file only overrides
	// what it names.
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that every numeric knob is in a usable range.
func (c *Config) Validate() error {
	check := func(name string, p cluster.Params) error {
		if p.Eps <= 0 {
			return fmt.Errorf("%s: eps must be positive, got %g", name, p.Eps)
		}
		if p.MinSamples <= 0 {
			return fmt.Errorf("%s: min_samples must be positive, got %d", name, p.MinSamples)
		}
		return nil
	}
	for track, p := range c.TrackParams {
		if err := check(track, p); err != nil {
			return err
		}
	}
	if c.DefaultParams != nil {
		if err := check("default_clustering_params", *c.DefaultParams); err != nil {
			return err
		}
	}
	if c.SamplesPerDriver != nil && *c.SamplesPerDriver <= 0 {
		return fmt.Errorf("samples_per_driver must be positive, got %d", *c.SamplesPerDriver)
	}
	return nil
}

// ClusterParamsFor returns the DBSCAN tuning for a track, falling back to
// the default pair when the track is unrecognised. An unknown track is not
// an error.
func (c *Config) ClusterParamsFor(track string) cluster.Params {
	if p, ok := c.TrackParams[track]; ok {
		return p
	}
	if c.DefaultParams != nil {
		return *c.DefaultParams
	}
	return cluster.DefaultParams()
}

// GetSamplesPerDriver returns the per-driver row cap for the pooled
// cluster table.
func (c *Config) GetSamplesPerDriver() int {
	if c.SamplesPerDriver != nil {
		return *c.SamplesPerDriver
	}
	return cluster.DefaultSamplesPerDriver
}

// GetSampleSeed returns the deterministic subsampling seed.
func (c *Config) GetSampleSeed() int64 {
	if c.SampleSeed != nil {
		return *c.SampleSeed
	}
	return cluster.DefaultSampleSeed
}

// TeamFor returns the team name for a driver code, or UnknownTeam when the
// driver is absent from the roster. The default is explicit: no empty
// string propagates downstream.
func (c *Config) TeamFor(driver string) string {
	for team, drivers := range c.Teams {
		for _, d := range drivers {
			if d == driver {
				return team
			}
		}
	}
	return UnknownTeam
}

// ColorFor returns the render colour for a team, defaulting to the
// UnknownTeam grey.
func (c *Config) ColorFor(team string) string {
	if col, ok := c.TeamColors[team]; ok {
		return col
	}
	return unknownTeamColor
}

// IsSecondDriver reports whether the driver holds the second seat of the
// given team. Used only for render styling.
func (c *Config) IsSecondDriver(driver, team string) bool {
	drivers := c.Teams[team]
	return len(drivers) > 1 && driver == drivers[1]
}

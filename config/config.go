// CLAUDE:SUMMARY YAML configuration for domsnap: snapshot policy, ground truth overrides, cache, HTTP, fetch and browser.
// Package config loads the domsnap YAML configuration file.
//
//	snapshot:
//	  k: 0.5
//	  l: 0.3
//	  m: 0.4
//	  options:
//	    assign_unique_ids: true
//	  search:
//	    default_max_tokens: 8192
//	ground_truth_file: ground-truth.yaml
//	cache:
//	  enabled: true
//	  path: data/snapshots.db
//	http:
//	  addr: ":8080"
//	  allow_urls: true
//	browser:
//	  enabled: true
//	  stealth: true
//
// Keys left out keep their defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domsnap/groundtruth"
	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
	"github.com/hazyhaar/domsnap/source"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel        string         `yaml:"log_level"`
	Snapshot        SnapshotConfig `yaml:"snapshot"`
	GroundTruthFile string         `yaml:"ground_truth_file"`
	Cache           CacheConfig    `yaml:"cache"`
	HTTP            HTTPConfig     `yaml:"http"`
	Fetch           source.Config  `yaml:"fetch"`
	Browser         BrowserConfig  `yaml:"browser"`
	// Sanitize runs acquired markup through the sanitising policy.
	Sanitize bool `yaml:"sanitize"`
}

// SnapshotConfig is the default policy of a run.
type SnapshotConfig struct {
	K float64 `yaml:"k"`
	L float64 `yaml:"l"`
	M float64 `yaml:"m"`
	// Linearize replaces k with the linearize sentinel.
	Linearize bool                  `yaml:"linearize"`
	Options   snapshot.Options      `yaml:"options"`
	Search    snapshot.SearchConfig `yaml:"search"`
}

// Params returns the configured parameters.
func (s SnapshotConfig) Params() snapshot.Params {
	p := snapshot.Params{K: s.K, L: s.L, M: s.M}
	if s.Linearize {
		p.K = snapshot.Linearize
	}
	return p
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	Enabled          bool `yaml:"enabled"`
	snapcache.Config `yaml:",inline"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	// MaxBodyBytes caps a request body.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// AllowURLs lets requests name a URL for the server to fetch.
	AllowURLs bool `yaml:"allow_urls"`
	// AllowPrivateURLs lifts the private address guard on fetched URLs.
	AllowPrivateURLs bool `yaml:"allow_private_urls"`
}

// BrowserConfig enables headless Chrome rendering.
type BrowserConfig struct {
	Enabled              bool `yaml:"enabled"`
	source.BrowserConfig `yaml:",inline"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Snapshot: SnapshotConfig{
			K:       0.5,
			L:       0.5,
			M:       0.5,
			Options: snapshot.DefaultOptions(),
		},
		Cache: CacheConfig{Config: snapcache.Config{Path: "domsnap-cache.db", MaxEntries: 10000}},
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			MaxBodyBytes:      10 << 20,
		},
		Fetch: source.Config{
			UserAgent: "Mozilla/5.0 (compatible; domsnap/1.0)",
			Timeout:   30 * time.Second,
			MaxBytes:  10 << 20,
		},
		Browser: BrowserConfig{BrowserConfig: source.BrowserConfig{
			Stealth: true,
			Timeout: 30 * time.Second,
			Block:   []string{"images", "fonts", "media"},
		}},
	}
}

// Load reads the YAML file at path over Default. An empty path returns
// Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadHeaderTimeout <= 0 {
		c.HTTP.ReadHeaderTimeout = 10 * time.Second
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 10 << 20
	}
}

// Validate checks the snapshot parameters and the log level.
func (c *Config) Validate() error {
	if err := c.Snapshot.Params().Validate(); err != nil {
		return fmt.Errorf("config: snapshot: %w", err)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log_level %q: expects debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// Tables returns the ground truth: the built-in tables, with the overrides
// of GroundTruthFile merged on top when set.
func (c *Config) Tables() (*groundtruth.Tables, error) {
	if c.GroundTruthFile == "" {
		return groundtruth.Default(), nil
	}
	t, err := groundtruth.LoadFile(c.GroundTruthFile)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return t, nil
}

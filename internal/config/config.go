package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/tidwall/jsonc"

	"github.com/biblioteca-api/stackup/internal/model"
)

// Default file names probed in the working directory, in priority order.
// Both plain JSON and JSONC (comments and trailing commas allowed) are
// accepted; the .jsonc variant exists so editors apply the right syntax
// highlighting.
var configFileNames = []string{"stackup.json", "stackup.jsonc"}

// Cache describes the auxiliary cache container started by the dev
// sequencer when a container runtime is available.
type Cache struct {
	// Name is the fixed container name. The name is how an existing
	// instance is recognized and tolerated.
	Name string `mapstructure:"name"`

	// Image is the container image reference.
	Image string `mapstructure:"image"`

	// Port is published on the host as Port:Port.
	Port int `mapstructure:"port"`
}

// Health configures the readiness poll that replaces the original
// launcher's blind fixed sleep after `compose up`.
type Health struct {
	// URL is the HTTP endpoint polled until it answers 200 OK.
	// Empty disables polling and falls back to Config.Wait.
	URL string `mapstructure:"url"`

	// Interval is the pause between poll attempts.
	Interval time.Duration `mapstructure:"interval"`

	// Timeout bounds the whole poll. Exceeding it is reported as a
	// warning, not a fatal error — the stack may still be warming up.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Dev configures the development sequencer.
type Dev struct {
	// Install is the dependency install argv
	// (e.g., ["pip", "install", "-r", "requirements.txt"]).
	Install []string `mapstructure:"install"`

	// Server is the foreground dev server argv
	// (e.g., ["uvicorn", "app.main:app", "--reload", ...]).
	Server []string `mapstructure:"server"`

	// Endpoints are the URLs printed before the server launches.
	Endpoints []model.Endpoint `mapstructure:"endpoints"`

	// Cache is the optional auxiliary cache container.
	Cache Cache `mapstructure:"cache"`
}

// Config is the complete stackup configuration. A missing config file is
// not an error: the zero-config defaults reproduce the stack the original
// launch scripts drove.
type Config struct {
	// Project is the compose project name, also used as the label value
	// when listing the stack's containers via the Docker API.
	Project string `mapstructure:"project"`

	// ComposeFiles are passed to docker compose as -f flags, in order.
	ComposeFiles []string `mapstructure:"composeFiles"`

	// Endpoints are printed in the post-startup summary.
	Endpoints []model.Endpoint `mapstructure:"endpoints"`

	// Health configures the readiness poll.
	Health Health `mapstructure:"health"`

	// Wait is the fallback fixed wait used when no health URL is set.
	Wait time.Duration `mapstructure:"wait"`

	// Dev configures the development sequencer.
	Dev Dev `mapstructure:"dev"`
}

// Default returns the built-in configuration. The values mirror the
// deployment the original launch scripts managed: an API behind port 80
// with interactive docs, Prometheus on 9090, Grafana on 3000 with its
// stock credentials, a Redis cache on 6379 for local development, and a
// uvicorn dev server with live reload on 8000.
func Default() *Config {
	return &Config{
		Project:      "biblioteca",
		ComposeFiles: []string{"docker-compose.yml"},
		Endpoints: []model.Endpoint{
			{Name: "API", URL: "http://localhost"},
			{Name: "Docs", URL: "http://localhost/docs"},
			{Name: "Prometheus", URL: "http://localhost:9090"},
			{Name: "Grafana", URL: "http://localhost:3000", Note: "login: admin / admin"},
		},
		Health: Health{
			URL:      "http://localhost/health",
			Interval: 1 * time.Second,
			Timeout:  60 * time.Second,
		},
		Wait: 10 * time.Second,
		Dev: Dev{
			Install: []string{"pip", "install", "-r", "requirements.txt"},
			Server: []string{
				"uvicorn", "app.main:app",
				"--reload", "--host", "0.0.0.0", "--port", "8000",
			},
			Endpoints: []model.Endpoint{
				{Name: "API", URL: "http://localhost:8000"},
				{Name: "Docs", URL: "http://localhost:8000/docs"},
			},
			Cache: Cache{
				Name:  "biblioteca-redis",
				Image: "redis:7-alpine",
				Port:  6379,
			},
		},
	}
}

// Load reads the stackup configuration from dir. It probes the known
// file names and overlays the first one found on top of Default().
// When no config file exists, the defaults are returned as-is —
// the original launchers were zero-config, and so is stackup.
//
// Returns a model.CLIError with ExitConfigError when a config file
// exists but cannot be parsed or fails validation.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read config file %q", path), err)
		}
		return Parse(data, path)
	}
	return Default(), nil
}

// Parse decodes raw JSONC config bytes on top of the defaults.
// The path parameter is used only for error messages.
//
// Decoding is a two-stage process, the same approach the original
// devcontainer tooling family uses for comment-tolerant JSON:
//  1. jsonc.ToJSON strips comments and trailing commas, then the result
//     is unmarshalled into a generic map.
//  2. mapstructure decodes the map onto a Config pre-filled with
//     defaults, so absent keys keep their default values. A decode hook
//     converts duration strings ("10s", "1m") into time.Duration.
func Parse(data []byte, path string) (*Config, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("config file %q is not valid JSON", path), err)
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     cfg,
		// Unknown keys are rejected so a typo like "endpionts" fails
		// loudly instead of silently keeping the default value.
		ErrorUnused: true,
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to build config decoder", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("config file %q has invalid values", path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("config file %q failed validation", path), err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the sequencers cannot
// work with. It is called after every Parse; Default() is assumed valid
// (and verified by tests).
func (c *Config) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("project must not be empty")
	}
	if len(c.ComposeFiles) == 0 {
		return fmt.Errorf("composeFiles must list at least one file")
	}
	for i := range c.Endpoints {
		if err := c.Endpoints[i].Validate(); err != nil {
			return err
		}
	}
	for i := range c.Dev.Endpoints {
		if err := c.Dev.Endpoints[i].Validate(); err != nil {
			return err
		}
	}
	if c.Health.URL != "" {
		if c.Health.Interval <= 0 {
			return fmt.Errorf("health.interval must be positive, got %s", c.Health.Interval)
		}
		if c.Health.Timeout <= 0 {
			return fmt.Errorf("health.timeout must be positive, got %s", c.Health.Timeout)
		}
	}
	if c.Wait < 0 {
		return fmt.Errorf("wait must not be negative, got %s", c.Wait)
	}
	if len(c.Dev.Install) == 0 {
		return fmt.Errorf("dev.install must not be empty")
	}
	if len(c.Dev.Server) == 0 {
		return fmt.Errorf("dev.server must not be empty")
	}
	if c.Dev.Cache.Name != "" {
		if c.Dev.Cache.Image == "" {
			return fmt.Errorf("dev.cache.image must not be empty when a cache container is named")
		}
		if c.Dev.Cache.Port < 1 || c.Dev.Cache.Port > 65535 {
			return fmt.Errorf("dev.cache.port %d out of range (1-65535)", c.Dev.Cache.Port)
		}
	}
	return nil
}

// CacheEnabled reports whether the dev sequencer should attempt the
// auxiliary cache container step at all. An empty cache name disables it.
func (c *Config) CacheEnabled() bool {
	return c.Dev.Cache.Name != ""
}

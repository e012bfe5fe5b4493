package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// SourceConfig describes a single ICS source: a local path or an
// http(s)/webcal URL.
type SourceConfig struct {
	// ID is an internal identifier used in logs and API responses.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// URL is the path or URL the ICS text is loaded from.
	URL string `yaml:"url" json:"url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address used by serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// Format is the default output format of the CLI.
	Format string `yaml:"format" json:"format"`

	// Debug turns on the parser's diagnostic trace and debug logging.
	Debug bool `yaml:"debug" json:"debug"`

	// StrictRRule drops events whose RRULE the recurrence engine rejects.
	StrictRRule bool `yaml:"strict_rrule" json:"strict_rrule"`

	// Watch is a cron schedule (e.g. "*/15 * * * *") used by watch mode to
	// re-parse all sources. Empty disables watching.
	Watch string `yaml:"watch" json:"watch"`

	// CacheDir holds the HTTP cache for remote sources.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Sources are parsed when no sources are given on the command line and
	// by GET /api/sources.
	Sources []SourceConfig `yaml:"sources" json:"sources"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen   = "127.0.0.1:8080"
	defaultFormat   = "pretty"
	defaultCacheDir = "./var/ics-cache"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   defaultListen,
		Format:   defaultFormat,
		CacheDir: defaultCacheDir,
		Sources:  []SourceConfig{},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		c.Format = defaultFormat
	}
	c.Watch = strings.TrimSpace(c.Watch)
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	for i := range c.Sources {
		if c.Sources[i].ID == "" {
			c.Sources[i].ID = c.Sources[i].URL
		}
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	if c.Watch != "" {
		if _, err := cron.ParseStandard(c.Watch); err != nil {
			return errors.Wrapf(err, "invalid watch schedule %q", c.Watch)
		}
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.URL == "" {
			return errors.Errorf("source #%d has no url", i+1)
		}
		if seen[s.ID] {
			return errors.Errorf("duplicate source id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, errors.Wrap(err, "reading config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}

	tmp, err := os.CreateTemp(dir, ".icsparse-config-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp config")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp config")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp config")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp config")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.Wrap(err, "chmod temp config")
	}
	return errors.Wrap(os.Rename(tmpName, path), "replacing config")
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

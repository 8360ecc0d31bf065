// Package config loads docmill.toml project configuration.
//
// A project configuration names the API snapshot to document, where the
// generated tree goes, and the visibility knobs that cannot be derived
// from the snapshot itself (private-map entries, source base directories
// and their code URL prefixes).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/docmill/pkg/errors"
)

// DefaultFileName is the configuration file looked up when no explicit
// path is given on the command line.
const DefaultFileName = "docmill.toml"

// Config is a decoded and validated project configuration.
type Config struct {
	// Title names the documented project. It scopes cache keys when a
	// shared cache backend is configured and appears in generated
	// index headers.
	Title string `toml:"title"`

	// Snapshot is the path to the API snapshot JSON file. Relative
	// paths are resolved against the configuration file's directory.
	Snapshot string `toml:"snapshot"`

	// OutputDir is the root of the generated markdown tree. Relative
	// paths are resolved against the configuration file's directory;
	// after loading it is always absolute.
	OutputDir string `toml:"output_dir"`

	// SitePath is the site-relative directory the generated tree is
	// published under, used for redirect targets ("ref/python").
	SitePath string `toml:"site_path"`

	// BaseDirs are source directory prefixes of the documented project.
	// Modules defined outside all of them are not documented.
	BaseDirs []string `toml:"base_dirs"`

	// CodeURLPrefixes map BaseDirs entries, position by position, to the
	// URL prefix source links are built from.
	CodeURLPrefixes []string `toml:"code_url_prefixes"`

	// PrivateMap maps a dotted symbol location ("mylib.util") to child
	// names that must not be documented there.
	PrivateMap map[string][]string `toml:"private_map"`

	// LocalOnly hides module members defined outside the module's own
	// directory, so re-exports from sibling packages are not documented
	// twice.
	LocalOnly bool `toml:"local_only"`

	// Cache selects the rendered-page cache backend.
	Cache CacheConfig `toml:"cache"`
}

// CacheConfig configures the rendered-page cache.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none". Empty means "file".
	Backend string `toml:"backend"`

	// RedisURL is the redis connection URL, required when Backend is
	// "redis" ("redis://localhost:6379/0").
	RedisURL string `toml:"redis_url"`

	// Dir overrides the file cache directory. Empty means the user
	// cache directory.
	Dir string `toml:"dir"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve config directory")
	}
	cfg.resolve(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolve anchors relative file paths at the configuration directory.
// BaseDirs are left alone: they name paths inside the introspected
// environment, not the local filesystem.
func (c *Config) resolve(dir string) {
	if c.Snapshot != "" && !filepath.IsAbs(c.Snapshot) {
		c.Snapshot = filepath.Join(dir, c.Snapshot)
	}
	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(dir, c.OutputDir)
	}
	if c.Cache.Dir != "" && !filepath.IsAbs(c.Cache.Dir) {
		c.Cache.Dir = filepath.Join(dir, c.Cache.Dir)
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Title == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "title is required")
	}
	if err := errors.ValidateSnapshotPath(c.Snapshot); err != nil {
		return err
	}
	if err := errors.ValidateOutputRoot(c.OutputDir); err != nil {
		return err
	}

	if len(c.BaseDirs) != len(c.CodeURLPrefixes) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"base_dirs and code_url_prefixes must have the same length: %d vs %d",
			len(c.BaseDirs), len(c.CodeURLPrefixes))
	}
	for _, prefix := range c.CodeURLPrefixes {
		if err := errors.ValidateURLPrefix(prefix); err != nil {
			return err
		}
	}

	switch c.Cache.Backend {
	case "", "file", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}

	return nil
}

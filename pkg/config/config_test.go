package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/docmill/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadResolvesRelativePaths(t *testing.T) {
	path := writeConfig(t, `
title = "mylib"
snapshot = "snapshot.json"
output_dir = "docs"
site_path = "ref/python"
base_dirs = ["/src/mylib"]
code_url_prefixes = ["https://github.com/acme/mylib/blob/main"]

[private_map]
"mylib.util" = ["internal_helper"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	dir := filepath.Dir(path)
	if cfg.Snapshot != filepath.Join(dir, "snapshot.json") {
		t.Errorf("Snapshot = %q, want it anchored at the config directory", cfg.Snapshot)
	}
	if cfg.OutputDir != filepath.Join(dir, "docs") {
		t.Errorf("OutputDir = %q, want it anchored at the config directory", cfg.OutputDir)
	}
	if !filepath.IsAbs(cfg.OutputDir) {
		t.Errorf("OutputDir = %q, want absolute", cfg.OutputDir)
	}

	// Base dirs name introspected source paths and stay as written.
	if len(cfg.BaseDirs) != 1 || cfg.BaseDirs[0] != "/src/mylib" {
		t.Errorf("BaseDirs = %v, want [/src/mylib]", cfg.BaseDirs)
	}
	if got := cfg.PrivateMap["mylib.util"]; len(got) != 1 || got[0] != "internal_helper" {
		t.Errorf("PrivateMap[mylib.util] = %v, want [internal_helper]", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	path := writeConfig(t, "title = [broken")
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Title:           "mylib",
			Snapshot:        "/work/snapshot.json",
			OutputDir:       "/work/docs",
			BaseDirs:        []string{"/src/mylib"},
			CodeURLPrefixes: []string{"https://github.com/acme/mylib/blob/main"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing title",
			mutate:  func(c *Config) { c.Title = "" },
			wantErr: "title is required",
		},
		{
			name:    "snapshot not json",
			mutate:  func(c *Config) { c.Snapshot = "/work/snapshot.yaml" },
			wantErr: ".json",
		},
		{
			name:    "relative output dir",
			mutate:  func(c *Config) { c.OutputDir = "docs" },
			wantErr: "absolute",
		},
		{
			name:    "zip length mismatch",
			mutate:  func(c *Config) { c.CodeURLPrefixes = nil },
			wantErr: "same length",
		},
		{
			name: "bad url prefix scheme",
			mutate: func(c *Config) {
				c.CodeURLPrefixes = []string{"ftp://example.com/src"}
			},
			wantErr: "http or https",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: "unknown cache backend",
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.Cache.Backend = "redis" },
			wantErr: "redis_url",
		},
		{
			name: "redis with url",
			mutate: func(c *Config) {
				c.Cache.Backend = "redis"
				c.Cache.RedisURL = "redis://localhost:6379/0"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

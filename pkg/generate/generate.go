// Package generate provides the documentation generation pipeline.
//
// This package implements the complete load → traverse → build → write
// pipeline that can be used by CLI commands and embedding programs. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Traverse: Load the API snapshot and walk the symbol graph through
//     the visibility filter chain, accumulating the symbol index
//  2. Build: Construct and render one Markdown page per page-owning
//     symbol, in parallel
//  3. Write: Write the page tree plus the _toc.yaml sidebar, the
//     _redirects.yaml alias map, and the all_symbols.md global index
//
// Traversal is a hard barrier: the reference resolver is built from the
// completed index before any page is constructed.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := generate.NewRunner(cache, nil, logger)
//	opts := generate.Options{
//	    Title:        "MyLib",
//	    SnapshotPath: "/work/snapshot.json",
//	    OutputDir:    "/work/docs",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package generate

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/docmill/pkg/cache"
	"github.com/matzehuels/docmill/pkg/config"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// DefaultWorkers is the page-build worker pool size.
const DefaultWorkers = 8

// DefaultSitePath is the site-relative publication directory used in
// _toc.yaml and _redirects.yaml when none is configured.
const DefaultSitePath = "api_docs/python"

// Options contains all configuration for the generation pipeline.
type Options struct {
	// Title is the project title ("TensorFlow"). Required.
	Title string

	// SnapshotPath is the API snapshot file. Required unless Snapshot is
	// set directly.
	SnapshotPath string

	// Snapshot is a pre-loaded snapshot. When set, SnapshotPath is
	// ignored and the page cache is bypassed (there is no content hash
	// to key it with).
	Snapshot *symbol.Snapshot

	// OutputDir is the output root. Must be absolute.
	OutputDir string

	// SitePath is the site-relative publication directory.
	SitePath string

	// BaseDirs and CodeURLPrefixes are zipped pairwise to build source
	// links; modules defined outside all base dirs are not documented.
	BaseDirs        []string
	CodeURLPrefixes []string

	// PrivateMap maps dotted locations to child names hidden there.
	PrivateMap map[string][]string

	// Filters are extra child filters, applied between the standard
	// visibility filters and the accumulator.
	Filters []traverse.Filter

	// LocalOnly hides module members defined outside the module's own
	// directory, so re-exports from sibling packages are not documented
	// twice.
	LocalOnly bool

	// SkipRedirects disables _redirects.yaml emission.
	SkipRedirects bool

	// Refresh bypasses the page cache.
	Refresh bool

	// Workers is the page-build pool size. Zero means DefaultWorkers.
	Workers int

	// Logger receives progress output. Nil means discard.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig builds pipeline options from a loaded project configuration.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Title:           cfg.Title,
		SnapshotPath:    cfg.Snapshot,
		OutputDir:       cfg.OutputDir,
		SitePath:        cfg.SitePath,
		BaseDirs:        cfg.BaseDirs,
		CodeURLPrefixes: cfg.CodeURLPrefixes,
		PrivateMap:      cfg.PrivateMap,
		LocalOnly:       cfg.LocalOnly,
	}
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Title == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "title is required")
	}
	if o.Snapshot == nil {
		if err := errors.ValidateSnapshotPath(o.SnapshotPath); err != nil {
			return err
		}
	}
	if err := errors.ValidateOutputRoot(o.OutputDir); err != nil {
		return err
	}
	if len(o.BaseDirs) != len(o.CodeURLPrefixes) {
		return errors.New(errors.ErrCodeInvalidConfig,
			"base dirs and code URL prefixes must have the same length: %d vs %d",
			len(o.BaseDirs), len(o.CodeURLPrefixes))
	}

	if o.SitePath == "" {
		o.SitePath = DefaultSitePath
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// pageKeyOpts returns the cache key options for one page.
func (o *Options) pageKeyOpts(fullName string) cache.PageKeyOpts {
	prefix := ""
	if len(o.CodeURLPrefixes) > 0 {
		prefix = o.CodeURLPrefixes[0]
	}
	return cache.PageKeyOpts{
		FullName:      fullName,
		SitePath:      o.SitePath,
		CodeURLPrefix: prefix,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Index is the accumulated symbol index.
	Index *traverse.Index

	// Pages maps output-root-relative paths to rendered Markdown.
	Pages map[string][]byte

	// SnapshotHash is the content hash of the snapshot file, empty when
	// the snapshot was passed in pre-loaded.
	SnapshotHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks page cache effectiveness.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	SymbolCount  int
	PageCount    int
	TraverseTime time.Duration
	BuildTime    time.Duration
	WriteTime    time.Duration
}

// CacheInfo tracks page cache hits and misses.
type CacheInfo struct {
	PageHits   int
	PageMisses int
}

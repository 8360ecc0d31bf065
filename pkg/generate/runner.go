package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/matzehuels/docmill/pkg/cache"
	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/observability"
	"github.com/matzehuels/docmill/pkg/page"
	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/render"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and embedding programs can use this to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// builtPage is one rendered page with the name it was built under, kept
// so write failures can name the symbol, not just the path.
type builtPage struct {
	FullName string
	Path     string
	Data     []byte
}

// Execute runs the complete traverse → build → write pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	runID := uuid.NewString()

	snap, snapshotHash, err := r.loadSnapshot(opts)
	if err != nil {
		return nil, err
	}

	result := &Result{SnapshotHash: snapshotHash}

	// Stage 1: Traverse
	traverseStart := time.Now()
	observability.Generate().OnTraverseStart(ctx, runID, snap.RootName)
	idx, err := r.traverseSnapshot(snap, opts)
	result.Stats.TraverseTime = time.Since(traverseStart)
	observability.Generate().OnTraverseComplete(ctx, runID, snap.RootName, indexSize(idx), result.Stats.TraverseTime, err)
	if err != nil {
		return nil, err
	}
	result.Index = idx
	result.Stats.SymbolCount = indexSize(idx)

	r.Logger.Info("traversed symbol graph",
		"root", snap.RootName,
		"symbols", result.Stats.SymbolCount,
		"duration", result.Stats.TraverseTime)

	// Traversal is a hard barrier: the resolver sees the complete index.
	resolver := reference.NewResolver(reference.Index{
		Objects:     idx.Objects,
		DuplicateOf: idx.DuplicateOf,
	})

	// Stage 2: Build
	buildStart := time.Now()
	pages, err := r.buildPages(ctx, runID, snap, idx, resolver, snapshotHash, opts, &result.CacheInfo)
	result.Stats.BuildTime = time.Since(buildStart)
	if err != nil {
		return nil, err
	}
	result.Stats.PageCount = len(pages)
	result.Pages = make(map[string][]byte, len(pages))
	for _, pg := range pages {
		result.Pages[pg.Path] = pg.Data
	}

	r.Logger.Info("built pages",
		"pages", result.Stats.PageCount,
		"cache_hits", result.CacheInfo.PageHits,
		"duration", result.Stats.BuildTime)

	// Stage 3: Write
	writeStart := time.Now()
	err = r.writeDocs(snap, idx, resolver, pages, opts)
	result.Stats.WriteTime = time.Since(writeStart)
	observability.Generate().OnWriteComplete(ctx, runID, result.Stats.PageCount, result.Stats.WriteTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("wrote docs",
		"output", opts.OutputDir,
		"duration", result.Stats.WriteTime)

	return result, nil
}

// loadSnapshot returns the snapshot to document and the content hash of
// its file. A pre-loaded snapshot has no file, so no hash and no page
// caching.
func (r *Runner) loadSnapshot(opts Options) (*symbol.Snapshot, string, error) {
	if opts.Snapshot != nil {
		return opts.Snapshot, "", nil
	}

	data, err := os.ReadFile(opts.SnapshotPath)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", opts.SnapshotPath)
	}
	snap, err := symbol.Read(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return snap, cache.Hash(data), nil
}

// traverseSnapshot walks the graph through the standard visibility chain
// plus any caller filters.
func (r *Runner) traverseSnapshot(snap *symbol.Snapshot, opts Options) (*traverse.Index, error) {
	api := &traverse.PublicAPI{
		BaseDirs:    opts.BaseDirs,
		PrivateMap:  opts.PrivateMap,
		Annotations: snap.Annotations,
	}

	filters := []traverse.Filter{api.Filter}
	if len(snap.Suppressed) > 0 {
		filters = append(filters, traverse.Blocklist(snap.Suppressed...))
	}
	if opts.LocalOnly {
		filters = append(filters, traverse.LocalDefinitions)
	}
	filters = append(filters, opts.Filters...)

	return traverse.Traverse(snap.Root, snap.RootName, filters)
}

// pageNames lists the symbols that own a page, sorted case-insensitively.
// Aliases and fragments are documented on other symbols' pages.
func pageNames(idx *traverse.Index, resolver *reference.Resolver) []string {
	names := make([]string, 0, len(idx.Objects))
	for name := range idx.Objects {
		if _, isAlias := idx.DuplicateOf[name]; isAlias {
			continue
		}
		if resolver.IsFragment(name) {
			continue
		}
		names = append(names, name)
	}
	sortCaseInsensitive(names)
	return names
}

func (r *Runner) buildPages(
	ctx context.Context,
	runID string,
	snap *symbol.Snapshot,
	idx *traverse.Index,
	resolver *reference.Resolver,
	snapshotHash string,
	opts Options,
	cacheInfo *CacheInfo,
) ([]builtPage, error) {
	cfg := &page.Config{
		Index:           idx,
		Resolver:        resolver,
		Annotations:     snap.Annotations,
		BaseDirs:        opts.BaseDirs,
		CodeURLPrefixes: opts.CodeURLPrefixes,
	}
	renderer := &render.Renderer{Annotations: snap.Annotations}

	names := pageNames(idx, resolver)

	p := pool.New().WithMaxGoroutines(opts.Workers)
	var mu sync.Mutex
	pages := make([]builtPage, 0, len(names))
	var pageErrs []error

	for _, name := range names {
		name := name
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}

			start := time.Now()
			observability.Generate().OnPageStart(ctx, runID, name)
			data, hit, err := r.buildPage(ctx, name, cfg, renderer, snapshotHash, opts)
			observability.Generate().OnPageComplete(ctx, runID, name, time.Since(start), err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				pageErrs = append(pageErrs, errors.Wrap(errors.GetCode(err), err, "failed to generate docs for symbol %s", name))
				return
			}
			if hit {
				cacheInfo.PageHits++
			} else {
				cacheInfo.PageMisses++
			}
			pages = append(pages, builtPage{
				FullName: name,
				Path:     resolver.DocPath(name),
				Data:     data,
			})
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(pageErrs) > 0 {
		return nil, combinePageErrors(pageErrs)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].Path < pages[j].Path })
	return pages, nil
}

// combinePageErrors reports every failed page in one error. A reference
// resolution failure anywhere makes the whole build a reference error.
func combinePageErrors(pageErrs []error) error {
	code := errors.ErrCodeInternal
	msgs := make([]string, 0, len(pageErrs))
	for _, err := range pageErrs {
		if errors.Is(err, errors.ErrCodeReferenceNotFound) {
			code = errors.ErrCodeReferenceNotFound
		}
		msgs = append(msgs, err.Error())
	}
	sort.Strings(msgs)
	return errors.New(code, "%d pages failed:\n%s", len(pageErrs), strings.Join(msgs, "\n"))
}

// buildPage renders one page, consulting the page cache when the
// snapshot has a content hash.
func (r *Runner) buildPage(
	ctx context.Context,
	fullName string,
	cfg *page.Config,
	renderer *render.Renderer,
	snapshotHash string,
	opts Options,
) ([]byte, bool, error) {
	var key string
	if snapshotHash != "" {
		key = r.Keyer.PageKey(snapshotHash, opts.pageKeyOpts(fullName))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "page")
				return data, true, nil
			}
			observability.Cache().OnCacheMiss(ctx, "page")
		}
	}

	obj := cfg.Index.Objects[fullName]
	pg, err := page.Build(fullName, obj, cfg)
	if err != nil {
		return nil, false, err
	}
	text, err := renderer.Render(pg)
	if err != nil {
		return nil, false, err
	}

	data := []byte(text)
	if key != "" {
		if err := r.Cache.Set(ctx, key, data, cache.TTLPage); err == nil {
			observability.Cache().OnCacheSet(ctx, "page", len(data))
		}
	}
	return data, false, nil
}

// writeDocs writes the page tree plus the sidebar, redirect, and global
// index artifacts.
func (r *Runner) writeDocs(
	snap *symbol.Snapshot,
	idx *traverse.Index,
	resolver *reference.Resolver,
	pages []builtPage,
	opts Options,
) error {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "create output directory %s", opts.OutputDir)
	}

	for _, pg := range pages {
		path := filepath.Join(opts.OutputDir, filepath.FromSlash(pg.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write documentation for %s to %s", pg.FullName, path)
		}
		if err := os.WriteFile(path, pg.Data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write documentation for %s to %s", pg.FullName, path)
		}
	}

	tocData, err := marshalTOC(buildTOC(idx, resolver, snap.Annotations, opts.SitePath))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(opts.OutputDir, "_toc.yaml"), tocData, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write _toc.yaml")
	}

	rootDir := filepath.Join(opts.OutputDir, filepath.FromSlash(strings.ReplaceAll(snap.RootName, ".", "/")))
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "create root module directory %s", rootDir)
	}

	if !opts.SkipRedirects {
		redirectData, err := marshalRedirects(buildRedirects(idx, resolver, opts.SitePath))
		if err != nil {
			return err
		}
		if redirectData != nil {
			if err := os.WriteFile(filepath.Join(rootDir, "_redirects.yaml"), redirectData, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write _redirects.yaml")
			}
		}
	}

	allSymbols := "robots: noindex\n" + globalIndex(opts.Title, snap.RootName, idx, resolver)
	if err := os.WriteFile(filepath.Join(rootDir, "all_symbols.md"), []byte(allSymbols), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, err, "cannot write all_symbols.md")
	}

	return nil
}

// indexSize is nil-safe during error paths.
func indexSize(idx *traverse.Index) int {
	if idx == nil {
		return 0
	}
	return len(idx.Objects)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

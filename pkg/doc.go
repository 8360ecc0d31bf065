// Package pkg provides the core libraries for docmill documentation generation.
//
// # Overview
//
// Docmill turns an introspected API snapshot into a deterministic Markdown
// reference tree, with sidebar, redirect, and index files ready for
// publication. The pkg directory follows the pipeline:
//
//  1. [symbol] - Snapshot loading and the symbol object model
//  2. [docstring] - Docstring section parsing
//  3. [traverse] - Graph traversal with visibility filters
//  4. [reference] - Cross-reference resolution and link paths
//  5. [signature] - Signature line generation
//  6. [page] - Page assembly per symbol kind
//  7. [render] - Deterministic Markdown rendering
//  8. [generate] - Orchestration: traversal, page builds, tree writing
//  9. [sitemap] - GitBook layout conversion
//  10. [clidocs] - CLI reference docs from recursive help output
//
// Supporting packages: [cache] for rendered page caching (file, redis, or
// null backends), [config] for docmill.toml loading, [errors] for coded
// errors and validation, [observability] for instrumentation hooks, and
// [buildinfo] for version stamping.
//
// # Architecture
//
// The typical data flow:
//
//	API snapshot (JSON)
//	         ↓
//	    [symbol] package (load the object graph)
//	         ↓
//	    [traverse] package (filtered symbol index)
//	         ↓
//	    [page] + [render] packages (Markdown pages)
//	         ↓
//	    [generate] package (tree, _toc.yaml, _redirects.yaml, all_symbols.md)
//
// # Quick Start
//
// Generate a reference tree from a snapshot file:
//
//	import "github.com/matzehuels/docmill/pkg/generate"
//
//	runner := generate.NewRunner(nil, nil, nil)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, generate.Options{
//	    Title:        "MyLib",
//	    SnapshotPath: "/path/to/snapshot.json",
//	    OutputDir:    "/path/to/docs",
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("wrote %d pages\n", result.Stats.PageCount)
package pkg

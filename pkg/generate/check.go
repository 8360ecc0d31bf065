package generate

import (
	"context"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/observability"
	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// Dangling is one unresolvable docstring reference: the symbol whose
// docstring contains it and the reference text.
type Dangling struct {
	Symbol    string
	Reference string
}

// CheckResult reports the outcome of a documentation lint run.
type CheckResult struct {
	SymbolCount int
	Dangling    []Dangling
}

// OK reports whether every reference resolved.
func (r *CheckResult) OK() bool { return len(r.Dangling) == 0 }

// ValidateForCheck checks the fields the lint run needs. Unlike the full
// pipeline it has no output, so no output directory is required.
func (o *Options) ValidateForCheck() error {
	if o.Snapshot == nil {
		if err := errors.ValidateSnapshotPath(o.SnapshotPath); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// dottedReferenceRe matches a backtick span holding a dotted name, the
// shape docstrings use to reference other symbols.
var dottedReferenceRe = regexp.MustCompile("`([A-Za-z_][A-Za-z0-9_]*(?:\\.[A-Za-z_][A-Za-z0-9_]*)+)`")

// Check verifies that every dotted backtick reference in the documented
// docstrings resolves against the symbol index.
//
// Only references rooted in the documented project are checked: a
// docstring mentioning `os.path.join` is not docmill's to verify, but a
// `mylib.missing` reference in a mylib build is a dangling link.
func (r *Runner) Check(ctx context.Context, opts Options) (*CheckResult, error) {
	if err := opts.ValidateForCheck(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	runID := uuid.NewString()

	snap, _, err := r.loadSnapshot(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Generate().OnTraverseStart(ctx, runID, snap.RootName)
	idx, err := r.traverseSnapshot(snap, opts)
	observability.Generate().OnTraverseComplete(ctx, runID, snap.RootName, indexSize(idx), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	resolver := reference.NewResolver(reference.Index{
		Objects:     idx.Objects,
		DuplicateOf: idx.DuplicateOf,
	})

	result := &CheckResult{SymbolCount: indexSize(idx)}
	rootPrefix := snap.RootName + "."

	seen := make(map[*symbol.Object]bool)
	for _, name := range sortedNames(idx) {
		obj := idx.Objects[name]
		if seen[obj] {
			continue
		}
		seen[obj] = true

		mainName := idx.MainName(name)
		for _, match := range dottedReferenceRe.FindAllStringSubmatch(obj.Docstring, -1) {
			ref := match[1]
			if !strings.HasPrefix(ref, rootPrefix) {
				continue
			}
			if _, ok := resolver.ResolvePartial(ref); !ok {
				result.Dangling = append(result.Dangling, Dangling{Symbol: mainName, Reference: ref})
			}
		}
	}

	sort.Slice(result.Dangling, func(i, j int) bool {
		a, b := result.Dangling[i], result.Dangling[j]
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Reference < b.Reference
	})

	r.Logger.Info("checked references",
		"symbols", result.SymbolCount,
		"dangling", len(result.Dangling),
		"duration", time.Since(start))

	return result, nil
}

func sortedNames(idx *traverse.Index) []string {
	names := make([]string, 0, len(idx.Objects))
	for name := range idx.Objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

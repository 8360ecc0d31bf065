// Package reference resolves cross-references between documented symbols.
//
// The Resolver is built once from the completed symbol index, after
// traversal finishes and before any page is rendered. It is immutable from
// then on: page builders and the renderer only read it, so parallel page
// generation needs no locking.
package reference

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/symbol"
)

// Index is the view of the traversal result the Resolver needs: every full
// name mapped to its object, plus the alias-to-canonical mapping.
type Index struct {
	// Objects maps every visited full name (aliases included) to its object.
	Objects map[string]*symbol.Object

	// DuplicateOf maps alias full names to their canonical full name.
	// Canonical names are absent from this map.
	DuplicateOf map[string]string
}

// Resolver turns symbol references into documentation paths and rewrites
// backtick spans into inline code.
type Resolver struct {
	isFragment  map[string]bool
	duplicateOf map[string]string
	partials    map[string]string
}

// NewResolver builds a resolver from a completed index.
//
// Fragment classification: modules and classes own pages; callables own
// pages unless their parent is a class (methods); properties and other
// members are always fragments of their parent's page.
//
// The partial-symbol map is built from every dotted suffix with at least
// two segments of every known name. When several canonical names share a
// suffix, the lexicographically smallest canonical name wins, which keeps
// resolution deterministic regardless of registration order.
func NewResolver(idx Index) *Resolver {
	r := &Resolver{
		isFragment:  make(map[string]bool, len(idx.Objects)),
		duplicateOf: idx.DuplicateOf,
		partials:    make(map[string]string),
	}
	if r.duplicateOf == nil {
		r.duplicateOf = make(map[string]string)
	}

	for fullName, obj := range idx.Objects {
		r.isFragment[fullName] = isFragment(fullName, obj, idx.Objects)
	}

	names := make([]string, 0, len(idx.Objects))
	for name := range idx.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		canonical := r.Canonical(name)
		for _, partial := range partialNames(name) {
			existing, ok := r.partials[partial]
			if !ok || canonical < existing {
				r.partials[partial] = canonical
			}
		}
	}

	return r
}

// isFragment classifies one symbol by kind and parent kind.
func isFragment(fullName string, obj *symbol.Object, objects map[string]*symbol.Object) bool {
	switch obj.Kind {
	case symbol.KindModule, symbol.KindClass:
		return false
	case symbol.KindCallable:
		parent, ok := objects[symbol.ParentName(fullName)]
		return ok && parent.Kind == symbol.KindClass
	default:
		return true
	}
}

// partialNames generates every proper dotted suffix of fullName that keeps
// at least two segments, e.g. "tf.keras.layers.Conv2D" yields
// "keras.layers.Conv2D" and "layers.Conv2D".
func partialNames(fullName string) []string {
	segments := strings.Split(fullName, ".")
	var partials []string
	for i := 1; i < len(segments)-1; i++ {
		partials = append(partials, strings.Join(segments[i:], "."))
	}
	return partials
}

// Canonical returns the preferred full name for a possibly-aliased name.
func (r *Resolver) Canonical(fullName string) string {
	if canonical, ok := r.duplicateOf[fullName]; ok {
		return canonical
	}
	return fullName
}

// IsFragment reports whether the symbol's documentation lives as a
// subsection of another page.
func (r *Resolver) IsFragment(fullName string) bool {
	return r.isFragment[fullName]
}

// Known reports whether fullName is in the index.
func (r *Resolver) Known(fullName string) bool {
	_, ok := r.isFragment[fullName]
	return ok
}

// ResolvePartial resolves a shortened dotted reference to a canonical full
// name. Exact matches win over partial-map lookups. Single-segment names
// never resolve through the partial map, so ambiguous one-word references
// are never guessed.
func (r *Resolver) ResolvePartial(name string) (string, bool) {
	if r.Known(name) {
		return r.Canonical(name), true
	}
	if !strings.Contains(name, ".") {
		return "", false
	}
	canonical, ok := r.partials[name]
	return canonical, ok
}

// DocPath returns the documentation path for a symbol relative to the
// output root. Page-owning symbols map their dotted name onto a slash path
// with a ".md" suffix; fragments map onto their parent's page plus an
// in-page anchor.
func (r *Resolver) DocPath(fullName string) string {
	parts := strings.Split(fullName, ".")

	var fragment string
	if r.isFragment[fullName] {
		parts, fragment = parts[:len(parts)-1], parts[len(parts)-1]
	}

	result := path.Join(parts...) + ".md"
	if fragment != "" {
		result += "#" + fragment
	}
	return result
}

// ReferenceToPath resolves a full-name reference to a path relative to the
// current page.
//
// Fragment references are rewritten onto their parent's canonical page
// first, so a method reached through an alias still links to the canonical
// class page. The resolved canonical name must be in the index; a miss is
// a hard REFERENCE_NOT_FOUND error, never a silently broken link.
func (r *Resolver) ReferenceToPath(refFullName, relativePathToRoot string) (string, error) {
	var mainName string
	if r.isFragment[refFullName] {
		parentName := symbol.ParentName(refFullName)
		shortName := symbol.ShortName(refFullName)
		mainName = symbol.Join(r.Canonical(parentName), shortName)
	} else {
		mainName = r.Canonical(refFullName)
	}

	if !r.Known(mainName) {
		return "", errors.New(errors.ErrCodeReferenceNotFound, "cannot make link to %q: not in index", mainName)
	}

	return path.Join(relativePathToRoot, r.DocPath(mainName)), nil
}

// autoReferenceRe matches either a bracketed span (authored Markdown link
// syntax, passed through untouched) or a backtick span.
// The bracket alternative is listed first so backticks inside brackets are
// never rewritten.
var autoReferenceRe = regexp.MustCompile("(\\[.*?\\])|`([\\w()\\[\\]{}.,=\\s]+?)`")

// ReplaceBackticks rewrites every backtick span outside of bracket spans
// into an inline <code> span. Bracket spans pass through byte-for-byte.
//
// The rewrite is idempotent: converted spans contain no backticks, so a
// second pass finds nothing to change.
func (r *Resolver) ReplaceBackticks(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = autoReferenceRe.ReplaceAllStringFunc(line, func(match string) string {
			if strings.HasPrefix(match, "[") {
				return match
			}
			inner := match[1 : len(match)-1]
			return "<code>" + inner + "</code>"
		})
	}
	return strings.Join(lines, "\n")
}

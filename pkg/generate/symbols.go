package generate

import (
	"sort"
	"strings"

	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// globalIndex renders the all_symbols.md body: every documented module,
// class, and callable name, aliases included, linked to its page.
//
// The index file lives inside the root module directory, so links are
// relative to that directory.
func globalIndex(title, rootName string, idx *traverse.Index, resolver *reference.Resolver) string {
	relPath := strings.TrimSuffix(strings.Repeat("../", strings.Count(rootName, ".")+1), "/")

	names := make([]string, 0, len(idx.Objects))
	for name := range idx.Objects {
		if hasPrivateSegment(name) {
			continue
		}
		switch idx.Objects[name].Kind {
		case symbol.KindModule, symbol.KindClass, symbol.KindCallable:
			names = append(names, name)
		}
	}
	sort.Strings(names)

	lines := []string{"# All symbols in " + title, ""}
	for _, name := range names {
		link, err := resolver.ReferenceToPath(name, relPath)
		if err != nil {
			continue
		}
		lines = append(lines, "*  [`"+name+"`]("+link+")")
	}
	return strings.Join(lines, "\n") + "\n"
}

// hasPrivateSegment reports whether any dotted segment is underscored.
// Allowed dunders can survive traversal but stay out of the global index.
func hasPrivateSegment(fullName string) bool {
	for _, part := range strings.Split(fullName, ".") {
		if strings.HasPrefix(part, "_") {
			return true
		}
	}
	return false
}

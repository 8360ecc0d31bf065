package traverse

import (
	"strings"

	"github.com/matzehuels/docmill/pkg/errors"
	"github.com/matzehuels/docmill/pkg/symbol"
)

// Filter narrows the children of one visited object. Filters receive the
// attribute path to the parent, the parent itself, and the children the
// previous filter allowed through.
type Filter func(path []string, parent *symbol.Object, children []symbol.Child) ([]symbol.Child, error)

// maxModuleDepth guards against accidental public imports that make the
// module graph look infinitely deep.
const maxModuleDepth = 10

// allowedDunders are the double-underscore members documented despite the
// leading-underscore privacy rule.
var allowedDunders = func() map[string]bool {
	names := []string{
		"__abs__", "__add__", "__and__", "__bool__", "__call__",
		"__concat__", "__contains__", "__div__", "__enter__", "__eq__",
		"__exit__", "__floordiv__", "__ge__", "__getitem__", "__gt__",
		"__init__", "__invert__", "__iter__", "__le__", "__len__",
		"__lt__", "__matmul__", "__mod__", "__mul__", "__new__",
		"__ne__", "__neg__", "__pos__", "__nonzero__", "__or__",
		"__pow__", "__radd__", "__rand__", "__rdiv__", "__rfloordiv__",
		"__rmatmul__", "__rmod__", "__rmul__", "__ror__", "__rpow__",
		"__rsub__", "__rtruediv__", "__rxor__", "__setitem__", "__sub__",
		"__truediv__", "__xor__", "__version__",
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}()

// PublicAPI builds the standard visibility filter.
//
// A child is dropped when any of these hold, checked in order:
//   - it carries the skip annotation
//   - it is a module defined outside every configured base directory
//   - its name is blocklisted for this location in the private map
//   - its name starts with "_" and is not an allowed dunder
//
// The doc-private annotation overrides everything after the skip check, so
// an explicitly documented private name survives.
type PublicAPI struct {
	// BaseDirs are source directory prefixes. Modules whose source file
	// lies outside all of them are dropped. Empty means no restriction.
	BaseDirs []string

	// PrivateMap maps a dotted location ("mylib.util") to child names that
	// must not be documented at that location.
	PrivateMap map[string][]string

	// Annotations supplies the visibility flags. May be nil.
	Annotations *symbol.Annotations
}

// Filter implements the filter chain contract.
func (f *PublicAPI) Filter(path []string, parent *symbol.Object, children []symbol.Child) ([]symbol.Child, error) {
	if parent.Kind == symbol.KindModule && len(path) > maxModuleDepth {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"modules nested too deep: %s: likely an accidental public import", strings.Join(path, "."))
	}

	kept := children[:0]
	for _, child := range children {
		if !f.isPrivate(path, child.Name, child.Object) {
			kept = append(kept, child)
		}
	}
	return kept, nil
}

func (f *PublicAPI) isPrivate(path []string, name string, obj *symbol.Object) bool {
	if f.Annotations.Has(obj, symbol.FlagSkip) {
		return true
	}
	if f.Annotations.Has(obj, symbol.FlagDocPrivate) {
		return false
	}

	if obj.Kind == symbol.KindModule && len(f.BaseDirs) > 0 {
		if obj.Source != nil && obj.Source.File != "" && !f.underBaseDirs(obj.Source.File) {
			return true
		}
	}

	for _, blocked := range f.PrivateMap[strings.Join(path, ".")] {
		if name == blocked {
			return true
		}
	}

	return strings.HasPrefix(name, "_") && !allowedDunders[name]
}

func (f *PublicAPI) underBaseDirs(file string) bool {
	for _, base := range f.BaseDirs {
		if strings.HasPrefix(file, strings.TrimSuffix(base, "/")+"/") || file == base {
			return true
		}
	}
	return false
}

// Blocklist builds a filter dropping the given objects by identity. The
// generator uses it to suppress typing-helper namespaces declared in the
// snapshot.
func Blocklist(objs ...*symbol.Object) Filter {
	blocked := make(map[*symbol.Object]bool, len(objs))
	for _, obj := range objs {
		blocked[obj] = true
	}
	return func(path []string, parent *symbol.Object, children []symbol.Child) ([]symbol.Child, error) {
		kept := children[:0]
		for _, child := range children {
			if !blocked[child.Object] {
				kept = append(kept, child)
			}
		}
		return kept, nil
	}
}

// LocalDefinitions keeps a module's children only when their source file
// lies under the module's own directory, hiding re-exports from sibling
// packages. Children without source survive; so do all children of
// non-module parents.
func LocalDefinitions(path []string, parent *symbol.Object, children []symbol.Child) ([]symbol.Child, error) {
	if parent.Kind != symbol.KindModule || parent.Source == nil || parent.Source.File == "" {
		return children, nil
	}

	dir := parent.Source.File
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i+1]
	}

	kept := children[:0]
	for _, child := range children {
		if child.Object.Source != nil && child.Object.Source.File != "" &&
			!strings.HasPrefix(child.Object.Source.File, dir) {
			continue
		}
		kept = append(kept, child)
	}
	return kept, nil
}

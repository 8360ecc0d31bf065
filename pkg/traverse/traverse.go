// Package traverse walks a symbol graph and accumulates the index every
// downstream component reads: full names, the parent/child tree, and the
// alias groups that decide which of several names is a symbol's main name.
package traverse

import (
	"sort"
	"strings"

	"github.com/matzehuels/docmill/pkg/symbol"
)

// Index is the accumulated result of one traversal. It is built once and
// read-only afterwards.
type Index struct {
	// Objects maps every visited full name, aliases included, to its object.
	Objects map[string]*symbol.Object

	// Tree maps each visited module or class full name to the ordered short
	// names of its surviving children.
	Tree map[string][]string

	// ReverseIndex maps each object to its main name.
	ReverseIndex map[*symbol.Object]string

	// Duplicates maps each main name to the sorted list of all full names
	// for that object, the main name included. Singletons are present.
	Duplicates map[string][]string

	// DuplicateOf maps alias full names to their main name. Main names are
	// absent from this map.
	DuplicateOf map[string]string
}

// MainName returns the preferred full name for fullName.
func (idx *Index) MainName(fullName string) string {
	if main, ok := idx.DuplicateOf[fullName]; ok {
		return main
	}
	return fullName
}

// Traverse walks the graph from root, filtering children through the chain
// and recording every surviving symbol.
//
// Filters apply left to right; each stage sees only what the prior stage
// allowed through. Recursion descends into module and class children only.
// An object already on the current path is recorded as an alias and not
// descended into, which both terminates cyclic graphs and produces the
// alias groups.
func Traverse(root *symbol.Object, rootName string, filters []Filter) (*Index, error) {
	w := &walker{
		filters: filters,
		index:   map[string]*symbol.Object{rootName: root},
		tree:    make(map[string][]string),
		order:   []string{rootName},
		aliases: map[*symbol.Object][]string{root: {rootName}},
	}

	stack := map[*symbol.Object]bool{root: true}
	if err := w.visit([]string{rootName}, root, stack); err != nil {
		return nil, err
	}

	return w.finish(), nil
}

type walker struct {
	filters []Filter
	index   map[string]*symbol.Object
	tree    map[string][]string
	order   []string
	aliases map[*symbol.Object][]string
}

func (w *walker) visit(path []string, obj *symbol.Object, stack map[*symbol.Object]bool) error {
	fullName := strings.Join(path, ".")

	children := make([]symbol.Child, len(obj.Children))
	copy(children, obj.Children)

	var err error
	for _, filter := range w.filters {
		children, err = filter(path, obj, children)
		if err != nil {
			return err
		}
	}

	w.tree[fullName] = nil
	for _, child := range children {
		childName := fullName + "." + child.Name

		w.index[childName] = child.Object
		w.order = append(w.order, childName)
		w.tree[fullName] = append(w.tree[fullName], child.Name)
		w.aliases[child.Object] = append(w.aliases[child.Object], childName)

		descend := child.Object.Kind == symbol.KindModule || child.Object.Kind == symbol.KindClass
		if !descend || stack[child.Object] {
			continue
		}

		stack[child.Object] = true
		if err := w.visit(append(path, child.Name), child.Object, stack); err != nil {
			return err
		}
		delete(stack, child.Object)
	}
	return nil
}

// finish groups aliases, picks main names, and assembles the Index.
func (w *walker) finish() *Index {
	idx := &Index{
		Objects:      w.index,
		Tree:         w.tree,
		ReverseIndex: make(map[*symbol.Object]string),
		Duplicates:   make(map[string][]string),
		DuplicateOf:  make(map[string]string),
	}

	seen := make(map[*symbol.Object]bool)
	for _, fullName := range w.order {
		obj := w.index[fullName]
		if seen[obj] {
			continue
		}
		seen[obj] = true

		names := append([]string(nil), w.aliases[obj]...)
		sort.Strings(names)

		main := names[0]
		for _, name := range names[1:] {
			if w.scoreLess(name, main) {
				main = name
			}
		}

		idx.Duplicates[main] = names
		for _, name := range names {
			if name != main {
				idx.DuplicateOf[name] = main
			}
		}
		idx.ReverseIndex[obj] = main
	}

	return idx
}

// scoreLess reports whether name a is preferred over name b as a main name.
// Preference order: names whose parent class actually defines the member,
// names outside experimental namespaces, names at a comfortable module
// depth, and finally lexicographic order.
func (w *walker) scoreLess(a, b string) bool {
	sa, sb := w.score(a), w.score(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return sa[i] < sb[i]
		}
	}
	return a < b
}

func (w *walker) score(name string) [3]int {
	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		return [3]int{-99, -99, -99}
	}
	shortName := parts[len(parts)-1]

	definingClass := 1
	if container, ok := w.index[strings.Join(parts[:len(parts)-1], ".")]; ok {
		if container.Kind == symbol.KindClass && definesMember(container, shortName) {
			definingClass = -1
		}
	}

	experimental := -1
	for _, part := range parts {
		if part == "contrib" || strings.Contains(part, "experimental") {
			experimental = 1
			break
		}
	}

	// Walk up to the nearest enclosing module to judge nesting depth.
	// Two segments (root plus one submodule) is the sweet spot.
	modParts := parts
	for len(modParts) > 0 {
		container, ok := w.index[strings.Join(modParts, ".")]
		if ok && container.Kind == symbol.KindModule {
			break
		}
		modParts = modParts[:len(modParts)-1]
	}
	moduleLength := len(modParts)
	if moduleLength == 2 {
		moduleLength = -1
	}

	return [3]int{definingClass, experimental, moduleLength}
}

// definesMember reports whether class itself, rather than an ancestor,
// provides the member: no class in its MRO exposes the same object under
// the same name.
func definesMember(class *symbol.Object, name string) bool {
	own := class.Child(name)
	if own == nil {
		return false
	}
	for _, base := range class.MRO {
		if base.Child(name) == own {
			return false
		}
	}
	return true
}

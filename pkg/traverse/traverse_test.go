package traverse

import (
	"reflect"
	"testing"

	"github.com/matzehuels/docmill/pkg/symbol"
)

func module(children ...symbol.Child) *symbol.Object {
	return &symbol.Object{Kind: symbol.KindModule, Children: children}
}

func class(children ...symbol.Child) *symbol.Object {
	return &symbol.Object{Kind: symbol.KindClass, Children: children}
}

func fn() *symbol.Object {
	return &symbol.Object{Kind: symbol.KindCallable}
}

func TestTraverseIndexAndTree(t *testing.T) {
	compute := fn()
	conv := class(symbol.Child{Name: "call", Object: fn()})
	util := module(symbol.Child{Name: "compute", Object: compute})
	root := module(
		symbol.Child{Name: "Conv", Object: conv},
		symbol.Child{Name: "util", Object: util},
	)

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	wantNames := []string{"mylib", "mylib.Conv", "mylib.Conv.call", "mylib.util", "mylib.util.compute"}
	for _, name := range wantNames {
		if _, ok := idx.Objects[name]; !ok {
			t.Errorf("Objects missing %q", name)
		}
	}
	if got := idx.Tree["mylib"]; !reflect.DeepEqual(got, []string{"Conv", "util"}) {
		t.Errorf("Tree[mylib] = %v, want [Conv util]", got)
	}
	if got := idx.Tree["mylib.Conv"]; !reflect.DeepEqual(got, []string{"call"}) {
		t.Errorf("Tree[mylib.Conv] = %v, want [call]", got)
	}
	if idx.ReverseIndex[compute] != "mylib.util.compute" {
		t.Errorf("ReverseIndex[compute] = %q, want mylib.util.compute", idx.ReverseIndex[compute])
	}
}

func TestTraverseAliasSymmetry(t *testing.T) {
	// The same function is reachable as mylib.util.compute and mylib.compute.
	compute := fn()
	util := module(symbol.Child{Name: "compute", Object: compute})
	root := module(
		symbol.Child{Name: "compute", Object: compute},
		symbol.Child{Name: "util", Object: util},
	)

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	for alias, main := range idx.DuplicateOf {
		group, ok := idx.Duplicates[main]
		if !ok {
			t.Fatalf("DuplicateOf[%q] = %q, not a Duplicates key", alias, main)
		}
		found := false
		for _, name := range group {
			if name == alias {
				found = true
			}
		}
		if !found {
			t.Errorf("alias %q missing from Duplicates[%q] = %v", alias, main, group)
		}
	}

	main := idx.ReverseIndex[compute]
	if idx.MainName("mylib.compute") != main || idx.MainName("mylib.util.compute") != main {
		t.Errorf("aliases disagree on main name %q", main)
	}
	if len(idx.Duplicates[main]) != 2 {
		t.Errorf("Duplicates[%q] = %v, want both aliases", main, idx.Duplicates[main])
	}
}

func TestTraverseCycleSafety(t *testing.T) {
	// A submodule pointing back at its ancestor terminates and records the
	// back-reference as an alias.
	root := module()
	sub := module(symbol.Child{Name: "parent", Object: root})
	root.Children = []symbol.Child{{Name: "sub", Object: sub}}

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	if _, ok := idx.Objects["mylib.sub.parent"]; !ok {
		t.Fatal("back-reference not recorded")
	}
	if idx.MainName("mylib.sub.parent") != "mylib" {
		t.Errorf("MainName(mylib.sub.parent) = %q, want mylib", idx.MainName("mylib.sub.parent"))
	}
}

func TestTraverseSingletonDuplicatesGroup(t *testing.T) {
	root := module(symbol.Child{Name: "f", Object: fn()})

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	group, ok := idx.Duplicates["mylib.f"]
	if !ok {
		t.Fatal("singleton symbol missing from Duplicates")
	}
	if !reflect.DeepEqual(group, []string{"mylib.f"}) {
		t.Errorf("Duplicates[mylib.f] = %v, want singleton", group)
	}
	if _, ok := idx.DuplicateOf["mylib.f"]; ok {
		t.Error("main name must not appear in DuplicateOf")
	}
}

func TestMainNamePrefersDefiningClass(t *testing.T) {
	// Base defines method; Sub inherits it. Base.method should win.
	method := fn()
	base := class(symbol.Child{Name: "method", Object: method})
	sub := class(symbol.Child{Name: "method", Object: method})
	sub.MRO = []*symbol.Object{base}
	root := module(
		symbol.Child{Name: "Aub", Object: sub}, // sorts before Base
		symbol.Child{Name: "Base", Object: base},
	)

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	if got := idx.ReverseIndex[method]; got != "mylib.Base.method" {
		t.Errorf("main name = %q, want mylib.Base.method", got)
	}
}

func TestMainNameAvoidsExperimental(t *testing.T) {
	thing := fn()
	exp := module(symbol.Child{Name: "thing", Object: thing})
	stable := module(symbol.Child{Name: "thing", Object: thing})
	root := module(
		symbol.Child{Name: "experimental", Object: exp},
		symbol.Child{Name: "stable", Object: stable},
	)

	idx, err := Traverse(root, "mylib", nil)
	if err != nil {
		t.Fatalf("Traverse() error = %v", err)
	}

	if got := idx.ReverseIndex[thing]; got != "mylib.stable.thing" {
		t.Errorf("main name = %q, want mylib.stable.thing", got)
	}
}

func TestPublicAPIFilter(t *testing.T) {
	ann := symbol.NewAnnotations()
	skipped := fn()
	ann.Set(skipped, symbol.FlagSkip)
	private := fn()
	documented := fn()
	ann.Set(documented, symbol.FlagDocPrivate)
	blocked := fn()

	f := &PublicAPI{
		PrivateMap:  map[string][]string{"mylib": {"blocked"}},
		Annotations: ann,
	}

	children := []symbol.Child{
		{Name: "ok", Object: fn()},
		{Name: "skipped", Object: skipped},
		{Name: "_private", Object: private},
		{Name: "_documented", Object: documented},
		{Name: "blocked", Object: blocked},
		{Name: "__init__", Object: fn()},
	}

	got, err := f.Filter([]string{"mylib"}, module(), children)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	var names []string
	for _, child := range got {
		names = append(names, child.Name)
	}
	want := []string{"ok", "_documented", "__init__"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("kept = %v, want %v", names, want)
	}
}

func TestPublicAPIBaseDirs(t *testing.T) {
	inside := &symbol.Object{Kind: symbol.KindModule, Source: &symbol.Source{File: "/src/mylib/util.py"}}
	outside := &symbol.Object{Kind: symbol.KindModule, Source: &symbol.Source{File: "/src/numpy/core.py"}}

	f := &PublicAPI{BaseDirs: []string{"/src/mylib"}}

	got, err := f.Filter([]string{"mylib"}, module(), []symbol.Child{
		{Name: "util", Object: inside},
		{Name: "np", Object: outside},
	})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "util" {
		t.Errorf("kept = %v, want [util]", got)
	}
}

func TestPublicAPIDepthGuard(t *testing.T) {
	f := &PublicAPI{}
	path := make([]string, maxModuleDepth+1)
	for i := range path {
		path[i] = "m"
	}

	if _, err := f.Filter(path, module(), nil); err == nil {
		t.Error("Filter() error = nil, want depth error")
	}
}

func TestBlocklist(t *testing.T) {
	typing := fn()
	keep := fn()

	filter := Blocklist(typing)
	got, err := filter([]string{"mylib"}, module(), []symbol.Child{
		{Name: "Optional", Object: typing},
		{Name: "run", Object: keep},
	})
	if err != nil {
		t.Fatalf("Blocklist() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "run" {
		t.Errorf("kept = %v, want [run]", got)
	}
}

func TestLocalDefinitions(t *testing.T) {
	parent := &symbol.Object{Kind: symbol.KindModule, Source: &symbol.Source{File: "/src/mylib/sub/__init__.py"}}
	local := &symbol.Object{Kind: symbol.KindCallable, Source: &symbol.Source{File: "/src/mylib/sub/impl.py"}}
	foreign := &symbol.Object{Kind: symbol.KindCallable, Source: &symbol.Source{File: "/src/mylib/other.py"}}
	sourceless := fn()

	got, err := LocalDefinitions([]string{"mylib", "sub"}, parent, []symbol.Child{
		{Name: "local", Object: local},
		{Name: "foreign", Object: foreign},
		{Name: "sourceless", Object: sourceless},
	})
	if err != nil {
		t.Fatalf("LocalDefinitions() error = %v", err)
	}

	var names []string
	for _, child := range got {
		names = append(names, child.Name)
	}
	if !reflect.DeepEqual(names, []string{"local", "sourceless"}) {
		t.Errorf("kept = %v, want [local sourceless]", names)
	}
}

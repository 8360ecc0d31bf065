package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/docmill/pkg/docstring"
	"github.com/matzehuels/docmill/pkg/page"
	"github.com/matzehuels/docmill/pkg/signature"
	"github.com/matzehuels/docmill/pkg/symbol"
)

func method(name string) page.MethodInfo {
	return page.MethodInfo{MemberInfo: page.MemberInfo{ShortName: name}}
}

func TestSortMethods(t *testing.T) {
	methods := []page.MethodInfo{
		method("_private"),
		method("__init__"),
		method("public_b"),
		method("public_a"),
	}

	sortMethods(methods)

	var got []string
	for _, m := range methods {
		got = append(got, m.ShortName)
	}
	want := []string{"public_a", "public_b", "__init__", "_private"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted method names = %v, want %v", got, want)
	}
}

func TestSplitMethods(t *testing.T) {
	tests := []struct {
		name      string
		methods   []page.MethodInfo
		wantCtor  string
		wantOther []string
	}{
		{
			name:      "init preferred over new",
			methods:   []page.MethodInfo{method("__new__"), method("__init__"), method("run")},
			wantCtor:  "__init__",
			wantOther: []string{"run"},
		},
		{
			name:      "new used when init absent",
			methods:   []page.MethodInfo{method("__new__"), method("run")},
			wantCtor:  "__new__",
			wantOther: []string{"run"},
		},
		{
			name:      "no constructor",
			methods:   []page.MethodInfo{method("run")},
			wantCtor:  "",
			wantOther: []string{"run"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctor, others := splitMethods(tt.methods)

			gotCtor := ""
			if ctor != nil {
				gotCtor = ctor.ShortName
			}
			if gotCtor != tt.wantCtor {
				t.Errorf("constructor = %q, want %q", gotCtor, tt.wantCtor)
			}

			var gotOther []string
			for _, m := range others {
				gotOther = append(gotOther, m.ShortName)
			}
			if !reflect.DeepEqual(gotOther, tt.wantOther) {
				t.Errorf("other methods = %v, want %v", gotOther, tt.wantOther)
			}
		})
	}
}

func TestMergeConstructorBlocks(t *testing.T) {
	args := &docstring.TitleBlock{Title: "Args", Items: []docstring.Item{{Name: "x", Description: "from ctor"}}}
	raises := &docstring.TitleBlock{Title: "Raises", Items: []docstring.Item{{Name: "ValueError", Description: "bad x"}}}
	returns := &docstring.TitleBlock{Title: "Returns", Text: "nothing"}
	ctor := &page.MethodInfo{
		MemberInfo: page.MemberInfo{
			ShortName: "__init__",
			Doc:       docstring.Parsed{Parts: []docstring.Part{args, raises, returns}},
		},
	}

	tests := []struct {
		name       string
		classParts []docstring.Part
		ctor       *page.MethodInfo
		wantTitles []string
	}{
		{
			name:       "args and raises lifted, returns ignored",
			classParts: nil,
			ctor:       ctor,
			wantTitles: []string{"Args", "Raises"},
		},
		{
			name: "existing args block wins over ctor arguments",
			classParts: []docstring.Part{
				&docstring.TitleBlock{Title: "Arguments", Items: []docstring.Item{{Name: "x", Description: "from class"}}},
			},
			ctor:       ctor,
			wantTitles: []string{"Arguments", "Raises"},
		},
		{
			name:       "no constructor keeps class doc",
			classParts: []docstring.Part{returns},
			ctor:       nil,
			wantTitles: []string{"Returns"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergeConstructorBlocks(tt.classParts, tt.ctor)

			var titles []string
			for _, part := range merged {
				if block, ok := part.(*docstring.TitleBlock); ok {
					titles = append(titles, block.Title)
				}
			}
			if !reflect.DeepEqual(titles, tt.wantTitles) {
				t.Errorf("merged titles = %v, want %v", titles, tt.wantTitles)
			}
		})
	}
}

func TestTableView(t *testing.T) {
	block := &docstring.TitleBlock{
		Title: "Args",
		Items: []docstring.Item{
			{Name: "x", Description: "the input."},
			{Name: "y", Description: ""},
		},
	}

	got := tableView(block)
	want := "\n\n<!-- Tabular view -->\n<table>\n<tr><th>Args</th></tr>\n\n" +
		"<tr>\n<td>\n<code>x</code>\n</td>\n<td>\nthe input.\n</td>\n</tr>\n</table>\n\n"
	if got != want {
		t.Errorf("tableView() = %q, want %q", got, want)
	}
}

func TestListView(t *testing.T) {
	block := &docstring.TitleBlock{
		Title: "Example",
		Text:  "Some text.",
		Items: []docstring.Item{
			{Name: "a", Description: "first"},
			{Name: "b", Description: ""},
		},
	}

	got := listView(block)
	want := "\n\n#### Example:\nSome text.\n* <b>`a`</b>: first\n* <b>`b`</b>\n"
	if got != want {
		t.Errorf("listView() = %q, want %q", got, want)
	}
}

func TestFormatPartDispatch(t *testing.T) {
	table := formatPart(&docstring.TitleBlock{Title: "Returns"})
	if !strings.Contains(table, "<!-- Tabular view -->") {
		t.Errorf("Returns block rendered as %q, want a table", table)
	}
	list := formatPart(&docstring.TitleBlock{Title: "Example"})
	if !strings.HasPrefix(list, "\n\n#### Example:") {
		t.Errorf("Example block rendered as %q, want a list", list)
	}
	if got := formatPart(docstring.Text("plain")); got != "plain" {
		t.Errorf("text part rendered as %q, want %q", got, "plain")
	}
}

func TestSignatureBlock(t *testing.T) {
	sig := signature.Components{Arguments: []string{"x", "y=1"}}

	got := signatureBlock("compute", sig, []string{"staticmethod", "functools.lru_cache"})
	want := "```python\n@staticmethod\ncompute(\n    x, y=1\n)\n```\n\n"
	if got != want {
		t.Errorf("signatureBlock() = %q, want %q", got, want)
	}
}

func TestTopSourceLink(t *testing.T) {
	tests := []struct {
		name     string
		location *page.FileLocation
		want     string
	}{
		{
			name:     "github url gets a cta button",
			location: &page.FileLocation{URL: "https://github.com/acme/mylib/blob/main/ops.py"},
			want:     "\n\n{{< cta-button githubLink=\"https://github.com/acme/mylib/blob/main/ops.py\" >}}\n\n",
		},
		{
			name:     "other url gets a plain link",
			location: &page.FileLocation{URL: "https://example.com/src/ops.py"},
			want:     "\n\n\n\n[View source](https://example.com/src/ops.py)\n\n",
		},
		{
			name:     "no location",
			location: nil,
			want:     "\n\n\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := topSourceLink(tt.location); got != tt.want {
				t.Errorf("topSourceLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func functionPage(t *testing.T, fullName string, obj *symbol.Object, doc docstring.Parsed) *page.FunctionPage {
	t.Helper()
	p := &page.FunctionPage{PageInfo: page.PageInfo{FullName: fullName, Object: obj}}
	if err := p.SetDoc(doc); err != nil {
		t.Fatalf("SetDoc() error = %v", err)
	}
	if err := p.SetDefinedIn(nil); err != nil {
		t.Fatalf("SetDefinedIn() error = %v", err)
	}
	return p
}

func TestRenderFunctionPage(t *testing.T) {
	obj := &symbol.Object{Kind: symbol.KindCallable}
	p := functionPage(t, "mylib.compute", obj, docstring.Parsed{
		Brief: "Computes things.",
		Parts: []docstring.Part{
			&docstring.TitleBlock{Title: "Args", Items: []docstring.Item{{Name: "x", Description: "the input."}}},
		},
	})
	p.Signature = signature.Components{Arguments: []string{"x"}}

	r := &Renderer{Annotations: symbol.NewAnnotations()}
	got, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(got, "# compute\n\n") {
		t.Errorf("page does not open with the short name heading: %q", got[:20])
	}
	for _, fragment := range []string{
		"Computes things.\n\n",
		"```python\ncompute(\n    x\n)\n```",
		"<tr><th>Args</th></tr>",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("page missing %q", fragment)
		}
	}
}

func TestRenderFunctionCustomContentAppended(t *testing.T) {
	obj := &symbol.Object{Kind: symbol.KindCallable}
	p := functionPage(t, "mylib.compute", obj, docstring.Parsed{Brief: "Computes."})

	ann := symbol.NewAnnotations()
	ann.SetPageContent(obj, "Custom tail.")
	r := &Renderer{Annotations: ann}

	got, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasSuffix(got, "Custom tail.") {
		t.Errorf("custom content not appended, page ends with %q", got[len(got)-30:])
	}
	if !strings.Contains(got, "Computes.") {
		t.Error("generated body missing before custom content")
	}
}

func classPage(t *testing.T, fullName string, obj *symbol.Object, doc docstring.Parsed) *page.ClassPage {
	t.Helper()
	p := &page.ClassPage{PageInfo: page.PageInfo{FullName: fullName, Object: obj}}
	if err := p.SetDoc(doc); err != nil {
		t.Fatalf("SetDoc() error = %v", err)
	}
	if err := p.SetDefinedIn(nil); err != nil {
		t.Fatalf("SetDefinedIn() error = %v", err)
	}
	return p
}

func TestRenderClassPage(t *testing.T) {
	obj := &symbol.Object{Kind: symbol.KindClass}
	p := classPage(t, "mylib.Conv", obj, docstring.Parsed{Brief: "A convolution."})
	p.Bases = []page.MemberInfo{{ShortName: "Layer", URL: "../mylib/Layer.md"}}
	p.Methods = []page.MethodInfo{
		{
			MemberInfo: page.MemberInfo{ShortName: "__init__", Doc: docstring.Parsed{
				Parts: []docstring.Part{&docstring.TitleBlock{
					Title: "Args",
					Items: []docstring.Item{{Name: "rate", Description: "the rate."}},
				}},
			}},
			Signature: signature.Components{Arguments: []string{"rate=1"}},
		},
		{
			MemberInfo: page.MemberInfo{ShortName: "call", Doc: docstring.Parsed{Brief: "Applies the layer."}},
			Signature:  signature.Components{Arguments: []string{"x"}},
		},
	}
	p.AttrBlock = &docstring.TitleBlock{
		Title: "Attributes",
		Items: []docstring.Item{{Name: "rate", Description: "the rate."}},
	}

	r := &Renderer{Annotations: symbol.NewAnnotations()}
	got, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(got, "# Conv\n\n") {
		t.Errorf("page heading = %q, want # Conv", got[:10])
	}
	if !strings.Contains(got, "Inherits From: [`Layer`](../mylib/Layer.md)\n\n") {
		t.Error("page missing Inherits From line")
	}
	// Constructor signature uses the class name.
	if !strings.Contains(got, "```python\nConv(\n    rate=1\n)\n```") {
		t.Error("page missing constructor signature under the class name")
	}
	// The constructor's Args block is lifted into the class body.
	if !strings.Contains(got, "<tr><th>Args</th></tr>") {
		t.Error("page missing lifted Args table")
	}
	if !strings.Contains(got, "<tr><th>Attributes</th></tr>") {
		t.Error("page missing Attributes table")
	}
	if !strings.Contains(got, "## Methods\n\n### `call`\n\n") {
		t.Error("page missing the call method section")
	}
	if strings.Contains(got, "### `__init__`") {
		t.Error("constructor should not appear as a method section")
	}
}

func TestRenderClassCustomContentReplacesBody(t *testing.T) {
	obj := &symbol.Object{Kind: symbol.KindClass}
	p := classPage(t, "mylib.Conv", obj, docstring.Parsed{Brief: "A convolution."})
	p.Methods = []page.MethodInfo{
		{MemberInfo: page.MemberInfo{ShortName: "call", Doc: docstring.Parsed{Brief: "Applies."}}},
	}

	ann := symbol.NewAnnotations()
	ann.SetPageContent(obj, "Hand-written body.")
	r := &Renderer{Annotations: ann}

	got, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasSuffix(got, "Hand-written body.") {
		t.Error("custom content missing")
	}
	if strings.Contains(got, "## Methods") {
		t.Error("custom content should replace the generated method sections")
	}
}

func TestRenderModulePage(t *testing.T) {
	obj := &symbol.Object{Kind: symbol.KindModule}
	p := &page.ModulePage{PageInfo: page.PageInfo{FullName: "mylib", Object: obj}}
	if err := p.SetDoc(docstring.Parsed{Brief: "The library."}); err != nil {
		t.Fatalf("SetDoc() error = %v", err)
	}
	if err := p.SetDefinedIn(nil); err != nil {
		t.Fatalf("SetDefinedIn() error = %v", err)
	}
	p.Modules = []page.MemberInfo{
		{ShortName: "util", URL: "mylib/util.md", Doc: docstring.Parsed{Brief: "Utilities."}},
	}
	p.Classes = []page.MemberInfo{
		{ShortName: "Conv", URL: "mylib/Conv.md", Doc: docstring.Parsed{Brief: "A convolution."}},
	}
	p.Functions = []page.MemberInfo{
		{ShortName: "compute", URL: "mylib/compute.md"},
	}

	r := &Renderer{Annotations: symbol.NewAnnotations()}
	got, err := r.Render(p)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !strings.HasPrefix(got, "# mylib\n\n<!-- Insert buttons and diff -->\n") {
		t.Errorf("page header = %q", got[:50])
	}
	// Module links drop the .md extension, class links keep it, and both
	// lowercase the file name.
	if !strings.Contains(got, "## Modules\n\n[`util`](./util) module: Utilities.\n\n") {
		t.Error("page missing module link")
	}
	if !strings.Contains(got, "## Classes\n\n[`class Conv`](./conv.md): A convolution.\n\n") {
		t.Error("page missing class link")
	}
	if !strings.Contains(got, "## Functions\n\n[`compute(...)`](./compute.md)\n\n") {
		t.Error("page missing function link")
	}
}

func TestOtherMembersTable(t *testing.T) {
	members := []page.MemberInfo{
		{ShortName: "VERSION", Doc: docstring.Parsed{Brief: "The version string."}},
	}

	got := otherMembers(members, "Other Members")
	for _, fragment := range []string{
		"<tr><th>Other Members</th></tr>",
		"`VERSION`<a id=\"VERSION\"></a>",
		"The version string.",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("otherMembers() missing %q in %q", fragment, got)
		}
	}
}

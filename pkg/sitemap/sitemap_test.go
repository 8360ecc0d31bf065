package sitemap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// docTree writes a small generated tree and returns its root.
func docTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"mylib.md":           "# mylib\n\nCore library.\n",
		"mylib/Conv.md":      "# Conv\n\nConverts values.\n",
		"mylib/util.md":      "# util\n\nUtilities.\n",
		"mylib/util/help.md": "# help\n\nHelps out.\n",
		"_toc.yaml":          "toc: []\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

func TestConvert(t *testing.T) {
	root := docTree(t)

	if err := Convert(root); err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	for _, rel := range []string{"mylib/README.md", "mylib/util/README.md"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s: %v", rel, err)
		}
	}
	for _, rel := range []string{"mylib.md", "mylib/util.md"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); !os.IsNotExist(err) {
			t.Errorf("%s should have been moved, stat err = %v", rel, err)
		}
	}

	// Leaf pages stay put.
	if _, err := os.Stat(filepath.Join(root, "mylib", "Conv.md")); err != nil {
		t.Errorf("mylib/Conv.md: %v", err)
	}

	// A second pass changes nothing.
	if err := Convert(root); err != nil {
		t.Fatalf("second Convert error: %v", err)
	}
}

func TestScanAndAutodoc(t *testing.T) {
	root := docTree(t)
	if err := Convert(root); err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	entries, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d top-level entries, want 1: %+v", len(entries), entries)
	}

	mylib := entries[0]
	if mylib.Title != "mylib" || mylib.Path != "mylib/README.md" {
		t.Errorf("top entry = %+v, want the mylib landing page", mylib)
	}
	if len(mylib.Children) != 2 {
		t.Fatalf("mylib has %d children, want 2: %+v", len(mylib.Children), mylib.Children)
	}
	// Directories sort before leaf pages.
	if mylib.Children[0].Title != "util" {
		t.Errorf("first child = %+v, want the util section", mylib.Children[0])
	}
	if mylib.Children[1].Title != "Conv" || mylib.Children[1].Path != "mylib/Conv.md" {
		t.Errorf("second child = %+v, want the Conv page", mylib.Children[1])
	}

	want := strings.Join([]string{
		"* [mylib](mylib/README.md)",
		"  * [util](mylib/util/README.md)",
		"    * [help](mylib/util/help.md)",
		"  * [Conv](mylib/Conv.md)",
	}, "\n")
	if got := Autodoc(entries); got != want {
		t.Errorf("Autodoc =\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteSummary(t *testing.T) {
	root := docTree(t)
	if err := Convert(root); err != nil {
		t.Fatalf("Convert error: %v", err)
	}

	template := "# Docs\n\nIntro text.\n\n{autodoc}\n\nFooter.\n"
	if err := WriteSummary(root, template); err != nil {
		t.Fatalf("WriteSummary error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "SUMMARY.md"))
	if err != nil {
		t.Fatalf("read SUMMARY.md: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, "Intro text.") || !strings.Contains(got, "Footer.") {
		t.Error("SUMMARY.md should keep the template text around the slot")
	}
	if !strings.Contains(got, "* [mylib](mylib/README.md)") {
		t.Errorf("SUMMARY.md missing the generated list:\n%s", got)
	}
	if strings.Contains(got, AutodocSlot) {
		t.Error("SUMMARY.md should not contain the unexpanded slot")
	}
}

func TestWriteSummaryMissingSlot(t *testing.T) {
	root := docTree(t)
	if err := WriteSummary(root, "# Docs\n"); err == nil {
		t.Fatal("WriteSummary should reject a template without the autodoc slot")
	}
}

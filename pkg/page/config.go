package page

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/matzehuels/docmill/pkg/docstring"
	"github.com/matzehuels/docmill/pkg/reference"
	"github.com/matzehuels/docmill/pkg/symbol"
	"github.com/matzehuels/docmill/pkg/traverse"
)

// Config bundles the immutable state page builders read: the traversal
// index, the finished resolver, visibility annotations, and the source
// directory to URL-prefix pairs used for "defined in" links.
type Config struct {
	Index       *traverse.Index
	Resolver    *reference.Resolver
	Annotations *symbol.Annotations

	// BaseDirs and CodeURLPrefixes are zipped pairwise; the first base
	// directory containing a source file decides its link prefix.
	BaseDirs        []string
	CodeURLPrefixes []string
}

// RelativePathToRoot returns the path from fullName's page directory back
// to the documentation root, "." for top-level pages.
func (c *Config) RelativePathToRoot(fullName string) string {
	dir := path.Dir(c.Resolver.DocPath(fullName))
	if dir == "." || dir == "" {
		return "."
	}
	depth := strings.Count(dir, "/") + 1
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}

// ParseDoc parses an object's docstring with references rewritten. The
// backtick pass runs between preprocessing and block splitting so inline
// code spans survive the block regexes intact.
func (c *Config) ParseDoc(obj *symbol.Object) docstring.Parsed {
	doc := docstring.Preprocess(obj.Docstring)
	doc = c.Resolver.ReplaceBackticks(doc)
	return docstring.Split(doc)
}

// nonSourcePathRe matches pseudo-paths emitted for builtins and generated
// code, like "<embedded stdlib>" or "<string>".
var nonSourcePathRe = regexp.MustCompile(`<[\w\s]+>`)

// DefinedIn resolves an object's source location to a linkable
// FileLocation, or nil when the object has no linkable source: no recorded
// file, a file outside every base directory, or a generated pseudo-path.
func (c *Config) DefinedIn(obj *symbol.Object) *FileLocation {
	src := obj.Source
	if src == nil || src.File == "" {
		return nil
	}
	if !strings.HasSuffix(src.File, ".py") && !strings.HasSuffix(src.File, ".pyc") {
		return nil
	}
	if nonSourcePathRe.MatchString(src.File) {
		return nil
	}

	var rel, prefix string
	for i, base := range c.BaseDirs {
		base = strings.TrimSuffix(base, "/") + "/"
		if strings.HasPrefix(src.File, base) {
			rel = strings.TrimPrefix(src.File, base)
			if i < len(c.CodeURLPrefixes) {
				prefix = c.CodeURLPrefixes[i]
			}
			break
		}
	}
	if prefix == "" {
		return nil
	}

	// Point compiled files at their source.
	if strings.HasSuffix(rel, ".pyc") {
		rel = strings.Replace(rel, "__pycache__/", "", 1)
		dir, base := path.Dir(rel), path.Base(rel)
		if i := strings.Index(base, "."); i >= 0 {
			base = base[:i] + ".py"
		}
		rel = base
		if dir != "." {
			rel = dir + "/" + base
		}
	}

	url := strings.TrimSuffix(prefix, "/") + "/" + rel
	if src.StartLine > 0 && strings.Contains(url, "github.com") {
		url = fmt.Sprintf("%s#L%d-L%d", url, src.StartLine, src.EndLine)
	}

	return &FileLocation{
		URL:       url,
		StartLine: src.StartLine,
		EndLine:   src.EndLine,
	}
}

package symbol

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/docmill/pkg/errors"
)

// Snapshot is a decoded API snapshot: the root of the object graph, the
// name to document it under, and the visibility annotations declared in
// the snapshot.
type Snapshot struct {
	Root        *Object
	RootName    string
	Annotations *Annotations

	// Suppressed lists objects the snapshot marks as belonging to utility
	// namespaces (typing helpers and similar) that never appear in docs.
	Suppressed []*Object
}

// rawSnapshot mirrors the snapshot JSON document.
type rawSnapshot struct {
	Root     string               `json:"root"`
	RootName string               `json:"root_name"`
	Objects  map[string]rawObject `json:"objects"`
	Suppress []string             `json:"suppress,omitempty"`
}

type rawObject struct {
	Kind            string     `json:"kind"`
	Docstring       string     `json:"docstring,omitempty"`
	Children        []rawChild `json:"children,omitempty"`
	MRO             []string   `json:"mro,omitempty"`
	Params          []rawParam `json:"params,omitempty"`
	Return          string     `json:"return_annotation,omitempty"`
	Source          *Source    `json:"source,omitempty"`
	TupleFields     []string   `json:"tuple_fields,omitempty"`
	DataclassFields []string   `json:"dataclass_fields,omitempty"`
	Builtin         bool       `json:"builtin,omitempty"`
	Dataclass       bool       `json:"dataclass,omitempty"`
	Flags           []string   `json:"flags,omitempty"`
	PageContent     string     `json:"page_content,omitempty"`
}

type rawChild struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

type rawParam struct {
	Name       string `json:"name"`
	Kind       string `json:"kind,omitempty"`
	HasDefault bool   `json:"has_default,omitempty"`
	Default    string `json:"default,omitempty"`
	Annotation string `json:"annotation,omitempty"`
}

var kindFromString = map[string]Kind{
	"module":   KindModule,
	"class":    KindClass,
	"callable": KindCallable,
	"property": KindProperty,
	"other":    KindOther,
}

var paramKindFromString = map[string]ParamKind{
	"positional":      ParamPositional,
	"positional_only": ParamPositionalOnly,
	"var_positional":  ParamVarPositional,
	"keyword_only":    ParamKeywordOnly,
	"var_keyword":     ParamVarKeyword,
}

var flagFromString = map[string]Flag{
	"skip":                          FlagSkip,
	"skip_inheritable":              FlagSkipInheritable,
	"for_subclass_implementers":     FlagForSubclassImplementers,
	"doc_private":                   FlagDocPrivate,
	"doc_in_current_and_subclasses": FlagDocInCurrentAndSubclasses,
	"deprecated":                    FlagDeprecated,
}

// Read decodes an API snapshot from r.
//
// The input must be a JSON object with a "root" reference, a "root_name",
// and an "objects" table keyed by reference id:
//
//	{
//	  "root": "o0",
//	  "root_name": "mylib",
//	  "objects": {
//	    "o0": {"kind": "module", "children": [{"name": "f", "ref": "o1"}]},
//	    "o1": {"kind": "callable", "params": [{"name": "x"}]}
//	  }
//	}
//
// Objects are wired by reference, so two parents listing the same ref
// share one *Object: the traverser sees them as aliases of one symbol.
// Cyclic references are allowed.
//
// Read returns an error if:
//   - The JSON is malformed or invalid
//   - The root reference or any child/mro reference is unknown
//   - An object declares an unknown kind, parameter kind, or flag
//
// The returned graph is independent of r. Read does not close r.
func Read(r io.Reader) (*Snapshot, error) {
	var raw rawSnapshot
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode snapshot")
	}

	if raw.Root == "" {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no root reference")
	}
	if raw.RootName == "" {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "snapshot has no root_name")
	}
	if err := errors.ValidateSymbolName(raw.RootName); err != nil {
		return nil, err
	}

	// First pass: allocate every object so references can be wired in any
	// order, including cycles.
	objects := make(map[string]*Object, len(raw.Objects))
	for id := range raw.Objects {
		objects[id] = &Object{}
	}

	ann := NewAnnotations()

	// Second pass: populate fields and wire references.
	for id, ro := range raw.Objects {
		obj := objects[id]

		kind, ok := kindFromString[ro.Kind]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "object %s: unknown kind %q", id, ro.Kind)
		}
		obj.Kind = kind
		obj.Docstring = ro.Docstring
		obj.Return = ro.Return
		obj.Source = ro.Source
		obj.TupleFields = ro.TupleFields
		obj.DataclassFields = ro.DataclassFields
		obj.Builtin = ro.Builtin
		obj.Dataclass = ro.Dataclass

		for _, rc := range ro.Children {
			child, ok := objects[rc.Ref]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidSnapshot, "object %s: child %q references unknown object %q", id, rc.Name, rc.Ref)
			}
			obj.Children = append(obj.Children, Child{Name: rc.Name, Object: child})
		}

		for _, ref := range ro.MRO {
			base, ok := objects[ref]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidSnapshot, "object %s: mro references unknown object %q", id, ref)
			}
			obj.MRO = append(obj.MRO, base)
		}

		for _, rp := range ro.Params {
			kind := ParamPositional
			if rp.Kind != "" {
				pk, ok := paramKindFromString[rp.Kind]
				if !ok {
					return nil, errors.New(errors.ErrCodeInvalidSnapshot, "object %s: unknown parameter kind %q", id, rp.Kind)
				}
				kind = pk
			}
			obj.Params = append(obj.Params, Param{
				Name:       rp.Name,
				Kind:       kind,
				HasDefault: rp.HasDefault,
				Default:    rp.Default,
				Annotation: rp.Annotation,
			})
		}

		for _, name := range ro.Flags {
			flag, ok := flagFromString[name]
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidSnapshot, "object %s: unknown flag %q", id, name)
			}
			ann.Set(obj, flag)
		}

		if ro.PageContent != "" {
			ann.SetPageContent(obj, ro.PageContent)
		}
	}

	root, ok := objects[raw.Root]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSnapshot, "root references unknown object %q", raw.Root)
	}

	var suppressed []*Object
	for _, id := range raw.Suppress {
		obj, ok := objects[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSnapshot, "suppress references unknown object %q", id)
		}
		suppressed = append(suppressed, obj)
	}

	return &Snapshot{Root: root, RootName: raw.RootName, Annotations: ann, Suppressed: suppressed}, nil
}

// Load reads a snapshot file at path and returns the decoded graph.
//
// Load opens the file, decodes it using [Read], and closes the file. Errors
// wrap the underlying cause with the file path for context.
func Load(path string) (*Snapshot, error) {
	if err := errors.ValidateSnapshotPath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}

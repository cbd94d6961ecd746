package types

import "fmt"

// EntityKind tags the language construct an entity was extracted from.
// Values are serialized verbatim into the index under the "code_type" key.
type EntityKind string

const (
	KindFunction          EntityKind = "Function"
	KindMethod            EntityKind = "Method"
	KindStruct            EntityKind = "Struct"
	KindImpl              EntityKind = "Impl"
	KindTrait             EntityKind = "Trait"
	KindModule            EntityKind = "Module"
	KindImport            EntityKind = "Import"
	KindConstant          EntityKind = "Constant"
	KindStaticVariable    EntityKind = "Static Variable"
	KindVariable          EntityKind = "Variable"
	KindClass             EntityKind = "Class"
	KindInterface         EntityKind = "Interface"
	KindTypeAlias         EntityKind = "Type Alias"
	KindFunctionComponent EntityKind = "Function Component"
	KindMergedChunk       EntityKind = "Merged Chunk"
)

// Context records the lexical placement of an entity within its source tree.
type Context struct {
	// Module is the namespaced path inferred from the file and any
	// enclosing module nodes. Nil when no module applies.
	Module *string `json:"module"`

	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`

	// StructName names the struct/class/impl the entity is nested in,
	// nil for top-level entities.
	StructName *string `json:"struct_name"`

	// Snippet is the exact source text of the matched node.
	Snippet string `json:"snippet"`
}

// Entity is the atomic retrievable unit of the index: one named code unit
// with its source text, location, and (once computed) embedding vector.
type Entity struct {
	Name      string     `json:"name"`
	Signature string     `json:"signature"`
	Kind      EntityKind `json:"code_type"`

	// Docstring holds the leading documentation block, nil when absent.
	Docstring *string `json:"docstring"`

	// Line is the declaration line; LineFrom..LineTo span the full block
	// including leading docs. All are 1-based.
	Line     int `json:"line"`
	LineFrom int `json:"line_from"`
	LineTo   int `json:"line_to"`

	Context Context `json:"context"`

	// Embedding is absent until the embedding generator populates it and
	// is omitted entirely from JSON while absent.
	Embedding []float32 `json:"embedding,omitempty"`
}

// HasEmbedding reports whether an embedding vector has been computed.
func (e *Entity) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// SnippetLen returns the length in bytes of the entity's source snippet,
// the quantity all split/merge size accounting operates on.
func (e *Entity) SnippetLen() int {
	return len(e.Context.Snippet)
}

// Clone returns a deep copy: pointer fields and the embedding slice are
// duplicated so mutating the copy never aliases the original.
func (e Entity) Clone() Entity {
	out := e
	if e.Docstring != nil {
		d := *e.Docstring
		out.Docstring = &d
	}
	if e.Context.Module != nil {
		m := *e.Context.Module
		out.Context.Module = &m
	}
	if e.Context.StructName != nil {
		s := *e.Context.StructName
		out.Context.StructName = &s
	}
	if e.Embedding != nil {
		out.Embedding = make([]float32, len(e.Embedding))
		copy(out.Embedding, e.Embedding)
	}
	return out
}

// Validate performs basic integrity checks on an entity as produced by an
// extractor. Split chunks intentionally relax the Line-within-span rule, so
// only span ordering is enforced here.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.Kind == "" {
		return ErrInvalidKind
	}
	if e.Line < 1 || e.LineFrom < 1 || e.LineTo < 1 {
		return fmt.Errorf("%w: lines must be positive", ErrInvalidLineRange)
	}
	if e.LineFrom > e.LineTo {
		return fmt.Errorf("%w: line_from %d > line_to %d", ErrInvalidLineRange, e.LineFrom, e.LineTo)
	}
	return nil
}

// StringPtr returns a pointer to s. Convenience for the nullable Docstring,
// Module, and StructName fields.
func StringPtr(s string) *string {
	return &s
}

package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/Svring/galatea-sub000/internal/postprocessor"
	"github.com/Svring/galatea-sub000/pkg/types"
)

// handler processes one syntax node. Returning true claims the node and
// stops the generic descent; returning false lets the walker recurse into
// named children.
type handler func(w *walker, node *tree_sitter.Node, sc scope) bool

// docBlock is a documentation comment block attached to a node, with the
// 1-based line it starts on.
type docBlock struct {
	text     string
	lineFrom int
}

// scope carries the lexical surroundings down the tree. doc is set only
// when a wrapping node (such as an export statement) computed the doc
// block on behalf of the declaration inside it.
type scope struct {
	module     *string
	structName *string
	doc        *docBlock
}

// language binds a grammar to its node handlers and doc comment recognizer.
type language struct {
	name          string
	extensions    []string
	grammar       func() *tree_sitter.Language
	handlers      map[string]handler
	doc           func(node *tree_sitter.Node, src []byte) *docBlock
	initialModule func(root *tree_sitter.Node, src []byte, filePath string) *string
	jsx           bool
}

type walker struct {
	src      []byte
	lang     *language
	filePath string
	fileName string
	maxSize  int
	entities []types.Entity
}

func (w *walker) walk(node *tree_sitter.Node, sc scope) {
	if h, ok := w.lang.handlers[node.Kind()]; ok {
		if h(w, node, sc) {
			return
		}
	}
	w.walkChildren(node, sc)
}

func (w *walker) walkChildren(node *tree_sitter.Node, sc scope) {
	sc.doc = nil
	for i := uint(0); i < node.NamedChildCount(); i++ {
		w.walk(node.NamedChild(i), sc)
	}
}

// docFor resolves the doc block for a node: an inherited block from a
// wrapping node wins, otherwise the language recognizer runs on the node
// itself.
func (w *walker) docFor(node *tree_sitter.Node, sc scope) *docBlock {
	if sc.doc != nil {
		return sc.doc
	}
	if w.lang.doc == nil {
		return nil
	}
	return w.lang.doc(node, w.src)
}

// add finalizes an entity with file context and doc block, splits it when a
// snippet size limit is set, and appends the result.
func (w *walker) add(sc scope, doc *docBlock, e types.Entity) {
	e.Context.Module = clonePtr(sc.module)
	e.Context.FilePath = w.filePath
	e.Context.FileName = w.fileName
	if doc != nil {
		if trimmed := strings.TrimSpace(doc.text); trimmed != "" {
			e.Docstring = &trimmed
			if doc.lineFrom > 0 && doc.lineFrom < e.LineFrom {
				e.LineFrom = doc.lineFrom
			}
		}
	}
	if w.maxSize > 0 {
		w.entities = append(w.entities, postprocessor.Split(e, w.maxSize)...)
		return
	}
	w.entities = append(w.entities, e)
}

func (w *walker) text(node *tree_sitter.Node) string {
	return node.Utf8Text(w.src)
}

func startLine(node *tree_sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

func endLine(node *tree_sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// childOfKind returns the first direct child whose kind matches any of the
// given kinds, scanning unnamed children too.
func childOfKind(node *tree_sitter.Node, kinds ...string) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		for _, k := range kinds {
			if child.Kind() == k {
				return child
			}
		}
	}
	return nil
}

// firstDescendantOfKind walks the subtree depth-first and returns the first
// node of the given kind.
func firstDescendantOfKind(node *tree_sitter.Node, kind string) *tree_sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == kind {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstDescendantOfKind(node.Child(i), kind); found != nil {
			return found
		}
	}
	return nil
}

// signatureUpTo joins the text of all children preceding the first child of
// a terminating kind, skipping children of the listed kinds.
func signatureUpTo(node *tree_sitter.Node, src []byte, stop []string, skip []string) string {
	var b strings.Builder
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		kind := child.Kind()
		if contains(stop, kind) {
			break
		}
		if contains(skip, kind) {
			continue
		}
		b.WriteString(child.Utf8Text(src))
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}

func contains(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

package extractor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func pythonLanguage() *language {
	return &language{
		name:       "python",
		extensions: []string{"py"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_python.Language())
		},
		initialModule: func(_ *tree_sitter.Node, _ []byte, filePath string) *string {
			stem := fileStem(filePath)
			return &stem
		},
		handlers: map[string]handler{
			"function_definition":   pythonFunction,
			"class_definition":      pythonClass,
			"import_statement":      pythonImport,
			"import_from_statement": pythonImport,
		},
	}
}

// pythonDocstring reads the PEP 257 docstring: a string expression as the
// first statement of the body.
func pythonDocstring(w *walker, body *tree_sitter.Node) *docBlock {
	if body == nil || body.NamedChildCount() == 0 {
		return nil
	}
	first := body.NamedChild(0)
	if first.Kind() != "expression_statement" || first.NamedChildCount() == 0 {
		return nil
	}
	str := first.NamedChild(0)
	if str.Kind() != "string" {
		return nil
	}
	return &docBlock{text: w.text(str)}
}

func pythonFunction(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		return true
	}
	kind := types.KindFunction
	if sc.structName != nil {
		kind = types.KindMethod
	}
	w.add(sc, pythonDocstring(w, node.ChildByFieldName("body")), types.Entity{
		Name:      w.text(name),
		Signature: signatureUpTo(node, w.src, []string{"block"}, nil),
		Kind:      kind,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})
	return true
}

func pythonClass(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		return true
	}
	className := w.text(name)
	body := node.ChildByFieldName("body")
	w.add(sc, pythonDocstring(w, body), types.Entity{
		Name:      className,
		Signature: w.text(node),
		Kind:      types.KindClass,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})

	if body != nil {
		inner := scope{module: sc.module, structName: &className}
		for i := uint(0); i < body.NamedChildCount(); i++ {
			w.walk(body.NamedChild(i), inner)
		}
	}
	return true
}

func pythonImport(w *walker, node *tree_sitter.Node, sc scope) bool {
	text := w.text(node)
	w.add(sc, nil, types.Entity{
		Name:      text,
		Signature: text,
		Kind:      types.KindImport,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			Snippet: text,
		},
	})
	return true
}

package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func typescriptLanguage() *language {
	return &language{
		name:       "typescript",
		extensions: []string{"ts"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		},
		doc:      scriptDoc,
		handlers: scriptHandlers(true),
	}
}

func tsxLanguage() *language {
	return &language{
		name:       "tsx",
		extensions: []string{"tsx"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		},
		doc:      scriptDoc,
		handlers: scriptHandlers(true),
		jsx:      true,
	}
}

// scriptHandlers builds the handler table shared by the TypeScript,
// TSX, and JavaScript grammars. typed adds the TypeScript-only
// declaration kinds.
func scriptHandlers(typed bool) map[string]handler {
	h := map[string]handler{
		"export_statement":     scriptExport,
		"import_statement":     scriptImport,
		"function_declaration": scriptFunction,
		"method_definition":    scriptFunction,
		"lexical_declaration":  scriptVariableDeclaration,
		"variable_declaration": scriptVariableDeclaration,
		"class_declaration":    scriptClass,
	}
	if typed {
		h["interface_declaration"] = scriptInterface
		h["type_alias_declaration"] = scriptTypeAlias
		h["abstract_class_declaration"] = scriptClass
	}
	return h
}

// scriptDoc collects the comment block preceding a node. JSDoc-style
// comments (/**, ///, //!) always join the block; a plain // line counts
// only as the nearest comment when nothing else was collected; a plain
// block comment before any doc stops the scan.
func scriptDoc(node *tree_sitter.Node, src []byte) *docBlock {
	var parts []string
	lineFrom := 0
	for sib := node.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		if sib.Kind() != "comment" {
			break
		}
		text := sib.Utf8Text(src)
		switch {
		case strings.HasPrefix(text, "/**") || strings.HasPrefix(text, "//!") || strings.HasPrefix(text, "///"):
			parts = append([]string{text}, parts...)
			lineFrom = int(sib.StartPosition().Row) + 1
		case strings.HasPrefix(text, "//") && len(parts) == 0:
			parts = append([]string{text}, parts...)
			lineFrom = int(sib.StartPosition().Row) + 1
		case len(parts) == 0 && strings.HasPrefix(text, "/*"):
			return nil
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &docBlock{text: strings.Join(parts, "\n"), lineFrom: lineFrom}
}

// scriptExport computes the doc block on the export statement itself and
// hands it down to the wrapped declaration.
func scriptExport(w *walker, node *tree_sitter.Node, sc scope) bool {
	decl := node.ChildByFieldName("declaration")
	if decl == nil {
		decl = node.NamedChild(0)
	}
	if decl == nil {
		decl = node.Child(0)
	}
	if decl == nil {
		return true
	}
	sc.doc = w.docFor(node, sc)
	w.walk(decl, sc)
	return true
}

func scriptImport(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := "?"
	if clause := childOfKind(node, "import_clause", "namespace_import", "named_imports", "identifier"); clause != nil {
		name = w.text(clause)
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      name,
		Signature: w.text(node),
		Kind:      types.KindImport,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})
	return true
}

// scriptFunction handles function declarations and class method
// definitions. Anonymous or destructured names produce no entity; the
// walker descends instead so nested declarations still surface.
func scriptFunction(w *walker, node *tree_sitter.Node, sc scope) bool {
	isMethod := node.Kind() == "method_definition"

	var nameNode *tree_sitter.Node
	if isMethod {
		nameNode = node.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = childOfKind(node, "property_identifier", "constructor")
		}
	} else {
		nameNode = childOfKind(node, "identifier")
		if nameNode == nil {
			nameNode = node.ChildByFieldName("name")
		}
	}
	if nameNode == nil {
		return false
	}
	name := w.text(nameNode)
	if name == "" || strings.ContainsAny(name, " (:") {
		return false
	}

	kind := types.KindFunction
	if isMethod || sc.structName != nil {
		kind = types.KindMethod
	} else if w.lang.jsx {
		body := node.ChildByFieldName("body")
		if body == nil {
			body = childOfKind(node, "statement_block")
		}
		if containsJSX(body) {
			kind = types.KindFunctionComponent
		}
	}

	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      name,
		Signature: w.text(node),
		Kind:      kind,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})
	return true
}

// scriptVariableDeclaration emits one entity per declarator. A declarator
// whose value is a function expression becomes a Function (or Function
// Component); anything else is a Constant or Variable depending on the
// declaration keyword. The walker always descends afterwards.
func scriptVariableDeclaration(w *walker, node *tree_sitter.Node, sc scope) bool {
	doc := w.docFor(node, sc)
	for i := uint(0); i < node.NamedChildCount(); i++ {
		declarator := node.NamedChild(i)
		if declarator.Kind() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = childOfKind(declarator, "identifier")
		}
		if nameNode == nil {
			continue
		}
		name := w.text(nameNode)

		value := declarator.ChildByFieldName("value")
		if value == nil {
			value = childOfKind(declarator, "arrow_function", "function_expression")
		}
		if value != nil && isFunctionValue(value.Kind()) {
			kind := types.KindFunction
			if w.lang.jsx && containsJSX(value) {
				kind = types.KindFunctionComponent
			}
			w.add(sc, doc, types.Entity{
				Name:      name,
				Signature: w.text(declarator),
				Kind:      kind,
				Line:      startLine(nameNode),
				LineFrom:  startLine(declarator),
				LineTo:    endLine(declarator),
				Context: types.Context{
					Snippet: w.text(declarator),
				},
			})
			continue
		}

		kind := types.KindVariable
		if first := node.Child(0); first != nil && first.Kind() == "const" {
			kind = types.KindConstant
		}
		w.add(sc, doc, types.Entity{
			Name:      name,
			Signature: w.text(node),
			Kind:      kind,
			Line:      startLine(nameNode),
			LineFrom:  startLine(node),
			LineTo:    endLine(node),
			Context: types.Context{
				StructName: clonePtr(sc.structName),
				Snippet:    w.text(node),
			},
		})
	}
	return false
}

func isFunctionValue(kind string) bool {
	return kind == "arrow_function" || kind == "function_expression" || kind == "function"
}

func scriptClass(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := childOfKind(node, "type_identifier", "identifier")
	if name == nil {
		return true
	}
	className := w.text(name)
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      className,
		Signature: w.text(node),
		Kind:      types.KindClass,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})

	body := node.ChildByFieldName("body")
	if body == nil {
		body = childOfKind(node, "class_body")
	}
	if body != nil {
		inner := scope{module: sc.module, structName: &className}
		for i := uint(0); i < body.NamedChildCount(); i++ {
			w.walk(body.NamedChild(i), inner)
		}
	}
	return true
}

func scriptInterface(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		name = childOfKind(node, "type_identifier")
	}
	if name == nil {
		return true
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: w.text(node),
		Kind:      types.KindInterface,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})
	return true
}

func scriptTypeAlias(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		name = childOfKind(node, "type_identifier")
	}
	if name == nil {
		return true
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: w.text(node),
		Kind:      types.KindTypeAlias,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})
	return true
}

// containsJSX reports whether the subtree holds a JSX element. Fragments
// alone do not count.
func containsJSX(node *tree_sitter.Node) bool {
	if node == nil {
		return false
	}
	kind := node.Kind()
	if kind == "jsx_element" || kind == "jsx_self_closing_element" {
		return true
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if containsJSX(node.Child(i)) {
			return true
		}
	}
	return false
}

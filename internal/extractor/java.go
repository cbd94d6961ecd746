package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func javaLanguage() *language {
	return &language{
		name:       "java",
		extensions: []string{"java"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_java.Language())
		},
		doc: javaDoc,
		initialModule: func(root *tree_sitter.Node, src []byte, _ string) *string {
			pkg := childOfKind(root, "package_declaration")
			if pkg == nil {
				return nil
			}
			name := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(pkg.Utf8Text(src), "package")), ";")
			name = strings.TrimSpace(name)
			if name == "" {
				return nil
			}
			return &name
		},
		handlers: map[string]handler{
			"class_declaration":       javaClassLike(types.KindClass, true),
			"interface_declaration":   javaClassLike(types.KindInterface, false),
			"enum_declaration":        javaClassLike(types.KindClass, true),
			"method_declaration":      javaMethod,
			"constructor_declaration": javaMethod,
			"field_declaration":       javaField,
			"import_declaration":      javaImport,
		},
	}
}

// javaDoc walks preceding comments like the Rust recognizer: javadoc
// blocks accumulate, ordinary comments are scanned past until a javadoc
// shows up and end the block afterwards.
func javaDoc(node *tree_sitter.Node, src []byte) *docBlock {
	var parts []string
	lineFrom := 0
	for sib := node.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		kind := sib.Kind()
		if kind != "line_comment" && kind != "block_comment" && kind != "comment" {
			break
		}
		text := sib.Utf8Text(src)
		if strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***") {
			parts = append([]string{text}, parts...)
			lineFrom = int(sib.StartPosition().Row) + 1
			continue
		}
		if len(parts) > 0 {
			break
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &docBlock{text: strings.Join(parts, "\n"), lineFrom: lineFrom}
}

// javaClassLike emits the declaration and optionally descends into its body
// with the type name as the enclosing struct context.
func javaClassLike(kind types.EntityKind, recurse bool) handler {
	return func(w *walker, node *tree_sitter.Node, sc scope) bool {
		name := node.ChildByFieldName("name")
		if name == nil {
			name = childOfKind(node, "identifier")
		}
		if name == nil {
			return true
		}
		typeName := w.text(name)
		w.add(sc, w.docFor(node, sc), types.Entity{
			Name:      typeName,
			Signature: w.text(node),
			Kind:      kind,
			Line:      startLine(name),
			LineFrom:  startLine(node),
			LineTo:    endLine(node),
			Context: types.Context{
				StructName: clonePtr(sc.structName),
				Snippet:    w.text(node),
			},
		})

		if !recurse {
			return true
		}
		body := node.ChildByFieldName("body")
		if body == nil {
			body = childOfKind(node, "class_body", "enum_body")
		}
		if body != nil {
			inner := scope{module: sc.module, structName: &typeName}
			for i := uint(0); i < body.NamedChildCount(); i++ {
				w.walk(body.NamedChild(i), inner)
			}
		}
		return true
	}
}

func javaMethod(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		return true
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: signatureUpTo(node, w.src, []string{"block", "constructor_body"}, nil),
		Kind:      types.KindMethod,
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

// javaField maps final fields to constants and the rest to variables.
func javaField(w *walker, node *tree_sitter.Node, sc scope) bool {
	declarator := childOfKind(node, "variable_declarator")
	if declarator == nil {
		return true
	}
	name := declarator.ChildByFieldName("name")
	if name == nil {
		name = childOfKind(declarator, "identifier")
	}
	if name == nil {
		return true
	}

	kind := types.KindVariable
	if mods := childOfKind(node, "modifiers"); mods != nil && strings.Contains(w.text(mods), "final") {
		kind = types.KindConstant
	}
	text := w.text(node)
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: text,
		Kind:      kind,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    text,
		},
	})
	return true
}

func javaImport(w *walker, node *tree_sitter.Node, sc scope) bool {
	text := w.text(node)
	w.add(sc, w.docFor(node, sc), types.Entity{
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

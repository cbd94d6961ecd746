package extractor

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func rustLanguage() *language {
	return &language{
		name:       "rust",
		extensions: []string{"rs"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_rust.Language())
		},
		doc: rustDoc,
		initialModule: func(_ *tree_sitter.Node, _ []byte, filePath string) *string {
			stem := fileStem(filePath)
			return &stem
		},
		handlers: map[string]handler{
			"function_item":   rustFunction,
			"struct_item":     rustNamedItem("type_identifier", types.KindStruct),
			"trait_item":      rustNamedItem("type_identifier", types.KindTrait),
			"impl_item":       rustImpl,
			"mod_item":        rustModule,
			"use_declaration": rustUse,
			"const_item":      rustNamedItem("identifier", types.KindConstant),
			"static_item":     rustNamedItem("identifier", types.KindStaticVariable),
		},
	}
}

// rustDoc collects the doc comment block preceding a node. Doc comments are
// ///, //!, /** (but not /***), and /*! forms; ordinary comments between the
// node and its docs are scanned past until a doc comment shows up, but once
// a doc block started an ordinary comment ends it.
func rustDoc(node *tree_sitter.Node, src []byte) *docBlock {
	var parts []string
	lineFrom := 0
	for sib := node.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		kind := sib.Kind()
		if kind != "line_comment" && kind != "block_comment" {
			break
		}
		text := sib.Utf8Text(src)
		if isRustDocComment(text) {
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

func isRustDocComment(text string) bool {
	switch {
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "//!"):
		return true
	case strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***"):
		return true
	case strings.HasPrefix(text, "/*!"):
		return true
	}
	return false
}

func rustFunction(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := childOfKind(node, "identifier")
	if name == nil {
		return true
	}
	kind := types.KindFunction
	if sc.structName != nil {
		kind = types.KindMethod
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: signatureUpTo(node, w.src, []string{"block"}, []string{"attribute_item"}),
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

// rustNamedItem emits a whole-node entity named by its first child of the
// given kind. Covers structs, traits, constants, and statics.
func rustNamedItem(nameKind string, kind types.EntityKind) handler {
	return func(w *walker, node *tree_sitter.Node, sc scope) bool {
		name := childOfKind(node, nameKind)
		if name == nil {
			return true
		}
		w.add(sc, w.docFor(node, sc), types.Entity{
			Name:      w.text(name),
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
		return true
	}
}

func rustImpl(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := "anonymous_impl"
	if typeNode := childOfKind(node, "type_identifier", "generic_type", "trait_bound"); typeNode != nil {
		name = w.text(typeNode)
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      fmt.Sprintf("impl %s", name),
		Signature: w.text(node),
		Kind:      types.KindImpl,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})

	if body := childOfKind(node, "declaration_list", "field_declaration_list"); body != nil {
		inner := scope{module: sc.module, structName: &name}
		for i := uint(0); i < body.NamedChildCount(); i++ {
			w.walk(body.NamedChild(i), inner)
		}
	}
	return true
}

func rustModule(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := childOfKind(node, "identifier")
	if name == nil {
		return true
	}
	modName := w.text(name)
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      modName,
		Signature: fmt.Sprintf("mod %s;", modName),
		Kind:      types.KindModule,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    w.text(node),
		},
	})

	path := modName
	if sc.module != nil {
		path = *sc.module + "::" + modName
	}
	if body := childOfKind(node, "declaration_list"); body != nil {
		inner := scope{module: &path, structName: sc.structName}
		for i := uint(0); i < body.NamedChildCount(); i++ {
			w.walk(body.NamedChild(i), inner)
		}
	}
	return true
}

func rustUse(w *walker, node *tree_sitter.Node, sc scope) bool {
	text := w.text(node)
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      text,
		Signature: text,
		Kind:      types.KindImport,
		Line:      startLine(node),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: clonePtr(sc.structName),
			Snippet:    text,
		},
	})
	return true
}

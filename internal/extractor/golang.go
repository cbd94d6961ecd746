package extractor

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func goLanguage() *language {
	return &language{
		name:       "go",
		extensions: []string{"go"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_go.Language())
		},
		doc: goDoc,
		initialModule: func(root *tree_sitter.Node, src []byte, _ string) *string {
			pkg := childOfKind(root, "package_clause")
			if pkg == nil {
				return nil
			}
			id := firstDescendantOfKind(pkg, "package_identifier")
			if id == nil {
				return nil
			}
			name := id.Utf8Text(src)
			return &name
		},
		handlers: map[string]handler{
			"function_declaration": goFunction,
			"method_declaration":   goMethod,
			"type_declaration":     goTypeDeclaration,
			"const_declaration":    goValueDeclaration("const", types.KindConstant),
			"var_declaration":      goValueDeclaration("var", types.KindVariable),
			"import_declaration":   goImport,
		},
	}
}

// goDoc collects the contiguous comment block directly above a node. Go has
// no doc markers; every comment in the run counts.
func goDoc(node *tree_sitter.Node, src []byte) *docBlock {
	var parts []string
	lineFrom := 0
	for sib := node.PrevNamedSibling(); sib != nil; sib = sib.PrevNamedSibling() {
		if sib.Kind() != "comment" {
			break
		}
		parts = append([]string{sib.Utf8Text(src)}, parts...)
		lineFrom = int(sib.StartPosition().Row) + 1
	}
	if len(parts) == 0 {
		return nil
	}
	return &docBlock{text: strings.Join(parts, "\n"), lineFrom: lineFrom}
}

func goFunction(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		return true
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: signatureUpTo(node, w.src, []string{"block"}, nil),
		Kind:      types.KindFunction,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			Snippet: w.text(node),
		},
	})
	return true
}

func goMethod(w *walker, node *tree_sitter.Node, sc scope) bool {
	name := node.ChildByFieldName("name")
	if name == nil {
		return true
	}
	var structName *string
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		if id := firstDescendantOfKind(recv, "type_identifier"); id != nil {
			s := w.text(id)
			structName = &s
		}
	}
	w.add(sc, w.docFor(node, sc), types.Entity{
		Name:      w.text(name),
		Signature: signatureUpTo(node, w.src, []string{"block"}, nil),
		Kind:      types.KindMethod,
		Line:      startLine(name),
		LineFrom:  startLine(node),
		LineTo:    endLine(node),
		Context: types.Context{
			StructName: structName,
			Snippet:    w.text(node),
		},
	})
	return true
}

// goTypeDeclaration emits one entity per type spec: struct types, interface
// types, and everything else as a type alias. Grouped declarations produce
// per-spec entities with a reconstructed "type" prefix.
func goTypeDeclaration(w *walker, node *tree_sitter.Node, sc scope) bool {
	doc := w.docFor(node, sc)
	single := node.NamedChildCount() == 1
	for i := uint(0); i < node.NamedChildCount(); i++ {
		spec := node.NamedChild(i)
		specKind := spec.Kind()
		if specKind != "type_spec" && specKind != "type_alias" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			name = childOfKind(spec, "type_identifier")
		}
		if name == nil {
			continue
		}

		kind := types.KindTypeAlias
		if specKind == "type_spec" {
			if typeNode := spec.ChildByFieldName("type"); typeNode != nil {
				switch typeNode.Kind() {
				case "struct_type":
					kind = types.KindStruct
				case "interface_type":
					kind = types.KindInterface
				}
			}
		}

		text := "type " + w.text(spec)
		lineFrom, lineTo := startLine(spec), endLine(spec)
		if single {
			text = w.text(node)
			lineFrom, lineTo = startLine(node), endLine(node)
		}
		w.add(sc, doc, types.Entity{
			Name:      w.text(name),
			Signature: text,
			Kind:      kind,
			Line:      startLine(name),
			LineFrom:  lineFrom,
			LineTo:    lineTo,
			Context: types.Context{
				Snippet: text,
			},
		})
	}
	return true
}

// goValueDeclaration emits one entity per const or var spec. Grouped
// blocks reconstruct the keyword per spec; single declarations keep the
// whole node text.
func goValueDeclaration(keyword string, kind types.EntityKind) handler {
	specKind := keyword + "_spec"
	return func(w *walker, node *tree_sitter.Node, sc scope) bool {
		doc := w.docFor(node, sc)
		single := node.NamedChildCount() == 1
		for i := uint(0); i < node.NamedChildCount(); i++ {
			spec := node.NamedChild(i)
			if spec.Kind() != specKind {
				continue
			}
			name := spec.ChildByFieldName("name")
			if name == nil {
				name = childOfKind(spec, "identifier")
			}
			if name == nil {
				continue
			}

			text := keyword + " " + w.text(spec)
			lineFrom, lineTo := startLine(spec), endLine(spec)
			if single {
				text = w.text(node)
				lineFrom, lineTo = startLine(node), endLine(node)
			}
			w.add(sc, doc, types.Entity{
				Name:      w.text(name),
				Signature: text,
				Kind:      kind,
				Line:      startLine(name),
				LineFrom:  lineFrom,
				LineTo:    lineTo,
				Context: types.Context{
					Snippet: text,
				},
			})
		}
		return true
	}
}

func goImport(w *walker, node *tree_sitter.Node, sc scope) bool {
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

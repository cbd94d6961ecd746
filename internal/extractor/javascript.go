package extractor

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// javascriptLanguage reuses the script handler table without the
// TypeScript-only declaration kinds. The grammar parses JSX, so .jsx files
// share it and function components are recognized.
func javascriptLanguage() *language {
	return &language{
		name:       "javascript",
		extensions: []string{"js", "jsx"},
		grammar: func() *tree_sitter.Language {
			return tree_sitter.NewLanguage(tree_sitter_javascript.Language())
		},
		doc:      scriptDoc,
		handlers: scriptHandlers(false),
		jsx:      true,
	}
}

// Package extractor parses source files with tree-sitter grammars and
// extracts code entities: functions, methods, types, imports, constants,
// and the other kinds defined in pkg/types.
//
// # Architecture
//
// One generic walker drives all languages. Each language contributes a
// handler table keyed by syntax node kind plus a doc comment recognizer;
// the walker descends the tree, lets a matching handler claim a node, and
// otherwise recurses into named children. Handlers carry lexical scope
// down the tree: the enclosing module path and the enclosing type name
// for method attribution.
//
// # Supported languages
//
//	rs          Rust
//	ts, tsx     TypeScript and TSX
//	js, jsx     JavaScript (JSX parsed by the same grammar)
//	go          Go
//	py          Python
//	java        Java
//
// # Usage
//
//	e := extractor.New()
//	entities, err := e.ExtractFile("/src/lib.rs", 0)
//	if err != nil {
//		return err
//	}
//
// A positive max snippet size splits oversized entities into chunk
// entities at extraction time; see the postprocessor package.
package extractor

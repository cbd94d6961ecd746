package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/Svring/galatea-sub000/pkg/types"
)

var (
	// ErrUnsupportedLanguage indicates no grammar is registered for the
	// file's extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrParseFailed indicates the grammar could not produce a syntax tree.
	ErrParseFailed = errors.New("parse failed")
)

// Extractor dispatches source files to per-language entity extraction by
// file extension.
type Extractor struct {
	languages map[string]*language
}

// New returns an Extractor with all built-in languages registered.
func New() *Extractor {
	e := &Extractor{languages: make(map[string]*language)}
	for _, lang := range []*language{
		rustLanguage(),
		typescriptLanguage(),
		tsxLanguage(),
		javascriptLanguage(),
		goLanguage(),
		pythonLanguage(),
		javaLanguage(),
	} {
		for _, ext := range lang.extensions {
			e.languages[ext] = lang
		}
	}
	return e
}

// Supports reports whether path's extension maps to a registered language.
func (e *Extractor) Supports(path string) bool {
	_, ok := e.languages[fileExtension(path)]
	return ok
}

// Extensions returns the sorted list of supported file extensions, without
// leading dots.
func (e *Extractor) Extensions() []string {
	exts := make([]string, 0, len(e.languages))
	for ext := range e.languages {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtractFile reads path and extracts its entities. maxSnippetSize > 0
// splits oversized entities into chunks; zero or negative disables
// splitting.
func (e *Extractor) ExtractFile(path string, maxSnippetSize int) ([]types.Entity, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return e.Extract(source, path, maxSnippetSize)
}

// Extract parses source as the language matching filePath's extension and
// returns the extracted entities in document order.
func (e *Extractor) Extract(source []byte, filePath string, maxSnippetSize int) ([]types.Entity, error) {
	lang, ok := e.languages[fileExtension(filePath)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, filePath)
	}
	return lang.extract(source, filePath, maxSnippetSize)
}

func (l *language) extract(source []byte, filePath string, maxSnippetSize int) ([]types.Entity, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(l.grammar()); err != nil {
		return nil, fmt.Errorf("configuring %s grammar: %w", l.name, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrParseFailed, filePath)
	}
	defer tree.Close()

	w := &walker{
		src:      source,
		lang:     l,
		filePath: filePath,
		fileName: filepath.Base(filePath),
		maxSize:  maxSnippetSize,
	}

	sc := scope{}
	if l.initialModule != nil {
		sc.module = l.initialModule(tree.RootNode(), source, filePath)
	}
	w.walk(tree.RootNode(), sc)
	return w.entities, nil
}

// fileExtension returns the extension after the last dot, or "" when the
// name has none. A leading dot alone does not count as an extension.
func fileExtension(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return ""
	}
	return base[idx+1:]
}

// fileStem returns the base name without its extension, used as the root
// module name for languages addressed by file.
func fileStem(path string) string {
	base := filepath.Base(path)
	idx := strings.LastIndexByte(base, '.')
	if idx <= 0 {
		return base
	}
	return base[:idx]
}

package extractor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Svring/galatea-sub000/pkg/types"
)

func extractSource(t *testing.T, fileName, source string) []types.Entity {
	t.Helper()
	entities, err := New().Extract([]byte(source), fileName, 0)
	require.NoError(t, err)
	return entities
}

func findEntity(t *testing.T, entities []types.Entity, name string) types.Entity {
	t.Helper()
	for _, e := range entities {
		if e.Name == name {
			return e
		}
	}
	t.Fatalf("entity %q not found in %d entities", name, len(entities))
	return types.Entity{}
}

func TestExtractor_Supports(t *testing.T) {
	e := New()

	assert.True(t, e.Supports("main.rs"))
	assert.True(t, e.Supports("app.tsx"))
	assert.True(t, e.Supports("/deep/path/server.go"))
	assert.True(t, e.Supports("script.py"))
	assert.False(t, e.Supports("README.md"))
	assert.False(t, e.Supports("Makefile"))
	assert.False(t, e.Supports(".gitignore"))
}

func TestExtractor_Extensions(t *testing.T) {
	exts := New().Extensions()

	for _, want := range []string{"rs", "ts", "tsx", "js", "jsx", "go", "py", "java"} {
		assert.Contains(t, exts, want)
	}
	assert.True(t, sortedStrings(exts))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func TestExtractor_UnsupportedLanguage(t *testing.T) {
	_, err := New().Extract([]byte("hello"), "notes.txt", 0)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestExtractor_ExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte("fn top() {}\n"), 0o644))

	entities, err := New().ExtractFile(path, 0)

	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "top", entities[0].Name)
	assert.Equal(t, path, entities[0].Context.FilePath)
	assert.Equal(t, "lib.rs", entities[0].Context.FileName)
}

func TestExtractor_ExtractFileMissing(t *testing.T) {
	_, err := New().ExtractFile(filepath.Join(t.TempDir(), "gone.rs"), 0)

	require.Error(t, err)
}

func TestExtractor_SplitsOversizedEntities(t *testing.T) {
	var b strings.Builder
	b.WriteString("fn big() {\n")
	for i := 0; i < 30; i++ {
		b.WriteString("    let x = 1 + 2 + 3 + 4 + 5 + 6 + 7 + 8;\n")
	}
	b.WriteString("}\n")

	entities, err := New().Extract([]byte(b.String()), "big.rs", 200)

	require.NoError(t, err)
	require.Greater(t, len(entities), 1)
	for _, e := range entities {
		assert.Contains(t, e.Name, "big [chunk ")
		assert.LessOrEqual(t, e.SnippetLen(), 200)
	}
}

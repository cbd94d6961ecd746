package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file (and parent dirs) under root with throwaway content.
func writeFile(t *testing.T, root string, rel string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	return path
}

func TestFindFiles_MatchesExtensions(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "main.rs")
	b := writeFile(t, root, "lib/util.rs")
	writeFile(t, root, "readme.md")
	writeFile(t, root, "noext")

	files, err := FindFiles(root, []string{"rs"}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)
}

func TestFindFiles_SkipsExcludedAndHiddenDirs(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "src/app.ts")
	writeFile(t, root, "node_modules/dep/index.ts")
	writeFile(t, root, ".git/hooks/hook.ts")
	writeFile(t, root, ".cache/x.ts")

	files, err := FindFiles(root, []string{"ts"}, []string{"node_modules"})
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, files)
}

func TestFindFiles_HiddenFilesAreNotSkipped(t *testing.T) {
	// Only directory names are guarded; hidden files with a matching
	// extension still count.
	root := t.TempDir()
	hidden := writeFile(t, root, ".eslintrc.js")

	files, err := FindFiles(root, []string{"js"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{hidden}, files)
}

func TestFindFiles_RootGuard(t *testing.T) {
	root := t.TempDir()
	excluded := filepath.Join(root, "node_modules")
	writeFile(t, root, "node_modules/index.js")

	files, err := FindFiles(excluded, []string{"js"}, []string{"node_modules"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFiles_NonexistentRoot(t *testing.T) {
	files, err := FindFiles(filepath.Join(t.TempDir(), "missing"), []string{"go"}, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFiles_IgnoresSymlinks(t *testing.T) {
	root := t.TempDir()
	real := writeFile(t, root, "real.go")
	link := filepath.Join(root, "link.go")
	require.NoError(t, os.Symlink(real, link))

	files, err := FindFiles(root, []string{"go"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{real}, files)
}

func TestFindFiles_EmptyExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go")

	files, err := FindFiles(root, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestResolveFileBySuffix_Unique(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "src/handlers/auth.rs")
	writeFile(t, root, "src/handlers/user.rs")

	got, err := ResolveFileBySuffix(root, "auth.rs")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveFileBySuffix_RelativePathSuffix(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "a/common/types.ts")
	writeFile(t, root, "b/other/types.ts")

	got, err := ResolveFileBySuffix(root, "common/types.ts")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveFileBySuffix_Ambiguous(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/main.py")
	writeFile(t, root, "b/main.py")

	_, err := ResolveFileBySuffix(root, "main.py")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousSuffix)
	assert.Contains(t, err.Error(), "main.py")
}

func TestResolveFileBySuffix_NotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go")

	_, err := ResolveFileBySuffix(root, "missing.go")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestResolveFileBySuffix_Absolute(t *testing.T) {
	root := t.TempDir()
	want := writeFile(t, root, "pkg/core.go")

	got, err := ResolveFileBySuffix(root, want)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolveFileBySuffix_SkipsDefaultExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "target/debug/gen.rs")

	_, err := ResolveFileBySuffix(root, "gen.rs")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

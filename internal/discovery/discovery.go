package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrFileNotFound is returned when a suffix resolves to no file.
	ErrFileNotFound = errors.New("file not found")
	// ErrAmbiguousSuffix is returned when a suffix matches several files.
	ErrAmbiguousSuffix = errors.New("ambiguous path suffix")
)

// DefaultExcludeDirs are the directory names skipped by default during
// discovery: dependency trees, build output, and editor state.
var DefaultExcludeDirs = []string{
	"node_modules", "target", "dist", "build", ".git", ".vscode", ".idea",
}

// resolveExtensions is the broad extension set ResolveFileBySuffix scans.
var resolveExtensions = []string{
	"ts", "tsx", "js", "jsx", "rs", "json", "py", "go", "java",
	"html", "css", "md", "txt", "yaml", "yml", "toml", "sh", "rb",
	"php", "c", "cpp", "h", "hpp", "cs", "fs", "dart", "kt", "swift",
	"scala", "pl", "pm", "lua",
}

// FindFiles recursively lists regular files under root whose extension is in
// extensions, skipping any directory whose name is in excludeDirs or starts
// with a dot. The root itself is subject to the same directory guard; a root
// that is not a directory yields an empty result. A directory that cannot be
// read aborts the whole walk.
func FindFiles(root string, extensions, excludeDirs []string) ([]string, error) {
	exts := toSet(extensions)
	excl := toSet(excludeDirs)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	var files []string
	if err := walk(root, exts, excl, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(dir string, exts, excl map[string]struct{}, files *[]string) error {
	if skipDir(filepath.Base(dir), excl) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if err := walk(path, exts, excl, files); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if _, ok := exts[fileExt(entry.Name())]; ok {
				*files = append(*files, path)
			}
		}
	}
	return nil
}

// skipDir reports whether a directory name is excluded or hidden. "." and
// ".." are path elements, not hidden names.
func skipDir(name string, excl map[string]struct{}) bool {
	if _, ok := excl[name]; ok {
		return true
	}
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}

// fileExt returns the extension after the final dot, without the dot. A name
// with no dot, or only a leading dot, has no extension.
func fileExt(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// ResolveFileBySuffix locates a single file under root whose path ends with
// suffix, scanning the broad resolveExtensions set with the default
// excludes. Absolute suffixes must match a discovered file exactly (after
// symlink resolution); relative suffixes match by plain string suffix.
// No match returns ErrFileNotFound; more than one returns ErrAmbiguousSuffix
// listing the candidates.
func ResolveFileBySuffix(root, suffix string) (string, error) {
	files, err := FindFiles(root, resolveExtensions, DefaultExcludeDirs)
	if err != nil {
		return "", err
	}

	var matches []string
	if filepath.IsAbs(suffix) {
		want := canonicalPath(suffix)
		for _, f := range files {
			if canonicalPath(f) == want {
				matches = append(matches, f)
			}
		}
	} else {
		for _, f := range files {
			if strings.HasSuffix(f, suffix) {
				matches = append(matches, f)
			}
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no file under %s matches suffix %q", ErrFileNotFound, root, suffix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches multiple files:\n  %s",
			ErrAmbiguousSuffix, suffix, strings.Join(matches, "\n  "))
	}
}

// canonicalPath resolves symlinks when possible, falling back to a cleaned
// path for targets that do not exist.
func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

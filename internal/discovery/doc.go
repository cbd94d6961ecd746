// Package discovery lists source files for indexing and resolves loose path
// suffixes to concrete files.
//
// FindFiles is a plain recursive walk filtered by extension, skipping
// excluded and hidden directories. ResolveFileBySuffix supports callers that
// hand over a partial path ("handlers/auth.rs") and expect exactly one match.
package discovery

// Package resolve turns front-end-supplied logical paths into validated
// absolute filesystem paths. Inputs arrive from an untrusted process, so a
// path is rejected before any I/O if it is absolute where it must not be,
// carries a parent-directory segment, or normalizes to anything outside the
// base root it was joined against.
package resolve

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/glimmerdesk/fsbridge/internal/basedir"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

// Resolver converts (logical path, base-directory token) pairs into
// canonical absolute paths. It holds no mutable state; the only external
// call is the base-directory lookup.
type Resolver struct {
	baseDirs basedir.Resolver
}

// New creates a resolver backed by the host's base-directory lookup.
func New(baseDirs basedir.Resolver) *Resolver {
	return &Resolver{baseDirs: baseDirs}
}

// Resolve validates and resolves a logical path against a base-directory
// token. With basedir.None the input must already be an absolute native
// path or a file URL; with any other token it must be relative.
func (r *Resolver) Resolve(logical string, dir basedir.BaseDirectory) (string, error) {
	if logical == "" && dir == basedir.None {
		return "", fserr.Newf(fserr.KindInvalidPath, "empty path")
	}

	path, isURL, err := stripFileURL(logical)
	if err != nil {
		return "", err
	}

	if err := rejectParentSegments(path); err != nil {
		return "", err
	}

	if dir == basedir.None {
		// No symbolic root: the path must stand on its own.
		if !isURL && !filepath.IsAbs(path) {
			return "", fserr.Newf(fserr.KindInvalidPath,
				"relative path %q requires a base directory", logical)
		}
		return filepath.Clean(filepath.FromSlash(path)), nil
	}

	if filepath.IsAbs(path) || isURL {
		return "", fserr.Newf(fserr.KindInvalidPath,
			"path %q must be relative to base directory %s", logical, dir)
	}

	root, err := r.baseDirs.Resolve(dir)
	if err != nil {
		return "", err
	}

	joined := filepath.Clean(filepath.Join(root, filepath.FromSlash(path)))

	// Re-validate after normalization: traversal hidden in encoded or
	// mixed-separator segments must not survive the join.
	if !isDescendant(root, joined) {
		return "", fserr.Newf(fserr.KindPathTraversal,
			"path %q escapes base directory %s", logical, dir)
	}
	return joined, nil
}

// ResolvePair resolves source and destination before either is touched,
// for two-path operations that must fail whole.
func (r *Resolver) ResolvePair(src string, srcDir basedir.BaseDirectory, dst string, dstDir basedir.BaseDirectory) (string, string, error) {
	resolvedSrc, err := r.Resolve(src, srcDir)
	if err != nil {
		return "", "", err
	}
	resolvedDst, err := r.Resolve(dst, dstDir)
	if err != nil {
		return "", "", err
	}
	return resolvedSrc, resolvedDst, nil
}

// stripFileURL unwraps a file-scheme URL into its decoded path. Non-file
// schemes are rejected with a distinct message from traversal failures so
// the caller can tell "wrong scheme" from "escaped root".
func stripFileURL(logical string) (path string, isURL bool, err error) {
	idx := strings.Index(logical, "://")
	if idx < 0 {
		return logical, false, nil
	}

	u, perr := url.Parse(logical)
	if perr != nil {
		return "", true, fserr.New(fserr.KindInvalidPath, perr)
	}
	if u.Scheme != "file" {
		return "", true, fserr.Newf(fserr.KindInvalidPath,
			"URL must use the file scheme, got %q", u.Scheme)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", true, fserr.Newf(fserr.KindInvalidPath,
			"file URL must not name a remote host, got %q", u.Host)
	}
	if u.Path == "" {
		return "", true, fserr.Newf(fserr.KindInvalidPath, "file URL has no path")
	}
	return u.Path, true, nil
}

// rejectParentSegments refuses any ".." path segment. Segments are split on
// both separator styles so a backslash on Windows (or smuggled into a
// forward-slash path) cannot hide a traversal.
func rejectParentSegments(path string) error {
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if seg == ".." {
			return fserr.Newf(fserr.KindPathTraversal,
				"path must not contain parent-directory segments")
		}
	}
	return nil
}

// isDescendant reports whether path sits at or below root after both have
// been cleaned.
func isDescendant(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

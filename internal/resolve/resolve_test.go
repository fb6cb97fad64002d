package resolve

import (
	"path/filepath"
	"testing"

	"github.com/glimmerdesk/fsbridge/internal/basedir"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

// fixedDirs resolves every token to the same root.
type fixedDirs struct {
	root string
}

func (f *fixedDirs) Resolve(dir basedir.BaseDirectory) (string, error) {
	if f.root == "" {
		return "", fserr.Newf(fserr.KindUnresolvableBaseDirectory, "no root for %s", dir)
	}
	return f.root, nil
}

func TestResolveRelativeUnderToken(t *testing.T) {
	root := t.TempDir()
	r := New(&fixedDirs{root: root})

	got, err := r.Resolve("notes/today.txt", basedir.AppData)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Join(root, "notes", "today.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveNormalizesDots(t *testing.T) {
	root := t.TempDir()
	r := New(&fixedDirs{root: root})

	got, err := r.Resolve("./a/./b.txt", basedir.AppData)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := filepath.Join(root, "a", "b.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveRejectsParentSegments(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	cases := []string{
		"../etc/passwd",
		"a/../../etc/passwd",
		"a/..",
		"..",
		`a\..\b`,
		"file://localhost/tmp/../etc",
	}
	for _, logical := range cases {
		if _, err := r.Resolve(logical, basedir.AppData); !fserr.IsKind(err, fserr.KindPathTraversal) {
			t.Errorf("Resolve(%q) = %v, want PathTraversal", logical, err)
		}
	}
}

func TestResolveAbsoluteWithTokenRejected(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	if _, err := r.Resolve("/etc/passwd", basedir.AppData); !fserr.IsKind(err, fserr.KindInvalidPath) {
		t.Errorf("absolute path with token = %v, want InvalidPath", err)
	}
}

func TestResolveNoneRequiresAbsolute(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	if _, err := r.Resolve("relative/path", basedir.None); !fserr.IsKind(err, fserr.KindInvalidPath) {
		t.Errorf("relative path without token = %v, want InvalidPath", err)
	}

	got, err := r.Resolve("/var/data/file.txt", basedir.None)
	if err != nil {
		t.Fatalf("absolute path without token failed: %v", err)
	}
	if got != filepath.Clean("/var/data/file.txt") {
		t.Errorf("got %q", got)
	}
}

func TestResolveEmptyPath(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	if _, err := r.Resolve("", basedir.None); !fserr.IsKind(err, fserr.KindInvalidPath) {
		t.Errorf("empty path = %v, want InvalidPath", err)
	}
}

func TestResolveFileURL(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	got, err := r.Resolve("file:///var/data/report%20final.txt", basedir.None)
	if err != nil {
		t.Fatalf("file URL failed: %v", err)
	}
	want := filepath.Clean("/var/data/report final.txt")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveRejectsNonFileSchemes(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	for _, logical := range []string{"http://example.com/x", "ftp://host/x"} {
		if _, err := r.Resolve(logical, basedir.None); !fserr.IsKind(err, fserr.KindInvalidPath) {
			t.Errorf("Resolve(%q) = %v, want InvalidPath", logical, err)
		}
	}
}

func TestResolveRejectsRemoteFileURL(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	if _, err := r.Resolve("file://fileserver/share/x", basedir.None); !fserr.IsKind(err, fserr.KindInvalidPath) {
		t.Errorf("remote file URL = %v, want InvalidPath", err)
	}
}

func TestResolveEncodedTraversalInURL(t *testing.T) {
	r := New(&fixedDirs{root: t.TempDir()})

	// %2e%2e decodes to ".." during URL parsing; it must still be caught.
	if _, err := r.Resolve("file:///tmp/%2e%2e/etc/passwd", basedir.None); !fserr.IsKind(err, fserr.KindPathTraversal) {
		t.Errorf("encoded traversal = %v, want PathTraversal", err)
	}
}

func TestResolveUnresolvableToken(t *testing.T) {
	r := New(&fixedDirs{root: ""})

	if _, err := r.Resolve("a.txt", basedir.AppData); !fserr.IsKind(err, fserr.KindUnresolvableBaseDirectory) {
		t.Errorf("unresolvable token = %v, want UnresolvableBaseDirectory", err)
	}
}

func TestResolvePairFailsWhole(t *testing.T) {
	root := t.TempDir()
	r := New(&fixedDirs{root: root})

	if _, _, err := r.ResolvePair("ok.txt", basedir.AppData, "../escape.txt", basedir.AppData); err == nil {
		t.Fatal("ResolvePair should fail when the destination is invalid")
	}

	src, dst, err := r.ResolvePair("a.txt", basedir.AppData, "b.txt", basedir.AppData)
	if err != nil {
		t.Fatalf("ResolvePair failed: %v", err)
	}
	if src != filepath.Join(root, "a.txt") || dst != filepath.Join(root, "b.txt") {
		t.Errorf("got (%q, %q)", src, dst)
	}
}

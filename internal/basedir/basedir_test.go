package basedir

import (
	"path/filepath"
	"testing"

	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

func TestParseRoundTrip(t *testing.T) {
	for _, dir := range All() {
		parsed, err := Parse(dir.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", dir.String(), err)
		}
		if parsed != dir {
			t.Errorf("Parse(%q) = %v, want %v", dir.String(), parsed, dir)
		}
	}
}

func TestParseEmptyIsNone(t *testing.T) {
	dir, err := Parse("")
	if err != nil {
		t.Fatalf("Parse(\"\") failed: %v", err)
	}
	if dir != None {
		t.Errorf("Parse(\"\") = %v, want None", dir)
	}
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("mystery")
	if !fserr.IsKind(err, fserr.KindInvalidPath) {
		t.Errorf("Parse(unknown) = %v, want InvalidPath", err)
	}
}

func TestHostResolverAppScoped(t *testing.T) {
	r := &HostResolver{AppIdentifier: "com.example.test"}

	for _, dir := range []BaseDirectory{AppConfig, AppData, AppCache, AppLog} {
		path, err := r.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", dir, err)
		}
		if !filepath.IsAbs(path) {
			t.Errorf("Resolve(%s) = %q, want absolute", dir, path)
		}
		if filepath.Base(path) != "com.example.test" && filepath.Base(filepath.Dir(path)) != "com.example.test" {
			t.Errorf("Resolve(%s) = %q, want path under the app identifier", dir, path)
		}
	}
}

func TestHostResolverTemp(t *testing.T) {
	r := &HostResolver{}
	path, err := r.Resolve(Temp)
	if err != nil {
		t.Fatalf("Resolve(Temp) failed: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("temp = %q, want absolute", path)
	}
}

func TestHostResolverResourceUnconfigured(t *testing.T) {
	r := &HostResolver{}
	_, err := r.Resolve(Resource)
	if !fserr.IsKind(err, fserr.KindUnresolvableBaseDirectory) {
		t.Errorf("unconfigured resource dir = %v, want UnresolvableBaseDirectory", err)
	}
}

func TestHostResolverNone(t *testing.T) {
	r := &HostResolver{}
	if _, err := r.Resolve(None); err == nil {
		t.Error("Resolve(None) should fail; the token has no root")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "7420" {
		t.Errorf("default port = %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %s, want loopback", cfg.Server.Host)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("rate limiting should default on")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FSBRIDGE_PORT", "9000")
	t.Setenv("FSBRIDGE_APP_ID", "com.example.other")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %s, want 9000", cfg.Server.Port)
	}
	if cfg.App.Identifier != "com.example.other" {
		t.Errorf("app id = %s", cfg.App.Identifier)
	}
}

func TestLoadScopeDefaultFailsClosed(t *testing.T) {
	cfg := Default()

	sc, err := cfg.LoadScope()
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if len(sc.Allow) == 0 {
		t.Fatal("default scope should allow the app's own directories")
	}
	for _, rule := range sc.Allow {
		if rule.Pattern == "/**" || rule.Pattern == "**" {
			t.Errorf("default scope must not allow everything: %q", rule.Pattern)
		}
	}
}

func TestLoadScopeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scope.json")
	body := `{"allow":[{"pattern":"/data/**"}],"deny":[{"pattern":"/data/private/**","classes":["write"]}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Scope.File = path

	sc, err := cfg.LoadScope()
	if err != nil {
		t.Fatalf("LoadScope failed: %v", err)
	}
	if len(sc.Allow) != 1 || sc.Allow[0].Pattern != "/data/**" {
		t.Errorf("allow = %+v", sc.Allow)
	}
	if len(sc.Deny) != 1 || len(sc.Deny[0].Classes) != 1 {
		t.Errorf("deny = %+v", sc.Deny)
	}
}

func TestLoadScopeMissingFile(t *testing.T) {
	cfg := Default()
	cfg.Scope.File = filepath.Join(t.TempDir(), "absent.json")

	if _, err := cfg.LoadScope(); err == nil {
		t.Error("a configured but missing scope file must be an error, not a silent default")
	}
}

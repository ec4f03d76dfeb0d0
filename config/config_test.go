package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/domsnap/snapshot"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Snapshot.Options.PreserveAttribute != snapshot.DefaultPreserveAttribute {
		t.Fatalf("got %+v", cfg)
	}
	if p := cfg.Snapshot.Params(); p != (snapshot.Params{K: 0.5, L: 0.5, M: 0.5}) {
		t.Fatalf("params: %+v", p)
	}
}

func TestLoad_Overrides(t *testing.T) {
	path := writeFile(t, "domsnap.yaml", `
log_level: debug
snapshot:
  k: 0
  l: 0.25
  options:
    assign_unique_ids: true
    text_rank:
      damping: 0.9
  search:
    default_max_tokens: 8192
    bases: [5, 2, 3]
cache:
  enabled: true
  path: data/snap.db
http:
  addr: "127.0.0.1:9000"
fetch:
  timeout: 5s
browser:
  enabled: true
  remote_url: ws://chrome:9222
sanitize: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: %q", cfg.LogLevel)
	}
	if p := cfg.Snapshot.Params(); p != (snapshot.Params{K: 0, L: 0.25, M: 0.5}) {
		t.Errorf("params: %+v", p)
	}
	opts := cfg.Snapshot.Options
	if !opts.AssignUniqueIDs || opts.TextRank.Damping != 0.9 {
		t.Errorf("options: %+v", opts)
	}
	if opts.PreserveAttribute != snapshot.DefaultPreserveAttribute {
		t.Errorf("preserve attribute lost: %q", opts.PreserveAttribute)
	}
	if cfg.Snapshot.Search.DefaultMaxTokens != 8192 || cfg.Snapshot.Search.Bases != [3]int{5, 2, 3} {
		t.Errorf("search: %+v", cfg.Snapshot.Search)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Path != "data/snap.db" || cfg.Cache.MaxEntries != 10000 {
		t.Errorf("cache: %+v", cfg.Cache)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" || cfg.HTTP.MaxBodyBytes != 10<<20 {
		t.Errorf("http: %+v", cfg.HTTP)
	}
	if cfg.Fetch.Timeout != 5*time.Second || cfg.Fetch.MaxBytes != 10<<20 {
		t.Errorf("fetch: %+v", cfg.Fetch)
	}
	if !cfg.Browser.Enabled || cfg.Browser.RemoteURL != "ws://chrome:9222" || !cfg.Browser.Stealth {
		t.Errorf("browser: %+v", cfg.Browser)
	}
	if !cfg.Sanitize {
		t.Error("sanitize not set")
	}
}

func TestLoad_Linearize(t *testing.T) {
	cfg, err := Load(writeFile(t, "c.yaml", "snapshot:\n  linearize: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	if p := cfg.Snapshot.Params(); !math.IsInf(p.K, 1) || !p.Linearized() {
		t.Fatalf("params: %+v", p)
	}
}

func TestLoad_InvalidParams(t *testing.T) {
	_, err := Load(writeFile(t, "c.yaml", "snapshot:\n  m: 1.5\n"))
	if !errors.Is(err, snapshot.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	if _, err := Load(writeFile(t, "c.yaml", "log_level: loud\n")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if _, err := Load(writeFile(t, "bad.yaml", "snapshot: [1, 2\n")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTables(t *testing.T) {
	cfg := Default()
	tables, err := cfg.Tables()
	if err != nil {
		t.Fatal(err)
	}
	if tables.ContainerPriority("div") != 0.3 {
		t.Fatalf("default div priority: %v", tables.ContainerPriority("div"))
	}

	cfg.GroundTruthFile = writeFile(t, "gt.yaml", "container:\n  div: 0.6\n")
	tables, err = cfg.Tables()
	if err != nil {
		t.Fatal(err)
	}
	if tables.ContainerPriority("div") != 0.6 || tables.ContainerPriority("main") != 0.85 {
		t.Fatalf("override not merged: div=%v main=%v",
			tables.ContainerPriority("div"), tables.ContainerPriority("main"))
	}
}

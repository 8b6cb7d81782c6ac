package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/voltlab/gridclosure/pkg/closure"
	"github.com/voltlab/gridclosure/pkg/source/csvsource"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Run from an empty directory so no default config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "data")
	}
	if cfg.NodesFile != csvsource.DefaultNodesFile {
		t.Errorf("NodesFile = %q, want default", cfg.NodesFile)
	}
	if cfg.RootMarker != closure.DefaultRootMarker {
		t.Errorf("RootMarker = %q, want default", cfg.RootMarker)
	}
	if cfg.Store.Backend != BackendPostgres {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendPostgres)
	}
	if cfg.Serve.Addr != ":8080" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":8080")
	}
}

func TestLoadConfigFile(t *testing.T) {
	content := `data_dir = "/var/lib/grid"
root_marker = "Substation"

[store]
backend = "mongodb"
mongo_uri = "mongodb://db:27017"

[serve]
addr = ":9090"
`
	path := filepath.Join(t.TempDir(), "grid.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.DataDir != "/var/lib/grid" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/var/lib/grid")
	}
	if cfg.RootMarker != "Substation" {
		t.Errorf("RootMarker = %q, want %q", cfg.RootMarker, "Substation")
	}
	if cfg.Store.Backend != BackendMongoDB {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendMongoDB)
	}
	if cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("Store.MongoURI = %q", cfg.Store.MongoURI)
	}
	// Unset keys keep their defaults.
	if cfg.NodesFile != csvsource.DefaultNodesFile {
		t.Errorf("NodesFile = %q, want default preserved", cfg.NodesFile)
	}
	if cfg.Serve.Addr != ":9090" {
		t.Errorf("Serve.Addr = %q, want %q", cfg.Serve.Addr, ":9090")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("loadConfig() error = nil, want error for missing explicit file")
	}
}

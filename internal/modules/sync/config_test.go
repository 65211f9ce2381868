package sync

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadRunnerConfig(t *testing.T) {
	dir := t.TempDir()
	videosPath := writeFile(t, dir, "videos.json",
		`[{"url": "https://cdn.example.com/v1.mp4"}]`)
	usersPath := writeFile(t, dir, "users.json",
		`[{"user_id": "1", "email": "a@b.c", "user_type": "human"}]`)
	cfgPath := writeFile(t, dir, "sync.yaml", `
workers: 4
documents:
  videos: `+videosPath+`
  users: `+usersPath+`
`)

	cfg, err := LoadRunnerConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Workers != 4 || len(cfg.Documents) != 2 {
		t.Fatalf("cfg = %+v", cfg)
	}

	ds, err := cfg.LoadDocuments()
	if err != nil {
		t.Fatalf("load documents: %v", err)
	}
	if len(ds.Videos) != 1 || len(ds.Users) != 1 {
		t.Fatalf("set = %+v", ds)
	}
	if ds.Users[0].UserID != "1" {
		t.Fatalf("user = %+v", ds.Users[0])
	}
}

func TestLoadRunnerConfigRejectsUnknownKind(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "sync.yaml", `
documents:
  gadgets: ./gadgets.json
`)
	if _, err := LoadRunnerConfig(cfgPath); err == nil {
		t.Fatal("unknown kind must be rejected")
	}
}

func TestLoadRunnerConfigMissingFiles(t *testing.T) {
	if _, err := LoadRunnerConfig("/nonexistent/sync.yaml"); err == nil {
		t.Fatal("missing config must error")
	}
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "sync.yaml", `
documents:
  videos: `+filepath.Join(dir, "missing.json")+`
`)
	cfg, err := LoadRunnerConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, err := cfg.LoadDocuments(); err == nil {
		t.Fatal("missing document file must error")
	}
}

func TestWorkersFromEnv(t *testing.T) {
	t.Setenv("SYNC_WORKERS", "")
	if got := WorkersFromEnv(); got != DefaultWorkers {
		t.Fatalf("default = %d", got)
	}
	t.Setenv("SYNC_WORKERS", "3")
	if got := WorkersFromEnv(); got != 3 {
		t.Fatalf("env = %d", got)
	}
	t.Setenv("SYNC_WORKERS", "-2")
	if got := WorkersFromEnv(); got != 1 {
		t.Fatalf("floor = %d", got)
	}
}

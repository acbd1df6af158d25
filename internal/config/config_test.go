package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRuntimePort(t *testing.T) {
	defer SetRuntimePort(8000)

	SetRuntimePort(0)
	if got := GetRuntimePort(); got != 8000 {
		t.Fatalf("expected default port, got %d", got)
	}
	SetRuntimePort(9100)
	if got := GetRuntimePort(); got != 9100 {
		t.Fatalf("expected 9100, got %d", got)
	}
}

func TestGetDataDirPrecedence(t *testing.T) {
	defer SetRuntimeDataDir("")

	tmpFlag := filepath.Join(t.TempDir(), "flagdir")
	tmpEnv := filepath.Join(t.TempDir(), "envdir")
	t.Setenv(envDataDir, tmpEnv)

	SetRuntimeDataDir(tmpFlag)
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != tmpFlag {
		t.Fatalf("flag override ignored: got %s", dir)
	}
	if _, err := os.Stat(tmpFlag); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}

	SetRuntimeDataDir("")
	dir, err = GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != tmpEnv {
		t.Fatalf("env override ignored: got %s", dir)
	}
}

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	defer SetRuntimeDataDir("")
	dataDir := t.TempDir()
	SetRuntimeDataDir(dataDir)

	t.Setenv(envLanguage, "")
	t.Setenv(envCountry, "")
	t.Setenv(envModels, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" || cfg.Country != "US" {
		t.Fatalf("unexpected region defaults: %s/%s", cfg.Language, cfg.Country)
	}
	if cfg.DBPath != filepath.Join(dataDir, "daybrief.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.ArchivePath != filepath.Join(dataDir, "summaries.json") {
		t.Fatalf("unexpected archive path: %s", cfg.ArchivePath)
	}

	t.Setenv(envLanguage, "de")
	t.Setenv(envCountry, "de")
	t.Setenv(envModels, " gpt-4o , ,claude-sonnet-4-0 ")
	t.Setenv(envDevMode, "true")
	t.Setenv(envAdminAllowlist, "10.0.0.1, 10.0.0.2")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "de" || cfg.Country != "de" {
		t.Fatalf("env region override ignored: %s/%s", cfg.Language, cfg.Country)
	}
	if len(cfg.Models) != 2 || cfg.Models[0] != "gpt-4o" || cfg.Models[1] != "claude-sonnet-4-0" {
		t.Fatalf("unexpected models: %v", cfg.Models)
	}
	if !cfg.DevMode {
		t.Fatalf("dev mode override ignored")
	}
	if len(cfg.AdminAllowlist) != 2 || cfg.AdminAllowlist[1] != "10.0.0.2" {
		t.Fatalf("unexpected allowlist: %v", cfg.AdminAllowlist)
	}
}

func TestLoadUserConfigFile(t *testing.T) {
	defer SetRuntimeDataDir("")
	dataDir := t.TempDir()
	SetRuntimeDataDir(dataDir)

	body := `{"language":"fr","country":"FR","models":["gemini-2.5-pro"],"admin_allowlist":["127.0.0.1"]}`
	if err := os.WriteFile(filepath.Join(dataDir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(envLanguage, "")
	t.Setenv(envCountry, "")
	t.Setenv(envModels, "")
	t.Setenv(envAdminAllowlist, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "fr" || cfg.Country != "FR" {
		t.Fatalf("user config region ignored: %s/%s", cfg.Language, cfg.Country)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "gemini-2.5-pro" {
		t.Fatalf("user config models ignored: %v", cfg.Models)
	}

	// Env still wins over the file.
	t.Setenv(envCountry, "CA")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Country != "CA" {
		t.Fatalf("env should override file, got %s", cfg.Country)
	}
}

func TestLoadIgnoresCorruptUserConfig(t *testing.T) {
	defer SetRuntimeDataDir("")
	dataDir := t.TempDir()
	SetRuntimeDataDir(dataDir)

	if err := os.WriteFile(filepath.Join(dataDir, "config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envLanguage, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Language != "en" {
		t.Fatalf("expected defaults after corrupt file, got %s", cfg.Language)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.Server.Port != 8090 {
		t.Errorf("port = %d", c.Server.Port)
	}
	if c.Storage.Backend != "file" {
		t.Errorf("backend = %q", c.Storage.Backend)
	}
	if c.Storage.QuotaBytes != 10*1024*1024 {
		t.Errorf("quota = %d", c.Storage.QuotaBytes)
	}
	if c.Editor.MaxHistorySize != 50 {
		t.Errorf("history size = %d", c.Editor.MaxHistorySize)
	}
	if c.GetServerAddr() != "0.0.0.0:8090" {
		t.Errorf("addr = %q", c.GetServerAddr())
	}
}

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.Port != 8090 {
		t.Errorf("port = %d", c.Server.Port)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("default config file was not written")
	}

	// Loading again reads the written file.
	c2, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if c2.Server.Port != c.Server.Port {
		t.Error("round trip changed the port")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")
	partial := "server:\n  port: 9000\neditor:\n  maxHistorySize: 10\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.Port != 9000 {
		t.Errorf("override lost: port = %d", c.Server.Port)
	}
	if c.Editor.MaxHistorySize != 10 {
		t.Errorf("override lost: history = %d", c.Editor.MaxHistorySize)
	}
	// Untouched values keep their defaults.
	if c.Server.BodyLimit != "16M" {
		t.Errorf("default lost: bodyLimit = %q", c.Server.BodyLimit)
	}
	if c.Storage.Backend != "file" {
		t.Errorf("default lost: backend = %q", c.Storage.Backend)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "7777")
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.Port != 7777 {
		t.Errorf("PORT ignored: %d", c.Server.Port)
	}
	if c.Storage.Backend != "sqlite" {
		t.Errorf("STORAGE_BACKEND ignored: %q", c.Storage.Backend)
	}
	if c.Logging.Level != "debug" {
		t.Errorf("LOG_LEVEL ignored: %q", c.Logging.Level)
	}
}

func TestInvalidPortEnvIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PORT", "not-a-number")
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Server.Port != 8090 {
		t.Errorf("bad PORT should keep the default: %d", c.Server.Port)
	}
}

func TestRelativePathsResolveAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")
	doc := "storage:\n  dataDirectory: ./store\neditor:\n  validationRules: rules.yaml\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Storage.DataDirectory != filepath.Join(dir, "store") {
		t.Errorf("data dir = %q", c.Storage.DataDirectory)
	}
	if c.Editor.ValidationRules != filepath.Join(dir, "rules.yaml") {
		t.Errorf("rules path = %q", c.Editor.ValidationRules)
	}
	if !filepath.IsAbs(c.Storage.SQLitePath) {
		t.Errorf("sqlite path not resolved: %q", c.Storage.SQLitePath)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	c := DefaultConfig()
	c.Storage.DataDirectory = filepath.Join(dir, "data")
	c.Storage.SQLitePath = filepath.Join(dir, "db", "pagecraft.db")

	if err := c.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, d := range []string{c.Storage.DataDirectory, filepath.Dir(c.Storage.SQLitePath)} {
		if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
			t.Errorf("directory %q not created", d)
		}
	}
}

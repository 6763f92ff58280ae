package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Port != 27016 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.Timeout != 250 {
		t.Errorf("timeout = %d", cfg.Timeout)
	}
	if cfg.PlayerLimit != 100 {
		t.Errorf("playerlimit = %d", cfg.PlayerLimit)
	}
	if cfg.MaxChars != 256 {
		t.Errorf("max_chars = %d", cfg.MaxChars)
	}
	if cfg.Hostname != "$H" {
		t.Errorf("hostname = %q", cfg.Hostname)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
hostname: judge
port: 9000
playerlimit: 12
zalgo_tolerance: 0
characters: characters.yaml
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Hostname != "judge" || cfg.Port != 9000 || cfg.PlayerLimit != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	// Absent keys keep their defaults.
	if cfg.Timeout != 250 {
		t.Errorf("timeout = %d", cfg.Timeout)
	}
	// Out-of-range values are clamped.
	if cfg.ZalgoTolerance != 1 {
		t.Errorf("zalgo_tolerance = %d", cfg.ZalgoTolerance)
	}
	// Relative content paths resolve against the config directory.
	if want := filepath.Join(dir, "characters.yaml"); cfg.CharactersFile != want {
		t.Errorf("characters = %q, want %q", cfg.CharactersFile, want)
	}
}

func TestLoadMOTDFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "motd.txt"), "Order in the court!\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "motd_file: motd.txt\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MOTD != "Order in the court!" {
		t.Fatalf("motd = %q", cfg.MOTD)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file did not error")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "port: [not a number\n")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed YAML did not error")
	}
}

func TestWatchMOTD(t *testing.T) {
	dir := t.TempDir()
	motdPath := filepath.Join(dir, "motd.txt")
	writeFile(t, motdPath, "first\n")

	cfg := Default()
	cfg.MOTDFile = motdPath

	updates := make(chan string, 1)
	stop := cfg.WatchMOTD(func(motd string) {
		select {
		case updates <- motd:
		default:
		}
	})
	defer stop()

	// Give the watcher a moment to register before rewriting.
	time.Sleep(50 * time.Millisecond)
	writeFile(t, motdPath, "second\n")

	// The non-atomic rewrite can fire an intermediate event while the
	// file is truncated; keep reading until the final content arrives.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-updates:
			if got == "second" {
				return
			}
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

func TestWatchMOTDUnset(t *testing.T) {
	cfg := Default()
	stop := cfg.WatchMOTD(func(string) { t.Fatal("callback fired with no file") })
	stop()
}

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"tvshelf/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "tvshelf", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.DestinationDir != filepath.Join(tempHome, "TV") {
		t.Fatalf("unexpected destination dir: %q", cfg.Paths.DestinationDir)
	}
	if cfg.DatabasePath() != filepath.Join(tempHome, ".local", "share", "tvshelf", "tvshelf.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Naming.Template != "%S [%sx%0e] %t" {
		t.Fatalf("unexpected template %q", cfg.Naming.Template)
	}
	if cfg.Naming.SeasonPrefix != "Season " {
		t.Fatalf("expected season prefix to keep trailing space, got %q", cfg.Naming.SeasonPrefix)
	}
	if cfg.Relocation.Workers != 3 || cfg.UnitTimeout().Seconds() != 120 {
		t.Fatalf("unexpected relocation defaults: %+v", cfg.Relocation)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.DataDir, cfg.Paths.DestinationDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "tvshelf.toml")

	type payload struct {
		Paths struct {
			DestinationDir string `toml:"destination_dir"`
		} `toml:"paths"`
		Naming struct {
			Template       string   `toml:"template"`
			Numbering      string   `toml:"numbering"`
			IgnoreKeywords []string `toml:"ignore_keywords"`
		} `toml:"naming"`
		Relocation struct {
			Workers    int    `toml:"workers"`
			DrainOrder string `toml:"drain_order"`
		} `toml:"relocation"`
	}
	custom := payload{}
	custom.Paths.DestinationDir = filepath.Join(tempDir, "library")
	custom.Naming.Template = "%S S%0sE%0e %t"
	custom.Naming.Numbering = " DISC "
	custom.Naming.IgnoreKeywords = []string{"Sample", "sample", " trailer "}
	custom.Relocation.Workers = 5
	custom.Relocation.DrainOrder = "Submission"

	encoded, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Naming.Numbering != "disc" {
		t.Fatalf("expected numbering normalized to disc, got %q", cfg.Naming.Numbering)
	}
	if got := strings.Join(cfg.Naming.IgnoreKeywords, ","); got != "sample,trailer" {
		t.Fatalf("unexpected ignore keywords %q", got)
	}
	if cfg.Relocation.Workers != 5 || cfg.Relocation.DrainOrder != "submission" {
		t.Fatalf("unexpected relocation settings: %+v", cfg.Relocation)
	}
	prefs := cfg.Preferences()
	if prefs.Template != "%S S%0sE%0e %t" || prefs.DestinationDir != custom.Paths.DestinationDir {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"numbering":   "[naming]\nnumbering = \"dvd\"\n",
		"drain_order": "[relocation]\ndrain_order = \"random\"\n",
		"template":    "[naming]\ntemplate = \"plain\"\n",
		"prefix":      "[naming]\nseason_prefix = \"a/b\"\n",
		"format":      "[logging]\nformat = \"xml\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tvshelf.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, _, _, err := config.Load(path); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Relocation.CopyChunkBytes != 4194304 {
		t.Fatalf("unexpected chunk size %d", cfg.Relocation.CopyChunkBytes)
	}
}

func TestWatchersPublishOnlyChangedFields(t *testing.T) {
	cfg := config.Default()
	initial := cfg.Preferences()
	watchers := config.NewWatchers(initial)

	var got []config.PreferenceChange
	watchers.Subscribe(func(change config.PreferenceChange) {
		got = append(got, change)
	})

	next := initial
	next.Template = "%S - %t"
	next.Numbering = "disc"
	changes := watchers.Update(next)

	if len(changes) != 2 || len(got) != 2 {
		t.Fatalf("expected two changes, got %+v", got)
	}
	if got[0].Field != config.FieldTemplate || got[0].New != "%S - %t" || !got[0].AffectsDestination() {
		t.Fatalf("unexpected template change %+v", got[0])
	}
	if got[1].Field != config.FieldNumbering || !got[1].AffectsLookup() || got[1].AffectsDestination() {
		t.Fatalf("unexpected numbering change %+v", got[1])
	}
	if watchers.Current().Template != "%S - %t" {
		t.Fatal("expected current preferences to reflect update")
	}
	if again := watchers.Update(next); len(again) != 0 {
		t.Fatalf("expected no changes on identical update, got %+v", again)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.Serve.Addr != ":8750" || cfg.Serve.Root != "." {
		t.Errorf("Serve defaults = %+v", cfg.Serve)
	}
	if len(cfg.Watch.Patterns) == 0 {
		t.Error("default watch patterns missing")
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty default", cfg.BaseURL)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkmark.yaml")
	content := `base_url: "https://ref.example/people#"
marker_class: custom-ref
datasets:
  primary:
    - names.json
  exact:
    - exact.json
exclude_tags:
  - blockquote
serve:
  addr: ":9000"
  root: docs
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://ref.example/people#" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if len(cfg.Datasets.Primary) != 1 || cfg.Datasets.Primary[0] != "names.json" {
		t.Errorf("Datasets.Primary = %v", cfg.Datasets.Primary)
	}
	if len(cfg.Datasets.Exact) != 1 || cfg.Datasets.Exact[0] != "exact.json" {
		t.Errorf("Datasets.Exact = %v", cfg.Datasets.Exact)
	}
	if cfg.MarkerClass != "custom-ref" {
		t.Errorf("MarkerClass = %q", cfg.MarkerClass)
	}
	if len(cfg.ExcludeTags) != 1 || cfg.ExcludeTags[0] != "blockquote" {
		t.Errorf("ExcludeTags = %v", cfg.ExcludeTags)
	}
	if cfg.Serve.Addr != ":9000" || cfg.Serve.Root != "docs" {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
	if len(cfg.Watch.Patterns) == 0 {
		t.Error("defaults for unset sections were lost")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LINKMARK_BASE_URL", "https://env.example/#")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://env.example/#" {
		t.Errorf("BaseURL = %q, want the env override", cfg.BaseURL)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("base_url: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of malformed YAML should fail")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	cfg := DefaultConfig()
	cfg.BaseURL = "https://ref.example/people#"
	cfg.Datasets.Primary = []string{"names.json"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if loaded.BaseURL != cfg.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.BaseURL, cfg.BaseURL)
	}
	if len(loaded.Datasets.Primary) != 1 || loaded.Datasets.Primary[0] != "names.json" {
		t.Errorf("Datasets.Primary = %v", loaded.Datasets.Primary)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.BaseURL = "https://ref.example/#"
		c.Datasets.Primary = []string{"names.json"}
		return c
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("valid config failed: %v", err)
	}

	c := valid()
	c.BaseURL = ""
	if err := c.Validate(); err == nil {
		t.Error("missing base_url should fail validation")
	}

	c = valid()
	c.Datasets.Primary = nil
	if err := c.Validate(); err == nil {
		t.Error("empty dataset list should fail validation")
	}
	c.Datasets.Exact = []string{"exact.json"}
	if err := c.Validate(); err != nil {
		t.Errorf("exact-only dataset should validate: %v", err)
	}

	c = valid()
	c.Serve.Addr = ""
	if err := c.Validate(); err == nil {
		t.Error("empty serve.addr should fail validation")
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/coursegrid/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "concurrency:\n  workers: 3\ndownload:\n  timeout: 30s\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURSEGRID_INPUT_PATTERN", "*.html")

	prev := cfgFile
	cfgFile = path
	defer func() { cfgFile = prev }()
	initConfig()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Concurrency.Workers != 3 {
		t.Errorf("Expected workers from file, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Download.Timeout != 30*time.Second {
		t.Errorf("Expected 30s timeout from file, got %v", cfg.Download.Timeout)
	}
	if cfg.Input.Pattern != "*.html" {
		t.Errorf("Expected pattern from env, got %q", cfg.Input.Pattern)
	}

	defaults := model.DefaultConfig()
	if cfg.Extract.DeptMarker != defaults.Extract.DeptMarker {
		t.Errorf("Expected default dept marker, got %q", cfg.Extract.DeptMarker)
	}
	if strings.Join(cfg.Decode.Encodings, ",") != strings.Join(defaults.Decode.Encodings, ",") {
		t.Errorf("Expected default encodings, got %v", cfg.Decode.Encodings)
	}
	if !cfg.Merge.TA {
		t.Error("Expected TA merge enabled by default")
	}
}

// configKeys flattens the YAML form of cfg into dotted keys
func configKeys(t *testing.T, cfg *model.Config) map[string]bool {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		t.Fatal(err)
	}

	keys := make(map[string]bool)
	var walk func(prefix string, m map[string]any)
	walk = func(prefix string, m map[string]any) {
		for k, v := range m {
			if sub, ok := v.(map[string]any); ok {
				walk(prefix+k+".", sub)
				continue
			}
			keys[prefix+k] = true
		}
	}
	walk("", tree)
	return keys
}

func TestViperKeysMatchConfig(t *testing.T) {
	initConfig()
	fields := configKeys(t, model.DefaultConfig())

	registered := make(map[string]bool)
	for _, key := range viper.AllKeys() {
		registered[key] = true
		if !fields[key] {
			t.Errorf("Viper key %q has no Config field", key)
		}
	}
	for key := range fields {
		if !registered[key] {
			t.Errorf("Config field %q has no viper default", key)
		}
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".coursegrid", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{"# coursegrid configuration", "min_cells: 15", "workers: 1", "url_template:"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in config file", want)
		}
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}

func TestSetupLogging(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "error", "bogus"} {
		setupLogging(level)
	}
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	cells := []string{"1", "001", "CS101", "", "1", "A", "", "必", "3", "", "Intro", "60", "Smith", "一/2,3", ""}
	page := `<html><body><table><tr><td>系別(Department)：TNEXB　資訊</td></tr><tr><td>` +
		strings.Join(cells, "</td><td>") + `</td></tr></table></body></html>`
	if err := os.WriteFile(filepath.Join(dir, "a.htm"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "courses.json")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"extract", "--config", configPath, "--dir", dir, "-o", out})
	defer rootCmd.SetOut(nil)

	if err := Execute(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.Contains(stdout.String(), "Wrote 1 records to "+out) {
		t.Errorf("Expected summary line, got %q", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var records []model.CourseRecord
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if len(records) != 1 || records[0].Code != "CS101" {
		t.Errorf("Expected CS101 record, got %+v", records)
	}
}

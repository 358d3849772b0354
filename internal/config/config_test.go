package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.InputDir != "./input" || cfg.OutputDir != "./output" {
		t.Errorf("directories = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.MaxConcurrency != 4 || cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("processing defaults = %+v", cfg)
	}
	if cfg.Server.Addr != ":5000" || cfg.Server.ProgressTTL != 2*time.Second {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.ArchiveInputs || cfg.ArchiveByDate {
		t.Error("input archiving should default to off")
	}
	if err := validateMainConfig(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadMainConfigMissingDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadMainConfig(DefaultConfigPath)
	if err != nil {
		t.Fatalf("LoadMainConfig: %v", err)
	}
	if cfg.OutputDir != "./output" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
}

func TestLoadMainConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestLoadMainConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", `
input_dir: ./in
output_dir: ./out
log_level: debug
log_format: json
max_concurrency: 8
archive_inputs: true
archive_by_date: true
server:
  addr: ":8080"
  progress_ttl: 10s
`)

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig: %v", err)
	}
	if cfg.InputDir != "./in" || cfg.OutputDir != "./out" {
		t.Errorf("directories = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.MaxConcurrency != 8 || !cfg.ArchiveInputs || !cfg.ArchiveByDate || cfg.LogFormat != "json" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.ProgressTTL != 10*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	// Unset values still get defaults.
	if cfg.InputArchiveDir != "./input_archive" || cfg.Server.RequestTimeout != 5*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMainConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"log level", "log_level: loud\n", "log_level"},
		{"log format", "log_format: xml\n", "log_format"},
		{"concurrency", "max_concurrency: -1\n", "max_concurrency"},
		{"archive name", "archive_name_format: out.tar\n", "archive_name_format"},
		{"yaml", "input_dir: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMainConfig(writeFile(t, "config.yaml", tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestDefaultConstantsCoverLayout(t *testing.T) {
	defaults := DefaultShipmentConstants()
	required := RequiredConstantKeys()

	if len(required) != len(defaults) {
		t.Errorf("layout reads %d constants, defaults hold %d", len(required), len(defaults))
	}
	for _, key := range required {
		if _, ok := defaults[key]; !ok {
			t.Errorf("default table misses %q", key)
		}
	}

	// Each call returns an independent table.
	defaults["total_cif"] = "0"
	if DefaultShipmentConstants()["total_cif"] != "4212.99" {
		t.Error("DefaultShipmentConstants returned a shared table")
	}
}

func TestLoadConstantsEmptyPath(t *testing.T) {
	table, err := LoadConstants("")
	if err != nil {
		t.Fatalf("LoadConstants: %v", err)
	}
	if table["manifest_reference"] != "LV02 2025 6241" {
		t.Errorf("manifest_reference = %q", table["manifest_reference"])
	}
}

func TestLoadConstantsFromFile(t *testing.T) {
	var b strings.Builder
	defaults := DefaultShipmentConstants()
	for _, key := range defaults.Keys() {
		value := defaults[key]
		if key == "total_cif_itm" {
			value = "999.99"
		}
		b.WriteString(key + ": \"" + value + "\"\n")
	}

	table, err := LoadConstants(writeFile(t, "constants.yaml", b.String()))
	if err != nil {
		t.Fatalf("LoadConstants: %v", err)
	}
	if table["total_cif_itm"] != "999.99" {
		t.Errorf("total_cif_itm = %q, want 999.99", table["total_cif_itm"])
	}
	if table["alpha_coefficient"] != "0.0168042100227245" {
		t.Errorf("alpha_coefficient = %q", table["alpha_coefficient"])
	}
}

func TestParseConstantsKeepsLiteralScalars(t *testing.T) {
	var b strings.Builder
	for key, value := range DefaultShipmentConstants() {
		switch key {
		case "total_forms", "container_flag", "alpha_coefficient":
			continue
		}
		b.WriteString(key + ": \"" + value + "\"\n")
	}
	// Unquoted scalars keep their text.
	b.WriteString("total_forms: 016\ncontainer_flag: False\nalpha_coefficient: 0.0168042100227245\n")

	table, err := ParseConstants([]byte(b.String()))
	if err != nil {
		t.Fatalf("ParseConstants: %v", err)
	}
	if table["total_forms"] != "016" || table["container_flag"] != "False" {
		t.Errorf("scalars = %q, %q", table["total_forms"], table["container_flag"])
	}
	if table["alpha_coefficient"] != "0.0168042100227245" {
		t.Errorf("alpha_coefficient = %q", table["alpha_coefficient"])
	}
}

func TestParseConstantsMissingKey(t *testing.T) {
	_, err := ParseConstants([]byte("total_cif: \"1\"\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "currency_rate") {
		t.Errorf("err = %v, want mention of currency_rate", err)
	}
}

func TestParseConstantsInvalidYAML(t *testing.T) {
	if _, err := ParseConstants([]byte("- a\n- b\n")); err == nil {
		t.Error("expected an error for a YAML list")
	}
}

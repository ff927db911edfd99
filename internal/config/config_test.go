package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config dir at a temp dir so tests never touch the
// user's real config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.TokenBudget != 20000 {
		t.Errorf("TokenBudget = %d, want 20000", cfg.TokenBudget)
	}
	if cfg.Estimator != "lines" {
		t.Errorf("Estimator = %q, want lines", cfg.Estimator)
	}
	if cfg.BlockOn != "high" {
		t.Errorf("BlockOn = %q, want high", cfg.BlockOn)
	}
	if cfg.MaxFindings != 20 {
		t.Errorf("MaxFindings = %d, want 20", cfg.MaxFindings)
	}
	if len(cfg.Markers) != 1 {
		t.Errorf("Markers = %v, want the default suppression marker", cfg.Markers)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := Default()
	if cfg.TokenBudget != want.TokenBudget || cfg.Estimator != want.Estimator ||
		cfg.Format != want.Format || cfg.BlockOn != want.BlockOn {
		t.Errorf("Load without sources should yield defaults, got %+v", cfg)
	}
}

func TestLoad_FileMerge(t *testing.T) {
	dir := isolate(t)

	cfgDir := filepath.Join(dir, "narrate")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"tokenBudget": 5000, "format": "json"}`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TokenBudget != 5000 {
		t.Errorf("TokenBudget = %d, want 5000 from file", cfg.TokenBudget)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json from file", cfg.Format)
	}
	// Untouched fields keep their defaults.
	if cfg.BlockOn != "high" {
		t.Errorf("BlockOn = %q, want default high", cfg.BlockOn)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	cfgDir := filepath.Join(dir, "narrate")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"),
		[]byte(`{"tokenBudget": 5000}`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NARRATE_TOKEN_BUDGET", "750")
	t.Setenv("NARRATE_BLOCK_ON", "medium")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TokenBudget != 750 {
		t.Errorf("TokenBudget = %d, want env value 750", cfg.TokenBudget)
	}
	if cfg.BlockOn != "medium" {
		t.Errorf("BlockOn = %q, want env value medium", cfg.BlockOn)
	}
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	isolate(t)
	t.Setenv("NARRATE_TOKEN_BUDGET", "750")

	cfg, err := Load(map[string]string{"tokenBudget": "1234"})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TokenBudget != 1234 {
		t.Errorf("TokenBudget = %d, want override 1234", cfg.TokenBudget)
	}
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{"non-positive budget", map[string]string{"tokenBudget": "-1"}},
		{"bad blockOn", map[string]string{"blockOn": "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.overrides); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
		check   func(Config) bool
	}{
		{"tokenBudget", "9000", false, func(c Config) bool { return c.TokenBudget == 9000 }},
		{"estimator", "chars", false, func(c Config) bool { return c.Estimator == "chars" }},
		{"format", "markdown", false, func(c Config) bool { return c.Format == "markdown" }},
		{"blockOn", "low", false, func(c Config) bool { return c.BlockOn == "low" }},
		{"maxFindings", "5", false, func(c Config) bool { return c.MaxFindings == 5 }},
		{"detectors", "AWS-access-key, PEM-private-key", false,
			func(c Config) bool { return len(c.Detectors) == 2 && c.Detectors[1] == "PEM-private-key" }},
		{"suppressionMarkers", "reviewed-ok", false,
			func(c Config) bool { return len(c.Markers) == 1 && c.Markers[0] == "reviewed-ok" }},
		{"tokenBudget", "not-a-number", true, nil},
		{"unknownKey", "x", true, nil},
	}

	for _, tt := range tests {
		cfg := Default()
		err := SetField(&cfg, tt.key, tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SetField(%s, %s): expected error", tt.key, tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetField(%s, %s) returned error: %v", tt.key, tt.value, err)
			continue
		}
		if !tt.check(cfg) {
			t.Errorf("SetField(%s, %s): value not applied", tt.key, tt.value)
		}
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	isolate(t)

	cfg := Default()
	cfg.TokenBudget = 4242
	cfg.Format = "markdown"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if loaded.TokenBudget != 4242 {
		t.Errorf("TokenBudget = %d, want 4242", loaded.TokenBudget)
	}
	if loaded.Format != "markdown" {
		t.Errorf("Format = %q, want markdown", loaded.Format)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	isolate(t)

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("missing file should not error, got: %v", err)
	}
	if cfg.TokenBudget != 0 {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

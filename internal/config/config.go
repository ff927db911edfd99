// Package config loads and merges narrate configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (NARRATE_TOKEN_BUDGET, NARRATE_FORMAT, etc.)
//  3. Repo-local rules file (.narrate.yaml)
//  4. Config file ($XDG_CONFIG_HOME/narrate/config.json)
//  5. Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/narrate-dev/narrate/internal/secrets"
)

// Config is the effective narrate configuration.
type Config struct {
	// TokenBudget is the maximum estimated cost per page of diff content.
	TokenBudget int `json:"tokenBudget"`
	// Estimator selects the cost estimator: "lines" or "chars".
	Estimator string `json:"estimator"`
	// Format selects CLI output: "text", "json", or "markdown".
	Format string `json:"format"`
	// BlockOn is the confidence threshold at which unsuppressed secret
	// findings block the commit gate: "none", "low", "medium", "high".
	BlockOn string `json:"blockOn"`
	// MaxFindings caps the findings surfaced per scan response.
	MaxFindings int `json:"maxFindings"`
	// Detectors restricts enabled detector names. Empty enables all.
	Detectors []string `json:"detectors,omitempty"`
	// Markers are the recognized inline suppression annotations.
	Markers []string `json:"suppressionMarkers,omitempty"`
	// Custom signature detectors, usually supplied by the rules file.
	Custom []secrets.Signature `json:"customSignatures,omitempty"`
	// Entropy tunes the high-entropy detector.
	Entropy EntropyConfig `json:"entropy"`
}

// EntropyConfig tunes the high-entropy string detector.
type EntropyConfig struct {
	Base64Limit float64 `json:"base64Limit"`
	HexLimit    float64 `json:"hexLimit"`
	MinLength   int     `json:"minLength"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		TokenBudget: 20000,
		Estimator:   "lines",
		Format:      "text",
		BlockOn:     "high",
		MaxFindings: 20,
		Markers:     []string{secrets.DefaultMarker},
		Entropy: EntropyConfig{
			Base64Limit: secrets.DefaultBase64Entropy,
			HexLimit:    secrets.DefaultHexEntropy,
			MinLength:   secrets.DefaultMinLength,
		},
	}
}

// ScannerConfig projects the configuration surface the scanner consumes.
func (c Config) ScannerConfig() secrets.Config {
	return secrets.Config{
		Detectors:     c.Detectors,
		Custom:        c.Custom,
		Base64Entropy: c.Entropy.Base64Limit,
		HexEntropy:    c.Entropy.HexLimit,
		MinLength:     c.Entropy.MinLength,
		Markers:       c.Markers,
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "narrate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "narrate"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "narrate"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "narrate"), nil
	default:
		return filepath.Join(home, ".config", "narrate"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from the config file. Returns zero Config and
// nil error if the file doesn't exist.
func LoadFile() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config: defaults <- file <- rules <- env <-
// overrides. The overrides map comes from CLI flags; only set keys apply.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)

	rules, err := LoadRules("")
	if err != nil {
		return Config{}, err
	}
	ApplyRules(&cfg, rules)

	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.TokenBudget <= 0 {
		return fmt.Errorf("tokenBudget must be positive, got %d", cfg.TokenBudget)
	}
	switch cfg.BlockOn {
	case "none", "low", "medium", "high":
	default:
		return fmt.Errorf("blockOn must be none, low, medium, or high, got %q", cfg.BlockOn)
	}
	return nil
}

func mergeFile(dst *Config, src Config) {
	if src.TokenBudget > 0 {
		dst.TokenBudget = src.TokenBudget
	}
	if src.Estimator != "" {
		dst.Estimator = src.Estimator
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.BlockOn != "" {
		dst.BlockOn = src.BlockOn
	}
	if src.MaxFindings > 0 {
		dst.MaxFindings = src.MaxFindings
	}
	if len(src.Detectors) > 0 {
		dst.Detectors = src.Detectors
	}
	if len(src.Markers) > 0 {
		dst.Markers = src.Markers
	}
	if len(src.Custom) > 0 {
		dst.Custom = src.Custom
	}
	if src.Entropy.Base64Limit > 0 {
		dst.Entropy.Base64Limit = src.Entropy.Base64Limit
	}
	if src.Entropy.HexLimit > 0 {
		dst.Entropy.HexLimit = src.Entropy.HexLimit
	}
	if src.Entropy.MinLength > 0 {
		dst.Entropy.MinLength = src.Entropy.MinLength
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("NARRATE_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TokenBudget = n
		}
	}
	if v := os.Getenv("NARRATE_ESTIMATOR"); v != "" {
		cfg.Estimator = v
	}
	if v := os.Getenv("NARRATE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("NARRATE_BLOCK_ON"); v != "" {
		cfg.BlockOn = v
	}
	if v := os.Getenv("NARRATE_MAX_FINDINGS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxFindings = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	for key, v := range overrides {
		if v == "" {
			continue
		}
		// Overrides come from our own flag handling; unknown keys are a
		// programming error and ignored rather than surfaced to users.
		_ = SetField(cfg, key, v)
	}
}

// SetField sets a single config field by key name. Returns an error if
// the key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "tokenBudget":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("tokenBudget must be an integer: %w", err)
		}
		cfg.TokenBudget = n
	case "estimator":
		cfg.Estimator = value
	case "format":
		cfg.Format = value
	case "blockOn":
		cfg.BlockOn = value
	case "maxFindings":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxFindings must be an integer: %w", err)
		}
		cfg.MaxFindings = n
	case "detectors":
		cfg.Detectors = splitList(value)
	case "suppressionMarkers":
		cfg.Markers = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/narrate-dev/narrate/internal/secrets"
)

// RulesFileName is the repo-local rules file, looked up in the working
// directory.
const RulesFileName = ".narrate.yaml"

// Rules is the repo-local overlay: per-project detector tuning that
// travels with the repository rather than the user.
type Rules struct {
	Budget     int                 `yaml:"budget"`
	Estimator  string              `yaml:"estimator"`
	Detectors  []string            `yaml:"detectors"`
	Markers    []string            `yaml:"markers"`
	Signatures []secrets.Signature `yaml:"signatures"`
	Entropy    *EntropyRules       `yaml:"entropy"`
}

// EntropyRules mirrors EntropyConfig for the YAML surface.
type EntropyRules struct {
	Base64Limit float64 `yaml:"base64Limit"`
	HexLimit    float64 `yaml:"hexLimit"`
	MinLength   int     `yaml:"minLength"`
}

// LoadRules reads the rules file at path (default RulesFileName).
// Returns (nil, nil) when the file does not exist.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		path = RulesFileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", path, err)
	}
	for i, sig := range rules.Signatures {
		if sig.Name == "" || sig.Pattern == "" {
			return nil, fmt.Errorf("rules file %s: signature %d: name and pattern are required", path, i)
		}
	}
	return &rules, nil
}

// ApplyRules overlays repo-local rules onto the config. Nil rules are a
// no-op.
func ApplyRules(cfg *Config, rules *Rules) {
	if rules == nil {
		return
	}
	if rules.Budget > 0 {
		cfg.TokenBudget = rules.Budget
	}
	if rules.Estimator != "" {
		cfg.Estimator = rules.Estimator
	}
	if len(rules.Detectors) > 0 {
		cfg.Detectors = rules.Detectors
	}
	if len(rules.Markers) > 0 {
		cfg.Markers = rules.Markers
	}
	if len(rules.Signatures) > 0 {
		cfg.Custom = append(cfg.Custom, rules.Signatures...)
	}
	if rules.Entropy != nil {
		if rules.Entropy.Base64Limit > 0 {
			cfg.Entropy.Base64Limit = rules.Entropy.Base64Limit
		}
		if rules.Entropy.HexLimit > 0 {
			cfg.Entropy.HexLimit = rules.Entropy.HexLimit
		}
		if rules.Entropy.MinLength > 0 {
			cfg.Entropy.MinLength = rules.Entropy.MinLength
		}
	}
}

package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

// Signature is a regex-based detector definition. Custom signatures from
// the rules file go through the same compilation path as built-ins, so an
// invalid pattern degrades that one detector instead of failing the scan.
type Signature struct {
	Name       string     `yaml:"name" json:"name"`
	Pattern    string     `yaml:"pattern" json:"pattern"`
	Confidence Confidence `yaml:"confidence" json:"confidence"`
}

// BuiltinSignatures returns the default credential-family detectors in
// their fixed scan order. Provider-specific formats are high confidence;
// the generic assignment detector is medium.
func BuiltinSignatures() []Signature {
	return []Signature{
		{Name: "AWS-access-key", Pattern: `AKIA[0-9A-Z]{16}`, Confidence: ConfidenceHigh},
		{Name: "AWS-secret-key", Pattern: `(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`, Confidence: ConfidenceHigh},
		{Name: "GitHub-token", Pattern: `gh[pousr]_[A-Za-z0-9_]{36,}`, Confidence: ConfidenceHigh},
		{Name: "GitLab-token", Pattern: `glpat-[A-Za-z0-9_-]{20,}`, Confidence: ConfidenceHigh},
		{Name: "Slack-token", Pattern: `xox[bporas]-[A-Za-z0-9-]{10,}`, Confidence: ConfidenceHigh},
		{Name: "Stripe-key", Pattern: `(?:sk|rk)_live_[A-Za-z0-9]{24,}`, Confidence: ConfidenceHigh},
		{Name: "PEM-private-key", Pattern: `-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`, Confidence: ConfidenceHigh},
		{Name: "JWT", Pattern: `eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`, Confidence: ConfidenceHigh},
		{Name: "keyword-assignment", Pattern: `(?i)(?:password|passwd|secret|token|api[_-]?key|credential)\s*[:=]\s*["']([^"']{8,})["']`, Confidence: ConfidenceMedium},
	}
}

// signatureDetector matches one compiled credential signature.
type signatureDetector struct {
	name       string
	confidence Confidence
	re         *regexp.Regexp
}

func newSignatureDetector(sig Signature) (*signatureDetector, error) {
	re, err := regexp.Compile(sig.Pattern)
	if err != nil {
		return nil, fmt.Errorf("detector %s: %w", sig.Name, err)
	}
	conf := sig.Confidence
	if conf == "" {
		conf = ConfidenceMedium
	}
	return &signatureDetector{name: sig.Name, confidence: conf, re: re}, nil
}

func (d *signatureDetector) Name() string           { return d.name }
func (d *signatureDetector) Confidence() Confidence { return d.confidence }

func (d *signatureDetector) Match(line string) []string {
	groups := d.re.FindAllStringSubmatch(line, -1)
	var values []string
	for _, g := range groups {
		value := g[0]
		// When the pattern captures the secret value (assignments), prefer
		// the capture over the whole match so previews show the value.
		if len(g) > 1 && g[1] != "" {
			value = g[1]
		}
		if isTemplatedValue(value) {
			continue
		}
		values = append(values, value)
	}
	return values
}

// isTemplatedValue filters placeholder values that reference a secret
// rather than contain one: env interpolations, template markers.
func isTemplatedValue(v string) bool {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(v, "$"),
		strings.Contains(v, "${"),
		strings.Contains(v, "{{"),
		strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">"):
		return true
	}
	return false
}

package secrets

import (
	"math"
	"regexp"
	"strings"
)

// Defaults match the limits commonly used for base64- and hex-looking
// strings: hex draws from a smaller alphabet, so its ceiling is lower.
const (
	DefaultBase64Entropy = 4.5
	DefaultHexEntropy    = 3.0
	DefaultMinLength     = 16
)

var (
	base64CandidateRe = regexp.MustCompile(`[A-Za-z0-9+/=_-]+`)
	hexCandidateRe    = regexp.MustCompile(`\b[0-9a-fA-F]+\b`)
	uuidRe            = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// entropyDetector flags unlabeled credential-like tokens that signature
// detectors miss, by Shannon entropy over base64/hex-looking candidates.
type entropyDetector struct {
	base64Limit float64
	hexLimit    float64
	minLength   int
}

func newEntropyDetector(base64Limit, hexLimit float64, minLength int) *entropyDetector {
	if base64Limit <= 0 {
		base64Limit = DefaultBase64Entropy
	}
	if hexLimit <= 0 {
		hexLimit = DefaultHexEntropy
	}
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &entropyDetector{base64Limit: base64Limit, hexLimit: hexLimit, minLength: minLength}
}

func (d *entropyDetector) Name() string           { return "high-entropy" }
func (d *entropyDetector) Confidence() Confidence { return ConfidenceLow }

func (d *entropyDetector) Match(line string) []string {
	var values []string
	seen := make(map[string]bool)

	for _, candidate := range hexCandidateRe.FindAllString(line, -1) {
		if len(candidate) < d.minLength || seen[candidate] {
			continue
		}
		if d.isNoise(candidate) {
			continue
		}
		if shannonEntropy(candidate) >= d.hexLimit {
			seen[candidate] = true
			values = append(values, candidate)
		}
	}

	for _, candidate := range base64CandidateRe.FindAllString(line, -1) {
		if len(candidate) < d.minLength || seen[candidate] {
			continue
		}
		// Pure-hex candidates were already judged against the hex limit.
		if hexCandidateRe.MatchString(candidate) && len(hexCandidateRe.FindString(candidate)) == len(candidate) {
			continue
		}
		if d.isNoise(candidate) {
			continue
		}
		if shannonEntropy(candidate) >= d.base64Limit {
			seen[candidate] = true
			values = append(values, candidate)
		}
	}
	return values
}

// isNoise filters common false positives: UUIDs, repeated characters,
// sequential runs, and path-like strings.
func (d *entropyDetector) isNoise(candidate string) bool {
	if uuidRe.MatchString(candidate) {
		return true
	}
	if strings.Count(candidate, string(candidate[0])) == len(candidate) {
		return true
	}
	if isSequential(candidate) {
		return true
	}
	return false
}

func isSequential(s string) bool {
	if len(s) < 3 {
		return false
	}
	for i := 2; i < len(s); i++ {
		if s[i] != s[i-1]+1 || s[i-1] != s[i-2]+1 {
			return false
		}
	}
	return true
}

// shannonEntropy computes bits of entropy per character.
func shannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	for _, r := range s {
		freq[r]++
	}
	length := float64(len([]rune(s)))
	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / length
		entropy -= p * math.Log2(p)
	}
	return entropy
}

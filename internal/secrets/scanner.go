package secrets

import (
	"log"
	"regexp"
	"strings"

	"github.com/narrate-dev/narrate/internal/hunk"
)

// DefaultMarker is the inline annotation that suppresses a finding on
// its own line or the line directly below it.
const DefaultMarker = "pragma: allowlist secret"

// Config selects and tunes the detector set.
type Config struct {
	// Detectors restricts the enabled detector names. Empty enables all.
	Detectors []string
	// Custom signatures appended after the built-ins.
	Custom []Signature
	// Entropy tuning; zero values fall back to package defaults.
	Base64Entropy float64
	HexEntropy    float64
	MinLength     int
	// Markers are the recognized suppression annotations.
	Markers []string
}

// Scanner runs a fixed ordered list of detectors over added lines.
type Scanner struct {
	detectors []Detector
	markers   []string
	degraded  []string
}

// New builds a scanner from config. A detector that fails to construct
// (e.g. an invalid custom regex) is logged and skipped — scanning is
// best-effort and a broken detector never fails the whole scan.
func New(cfg Config) *Scanner {
	enabled := func(name string) bool {
		if len(cfg.Detectors) == 0 {
			return true
		}
		for _, d := range cfg.Detectors {
			if d == name {
				return true
			}
		}
		return false
	}

	s := &Scanner{markers: cfg.Markers}
	if len(s.markers) == 0 {
		s.markers = []string{DefaultMarker}
	}

	sigs := append(BuiltinSignatures(), cfg.Custom...)
	for _, sig := range sigs {
		if !enabled(sig.Name) {
			continue
		}
		d, err := newSignatureDetector(sig)
		if err != nil {
			log.Printf("WARNING: secret detector disabled: %v", err)
			s.degraded = append(s.degraded, sig.Name)
			continue
		}
		s.detectors = append(s.detectors, d)
	}
	if enabled("high-entropy") {
		s.detectors = append(s.detectors,
			newEntropyDetector(cfg.Base64Entropy, cfg.HexEntropy, cfg.MinLength))
	}
	return s
}

// Degraded lists detectors that were skipped due to misconfiguration.
func (s *Scanner) Degraded() []string { return s.degraded }

// Scan runs every detector over the added lines of every hunk. Removed
// and context lines are never scanned: a secret being deleted is not a
// new leak. One finding per hunk line; the first matching detector wins.
func (s *Scanner) Scan(hunks []hunk.DiffHunk) []Finding {
	var findings []Finding
	for _, h := range hunks {
		findings = append(findings, s.scanHunk(h)...)
	}
	return findings
}

// A PEM block is one secret: the BEGIN line produces the finding and
// the base64 body belongs to it, so entropy must not re-flag each body
// line as its own finding.
var (
	pemBeginRe = regexp.MustCompile(`-----BEGIN\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`)
	pemEndRe   = regexp.MustCompile(`-----END\s+(?:[A-Z]+\s+)?PRIVATE KEY-----`)
)

func (s *Scanner) scanHunk(h hunk.DiffHunk) []Finding {
	var findings []Finding
	seen := make(map[int]bool)
	inPEM := false

	for i, line := range h.Added {
		if inPEM {
			if pemEndRe.MatchString(line.Text) {
				inPEM = false
			}
			continue
		}
		if pemBeginRe.MatchString(line.Text) && !pemEndRe.MatchString(line.Text) {
			inPEM = true
		}
		if seen[line.Number] {
			continue
		}
		for _, d := range s.detectors {
			values := d.Match(line.Text)
			if len(values) == 0 {
				continue
			}
			seen[line.Number] = true
			findings = append(findings, Finding{
				HunkID:     h.ID,
				FilePath:   h.FilePath,
				Line:       line.Number,
				Detector:   d.Name(),
				Confidence: d.Confidence(),
				Preview:    Redact(values[0]),
				Suppressed: s.suppressed(h.Added, i),
			})
			break
		}
	}
	return findings
}

// suppressed reports whether the added line at index i carries a
// suppression marker, either trailing on the line itself or on the
// immediately preceding added line. Resolved locally per line —
// suppression is an annotation, not shared state. Hunks carry only
// changed lines, so a marker on an unchanged context line has no
// effect; the marker must be part of the change it suppresses.
func (s *Scanner) suppressed(added []hunk.Line, i int) bool {
	if s.hasMarker(added[i].Text) {
		return true
	}
	if i > 0 && added[i-1].Number == added[i].Number-1 && s.hasMarker(added[i-1].Text) {
		return true
	}
	return false
}

func (s *Scanner) hasMarker(text string) bool {
	for _, m := range s.markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Package secrets scans the added lines of diff hunks for credentials.
//
// Raw secret text never leaves this package: findings carry only a
// detector name, a location, and a redacted preview.
package secrets

// Confidence grades how likely a match is a real secret.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Detector matches candidate secrets on a single line of text.
type Detector interface {
	Name() string
	Confidence() Confidence
	// Match returns the matched secret values on the line. Values are
	// used only for redacted previews and never stored raw.
	Match(line string) []string
}

// Finding is a detected secret. Preview is already redacted; the raw
// matched text is discarded inside Scan.
type Finding struct {
	HunkID     string     `json:"hunkId"`
	FilePath   string     `json:"filePath"`
	Line       int        `json:"line"`
	Detector   string     `json:"detector"`
	Confidence Confidence `json:"confidence"`
	Preview    string     `json:"preview"`
	Suppressed bool       `json:"suppressed,omitempty"`
}

// previewChars is how many leading characters a redacted preview keeps.
const previewChars = 4

// Redact reduces a secret value to a short prefix preview.
func Redact(value string) string {
	if len(value) <= previewChars {
		return "****"
	}
	return value[:previewChars] + "...XXXX"
}

// BlockingCount returns the number of findings that should block a
// commit gate: unsuppressed findings at or above the threshold.
// Suppressed findings are retained for audit but never block.
func BlockingCount(findings []Finding, threshold Confidence) int {
	n := 0
	for _, f := range findings {
		if f.Suppressed {
			continue
		}
		if confidenceRank(f.Confidence) >= confidenceRank(threshold) {
			n++
		}
	}
	return n
}

func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

package secrets

import "fmt"

// Scan statuses.
const (
	StatusClean    = "clean"
	StatusWarnings = "warnings_found"
)

// ScanReport is the caller-facing scan response: capped findings plus
// counters and a human-readable message. Previews inside are already
// redacted.
type ScanReport struct {
	Status        string    `json:"status"`
	Findings      []Finding `json:"findings"`
	TotalFindings int       `json:"totalFindings"`
	Blocking      int       `json:"blocking"`
	Message       string    `json:"message"`
}

// BuildReport caps findings at maxFindings and summarizes them.
// Suppressed findings stay in the list for audit but never count as
// blocking.
func BuildReport(findings []Finding, maxFindings int, threshold Confidence) ScanReport {
	total := len(findings)
	capped := findings
	if maxFindings > 0 && total > maxFindings {
		capped = findings[:maxFindings]
	}
	if capped == nil {
		capped = []Finding{}
	}

	if total == 0 {
		return ScanReport{
			Status:   StatusClean,
			Findings: capped,
			Message:  "No secrets detected.",
		}
	}

	plural := ""
	if total > 1 {
		plural = "s"
	}
	msg := fmt.Sprintf("%d potential secret%s detected. Review before committing.", total, plural)
	if len(capped) < total {
		msg += fmt.Sprintf(" (showing first %d of %d)", len(capped), total)
	}

	return ScanReport{
		Status:        StatusWarnings,
		Findings:      capped,
		TotalFindings: total,
		Blocking:      BlockingCount(findings, threshold),
		Message:       msg,
	}
}

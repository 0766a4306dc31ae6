// Package report turns backend report text into display and print output.
package report

import (
	"regexp"
	"strings"
)

// LineBreak is the marker that replaces newlines in formatted report text.
const LineBreak = "<br/>"

// Bullet is the glyph the backend uses for list entries.
const Bullet = "•"

// whitespace trimmed from the result; matches the \s class used by the rules below.
const trimSet = " \t\n\f\r"

var (
	patientIDLine   = regexp.MustCompile(`(?im)^[^\S\n]*Patient ID:[^\n]*(?:\n|$)`)
	diagnosisIDLine = regexp.MustCompile(`(?im)^[^\S\n]*Diagnosis ID:[^\n]*(?:\n|$)`)
	newlineRun      = regexp.MustCompile(`\n\s*`)
	bulletMarker    = regexp.MustCompile(Bullet + `[^\S\n]*`)
)

// FormatText strips internal identifier lines from raw report text, folds newlines
// into LineBreak markers, normalizes bullets and trims the result. It is idempotent.
func FormatText(raw string) string {
	if raw == "" {
		return ""
	}

	cleaned := patientIDLine.ReplaceAllString(raw, "")
	cleaned = diagnosisIDLine.ReplaceAllString(cleaned, "")
	cleaned = newlineRun.ReplaceAllString(cleaned, LineBreak)
	cleaned = bulletMarker.ReplaceAllString(cleaned, Bullet+" ")

	return strings.Trim(cleaned, trimSet)
}

// Lines splits formatted text back into display lines.
func Lines(formatted string) []string {
	if formatted == "" {
		return nil
	}
	return strings.Split(formatted, LineBreak)
}

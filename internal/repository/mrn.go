package repository

import "strings"

// NormalizeMRN returns the uniqueness key for a medical record number.
// Purely numeric MRNs ignore leading zeros ("0001" and "1" collide);
// anything else must match exactly after trimming. Blank input yields "".
func NormalizeMRN(mrn string) string {
	mrn = strings.TrimSpace(mrn)
	if mrn == "" || !isDigits(mrn) {
		return mrn
	}
	trimmed := strings.TrimLeft(mrn, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

package domain

import "strings"

// ValidatePatientID enforces the one id rule shared by sessions and every
// transcript backend: non-blank, no surrounding whitespace, and usable as a
// single file name (no path separators, NUL, "." or "..").
func ValidatePatientID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return InvalidInputf("patient_id is required")
	case strings.TrimSpace(id) != id:
		return InvalidInputf("patient_id %q has leading or trailing whitespace", id)
	case id == "." || id == "..":
		return InvalidInputf("invalid patient_id %q", id)
	case strings.ContainsAny(id, "/\\\x00"):
		return InvalidInputf("patient_id %q must not contain path separators", id)
	}
	return nil
}

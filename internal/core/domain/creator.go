package domain

import "strings"

// CreatorFix is one correction row for the creator cleanup job.
type CreatorFix struct {
	// Existing is the creator value to search for.
	Existing string

	// Replacement is the new creator value; empty leaves the creator as is.
	Replacement string

	// Delete clears the creator field.
	Delete bool

	// CopyToDescription copies the current creator into the description.
	CopyToDescription bool
}

// IsNoop returns true if the row requests no change.
func (f CreatorFix) IsNoop() bool {
	return strings.TrimSpace(f.Replacement) == "" && !f.Delete && !f.CopyToDescription
}

// truthy values for flag columns. "כן" is Hebrew for "yes".
var truthy = map[string]bool{
	"כן":   true,
	"yes":  true,
	"y":    true,
	"true": true,
	"1":    true,
}

// ParseFlag interprets a yes/no spreadsheet cell. Blank is false.
func ParseFlag(s string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(s))]
}

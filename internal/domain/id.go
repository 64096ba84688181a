package domain

import "github.com/google/uuid"

// ValidID reports whether s is a uuid in its hyphenated 36 character form.
func ValidID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

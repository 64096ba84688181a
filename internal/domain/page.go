package domain

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListLimit maps a requested page size onto 1..MaxListLimit; zero or
// negative values select DefaultListLimit.
func ListLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	}
	return n
}

package assets

import (
	"fmt"
)

// MaxAssetNameLength bounds template and stylesheet names.
const MaxAssetNameLength = 64

// ValidateAssetName checks that an asset name is safe for use as a file name.
// Only ASCII letters, digits, '-' and '_' are accepted, which rules out path
// separators, traversal sequences and extension manipulation.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	}
	for _, r := range name {
		if !isNameRune(r) {
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}

func isNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-' || r == '_'
}

package m

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrFormat is returned when a compact identifier is malformed.
var ErrFormat = errors.New("malformed identifier")

// CompactUUIDLength is the length of an identifier without separators.
const CompactUUIDLength = 32

// uuidGroups holds the lengths of the hyphen separated groups.
var uuidGroups = [5]int{8, 4, 4, 4, 12}

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// CanonicalUUID inserts hyphens into a compact 32 character identifier,
// producing the 8-4-4-4-12 form. The characters of the input are kept as is.
func CanonicalUUID(compact string) (string, error) {
	if len(compact) != CompactUUIDLength {
		return "", fmt.Errorf("%w: expected %d characters, got %d", ErrFormat, CompactUUIDLength, len(compact))
	}
	if _, err := uuid.Parse(compact); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormat, err)
	}

	var (
		b   strings.Builder
		pos int
	)
	b.Grow(CompactUUIDLength + len(uuidGroups) - 1)
	for i, n := range uuidGroups {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(compact[pos : pos+n])
		pos += n
	}
	return b.String(), nil
}

// ValidUsername reports whether the name only uses characters
// a player name may consist of.
func ValidUsername(name string) bool {
	return usernameRegex.MatchString(name)
}

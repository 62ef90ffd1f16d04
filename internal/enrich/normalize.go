package enrich

import (
	"fmt"
	"strings"

	"immocli/internal/errors"
)

// DefaultKeyWidth is the canonical postal code width (Belgian postal codes).
const DefaultKeyWidth = 4

// Normalizer canonicalizes heterogeneous postal-code representations into
// fixed-width, zero-padded digit strings.
type Normalizer struct {
	width int
}

// NewNormalizer creates a normalizer producing keys of the given width.
// Non-positive widths fall back to DefaultKeyWidth.
func NewNormalizer(width int) Normalizer {
	if width <= 0 {
		width = DefaultKeyWidth
	}
	return Normalizer{width: width}
}

// Width returns the canonical key width.
func (n Normalizer) Width() int {
	return n.width
}

// Normalize canonicalizes a raw postal-code value. Sources sometimes list
// several codes ("1000, 1020") or carry float artifacts ("1000.0"); the
// first comma-separated code wins and fractional parts are dropped. The
// remaining text is stripped to its digits and left-padded with zeros.
//
// Returns a MALFORMED_KEY error when no digits remain or when the digit
// string exceeds the canonical width. Normalize is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func (n Normalizer) Normalize(raw string) (PostalCode, error) {
	value := raw
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}

	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return "", errors.NewMalformedKeyError(raw, "postal code contains no digits")
	}
	if len(digits) > n.width {
		return "", errors.NewMalformedKeyError(raw,
			fmt.Sprintf("postal code has %d digits, the canonical width is %d", len(digits), n.width)).
			WithContext("width", n.width)
	}

	return PostalCode(strings.Repeat("0", n.width-len(digits)) + digits), nil
}

package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedSpec marks rendering documents that fail structural
	// validation. Nothing is ever applied to the server once parsing
	// reports this.
	ErrMalformedSpec = errors.New("malformed rendering definition")
	// ErrVersionMismatch marks documents whose content is incompatible
	// with the resolved definition version.
	ErrVersionMismatch = errors.New("rendering definition version mismatch")
	// ErrInvalidWindowRange marks channel windows whose lower bound
	// exceeds the upper bound. Always wrapped in ErrMalformedSpec.
	ErrInvalidWindowRange = errors.New("invalid intensity window")
)

// Malformed builds a parse error tagged with ErrMalformedSpec so callers can
// classify it with errors.Is.
func Malformed(detail string, err error) error {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		detail = "invalid document"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedSpec, detail, err)
	}
	return fmt.Errorf("%w: %s", ErrMalformedSpec, detail)
}

package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingTokens is matched by a *TemplateError.
	ErrMissingTokens = errors.New("template is missing required tokens")

	// ErrUnknownKind is returned for a document kind with no token contract.
	ErrUnknownKind = errors.New("unknown document kind")
)

// TemplateError reports the required tokens absent from a template.
type TemplateError struct {
	// Kind is the document kind the template was checked against.
	Kind Kind

	// Missing lists the absent tokens in contract order.
	Missing []Token
}

// Error implements the error interface.
func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v: %s", e.Kind, ErrMissingTokens, strings.Join(e.MissingNames(), ", "))
}

// Unwrap returns ErrMissingTokens so errors.Is works.
func (e *TemplateError) Unwrap() error {
	return ErrMissingTokens
}

// MissingNames returns the missing tokens as {{name}} strings.
func (e *TemplateError) MissingNames() []string {
	names := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		names[i] = t.String()
	}
	return names
}

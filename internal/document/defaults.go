package document

import (
	"embed"
	"fmt"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// DefaultTemplate returns the built-in template of kind. It is used until an
// admin saves a template of their own.
func DefaultTemplate(kind Kind) (string, error) {
	if _, err := RequiredTokens(kind); err != nil {
		return "", err
	}
	data, err := defaultTemplates.ReadFile("templates/" + string(kind) + ".html")
	if err != nil {
		return "", fmt.Errorf("failed to read default template %s: %w", kind, err)
	}
	return string(data), nil
}

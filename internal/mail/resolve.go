package mail

import (
	"bytes"
	"fmt"
	"html"
	"regexp"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-zA-Z0-9_]+)\}\}`)

// Resolve replaces every {{key}} found in vars with its HTML-escaped value.
// Placeholders without a value are left as they are.
func Resolve(text string, vars map[string]string) string {
	return resolve(text, vars, html.EscapeString)
}

// ResolveText replaces placeholders with their literal values, for plain
// text such as a subject line.
func ResolveText(text string, vars map[string]string) string {
	return resolve(text, vars, func(v string) string { return v })
}

func resolve(text string, vars map[string]string, encode func(string) string) string {
	if len(vars) == 0 {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := vars[m[2:len(m)-2]]; ok {
			return encode(v)
		}
		return m
	})
}

// Raw HTML in markdown input is escaped: WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a campaign body to HTML.
func RenderMarkdown(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

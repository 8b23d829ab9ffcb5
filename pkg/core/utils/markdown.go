// Package utils holds small text helpers shared by the API and the CLI tools.
package utils

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderMarkdown converts markdown to an HTML fragment. Blank input yields "".
func RenderMarkdown(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(input), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

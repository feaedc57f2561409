package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Directives that would let a config-supplied template reach beyond plain
// value substitution.
var forbiddenDirectives = []string{"{{call", "{{define", "{{template", "{{block"}

// RenderTemplate renders a prompt template with the given data. Missing keys
// are errors rather than silent blanks, and templates may only substitute
// values, not invoke functions or include other templates.
func RenderTemplate(tmpl string, data map[string]any) (string, error) {
	for _, d := range forbiddenDirectives {
		if strings.Contains(tmpl, d) {
			return "", fmt.Errorf("template contains forbidden directive: %s", d)
		}
	}

	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

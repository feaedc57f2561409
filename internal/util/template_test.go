package util

import (
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		data    map[string]any
		want    string
		wantErr bool
	}{
		{
			name: "simple substitution",
			tmpl: "Generate {{.Count}} questions about {{.Subject}}.",
			data: map[string]any{"Count": 5, "Subject": "Physical Science"},
			want: "Generate 5 questions about Physical Science.",
		},
		{
			name:    "missing key is an error",
			tmpl:    "Hello {{.Missing}}",
			data:    map[string]any{"Subject": "x"},
			wantErr: true,
		},
		{
			name:    "malformed template",
			tmpl:    "Hello {{.Subject",
			data:    map[string]any{"Subject": "x"},
			wantErr: true,
		},
		{
			name:    "call directive rejected",
			tmpl:    "{{call .Fn}}",
			data:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "template directive rejected",
			tmpl:    `{{template "other"}}`,
			data:    map[string]any{},
			wantErr: true,
		},
		{
			name:    "define directive rejected",
			tmpl:    `{{define "x"}}y{{end}}`,
			data:    map[string]any{},
			wantErr: true,
		},
		{
			name: "extra keys are fine",
			tmpl: "{{.Subject}}",
			data: map[string]any{"Subject": "Biology", "Unused": 1},
			want: "Biology",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderTemplate(tt.tmpl, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RenderTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderDefaultStyleTemplate(t *testing.T) {
	tmpl := "Subtopic: {{.SubtopicName}} within {{.TopicTitle}}\nPlan:\n{{.PlannedQuestionsJSON}}"
	got, err := RenderTemplate(tmpl, map[string]any{
		"SubtopicName":         "Acids",
		"TopicTitle":           "Chemistry",
		"PlannedQuestionsJSON": `[{"question_id": "q1"}]`,
	})
	if err != nil {
		t.Fatalf("RenderTemplate() error = %v", err)
	}
	if !strings.Contains(got, "Acids") || !strings.Contains(got, `"q1"`) {
		t.Errorf("rendered output missing substitutions: %q", got)
	}
}

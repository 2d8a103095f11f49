package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"
)

// JSONRenderer renders the model data as JSON.
type JSONRenderer struct {
	Indent bool
}

func (r *JSONRenderer) ContentType() string { return "application/json" }

func (r *JSONRenderer) Render(w Writer, m *Model) error {
	enc := json.NewEncoder(jsonWriter{w})
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(m.Data)
}

// jsonWriter adapts the view Writer to io.Writer for the encoder.
type jsonWriter struct{ w Writer }

func (j jsonWriter) Write(p []byte) (int, error) { return j.w.Write(p) }

// PlainRenderer writes the "content" data value verbatim.
type PlainRenderer struct{}

func (r *PlainRenderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *PlainRenderer) Render(w Writer, m *Model) error {
	content, _ := m.Data["content"].(string)
	_, err := w.WriteString(content)
	return err
}

// TemplateRenderer renders html/template templates. With no template
// directory configured it falls back to treating the model's Template
// field as an inline template string, which keeps small applications and
// tests free of a views directory.
type TemplateRenderer struct {
	// Dir is the template directory. Files resolve as Dir/<name>.
	Dir string
}

func (r *TemplateRenderer) ContentType() string { return "text/html; charset=utf-8" }

func (r *TemplateRenderer) Render(w Writer, m *Model) error {
	if m.Template == "" {
		return fmt.Errorf("view: html model missing template")
	}

	var tmpl *template.Template
	var err error
	if r.Dir != "" {
		tmpl, err = template.ParseFiles(filepath.Join(r.Dir, m.Template))
	} else {
		tmpl, err = template.New("inline").Parse(m.Template)
	}
	if err != nil {
		return fmt.Errorf("view: parse template %q: %w", m.Template, err)
	}
	return tmpl.Execute(jsonWriter{w}, m.Data)
}

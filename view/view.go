// Package view defines the data a controller hands to the render stage
// and the renderers that turn it into response bodies.
package view

import (
	"fmt"
	"sync"
)

// Model is the data produced by a controller for rendering. Format picks
// the renderer and determines whether HTML post-processing (such as
// toolbar injection) applies.
type Model struct {
	// Template names the template for template-backed renderers.
	Template string
	// Format selects the renderer: "html", "json", "text".
	Format string
	// Data is the payload handed to the renderer.
	Data map[string]interface{}
}

// NewModel creates a view model in the given format.
func NewModel(format string, data map[string]interface{}) *Model {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Model{Format: format, Data: data}
}

// HTML creates an html-format model bound to a template name.
func HTML(template string, data map[string]interface{}) *Model {
	m := NewModel(FormatHTML, data)
	m.Template = template
	return m
}

// JSON creates a json-format model.
func JSON(data map[string]interface{}) *Model {
	return NewModel(FormatJSON, data)
}

// Text creates a text-format model with a plain body value.
func Text(body string) *Model {
	return NewModel(FormatText, map[string]interface{}{"content": body})
}

// Supported format tags. FormatError is reserved for framework error
// pages: its renderer always treats the model's Template field as an
// inline template, so error rendering cannot depend on a views directory.
const (
	FormatHTML  = "html"
	FormatJSON  = "json"
	FormatText  = "text"
	FormatError = "error"
)

// Renderer writes a view model into an output. The io surface is kept to
// a writer so renderers stay ignorant of the HTTP types.
type Renderer interface {
	// ContentType is the MIME type the renderer produces.
	ContentType() string
	// Render writes the model into w.
	Render(w Writer, m *Model) error
}

// Writer is the minimal sink renderers need.
type Writer interface {
	Write(p []byte) (int, error)
	WriteString(s string) (int, error)
}

// Registry maps format tags to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates a registry preloaded with the built-in renderers
// for the json, text, html and error formats.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}
	r.Register(FormatJSON, &JSONRenderer{Indent: true})
	r.Register(FormatText, &PlainRenderer{})
	r.Register(FormatHTML, &TemplateRenderer{})
	r.Register(FormatError, &TemplateRenderer{})
	return r
}

// Register binds a renderer to a format tag, replacing any previous one.
func (r *Registry) Register(format string, renderer Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[format] = renderer
}

// For returns the renderer for a format tag.
func (r *Registry) For(format string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("view: no renderer for format %q", format)
	}
	return renderer, nil
}

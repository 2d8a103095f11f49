// Package debug provides the development toolbar: an optional low
// priority render listener that injects diagnostic panels into
// html-format responses. It is not part of the core pipeline; attach it
// only in development configurations.
package debug

import (
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/framework"
	"github.com/weftframework/weft/view"
	"github.com/weftframework/weft/web"
)

// Panel contributes one toolbar tab.
type Panel interface {
	// Title labels the panel's tab.
	Title() string
	// KeyStat is the short figure shown next to the title.
	KeyStat(e *events.Event) string
	// Render produces the panel body as trusted HTML.
	Render(e *events.Event) template.HTML
}

// Toolbar injects its panels into rendered html responses.
type Toolbar struct {
	panels []Panel
}

// New creates a toolbar with the given panels. With none given the
// default request and session panels are used.
func New(panels ...Panel) *Toolbar {
	if len(panels) == 0 {
		panels = []Panel{&RequestPanel{}, &SessionPanel{}}
	}
	sorted := make([]Panel, len(panels))
	copy(sorted, panels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Title() < sorted[j].Title() })
	return &Toolbar{panels: sorted}
}

// toolbarPriority runs the toolbar after every other render listener.
const toolbarPriority = -1000

// Attach registers the toolbar on the application's render event.
func (t *Toolbar) Attach(app framework.Application) error {
	return app.Core().Dispatcher().Add(framework.EventRenderView, t.render,
		events.WithPriority(toolbarPriority))
}

const replaceTag = "</body>"

func (t *Toolbar) render(e *events.Event) (interface{}, error) {
	response, _ := e.Param(framework.ParamResponse).(*web.Response)
	model, _ := e.Param(framework.ParamViewModel).(*view.Model)
	if response == nil || model == nil || model.Format != view.FormatHTML {
		return nil, nil
	}
	body := response.Body()
	if !strings.Contains(body, replaceTag) {
		return nil, nil
	}

	markup, err := t.markup(e)
	if err != nil {
		return nil, fmt.Errorf("debug: render toolbar: %w", err)
	}
	response.SetBody(strings.Replace(body, replaceTag, markup+replaceTag, 1))
	return nil, nil
}

func (t *Toolbar) markup(e *events.Event) (string, error) {
	type renderedPanel struct {
		Title   string
		KeyStat string
		Body    template.HTML
	}
	panels := make([]renderedPanel, 0, len(t.panels))
	for _, p := range t.panels {
		panels = append(panels, renderedPanel{
			Title:   p.Title(),
			KeyStat: p.KeyStat(e),
			Body:    p.Render(e),
		})
	}

	var sb strings.Builder
	if err := toolbarTemplate.Execute(&sb, map[string]interface{}{"panels": panels}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

var toolbarTemplate = template.Must(template.New("toolbar").Parse(`<!-- weft debug toolbar -->
<style>
.weft-toolbar { position: fixed; bottom: 0; left: 0; width: 100%; z-index: 1000;
  font: 12px Helvetica, Arial, sans-serif; background: #fff; color: #555;
  border-top: 1px solid #c3c3c3; }
.weft-toolbar__tabs { background: #f2f2f2; padding: 8px; }
.weft-toolbar__tabs span { padding: 4px 8px; }
.weft-toolbar__panel { padding: 8px; border-top: 1px solid #eee; }
.weft-toolbar__panel table { width: 100%; border-collapse: collapse; text-align: left; }
.weft-toolbar__panel th, .weft-toolbar__panel td { padding: 4px; border-bottom: 1px solid #f3f3f3; }
</style>
<div class="weft-toolbar">
  <div class="weft-toolbar__tabs">
  {{range .panels}}<span>{{.Title}} <b>{{.KeyStat}}</b></span>{{end}}
  </div>
  {{range .panels}}
  <div class="weft-toolbar__panel" data-panel="{{.Title}}">{{.Body}}</div>
  {{end}}
</div>`))

// RequestPanel shows the request the response was rendered for.
type RequestPanel struct{}

func (p *RequestPanel) Title() string { return "Request" }

func (p *RequestPanel) KeyStat(e *events.Event) string {
	if req, ok := e.Param(framework.ParamRequest).(*web.Request); ok {
		return req.Method
	}
	return ""
}

func (p *RequestPanel) Render(e *events.Event) template.HTML {
	req, ok := e.Param(framework.ParamRequest).(*web.Request)
	if !ok {
		return ""
	}
	rows := [][2]string{
		{"ID", req.ID()},
		{"Method", req.Method},
		{"Path", req.URL.Path},
		{"Query", req.URL.RawQuery},
	}
	return table(rows)
}

// SessionPanel shows the values stored on the request session.
type SessionPanel struct{}

func (p *SessionPanel) Title() string { return "Session" }

func (p *SessionPanel) KeyStat(e *events.Event) string {
	req, ok := e.Param(framework.ParamRequest).(*web.Request)
	if !ok || !req.HasSession() {
		return "off"
	}
	return "on"
}

func (p *SessionPanel) Render(e *events.Event) template.HTML {
	req, ok := e.Param(framework.ParamRequest).(*web.Request)
	if !ok || !req.HasSession() {
		return "<p>No session opened for this request.</p>"
	}
	return table([][2]string{{"Session ID", req.Session().ID()}})
}

func table(rows [][2]string) template.HTML {
	var sb strings.Builder
	sb.WriteString("<table>")
	for _, row := range rows {
		sb.WriteString("<tr><th>")
		sb.WriteString(template.HTMLEscapeString(row[0]))
		sb.WriteString("</th><td>")
		sb.WriteString(template.HTMLEscapeString(row[1]))
		sb.WriteString("</td></tr>")
	}
	sb.WriteString("</table>")
	return template.HTML(sb.String())
}

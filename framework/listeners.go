package framework

import (
	"fmt"

	"github.com/weftframework/weft/di"
	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/internal/metrics"
	"github.com/weftframework/weft/view"
	"github.com/weftframework/weft/web"
)

// Identifiers the framework's default listeners register under in the
// container. Applications override them by binding their own dependency
// to the same name.
const (
	ListenerRoute     = "app.route_listener"
	ListenerDispatch  = "app.dispatch_listener"
	ListenerRender    = di.KeyRenderListener
	ListenerException = "app.exception_listener"
)

// RouteListener maps the request onto the router from the event params.
type RouteListener struct {
	// Raise404 turns a soft no-match into a recognized 404 failure.
	Raise404 bool
}

// Handle implements the ROUTE_MATCH contract.
func (l *RouteListener) Handle(e *events.Event) (interface{}, error) {
	router, ok := e.Param(ParamRouter).(web.Router)
	if !ok || router == nil {
		if l.Raise404 {
			return nil, NotFound("no router configured")
		}
		return nil, nil
	}
	req, ok := e.Param(ParamRequest).(*web.Request)
	if !ok {
		return nil, Internal("route match event missing request")
	}

	match, err := router.Match(req)
	if err != nil {
		return nil, err
	}
	if match == nil {
		if l.Raise404 {
			return nil, NotFound(fmt.Sprintf("no route matches %s %s", req.Method, req.URL.Path))
		}
		return nil, nil
	}
	return match, nil
}

// DispatchListener resolves the matched controller through the container,
// executes it and stores it on the event for the application to read the
// response back.
type DispatchListener struct{}

// Handle implements the DISPATCH_EXECUTE contract.
func (l *DispatchListener) Handle(e *events.Event) (interface{}, error) {
	match, ok := e.Param(ParamRouteMatch).(*web.RouteMatch)
	if !ok {
		return nil, Internal("dispatch event missing route match")
	}
	container, ok := e.Param(ParamContainer).(*di.Container)
	if !ok {
		return nil, Internal("dispatch event missing container")
	}
	req, _ := e.Param(ParamRequest).(*web.Request)

	raw, err := container.Get(match.Controller)
	if err != nil {
		return nil, WrapError(500, fmt.Sprintf("resolve controller %q", match.Controller), err)
	}
	ctrl, err := asController(raw)
	if err != nil {
		return nil, WrapError(500, fmt.Sprintf("controller %q", match.Controller), err)
	}
	if r, ok := ctrl.(resettable); ok {
		r.ResetResponse()
	}

	viewModel, err := ctrl.Execute(req, match)
	if err != nil {
		return nil, err
	}
	e.SetParam(ParamController, ctrl)
	return viewModel, nil
}

// RenderListener writes a view model into the response using the format's
// registered renderer. It doubles as the dependency-light fallback render
// path: it touches nothing beyond the response, the model and the
// renderer registry.
type RenderListener struct {
	Views *view.Registry
}

// Handle implements the RENDER_VIEW contract.
func (l *RenderListener) Handle(e *events.Event) (interface{}, error) {
	resp, _ := e.Param(ParamResponse).(*web.Response)
	model, _ := e.Param(ParamViewModel).(*view.Model)
	if resp == nil || model == nil {
		// Nothing to render; a finished response passed through.
		return nil, nil
	}

	renderer, err := l.Views.For(model.Format)
	if err != nil {
		return nil, err
	}
	resp.SetBody("")
	if resp.Header().Get("Content-Type") == "" {
		resp.Header().Set("Content-Type", renderer.ContentType())
	}
	return nil, renderer.Render(resp, model)
}

// ExceptionListener converts a caught failure into an error view model.
type ExceptionListener struct {
	// Debug includes the raw error text in the rendered page.
	Debug bool
}

// Handle implements the EXCEPTION contract.
func (l *ExceptionListener) Handle(e *events.Event) (interface{}, error) {
	err, _ := e.Param(ParamException).(error)
	status := StatusOf(err)

	data := map[string]interface{}{
		"status": status,
		"title":  statusTitle(status),
	}
	if appErr, ok := AsError(err); ok {
		data["message"] = appErr.Message
	} else {
		data["message"] = "The application could not process this request."
	}
	if l.Debug && err != nil {
		data["detail"] = err.Error()
	}

	model := view.NewModel(view.FormatError, data)
	model.Template = errorTemplate
	return model, nil
}

// MetricsListener records exception counts as EXCEPTION events pass
// through the dispatcher.
type MetricsListener struct {
	Metrics *metrics.Metrics
}

// Handle implements the EXCEPTION contract.
func (l *MetricsListener) Handle(e *events.Event) (interface{}, error) {
	err, _ := e.Param(ParamException).(error)
	l.Metrics.RecordException(StatusOf(err))
	return nil, nil
}

func statusTitle(status int) string {
	switch status {
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	default:
		return "Internal Server Error"
	}
}

// errorTemplate is the built-in error page. It renders through the inline
// template renderer so a broken views directory cannot take the error
// path down with it.
const errorTemplate = `<!doctype html>
<html>
<head><title>{{.status}} {{.title}}</title></head>
<body>
<h1>{{.status}} {{.title}}</h1>
<p>{{.message}}</p>
{{if .detail}}<pre>{{.detail}}</pre>{{end}}
</body>
</html>`

// asListener coerces a container value into an event listener. Accepted
// forms: events.Listener, a bare function of the same shape, or any value
// with a Handle method of that shape.
func asListener(v interface{}) (events.Listener, error) {
	switch l := v.(type) {
	case events.Listener:
		return l, nil
	case func(*events.Event) (interface{}, error):
		return l, nil
	case interface {
		Handle(*events.Event) (interface{}, error)
	}:
		return l.Handle, nil
	}
	return nil, fmt.Errorf("framework: %T is not an event listener", v)
}

package framework

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftframework/weft/config"
	"github.com/weftframework/weft/di"
	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/view"
	"github.com/weftframework/weft/web"
)

// pipelineSpy counts lifecycle event deliveries without interfering with
// the default listeners.
type pipelineSpy struct {
	dispatch  int
	exception int
	complete  int
	render    int
}

func (s *pipelineSpy) wire(cfg config.Config) config.Config {
	deps := map[string]interface{}{
		"spy.dispatch": events.Listener(func(*events.Event) (interface{}, error) {
			s.dispatch++
			return nil, nil
		}),
		"spy.exception": events.Listener(func(*events.Event) (interface{}, error) {
			s.exception++
			return nil, nil
		}),
		"spy.complete": events.Listener(func(*events.Event) (interface{}, error) {
			s.complete++
			return nil, nil
		}),
		"spy.render": events.Listener(func(*events.Event) (interface{}, error) {
			s.render++
			return nil, nil
		}),
	}
	return config.Merge(config.Config{
		"dependencies": deps,
		"events": map[string]interface{}{
			EventDispatchExecute: []config.ListenerSpec{
				{ID: "spy.dispatch", Priority: 100},
				{ID: ListenerDispatch},
			},
			EventException: []config.ListenerSpec{
				{ID: "spy.exception", Priority: 100},
				{ID: ListenerException},
			},
			EventComplete: []config.ListenerSpec{{ID: "spy.complete"}},
			EventRenderView: []config.ListenerSpec{
				{ID: "spy.render", Priority: 100},
				{ID: ListenerRender},
			},
		},
	}, cfg)
}

// matchAll wires a router that matches every request onto one controller.
func matchAll(controller string) web.Router {
	return web.RouterFunc(func(*web.Request) (*web.RouteMatch, error) {
		return &web.RouteMatch{Name: "any", Controller: controller}, nil
	})
}

func serve(t *testing.T, app *HTTPApplication, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestHTTP_HelloScenario(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.hello"),
			"controller.hello": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("hello"), nil
			}),
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/anything")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, 1, spy.render, "render fires exactly once on success")
	assert.Equal(t, 0, spy.exception)
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_NoMatchSkipsDispatch(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: web.RouterFunc(func(*web.Request) (*web.RouteMatch, error) {
				return nil, nil
			}),
		},
		"router": config.Config{"raise_404": false},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, spy.dispatch, "dispatch never fires without a route match")
	assert.Equal(t, 0, spy.exception, "soft not-found raises nothing")
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_RouterRaises404(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: web.RouterFunc(func(*web.Request) (*web.RouteMatch, error) {
				return nil, NotFound("no such page")
			}),
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404")
	assert.Contains(t, rec.Body.String(), "no such page")
	assert.Equal(t, 1, spy.exception, "exception handling runs exactly once")
	assert.Equal(t, 0, spy.dispatch)
	assert.Equal(t, 1, spy.complete, "complete still fires after a route failure")
}

func TestHTTP_DispatchFailure(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.teapot"),
			"controller.teapot": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return nil, NewError(http.StatusTeapot, "short and stout")
			}),
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/brew")

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")
	assert.Equal(t, 1, spy.exception)
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_RenderFailureIsCaughtBroadly(t *testing.T) {
	// The failing listener only breaks the first (success-path) render:
	// error view models render fine.
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.hello"),
			"controller.hello": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("hello"), nil
			}),
			"boom.render": events.Listener(func(e *events.Event) (interface{}, error) {
				model, _ := e.Param(ParamViewModel).(*view.Model)
				if model != nil && model.Format == view.FormatText {
					return nil, errors.New("template blew up")
				}
				return nil, nil
			}),
		},
		"events": map[string]interface{}{
			EventRenderView: []config.ListenerSpec{
				{ID: "boom.render", Priority: 200},
				{ID: ListenerRender},
			},
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "500")
	assert.Equal(t, 1, spy.exception, "a plain error is caught at the render stage")
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_RecursionGuardWhenAllRenderPathsFail(t *testing.T) {
	spy := &pipelineSpy{}
	boom := events.Listener(func(*events.Event) (interface{}, error) {
		return nil, errors.New("render always fails")
	})
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter:         matchAll("controller.hello"),
			"controller.hello":   ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) { return view.Text("x"), nil }),
			"boom.render":        boom,
			di.KeyRenderListener: boom, // fallback path broken too
		},
		"events": map[string]interface{}{
			EventRenderView: []config.ListenerSpec{{ID: "boom.render"}},
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/")

	// The handler must terminate despite both render paths failing, and
	// still produce a response.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Body.String(), "a minimal body ships even with rendering broken")
	assert.Equal(t, 2, spy.exception, "exception triggers are bounded by the retry cap")
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_ControllerReturnsFinishedResponse(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.raw"),
			"controller.raw": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				resp := web.NewResponse(http.StatusAccepted)
				_, _ = resp.WriteString("raw body")
				return resp, nil
			}),
		},
	})))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "raw body", rec.Body.String())
	assert.Equal(t, 0, spy.render, "a finished response skips the render stage")
	assert.Equal(t, 1, spy.complete)
}

func TestHTTP_CompleteFiresOncePerRunAcrossBranches(t *testing.T) {
	spy := &pipelineSpy{}
	app, err := NewHTTP(quietConfig(spy.wire(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: web.RouterFunc(func(req *web.Request) (*web.RouteMatch, error) {
				switch req.URL.Path {
				case "/ok":
					return &web.RouteMatch{Name: "ok", Controller: "controller.ok"}, nil
				case "/fail":
					return nil, Internal("router broke")
				}
				return nil, nil
			}),
			"controller.ok": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("ok"), nil
			}),
		},
	})))
	require.NoError(t, err)

	for _, path := range []string{"/ok", "/fail", "/missing"} {
		serve(t, app, http.MethodGet, path)
	}
	assert.Equal(t, 3, spy.complete, "exactly one COMPLETE per run")
}

func TestHTTP_JSONController(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.api"),
			"controller.api": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.JSON(map[string]interface{}{"status": "up"}), nil
			}),
		},
	}))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status": "up"`)
}

func TestHTTP_RouteTableEndToEnd(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"routes": []web.Route{
			{Name: "greet", Path: "/greet/{name}", Methods: []string{http.MethodGet}, Controller: "controller.greet"},
		},
		"dependencies": map[string]interface{}{
			"controller.greet": ControllerFunc(func(req *web.Request, match *web.RouteMatch) (interface{}, error) {
				return view.Text("hi " + match.Params["name"]), nil
			}),
		},
	}))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/greet/ada")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi ada", rec.Body.String())

	rec = serve(t, app, http.MethodGet, "/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTP_SessionCookieSetWhenSessionTouched(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.session"),
			"controller.session": ControllerFunc(func(req *web.Request, _ *web.RouteMatch) (interface{}, error) {
				req.Session().Set("seen", true)
				return view.Text("stored"), nil
			}),
		},
	}))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/")

	cookie := rec.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	assert.True(t, strings.HasPrefix(cookie, "weftsess="), "session cookie uses configured name")
}

func TestHTTP_NoCookieWithoutSessionUse(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.plain"),
			"controller.plain": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("no session"), nil
			}),
		},
	}))
	require.NoError(t, err)

	rec := serve(t, app, http.MethodGet, "/")
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestHTTP_MetricsEnabled(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"metrics": config.Config{"enabled": true},
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.hello"),
			"controller.hello": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("hello"), nil
			}),
		},
	}))
	require.NoError(t, err)
	require.NotNil(t, app.MetricsRegistry())

	serve(t, app, http.MethodGet, "/")

	families, err := app.MetricsRegistry().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["weft_requests_total"])
	assert.True(t, names["weft_request_duration_seconds"])
}

func TestHTTP_EdgeHandlerRateLimits(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"server": config.Config{
			"rate_limit": config.Config{"requests_per_second": 1, "burst": 1},
		},
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.hello"),
			"controller.hello": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("hello"), nil
			}),
		},
	}))
	require.NoError(t, err)
	handler := app.edgeHandler()

	first := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	handler.ServeHTTP(first, r)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.NotEmpty(t, first.Header().Get("X-Request-ID"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, r)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestHTTP_RenderEventParamsPublished(t *testing.T) {
	app, err := NewHTTP(quietConfig(config.Config{
		"dependencies": map[string]interface{}{
			di.KeyRouter: matchAll("controller.hello"),
			"controller.hello": ControllerFunc(func(*web.Request, *web.RouteMatch) (interface{}, error) {
				return view.Text("hello"), nil
			}),
		},
	}))
	require.NoError(t, err)

	serve(t, app, http.MethodGet, "/")

	raw, err := app.Core().Container().Get(di.KeyRenderEventParams)
	require.NoError(t, err)
	params := raw.(map[string]interface{})
	assert.NotNil(t, params[ParamResponse])
	assert.NotNil(t, params[ParamViewModel])
}

package framework

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weftframework/weft/config"
	"github.com/weftframework/weft/di"
	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/internal/metrics"
	"github.com/weftframework/weft/web"
)

// maxExceptionRetries caps handleException recursion when the render path
// keeps failing: one retry, then the response ships as-is.
const maxExceptionRetries = 1

// HTTPApplication drives one request at a time through the event
// pipeline: route match, controller dispatch, view render, completion,
// with exception interception at each stage. It is an http.Handler;
// mount it on any server or let Run manage one.
type HTTPApplication struct {
	core *Core

	sessionStore web.SessionStore
	sessionOpts  web.SessionOptions
	metrics      *metrics.Metrics
	registry     *prometheus.Registry
}

// NewHTTP constructs an HTTP application over the given configuration.
func NewHTTP(cfg config.Config) (*HTTPApplication, error) {
	app := &HTTPApplication{}
	core, err := newCore(cfg, app)
	if err != nil {
		return nil, err
	}
	app.core = core
	app.sessionOpts = sessionOptions(core.config)

	if raw, err := core.container.Get("session.store"); err == nil {
		if store, ok := raw.(web.SessionStore); ok {
			app.sessionStore = store
		}
	}

	if core.config.GetBool("metrics.enabled", false) {
		app.registry = prometheus.NewRegistry()
		app.metrics = metrics.New(app.registry)
		ml := &MetricsListener{Metrics: app.metrics}
		if err := core.dispatcher.Add(EventException, ml.Handle, events.WithPriority(1000)); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Core returns the shared application core.
func (a *HTTPApplication) Core() *Core {
	return a.core
}

// MetricsRegistry returns the prometheus registry backing the pipeline
// metrics, or nil when metrics are disabled.
func (a *HTTPApplication) MetricsRegistry() *prometheus.Registry {
	return a.registry
}

// Run serves the application on the configured address and blocks until
// ctx is cancelled or the server fails.
func (a *HTTPApplication) Run(ctx context.Context) error {
	cfg := a.core.config
	server := &http.Server{
		Addr:         cfg.GetString("server.addr", ":8080"),
		Handler:      a.edgeHandler(),
		ReadTimeout:  parseDuration(cfg.GetString("server.read_timeout", ""), 15*time.Second),
		WriteTimeout: parseDuration(cfg.GetString("server.write_timeout", ""), 15*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		a.core.log.Infof("http server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			parseDuration(cfg.GetString("server.shutdown_timeout", ""), 10*time.Second))
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// edgeHandler wraps the pipeline in the server-edge middleware: panic
// recovery, request logging and, when configured, per-client rate
// limiting.
func (a *HTTPApplication) edgeHandler() http.Handler {
	cfg := a.core.config
	mw := []web.Middleware{
		web.Recovery(a.core.log),
		web.RequestLogging(a.core.log),
	}
	if rps := cfg.GetInt("server.rate_limit.requests_per_second", 0); rps > 0 {
		burst := cfg.GetInt("server.rate_limit.burst", rps)
		mw = append(mw, web.NewRateLimiter(rps, burst, a.core.log).Handler())
	}
	return web.Chain(a, mw...)
}

// ServeHTTP runs one request through the pipeline and delivers the
// resulting response. It never lets a pipeline failure escape: the
// postcondition is one response per request.
func (a *HTTPApplication) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if a.metrics != nil {
		a.metrics.IncInFlight()
		defer a.metrics.DecInFlight()
	}

	req, response := a.run(r)

	if req.HasSession() {
		if cookie := req.SessionCookie(); cookie != nil {
			response.Header().Add("Set-Cookie", cookie.String())
		}
	}
	if a.metrics != nil {
		a.metrics.RecordRequest(r.Method, response.StatusCode(), time.Since(start))
	}
	if err := response.Deliver(w); err != nil {
		a.core.log.WithError(err).Warn("deliver response")
	}
}

// run executes the pipeline state machine for one request.
func (a *HTTPApplication) run(r *http.Request) (*web.Request, *web.Response) {
	core := a.core
	req := web.NewRequest(r, a.sessionStore, a.sessionOpts)
	core.container.Add(di.KeyRequest, req)

	var (
		response   *web.Response
		viewModel  interface{}
		routeMatch *web.RouteMatch
		handled    bool
	)

	// Route match.
	result, err := core.dispatcher.Trigger(events.New(EventRouteMatch, a, map[string]interface{}{
		ParamRequest: req,
		ParamRouter:  a.router(),
	}))
	if err != nil {
		routeMatch = nil
		response, viewModel = a.handleException(nil, map[string]interface{}{
			ParamException: recognized(err),
			ParamRequest:   req,
		})
		handled = true
	} else {
		routeMatch, _ = result.First().(*web.RouteMatch)
	}

	// Dispatch, only when a route matched.
	if routeMatch != nil {
		dispatchEvent := events.New(EventDispatchExecute, a, map[string]interface{}{
			ParamRouteMatch: routeMatch,
			ParamRequest:    req,
			ParamContainer:  core.container,
		})
		result, err = core.dispatcher.Trigger(dispatchEvent)
		if err != nil {
			response, viewModel = a.handleException(nil, map[string]interface{}{
				ParamException:  recognized(err),
				ParamRequest:    req,
				ParamRouteMatch: routeMatch,
			})
			handled = true
		} else {
			if ctrl, ok := dispatchEvent.Param(ParamController).(Controller); ok {
				response = ctrl.Response()
			}
			viewModel = result.First()
		}
	}

	// Render, unless exception handling already rendered or the view
	// model is itself a finished response.
	if !handled {
		if finished, ok := viewModel.(*web.Response); ok {
			response = finished
		} else {
			if response == nil {
				// Soft not-found: no route, no exception. Relies on the
				// render listeners tolerating an absent view model.
				response = web.NewResponse(http.StatusNotFound)
			}
			err := a.render(true, map[string]interface{}{
				ParamRequest:   req,
				ParamResponse:  response,
				ParamViewModel: viewModel,
			})
			if err != nil {
				// Broad catch: render failures are typically template
				// errors, recognized or not.
				response, viewModel = a.handleException(nil, map[string]interface{}{
					ParamException:  err,
					ParamRequest:    req,
					ParamRouteMatch: routeMatch,
				})
			}
		}
	}

	// Complete fires exactly once per run, on every branch.
	if _, err := core.dispatcher.Trigger(events.New(EventComplete, a, map[string]interface{}{
		ParamContainer: core.container,
	})); err != nil {
		core.log.WithError(err).Warn("complete listener failed")
	}

	return req, response
}

// handleException converts a caught failure into a terminal response.
// last carries the failure of a previous render attempt; when set, a
// dispatcher-bypassed fallback render runs before the normal path is
// retried.
func (a *HTTPApplication) handleException(last error, params map[string]interface{}) (*web.Response, interface{}) {
	return a.handleExceptionBounded(last, params, 0)
}

func (a *HTTPApplication) handleExceptionBounded(last error, params map[string]interface{}, depth int) (*web.Response, interface{}) {
	core := a.core
	exception, _ := params[ParamException].(error)
	status := StatusOf(exception)
	core.log.WithError(exception).WithField("status", status).Warn("handling request failure")

	result, err := core.dispatcher.Trigger(events.New(EventException, a, params))
	if err != nil {
		core.log.WithError(err).Warn("exception listener failed")
	}

	response := web.NewResponse(status)
	viewModel := result.First()
	params[ParamResponse] = response
	params[ParamViewModel] = viewModel

	if last != nil {
		// A previous render already failed once; produce a body through
		// the dependency-light path before trusting the listener chain
		// again.
		if err := a.render(false, params); err != nil {
			core.log.WithError(err).Error("fallback render failed")
		}
	}

	if err := a.render(true, params); err != nil {
		if depth >= maxExceptionRetries {
			core.log.WithError(err).Error("render failed after retry; shipping response as-is")
			if response.Len() == 0 {
				response.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = response.WriteString(http.StatusText(status))
			}
			return response, viewModel
		}
		params[ParamException] = err
		return a.handleExceptionBounded(err, params, depth+1)
	}
	return response, viewModel
}

// render fires RENDER_VIEW over params. The dispatcher path publishes the
// params into the container first so dependent services can introspect
// the current render context; the bypass path calls the fallback render
// listener directly.
func (a *HTTPApplication) render(withDispatcher bool, params map[string]interface{}) error {
	params[ParamContainer] = a.core.container
	event := events.New(EventRenderView, a, params)

	if withDispatcher {
		a.core.container.Add(di.KeyRenderEventParams, params)
		_, err := a.core.dispatcher.Trigger(event)
		return err
	}

	raw, err := a.core.container.Get(di.KeyRenderListener)
	if err != nil {
		return err
	}
	listener, err := asListener(raw)
	if err != nil {
		return err
	}
	_, err = listener(event)
	return err
}

// router resolves the configured router, nil when none is bound.
func (a *HTTPApplication) router() web.Router {
	raw, err := a.core.container.Get(di.KeyRouter)
	if err != nil {
		return nil
	}
	router, _ := raw.(web.Router)
	return router
}

// recognized normalizes a route or dispatch stage failure into the
// recognized kind. Unrecognized failures at those stages would otherwise
// escape the run; they surface as 500s instead.
func recognized(err error) *Error {
	if appErr, ok := AsError(err); ok {
		return appErr
	}
	return WrapError(http.StatusInternalServerError, "unhandled pipeline failure", err)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

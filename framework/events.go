// Package framework wires configuration, the service container and the
// event dispatcher into runnable applications. The HTTP variant drives a
// request through route matching, controller dispatch, view rendering and
// exception handling as a sequence of dispatcher events; listeners for
// those events are the extension surface of the framework.
package framework

// Lifecycle event names fired by the application core. Every event
// carries the owning application as its target.
const (
	// EventInit fires once at the end of application construction.
	EventInit = "app.init"

	// EventRouteMatch fires to map a request onto a route. Params:
	// "request", "router". The first truthy listener value becomes the
	// route match.
	EventRouteMatch = "app.route.match"

	// EventDispatchExecute fires to invoke the matched controller.
	// Params: "route_match", "request", "container". The dispatching
	// listener stores the controller under "controller"; the first
	// truthy listener value becomes the view model.
	EventDispatchExecute = "app.dispatch.execute"

	// EventRenderView fires to produce the response body. Params:
	// "request", "response", "view_model", "container". Listeners write
	// into the response; the event has no meaningful result.
	EventRenderView = "app.render.view"

	// EventException fires when a pipeline stage fails. Params:
	// "exception" plus whatever request context is available. The first
	// truthy listener value becomes the error view model.
	EventException = "app.exception"

	// EventComplete fires exactly once at the end of every run,
	// regardless of which branch produced the response. Params:
	// "container".
	EventComplete = "app.complete"
)

// Param keys used in lifecycle event params.
const (
	ParamRequest    = "request"
	ParamRouter     = "router"
	ParamRouteMatch = "route_match"
	ParamContainer  = "container"
	ParamController = "controller"
	ParamResponse   = "response"
	ParamViewModel  = "view_model"
	ParamException  = "exception"
)

package framework

import (
	"fmt"
	"net/http"

	"github.com/weftframework/weft/web"
)

// Controller handles a dispatched request. Execute returns the view model
// for the render stage (or a finished *web.Response to skip rendering);
// Response exposes the response the controller writes status and headers
// into.
type Controller interface {
	Execute(req *web.Request, match *web.RouteMatch) (interface{}, error)
	Response() *web.Response
}

// ControllerFunc adapts a function to the Controller interface with a
// fresh 200 response per pipeline run.
type ControllerFunc func(req *web.Request, match *web.RouteMatch) (interface{}, error)

type funcController struct {
	fn   ControllerFunc
	resp *web.Response
}

func (c *funcController) Execute(req *web.Request, match *web.RouteMatch) (interface{}, error) {
	return c.fn(req, match)
}

func (c *funcController) Response() *web.Response { return c.resp }

// BaseController supplies the Response plumbing; embed it in controller
// structs. The dispatch listener resets it before each Execute so shared
// controller instances never leak responses across runs.
type BaseController struct {
	resp *web.Response
}

// Response returns the controller's response, creating a 200 response on
// first access.
func (c *BaseController) Response() *web.Response {
	if c.resp == nil {
		c.resp = web.NewResponse(http.StatusOK)
	}
	return c.resp
}

// ResetResponse discards any previous response.
func (c *BaseController) ResetResponse() {
	c.resp = web.NewResponse(http.StatusOK)
}

// resettable is implemented by controllers that carry per-run response
// state; the dispatch listener resets them before Execute.
type resettable interface {
	ResetResponse()
}

// asController coerces a container value into a Controller. Accepted
// forms: Controller, ControllerFunc, or a factory func() Controller
// invoked per run.
func asController(v interface{}) (Controller, error) {
	switch c := v.(type) {
	case Controller:
		return c, nil
	case ControllerFunc:
		return &funcController{fn: c, resp: web.NewResponse(http.StatusOK)}, nil
	case func(req *web.Request, match *web.RouteMatch) (interface{}, error):
		return &funcController{fn: c, resp: web.NewResponse(http.StatusOK)}, nil
	case func() Controller:
		return c(), nil
	}
	return nil, fmt.Errorf("framework: %T is not a controller", v)
}

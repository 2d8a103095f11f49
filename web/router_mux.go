package web

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// MuxRouter matches requests against a gorilla/mux route table built from
// declarative Route entries. It is the default router implementation.
type MuxRouter struct {
	router *mux.Router
	routes map[string]Route
}

// NewMuxRouter builds a router from the given routes. Route names must be
// unique and every route needs a controller identifier.
func NewMuxRouter(routes []Route) (*MuxRouter, error) {
	r := &MuxRouter{
		router: mux.NewRouter(),
		routes: make(map[string]Route, len(routes)),
	}
	for _, route := range routes {
		if route.Name == "" {
			return nil, fmt.Errorf("web: route for %q missing name", route.Path)
		}
		if route.Controller == "" {
			return nil, fmt.Errorf("web: route %q missing controller", route.Name)
		}
		if _, dup := r.routes[route.Name]; dup {
			return nil, fmt.Errorf("web: duplicate route name %q", route.Name)
		}
		r.routes[route.Name] = route

		muxRoute := r.router.NewRoute().Name(route.Name).Path(route.Path)
		if len(route.Methods) > 0 {
			muxRoute.Methods(route.Methods...)
		}
		// Matching only; the pipeline dispatches, mux never serves.
		muxRoute.Handler(http.NotFoundHandler())
	}
	return r, nil
}

// Match maps the request onto the route table.
func (r *MuxRouter) Match(req *Request) (*RouteMatch, error) {
	var m mux.RouteMatch
	if !r.router.Match(req.Request, &m) || m.Route == nil {
		return nil, nil
	}
	name := m.Route.GetName()
	route, ok := r.routes[name]
	if !ok {
		return nil, fmt.Errorf("web: matched unknown route %q", name)
	}
	return &RouteMatch{
		Name:       name,
		Controller: route.Controller,
		Params:     m.Vars,
	}, nil
}

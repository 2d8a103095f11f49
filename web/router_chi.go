package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ChiRouter matches requests against a chi routing tree. Offered as an
// alternative Router backend; semantics mirror MuxRouter.
type ChiRouter struct {
	mux    *chi.Mux
	routes map[string]Route // keyed by method + " " + pattern
}

// NewChiRouter builds a chi-backed router from the given routes. Routes
// without methods answer GET.
func NewChiRouter(routes []Route) (*ChiRouter, error) {
	r := &ChiRouter{
		mux:    chi.NewRouter(),
		routes: make(map[string]Route),
	}
	for _, route := range routes {
		if route.Name == "" {
			return nil, fmt.Errorf("web: route for %q missing name", route.Path)
		}
		if route.Controller == "" {
			return nil, fmt.Errorf("web: route %q missing controller", route.Name)
		}
		methods := route.Methods
		if len(methods) == 0 {
			methods = []string{http.MethodGet}
		}
		for _, method := range methods {
			method = strings.ToUpper(method)
			key := method + " " + route.Path
			if _, dup := r.routes[key]; dup {
				return nil, fmt.Errorf("web: duplicate route %s %s", method, route.Path)
			}
			r.routes[key] = route
			r.mux.MethodFunc(method, route.Path, func(http.ResponseWriter, *http.Request) {})
		}
	}
	return r, nil
}

// Match maps the request onto the routing tree.
func (r *ChiRouter) Match(req *Request) (*RouteMatch, error) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, req.Method, req.URL.Path) {
		return nil, nil
	}
	route, ok := r.routes[req.Method+" "+rctx.RoutePattern()]
	if !ok {
		return nil, fmt.Errorf("web: matched unknown pattern %q", rctx.RoutePattern())
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return &RouteMatch{
		Name:       route.Name,
		Controller: route.Controller,
		Params:     params,
	}, nil
}

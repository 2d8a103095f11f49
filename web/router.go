package web

// Route declares one routable endpoint: a name, a path pattern, the HTTP
// methods it answers and the controller identifier the dispatch stage
// resolves through the container.
type Route struct {
	Name       string   `yaml:"name"`
	Path       string   `yaml:"path"`
	Methods    []string `yaml:"methods"`
	Controller string   `yaml:"controller"`
}

// RouteMatch is the opaque result of mapping a request onto a route. A
// nil match signals "no route" without an error (soft not-found).
type RouteMatch struct {
	Name       string
	Controller string
	Params     map[string]string
}

// Router maps a request to a route. Implementations return (nil, nil)
// when nothing matches; errors are reserved for router-internal failures.
type Router interface {
	Match(req *Request) (*RouteMatch, error)
}

// RouterFunc adapts a function to the Router interface.
type RouterFunc func(req *Request) (*RouteMatch, error)

// Match calls the wrapped function.
func (f RouterFunc) Match(req *Request) (*RouteMatch, error) {
	return f(req)
}

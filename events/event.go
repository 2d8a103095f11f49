// Package events implements the synchronous event dispatcher the
// application lifecycle is built on. Listeners are registered per event
// name with a priority and an optional once-only flag; triggering an
// event invokes them in priority order within the calling goroutine and
// collects their return values.
package events

// Event is one occurrence of a named lifecycle point. Params are mutable
// during propagation: listeners may inject keys for downstream listeners
// and for the caller to read back after the trigger.
type Event struct {
	Name   string
	Target interface{}
	Params map[string]interface{}
}

// New creates an event with an initialized params map.
func New(name string, target interface{}, params map[string]interface{}) *Event {
	if params == nil {
		params = make(map[string]interface{})
	}
	return &Event{Name: name, Target: target, Params: params}
}

// Param returns a single param value, nil when absent.
func (e *Event) Param(key string) interface{} {
	return e.Params[key]
}

// SetParam stores a param value for downstream listeners.
func (e *Event) SetParam(key string, value interface{}) {
	e.Params[key] = value
}

// Result is the ordered sequence of listener return values collected by
// one trigger call.
type Result struct {
	values []interface{}
}

// Values returns all collected listener return values in firing order.
func (r *Result) Values() []interface{} {
	if r == nil {
		return nil
	}
	return r.values
}

// First returns the first truthy listener value: the first value that is
// not nil, false, an empty string or a typed nil pointer. Returns nil
// when no listener produced one.
func (r *Result) First() interface{} {
	if r == nil {
		return nil
	}
	for _, v := range r.values {
		if truthy(v) {
			return v
		}
	}
	return nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	return !isNilPointer(v)
}

package events

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Listener reacts to a triggered event. The returned value is collected
// into the trigger's Result; a non-nil error aborts propagation and is
// returned from Trigger.
type Listener func(*Event) (interface{}, error)

type registration struct {
	fn       Listener
	priority int
	once     bool
	seq      int
	spent    bool
}

// Dispatcher routes events to registered listeners. Registration is
// expected to complete before concurrent triggering starts; Trigger runs
// listeners synchronously in the calling goroutine.
type Dispatcher struct {
	mu        sync.Mutex
	listeners map[string][]*registration
	seq       int
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[string][]*registration)}
}

// AddOption configures one listener registration.
type AddOption func(*registration)

// WithPriority sets the listener priority. Higher priorities fire first;
// listeners with equal priority fire in registration order. The default
// priority is 1.
func WithPriority(p int) AddOption {
	return func(r *registration) { r.priority = p }
}

// Once marks the listener to fire at most one time.
func Once() AddOption {
	return func(r *registration) { r.once = true }
}

// Add registers a listener for the named event.
func (d *Dispatcher) Add(event string, fn Listener, opts ...AddOption) error {
	if fn == nil {
		return fmt.Errorf("events: nil listener for %q", event)
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	reg := &registration{fn: fn, priority: 1, seq: d.seq}
	d.seq++
	for _, opt := range opts {
		opt(reg)
	}

	regs := append(d.listeners[event], reg)
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].priority != regs[j].priority {
			return regs[i].priority > regs[j].priority
		}
		return regs[i].seq < regs[j].seq
	})
	d.listeners[event] = regs
	return nil
}

// Has reports whether any live listener is registered for the event.
func (d *Dispatcher) Has(event string) bool {
	return d.Count(event) > 0
}

// Count returns the number of live listeners for the event.
func (d *Dispatcher) Count(event string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, reg := range d.listeners[event] {
		if !reg.spent {
			n++
		}
	}
	return n
}

// Remove drops every listener registered for the event.
func (d *Dispatcher) Remove(event string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.listeners, event)
}

// Trigger fires the event through its listeners in priority order and
// collects their return values. The first listener error stops
// propagation; the partial result is returned alongside it.
func (d *Dispatcher) Trigger(event *Event) (*Result, error) {
	d.mu.Lock()
	regs := make([]*registration, 0, len(d.listeners[event.Name]))
	for _, reg := range d.listeners[event.Name] {
		if reg.spent {
			continue
		}
		if reg.once {
			reg.spent = true
		}
		regs = append(regs, reg)
	}
	d.mu.Unlock()

	result := &Result{}
	for _, reg := range regs {
		value, err := reg.fn(event)
		if err != nil {
			return result, err
		}
		result.values = append(result.values, value)
	}
	return result, nil
}

func isNilPointer(v interface{}) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

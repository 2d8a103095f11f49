package framework

import (
	"context"
	"fmt"

	"github.com/weftframework/weft/config"
	"github.com/weftframework/weft/di"
	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/internal/logging"
)

// Application is a runnable application variant composed over a shared
// Core. Run blocks until the application stops or ctx is cancelled.
type Application interface {
	Core() *Core
	Run(ctx context.Context) error
}

// Core owns the merged configuration, the service container and the
// event dispatcher, and runs the construction protocol every application
// variant shares.
type Core struct {
	config     config.Config
	container  *di.Container
	dispatcher *events.Dispatcher
	log        *logging.Logger
}

// newCore runs the construction protocol for app, strictly ordered:
// record the current application, merge and publish configuration, build
// the container, register configured event listeners, fire INIT.
func newCore(cfg config.Config, app Application) (*Core, error) {
	setCurrent(app)

	merged := config.Merge(Defaults(), cfg)

	container := di.New(merged.Section("dependencies"))
	container.Add(di.KeyApplication, app)
	container.Add(di.KeyApplicationConfig, merged)

	core := &Core{
		config:    merged,
		container: container,
		log: logging.New(logging.Config{
			Level:  merged.GetString("logging.level", "info"),
			Format: merged.GetString("logging.format", "text"),
		}),
	}

	if err := core.registerEvents(); err != nil {
		return nil, err
	}

	if _, err := core.dispatcher.Trigger(events.New(EventInit, app, nil)); err != nil {
		return nil, fmt.Errorf("framework: init event: %w", err)
	}
	return core, nil
}

// registerEvents resolves the shared dispatcher from the container and
// registers every listener named in the "events" config section.
// Listener identifiers resolve through the container and are validated
// here, at registration time.
func (c *Core) registerEvents() error {
	raw, err := c.container.Get(di.KeyDispatcher)
	if err != nil {
		return fmt.Errorf("framework: resolve dispatcher: %w", err)
	}
	dispatcher, ok := raw.(*events.Dispatcher)
	if !ok {
		return fmt.Errorf("framework: %q is %T, want *events.Dispatcher", di.KeyDispatcher, raw)
	}
	c.dispatcher = dispatcher

	for name, entry := range c.config.Section("events") {
		specs, err := config.ListenerSpecs(entry)
		if err != nil {
			return fmt.Errorf("framework: event %q: %w", name, err)
		}
		for _, spec := range specs {
			value, err := c.container.Get(spec.ID)
			if err != nil {
				return fmt.Errorf("framework: event %q listener %q: %w", name, spec.ID, err)
			}
			listener, err := asListener(value)
			if err != nil {
				return fmt.Errorf("framework: event %q listener %q: %w", name, spec.ID, err)
			}
			opts := []events.AddOption{events.WithPriority(spec.Priority)}
			if spec.Once {
				opts = append(opts, events.Once())
			}
			if err := dispatcher.Add(name, listener, opts...); err != nil {
				return err
			}
		}
	}
	return nil
}

// Config returns the merged application configuration.
func (c *Core) Config() config.Config {
	return c.config
}

// Container returns the application's service container.
func (c *Core) Container() *di.Container {
	return c.container
}

// Dispatcher returns the shared event dispatcher.
func (c *Core) Dispatcher() *events.Dispatcher {
	return c.dispatcher
}

// Logger returns the application logger.
func (c *Core) Logger() *logging.Logger {
	return c.log
}

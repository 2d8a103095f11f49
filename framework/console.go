package framework

import (
	"context"
	"fmt"

	"github.com/weftframework/weft/config"
	"github.com/weftframework/weft/events"
)

// Command is a console-executable unit. Commands register in the
// container under "command.<name>" and are resolved by the console
// application at run time.
type Command interface {
	Name() string
	Run(ctx context.Context, args []string) error
}

// CommandFunc adapts a function to the Command interface.
type CommandFunc struct {
	CommandName string
	Fn          func(ctx context.Context, args []string) error
}

func (c CommandFunc) Name() string { return c.CommandName }

func (c CommandFunc) Run(ctx context.Context, args []string) error {
	return c.Fn(ctx, args)
}

// ConsoleApplication is the command-line variant: the same core
// construction protocol, with Run executing one named command instead of
// serving requests.
type ConsoleApplication struct {
	core *Core
	args []string
}

// NewConsole constructs a console application. args is the command line
// after the program name: the command name followed by its arguments.
func NewConsole(cfg config.Config, args []string) (*ConsoleApplication, error) {
	app := &ConsoleApplication{args: args}
	core, err := newCore(cfg, app)
	if err != nil {
		return nil, err
	}
	app.core = core
	return app, nil
}

// Core returns the shared application core.
func (a *ConsoleApplication) Core() *Core {
	return a.core
}

// Run resolves the named command through the container and executes it.
func (a *ConsoleApplication) Run(ctx context.Context) error {
	if len(a.args) == 0 {
		return fmt.Errorf("framework: no command given")
	}
	name := a.args[0]

	raw, err := a.core.container.Get("command." + name)
	if err != nil {
		return fmt.Errorf("framework: unknown command %q: %w", name, err)
	}
	cmd, ok := raw.(Command)
	if !ok {
		return fmt.Errorf("framework: %q is %T, want Command", name, raw)
	}
	runErr := cmd.Run(ctx, a.args[1:])

	if _, err := a.core.dispatcher.Trigger(events.New(EventComplete, a, map[string]interface{}{
		ParamContainer: a.core.container,
	})); err != nil {
		a.core.log.WithError(err).Warn("complete listener failed")
	}
	return runErr
}

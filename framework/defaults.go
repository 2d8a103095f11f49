package framework

import (
	"time"

	"github.com/weftframework/weft/config"
	"github.com/weftframework/weft/di"
	"github.com/weftframework/weft/events"
	"github.com/weftframework/weft/view"
	"github.com/weftframework/weft/web"
)

// Defaults returns the framework's default configuration. Caller config
// deep-merges on top of it: caller keys win per key, defaults not named
// by the caller survive.
func Defaults() config.Config {
	return config.Config{
		"dependencies": map[string]interface{}{
			di.KeyDispatcher: di.Definition(func(*di.Container) (interface{}, error) {
				return events.NewDispatcher(), nil
			}),
			"view.registry": di.Definition(buildViewRegistry),
			di.KeyRouter:    di.Definition(buildRouter),
			"session.store": di.Definition(buildSessionStore),
			ListenerRoute: di.Definition(func(c *di.Container) (interface{}, error) {
				cfg := appConfig(c)
				return &RouteListener{Raise404: cfg.GetBool("router.raise_404", true)}, nil
			}),
			ListenerDispatch: di.Definition(func(*di.Container) (interface{}, error) {
				return &DispatchListener{}, nil
			}),
			ListenerRender: di.Definition(func(c *di.Container) (interface{}, error) {
				registry, err := c.Get("view.registry")
				if err != nil {
					return nil, err
				}
				return &RenderListener{Views: registry.(*view.Registry)}, nil
			}),
			ListenerException: di.Definition(func(c *di.Container) (interface{}, error) {
				cfg := appConfig(c)
				return &ExceptionListener{Debug: cfg.GetBool("debug.enabled", false)}, nil
			}),
		},
		"events": map[string]interface{}{
			EventRouteMatch:      []config.ListenerSpec{{ID: ListenerRoute}},
			EventDispatchExecute: []config.ListenerSpec{{ID: ListenerDispatch}},
			EventRenderView:      []config.ListenerSpec{{ID: ListenerRender}},
			EventException:       []config.ListenerSpec{{ID: ListenerException}},
		},
		"server": config.Config{
			"addr":             ":8080",
			"read_timeout":     "15s",
			"write_timeout":    "15s",
			"shutdown_timeout": "10s",
		},
		"logging": config.Config{
			"level":  "info",
			"format": "text",
		},
		"session": config.Config{
			"cookie": "weftsess",
			"ttl":    "1h",
		},
		"router": config.Config{
			"raise_404": true,
		},
		"views": config.Config{
			"dir": "",
		},
		"metrics": config.Config{
			"enabled": false,
		},
		"debug": config.Config{
			"enabled": false,
		},
	}
}

// appConfig reads the merged application config back out of the
// container. Definitions use it so their settings reflect caller
// overrides, not the raw defaults.
func appConfig(c *di.Container) config.Config {
	if v, err := c.Get(di.KeyApplicationConfig); err == nil {
		if cfg, ok := v.(config.Config); ok {
			return cfg
		}
	}
	return config.Config{}
}

func buildViewRegistry(c *di.Container) (interface{}, error) {
	registry := view.NewRegistry()
	if dir := appConfig(c).GetString("views.dir", ""); dir != "" {
		registry.Register(view.FormatHTML, &view.TemplateRenderer{Dir: dir})
	}
	return registry, nil
}

func buildRouter(c *di.Container) (interface{}, error) {
	routesValue, _ := appConfig(c).Get("routes")
	routes, err := web.RoutesFrom(routesValue)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		// No routes configured: the route stage sees a nil router and
		// signals not-found per router.raise_404.
		return (web.Router)(nil), nil
	}
	return web.NewMuxRouter(routes)
}

func buildSessionStore(c *di.Container) (interface{}, error) {
	ttl := sessionTTL(appConfig(c))
	return web.NewMemorySessionStore(ttl), nil
}

func sessionTTL(cfg config.Config) time.Duration {
	raw := cfg.GetString("session.ttl", "")
	if raw == "" {
		return 0
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return ttl
}

// sessionOptions builds the request session options from config.
func sessionOptions(cfg config.Config) web.SessionOptions {
	opts := web.DefaultSessionOptions()
	opts.CookieName = cfg.GetString("session.cookie", opts.CookieName)
	opts.TTL = sessionTTL(cfg)
	return opts
}

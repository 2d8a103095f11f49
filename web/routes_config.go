package web

import "fmt"

// RoutesFrom normalizes a configuration value into a route table.
// Accepted forms: []Route, or YAML-decoded []interface{} of
// {name, path, methods, controller} maps.
func RoutesFrom(v interface{}) ([]Route, error) {
	switch routes := v.(type) {
	case nil:
		return nil, nil
	case []Route:
		return routes, nil
	case []interface{}:
		out := make([]Route, 0, len(routes))
		for _, entry := range routes {
			m, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("web: unsupported route entry type %T", entry)
			}
			route := Route{}
			route.Name, _ = m["name"].(string)
			route.Path, _ = m["path"].(string)
			route.Controller, _ = m["controller"].(string)
			switch methods := m["methods"].(type) {
			case []string:
				route.Methods = methods
			case []interface{}:
				for _, method := range methods {
					s, ok := method.(string)
					if !ok {
						return nil, fmt.Errorf("web: route %q has non-string method", route.Name)
					}
					route.Methods = append(route.Methods, s)
				}
			}
			out = append(out, route)
		}
		return out, nil
	}
	return nil, fmt.Errorf("web: unsupported routes type %T", v)
}

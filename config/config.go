// Package config holds the application configuration model: a nested
// string-keyed map merged from framework defaults and caller overrides,
// plus loaders for YAML files and dotenv overlays.
package config

import (
	"fmt"
	"strings"
)

// Config is a nested configuration tree. Values are scalars, nested
// Config/map values, slices, or opaque objects such as service factories
// and listener specs.
type Config map[string]interface{}

// Get returns the value at a dotted path, descending through nested maps.
// The second return reports whether the full path resolved.
func (c Config) Get(path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = c
	for _, part := range parts {
		m, ok := toMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// GetString returns the string at path, or fallback when absent or not a
// string.
func (c Config) GetString(path, fallback string) string {
	v, ok := c.Get(path)
	if !ok {
		return fallback
	}
	s, ok := v.(string)
	if !ok {
		return fallback
	}
	return s
}

// GetInt returns the integer at path, or fallback.
func (c Config) GetInt(path string, fallback int) int {
	v, ok := c.Get(path)
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return fallback
}

// GetBool returns the boolean at path, or fallback.
func (c Config) GetBool(path string, fallback bool) bool {
	v, ok := c.Get(path)
	if !ok {
		return fallback
	}
	b, ok := v.(bool)
	if !ok {
		return fallback
	}
	return b
}

// Section returns the nested map at path, or an empty Config.
func (c Config) Section(path string) Config {
	v, ok := c.Get(path)
	if !ok {
		return Config{}
	}
	if m, ok := toMap(v); ok {
		return Config(m)
	}
	return Config{}
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case Config:
		return m, true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}

// ListenerSpec names one event listener in the "events" section: the
// identifier it is registered under, its priority and whether it should
// fire only once. Priority and once are optional in source configuration
// and default at normalization time.
type ListenerSpec struct {
	ID       string `yaml:"id"`
	Priority int    `yaml:"priority"`
	Once     bool   `yaml:"once"`
}

// DefaultPriority is assigned to listener specs that do not set one.
const DefaultPriority = 1

// ListenerSpecs normalizes the value of one event entry into a validated
// spec list. Accepted forms: []ListenerSpec, a bare listener id string,
// []string of ids, or YAML-decoded []interface{} of id strings or
// {id, priority, once} maps.
func ListenerSpecs(v interface{}) ([]ListenerSpec, error) {
	switch entries := v.(type) {
	case nil:
		return nil, nil
	case []ListenerSpec:
		out := make([]ListenerSpec, len(entries))
		copy(out, entries)
		for i := range out {
			if err := normalizeSpec(&out[i]); err != nil {
				return nil, err
			}
		}
		return out, nil
	case string:
		return []ListenerSpec{{ID: entries, Priority: DefaultPriority}}, nil
	case []string:
		out := make([]ListenerSpec, 0, len(entries))
		for _, id := range entries {
			spec := ListenerSpec{ID: id}
			if err := normalizeSpec(&spec); err != nil {
				return nil, err
			}
			out = append(out, spec)
		}
		return out, nil
	case []interface{}:
		out := make([]ListenerSpec, 0, len(entries))
		for _, entry := range entries {
			spec, err := decodeSpec(entry)
			if err != nil {
				return nil, err
			}
			out = append(out, spec)
		}
		return out, nil
	}
	return nil, fmt.Errorf("config: unsupported listener list type %T", v)
}

func decodeSpec(entry interface{}) (ListenerSpec, error) {
	switch e := entry.(type) {
	case ListenerSpec:
		if err := normalizeSpec(&e); err != nil {
			return ListenerSpec{}, err
		}
		return e, nil
	case string:
		return ListenerSpec{ID: e, Priority: DefaultPriority}, nil
	case map[string]interface{}:
		spec := ListenerSpec{}
		if id, ok := e["id"].(string); ok {
			spec.ID = id
		}
		switch p := e["priority"].(type) {
		case int:
			spec.Priority = p
		case float64:
			spec.Priority = int(p)
		}
		if once, ok := e["once"].(bool); ok {
			spec.Once = once
		}
		if err := normalizeSpec(&spec); err != nil {
			return ListenerSpec{}, err
		}
		return spec, nil
	}
	return ListenerSpec{}, fmt.Errorf("config: unsupported listener entry type %T", entry)
}

func normalizeSpec(spec *ListenerSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("config: listener spec missing id")
	}
	if spec.Priority == 0 {
		spec.Priority = DefaultPriority
	}
	return nil
}

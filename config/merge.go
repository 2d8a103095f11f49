package config

// Merge deep-merges overrides onto defaults and returns a new tree.
// Override keys win at every nesting level; default keys absent from the
// overrides are preserved. Neither input is mutated.
func Merge(defaults, overrides Config) Config {
	out := make(Config, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = cloneValue(v)
	}
	for k, ov := range overrides {
		base, exists := out[k]
		if !exists {
			out[k] = cloneValue(ov)
			continue
		}
		baseMap, baseOK := toMap(base)
		ovMap, ovOK := toMap(ov)
		if baseOK && ovOK {
			out[k] = Merge(Config(baseMap), Config(ovMap))
			continue
		}
		out[k] = cloneValue(ov)
	}
	return out
}

// cloneValue copies nested maps so merged trees never alias their inputs.
// Slices and scalars are shared; the framework treats config as read-only
// after construction.
func cloneValue(v interface{}) interface{} {
	if m, ok := toMap(v); ok {
		out := make(Config, len(m))
		for k, nested := range m {
			out[k] = cloneValue(nested)
		}
		return out
	}
	return v
}

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg == nil {
		cfg = Config{}
	}
	return cfg, nil
}

// LoadFileOrDefault reads a YAML configuration file, returning fallback
// when the file does not exist.
func LoadFileOrDefault(path string, fallback Config) Config {
	cfg, err := LoadFile(path)
	if err != nil {
		return fallback
	}
	return cfg
}

// LoadEnv reads dotenv files and overlays matching environment variables
// onto cfg. A variable WEFT_SERVER_ADDR overrides the "server.addr" path:
// the prefix is stripped, the remainder lowercased and underscores become
// path separators one level deep per segment.
func LoadEnv(cfg Config, prefix string, files ...string) Config {
	if len(files) > 0 {
		// Missing dotenv files are not an error; process env still applies.
		_ = godotenv.Load(files...)
	}
	out := Merge(Config{}, cfg)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], prefix) {
			continue
		}
		path := strings.ToLower(strings.TrimPrefix(parts[0], prefix))
		segments := strings.Split(path, "_")
		setPath(out, segments, parts[1])
	}
	return out
}

func setPath(cfg Config, segments []string, value string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		cfg[segments[0]] = value
		return
	}
	child, ok := toMap(cfg[segments[0]])
	if !ok {
		child = Config{}
		cfg[segments[0]] = Config(child)
	}
	setPath(Config(child), segments[1:], value)
}

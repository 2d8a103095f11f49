package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Get(t *testing.T) {
	cfg := Config{
		"server": Config{"addr": ":8080"},
		"debug":  true,
	}

	tests := []struct {
		path string
		want interface{}
		ok   bool
	}{
		{"server.addr", ":8080", true},
		{"debug", true, true},
		{"server.missing", nil, false},
		{"missing.deep.path", nil, false},
	}

	for _, tc := range tests {
		got, ok := cfg.Get(tc.path)
		if ok != tc.ok {
			t.Errorf("Get(%q) ok = %v, want %v", tc.path, ok, tc.ok)
		}
		if tc.ok && got != tc.want {
			t.Errorf("Get(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestConfig_Section(t *testing.T) {
	cfg := Config{"session": Config{"cookie": "weftsess"}}

	sect := cfg.Section("session")
	assert.Equal(t, "weftsess", sect.GetString("cookie", ""))

	assert.Empty(t, cfg.Section("absent"))
}

func TestListenerSpecs_Defaults(t *testing.T) {
	specs, err := ListenerSpecs([]ListenerSpec{{ID: "app.route"}})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, DefaultPriority, specs[0].Priority)
	assert.False(t, specs[0].Once)
}

func TestListenerSpecs_FromYAMLShapes(t *testing.T) {
	specs, err := ListenerSpecs([]interface{}{
		"app.route",
		map[string]interface{}{"id": "app.dispatch", "priority": 100, "once": true},
	})
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, ListenerSpec{ID: "app.route", Priority: 1}, specs[0])
	assert.Equal(t, ListenerSpec{ID: "app.dispatch", Priority: 100, Once: true}, specs[1])
}

func TestListenerSpecs_MissingID(t *testing.T) {
	_, err := ListenerSpecs([]interface{}{map[string]interface{}{"priority": 5}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	data := []byte("server:\n  addr: \":9000\"\ndebug: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.GetString("server.addr", ""))
	assert.True(t, cfg.GetBool("debug", false))
}

func TestLoadFileOrDefault_MissingFile(t *testing.T) {
	fallback := Config{"debug": true}
	cfg := LoadFileOrDefault(filepath.Join(t.TempDir(), "absent.yaml"), fallback)
	assert.True(t, cfg.GetBool("debug", false))
}

func TestLoadEnv_Overlay(t *testing.T) {
	t.Setenv("WEFT_SERVER_ADDR", ":7070")

	cfg := LoadEnv(Config{"server": Config{"addr": ":8080", "name": "weft"}}, "WEFT_")

	assert.Equal(t, ":7070", cfg.GetString("server.addr", ""))
	assert.Equal(t, "weft", cfg.GetString("server.name", ""))
}

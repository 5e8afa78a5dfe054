package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"sofie/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve_File(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    config.Config
	}{
		{"TOML", "sofie.toml", "port = 9090\ninterface = \"127.0.0.1\"\n", config.Config{Port: 9090, Interface: "127.0.0.1"}},
		{"YAML", "sofie.yaml", "port: 3000\ninterface: \"::\"\n", config.Config{Port: 3000, Interface: "::"}},
		{"JSON", "sofie.json", `{"port": 8443, "interface": "10.0.0.1"}`, config.Config{Port: 8443, Interface: "10.0.0.1"}},
		{"NoExtensionIsTOML", "sofie", "port = 7000\ninterface = \"0.0.0.0\"\n", config.Config{Port: 7000, Interface: "0.0.0.0"}},
		{"PortOnly", "sofie.toml", "port = 9091\n", config.Config{Port: 9091, Interface: config.DefaultInterface}},
		{"InterfaceOnly", "sofie.toml", "interface = \"127.0.0.1\"\n", config.Config{Port: config.DefaultPort, Interface: "127.0.0.1"}},
		{"MaxPort", "sofie.toml", "port = 65535\n", config.Config{Port: 65535, Interface: config.DefaultInterface}},
		{"WholeFloatJSON", "sofie.json", `{"port": 8081.0}`, config.Config{Port: 8081, Interface: config.DefaultInterface}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			got := config.Resolve(config.Source{Path: path}, zap.NewNop())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"Malformed", "sofie.toml", "port = = 9090\n[[[\n"},
		{"WrongType", "sofie.toml", "port = \"not-a-number\"\n"},
		{"PortTooLarge", "sofie.toml", "port = 70000\n"},
		{"NegativePort", "sofie.toml", "port = -1\n"},
		{"BlankInterface", "sofie.toml", "interface = \"   \"\n"},
		{"UnsupportedFormat", "sofie.txt", "port = 9090\n"},
		{"FractionalPort", "sofie.toml", "port = 9090.5\n"},
		{"FractionalPortJSON", "sofie.json", `{"port": 8081.9}`},
		{"QuotedPortJSON", "sofie.json", `{"port": "8081"}`},
		{"FractionalPortYAML", "sofie.yaml", "port: 3000.25\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			path := writeFile(t, tt.file, tt.content)

			got := config.Resolve(config.Source{Path: path}, zap.New(core))

			assert.Equal(t, config.Default(), got)
			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, zapcore.WarnLevel, entry.Level)
			assert.Equal(t, path, entry.ContextMap()["path"])
		})
	}
}

func TestResolve_MissingFile(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	path := filepath.Join(t.TempDir(), "absent.toml")

	got := config.Resolve(config.Source{Path: path}, zap.New(core))

	assert.Equal(t, config.Config{Port: 8080, Interface: "0.0.0.0"}, got)
	assert.Zero(t, logs.Len())
}

func TestResolve_NilLogger(t *testing.T) {
	path := writeFile(t, "sofie.toml", "[[[")
	assert.Equal(t, config.Default(), config.Resolve(config.Source{Path: path}, nil))
}

func TestResolve_Env(t *testing.T) {
	absent := filepath.Join(t.TempDir(), "absent.toml")

	t.Run("Variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("INTERFACE", "127.0.0.1")

		got := config.Resolve(config.Source{Path: absent, Env: true}, zap.NewNop())
		assert.Equal(t, config.Config{Port: 9090, Interface: "127.0.0.1"}, got)
	})

	t.Run("UnsetUsesDefaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("INTERFACE", "")

		got := config.Resolve(config.Source{Path: absent, Env: true}, zap.NewNop())
		assert.Equal(t, config.Default(), got)
	})

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("PORT", "99999")
		t.Setenv("INTERFACE", "127.0.0.1")
		core, logs := observer.New(zapcore.DebugLevel)

		got := config.Resolve(config.Source{Path: absent, Env: true}, zap.New(core))
		assert.Equal(t, config.Config{Port: config.DefaultPort, Interface: "127.0.0.1"}, got)
		assert.Equal(t, 1, logs.FilterMessage("Invalid PORT, using default").Len())
	})

	t.Run("FileWins", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		path := writeFile(t, "sofie.toml", "port = 7070\n")

		got := config.Resolve(config.Source{Path: path, Env: true}, zap.NewNop())
		assert.Equal(t, uint16(7070), got.Port)
	})

	t.Run("MalformedFileFallsToEnv", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("INTERFACE", "")
		path := writeFile(t, "sofie.toml", "[[[")

		got := config.Resolve(config.Source{Path: path, Env: true}, zap.NewNop())
		assert.Equal(t, config.Config{Port: 9090, Interface: config.DefaultInterface}, got)
	})

	t.Run("EnvFile", func(t *testing.T) {
		// Registered so that t.Setenv restores the empty state after godotenv sets them.
		t.Setenv("PORT", "")
		t.Setenv("INTERFACE", "")
		os.Unsetenv("PORT")
		os.Unsetenv("INTERFACE")
		envFile := writeFile(t, ".env", "PORT=6060\nINTERFACE=127.0.0.2\n")

		got := config.Resolve(config.Source{Path: absent, EnvFile: envFile, Env: true}, zap.NewNop())
		assert.Equal(t, config.Config{Port: 6060, Interface: "127.0.0.2"}, got)
	})
}

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, "0.0.0.0:8080", config.Default().Addr())
	assert.Equal(t, "[::]:9090", config.Config{Port: 9090, Interface: "::"}.Addr())
}

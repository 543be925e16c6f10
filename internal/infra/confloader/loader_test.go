package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Engine struct {
		Allowed     string `koanf:"allowed"`
		Workers     int    `koanf:"workers"`
		PairWorkers int    `koanf:"pair_workers"`
	} `koanf:"engine"`
	Input struct {
		Encoding string        `koanf:"encoding"`
		Settle   time.Duration `koanf:"settle"`
	} `koanf:"input"`
	Output struct {
		ShowPlaintext bool `koanf:"show_plaintext"`
	} `koanf:"output"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "padbreak.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load")
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/etc/padbreak.yaml"),
		WithOverrides(map[string]any{"engine.workers": 2}),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/etc/padbreak.yaml" {
		t.Errorf("filePath = %q", l.filePath)
	}
	if len(l.overrides) != 1 {
		t.Errorf("overrides = %v", l.overrides)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"PADBREAK_ENGINE_WORKERS", "engine.workers"},
		{"PADBREAK_ENGINE_PAIR_WORKERS", "engine.pair_workers"},
		{"PADBREAK_OUTPUT_SHOW_PLAINTEXT", "output.show_plaintext"},
		{"PADBREAK_VERBOSE", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnvKey(DefaultEnvPrefix, tt.name); got != tt.want {
				t.Errorf("EnvKey(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  allowed: "a-z "
  pair_workers: 4
input:
  settle: 2s
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetString("engine.allowed"); got != "a-z " {
		t.Errorf("engine.allowed = %q, want %q", got, "a-z ")
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/padbreak.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}

func TestLoader_Load_Precedence(t *testing.T) {
	path := writeConfig(t, `
engine:
  workers: 2
  pair_workers: 4
input:
  encoding: hex
  settle: 2s
`)
	t.Setenv("PADBREAK_ENGINE_PAIR_WORKERS", "8")
	t.Setenv("PADBREAK_OUTPUT_SHOW_PLAINTEXT", "true")

	var cfg testConfig
	cfg.Engine.Allowed = "default"
	cfg.Input.Encoding = "base64"

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"engine.workers": 16}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Allowed != "default" {
		t.Errorf("Engine.Allowed = %q, want the preset default", cfg.Engine.Allowed)
	}
	if cfg.Input.Encoding != "hex" {
		t.Errorf("Input.Encoding = %q, want file value %q", cfg.Input.Encoding, "hex")
	}
	if cfg.Input.Settle != 2*time.Second {
		t.Errorf("Input.Settle = %v, want 2s", cfg.Input.Settle)
	}
	if cfg.Engine.PairWorkers != 8 {
		t.Errorf("Engine.PairWorkers = %d, want env value 8", cfg.Engine.PairWorkers)
	}
	if !cfg.Output.ShowPlaintext {
		t.Error("Output.ShowPlaintext should be set from env")
	}
	if cfg.Engine.Workers != 16 {
		t.Errorf("Engine.Workers = %d, want override 16", cfg.Engine.Workers)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load")
	}
}

func TestLoader_LoadMap_Nested(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"input.encoding": "hex"}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	if got := l.GetString("input.encoding"); got != "hex" {
		t.Errorf("input.encoding = %q, want %q", got, "hex")
	}
	if l.Get("input") == nil {
		t.Error("dotted keys should expand into a nested section")
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := mapProvider(nil).ReadBytes(); err != ErrReadBytesNotSupported {
		t.Errorf("ReadBytes() error = %v, want ErrReadBytesNotSupported", err)
	}
}

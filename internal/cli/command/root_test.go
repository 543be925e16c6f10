package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/padbreak/internal/core/domain"
)

// runApp runs the CLI with captured output. Exit errors are returned
// instead of terminating the test binary.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"padbreak"}, args...))
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestApp(t *testing.T) {
	app := App()
	if app == nil {
		t.Fatal("App() returned nil")
	}

	if app.Name != "padbreak" {
		t.Errorf("Name = %q, want %q", app.Name, "padbreak")
	}
	if app.Usage == "" {
		t.Error("Usage should not be empty")
	}

	commandNames := make(map[string]bool)
	for _, cmd := range app.Commands {
		commandNames[cmd.Name] = true
	}
	for _, name := range []string{"recover", "watch", "generate", "history", "config", "version"} {
		if !commandNames[name] {
			t.Errorf("missing required command: %s", name)
		}
	}
}

func TestApp_GlobalFlags(t *testing.T) {
	app := App()

	flagNames := make(map[string]bool)
	for _, flag := range app.Flags {
		flagNames[flag.Names()[0]] = true
	}
	for _, name := range []string{"config", "output", "log-level", "log-format"} {
		if !flagNames[name] {
			t.Errorf("missing required flag: %s", name)
		}
	}
}

func TestFlagBindings_Unique(t *testing.T) {
	flags := make(map[string]bool)
	keys := make(map[string]bool)
	for _, b := range flagBindings {
		if flags[b.flag] {
			t.Errorf("flag %q bound twice", b.flag)
		}
		if keys[b.key] {
			t.Errorf("key %q bound twice", b.key)
		}
		flags[b.flag] = true
		keys[b.key] = true
	}
}

func TestFlagOverrides(t *testing.T) {
	var got map[string]any
	app := &cli.App{
		Flags: globalFlags(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Flags: engineFlags(),
				Action: func(c *cli.Context) error {
					got = flagOverrides(c)
					return nil
				},
			},
		},
	}

	args := []string{"test", "-o", "json", "run", "--workers", "3", "--progress", "--allowed", "a-z"}
	if err := app.Run(args); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}

	want := map[string]any{
		"output.format":   "json",
		"engine.workers":  3,
		"engine.allowed":  "a-z",
		"output.progress": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("flagOverrides() = %v, want %v", got, want)
	}
}

func TestFlagOverrides_NoneSet(t *testing.T) {
	var got map[string]any
	app := &cli.App{
		Flags: globalFlags(),
		Action: func(c *cli.Context) error {
			got = flagOverrides(c)
			return nil
		},
	}
	if err := app.Run([]string{"test"}); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("flagOverrides() = %v, want empty", got)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runApp(t, "-o", "json", "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var info map[string]any
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	for _, key := range []string{"version", "commit", "go_version", "platform"} {
		if _, ok := info[key]; !ok {
			t.Errorf("version output missing %q: %s", key, stdout)
		}
	}
}

func TestConfigShow_MasksPassphrase(t *testing.T) {
	t.Setenv("PADBREAK_STATE_PASSPHRASE", "hunter22")

	stdout, _, err := runApp(t, "-o", "json", "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var cfg struct {
		State struct {
			Passphrase string `json:"passphrase"`
		} `json:"state"`
		Engine struct {
			PairWorkers int `json:"pair_workers"`
		} `json:"engine"`
	}
	if err := json.Unmarshal([]byte(stdout), &cfg); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if cfg.State.Passphrase != "hu****22" {
		t.Errorf("passphrase = %q, want masked", cfg.State.Passphrase)
	}
	if cfg.Engine.PairWorkers != 1 {
		t.Errorf("pair_workers = %d, want default 1", cfg.Engine.PairWorkers)
	}
}

func TestConfigShow_TableFallsBackToYAML(t *testing.T) {
	stdout, _, err := runApp(t, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(stdout, "engine:") || !strings.Contains(stdout, "pair_workers: 1") {
		t.Errorf("expected YAML output, got:\n%s", stdout)
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", "engine:\n  allowed: \"a-z \"\n  workers: 2\n", false},
		{"zero pair workers", "engine:\n  pair_workers: 0\n", true},
		{"bad placeholder", "engine:\n  placeholder: \"--\"\n", true},
		{"bad output format", "output:\n  format: xml\n", true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "config-"+string(rune('a'+i))+".yaml", tt.content)

			stdout, _, err := runApp(t, "--config", path, "config", "validate")
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfig) {
					t.Errorf("validate error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validate failed: %v", err)
			}
			if !strings.Contains(stdout, "configuration is valid: "+path) {
				t.Errorf("stdout = %q", stdout)
			}
		})
	}
}

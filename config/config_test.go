package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kbukum/ioc/di"
	"github.com/kbukum/ioc/errors"
	"github.com/kbukum/ioc/logger"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
container:
  fallback: true
  fallback_on_errors: true
logging:
  level: debug
  format: json
  output: discard
`)

	var cfg Config
	if err := LoadConfig("test-service", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Container.Fallback || !cfg.Container.FallbackOnErrors {
		t.Errorf("expected both fallback flags, got %+v", cfg.Container)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	var cfg Config
	err := LoadConfig("nonexistent-service", &cfg,
		WithConfigFile("/nonexistent/path.yml"),
		WithEnvFile("/nonexistent/.env"),
	)
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
	if cfg.Container.Fallback || cfg.Container.FallbackOnErrors {
		t.Errorf("expected fallback off by default, got %+v", cfg.Container)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default level, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
container:
  fallback: false
`)
	t.Setenv("IOC_CONTAINER_FALLBACK", "true")
	t.Setenv("IOC_LOGGING_LEVEL", "warn")

	var cfg Config
	if err := LoadConfig("svc", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Container.Fallback {
		t.Error("expected env var to override the file")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "IOC_CONTAINER_FALLBACK_ON_ERRORS=true\n")
	t.Cleanup(func() { os.Unsetenv("IOC_CONTAINER_FALLBACK_ON_ERRORS") })

	var cfg Config
	if err := LoadConfig("svc", &cfg, WithConfigFile("/nonexistent.yml"), WithEnvFile(envPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.Container.FallbackOnErrors {
		t.Error("expected .env value to be applied")
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yml", "container: [fallback\n")
		var cfg Config
		err := LoadConfig("svc", &cfg, WithConfigFile(path))
		if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("expected INVALID_CONFIG, got %v", err)
		}
	})

	t.Run("invalid logging level", func(t *testing.T) {
		path := writeFile(t, dir, "level.yml", "logging:\n  level: loud\n")
		var cfg Config
		err := LoadConfig("svc", &cfg, WithConfigFile(path))
		if !errors.IsCode(err, errors.ErrCodeInvalidConfig) {
			t.Fatalf("expected INVALID_CONFIG, got %v", err)
		}
		if !strings.Contains(err.Error(), "logging.level") {
			t.Errorf("expected the failing key in the message, got %q", err.Error())
		}
	})
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/my-svc.yml": true,
		"./config.yml":        true,
		"./.env.my-svc":       true,
		"./.env":              true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./config/my-svc.yml" {
		t.Errorf("expected service config first, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./.env.my-svc" {
		t.Errorf("expected service env file first, got %q", files.EnvFile)
	}

	explicit := resolver.ResolveFiles("my-svc", LoaderConfig{ConfigFile: "/etc/ioc.yml"})
	if explicit.ConfigFile != "/etc/ioc.yml" {
		t.Errorf("expected explicit path to win, got %q", explicit.ConfigFile)
	}
}

func TestLoadConfigUsesFileSystemForEnv(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./.env": true}}
	var cfg Config
	if err := LoadConfig("", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if len(fs.loaded) != 1 || fs.loaded[0] != "./.env" {
		t.Errorf("expected ./.env to be loaded through the filesystem, got %v", fs.loaded)
	}
}

func TestContainerConfigOptions(t *testing.T) {
	r := di.NewRegistry(di.WithLogger(logger.Nop()))
	cfg := ContainerConfig{Fallback: true}
	r.UseContainer(di.ContainerFunc(func(key any, typ di.Type) (any, error) { return nil, nil }), cfg.Options()...)

	_, opts := r.User()
	if !opts.Fallback || opts.FallbackOnErrors {
		t.Errorf("expected only Fallback, got %+v", opts)
	}
}

func TestApply(t *testing.T) {
	t.Cleanup(func() {
		di.UseContainer(nil)
		logger.SetGlobalLogger(nil)
	})

	cfg := Config{
		Container: ContainerConfig{FallbackOnErrors: true},
		Logging:   logger.Config{Level: "error", Format: "json", Output: "discard"},
	}
	host := di.ContainerFunc(func(key any, typ di.Type) (any, error) { return "host", nil })
	cfg.Apply(host)

	c, opts := di.Global().User()
	if c == nil || !opts.FallbackOnErrors || opts.Fallback {
		t.Errorf("expected host container with FallbackOnErrors, got %v %+v", c, opts)
	}
	got, err := di.GetFromContainer("anything", di.TypeOf[string]())
	if err != nil || got != "host" {
		t.Errorf("expected the host answer, got %v %v", got, err)
	}

	cfg.Apply(nil)
	if c, _ := di.Global().User(); c == nil {
		t.Error("expected Apply(nil) to leave the installed container alone")
	}
}

func TestWithOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected loader config %+v", lc)
	}
}

func TestValidateReportsFailingKeys(t *testing.T) {
	cfg := Config{Logging: logger.Config{Level: "loud", Format: "xml", Output: "stderr"}}

	err := cfg.Validate()
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeInvalidConfig {
		t.Fatalf("expected INVALID_CONFIG, got %v", err)
	}
	if appErr.Details["field"] != "logging.level" {
		t.Errorf("expected field logging.level, got %v", appErr.Details["field"])
	}
	keys, _ := appErr.Details["fields"].([]string)
	if len(keys) != 2 || keys[0] != "logging.level" || keys[1] != "logging.format" {
		t.Errorf("expected both failing keys, got %v", appErr.Details["fields"])
	}
	if !strings.Contains(appErr.Message, "loud") {
		t.Errorf("expected the rejected value in the message, got %q", appErr.Message)
	}

	cfg.ApplyDefaults()
	cfg.Logging.Level, cfg.Logging.Format = "debug", "json"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

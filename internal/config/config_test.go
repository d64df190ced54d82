package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"voxbridge.dev/internal/fs"
)

func TestGetDefaultConfig(t *testing.T) {
	cm := NewConfigManager()
	cfg := cm.GetDefaultConfig()

	if cfg.Volume != 0.8 {
		t.Errorf("expected default volume 0.8, got %f", cfg.Volume)
	}
	if cfg.AudioBackend != "auto" {
		t.Errorf("expected default backend auto, got %s", cfg.AudioBackend)
	}
	if !cfg.Enabled {
		t.Error("expected enabled by default")
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected default log level warn, got %s", cfg.LogLevel)
	}
	if cfg.FileLogging == nil || !cfg.FileLogging.Enabled {
		t.Error("expected file logging enabled by default")
	}
	if cfg.Journal == nil || !cfg.Journal.Enabled {
		t.Error("expected journal enabled by default")
	}

	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFileWithMemoryFilesystem(t *testing.T) {
	factory := fs.NewDefaultFactory()
	memFS := factory.Memory()

	configPath := "/test/config.json"
	testConfig := `{
		"volume": 0.5,
		"audio_backend": "malgo",
		"enabled": true,
		"log_level": "debug"
	}`

	err := memFS.MkdirAll(filepath.Dir(configPath), 0755)
	if err != nil {
		t.Fatalf("failed to create directory in memory fs: %v", err)
	}

	err = afero.WriteFile(memFS, configPath, []byte(testConfig), 0644)
	if err != nil {
		t.Fatalf("failed to write test config to memory fs: %v", err)
	}

	cm := NewConfigManagerWithFilesystem(memFS)
	cfg, err := cm.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Volume != 0.5 {
		t.Errorf("expected volume 0.5, got %f", cfg.Volume)
	}
	if cfg.AudioBackend != "malgo" {
		t.Errorf("expected backend malgo, got %s", cfg.AudioBackend)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cm := NewConfigManagerWithFilesystem(afero.NewMemMapFs())

	_, err := cm.LoadFromFile("/nope/config.json")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromFileInvalidJSON(t *testing.T) {
	memFS := afero.NewMemMapFs()
	err := afero.WriteFile(memFS, "/broken.json", []byte("{not json"), 0644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cm := NewConfigManagerWithFilesystem(memFS)
	_, err = cm.LoadFromFile("/broken.json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	memFS := afero.NewMemMapFs()
	cm := NewConfigManagerWithFilesystem(memFS)

	cfg := cm.GetDefaultConfig()
	cfg.Volume = 0.3
	cfg.AudioBackend = "system_command"

	configPath := "/deep/nested/config.json"
	err := cm.SaveToFile(cfg, configPath)
	if err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := cm.LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if loaded.Volume != 0.3 {
		t.Errorf("expected volume 0.3 after round trip, got %f", loaded.Volume)
	}
	if loaded.AudioBackend != "system_command" {
		t.Errorf("expected backend system_command, got %s", loaded.AudioBackend)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	memFS := afero.NewMemMapFs()
	cm := NewConfigManagerWithFilesystem(memFS)

	cfg := cm.GetDefaultConfig()
	cfg.Volume = 2.5

	err := cm.SaveToFile(cfg, "/config.json")
	if err == nil {
		t.Fatal("expected error saving invalid config")
	}

	exists, _ := afero.Exists(memFS, "/config.json")
	if exists {
		t.Error("invalid config should not be written")
	}
}

func TestValidateConfig(t *testing.T) {
	cm := NewConfigManager()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"volume too high", func(c *Config) { c.Volume = 1.5 }, true},
		{"volume negative", func(c *Config) { c.Volume = -0.1 }, true},
		{"volume zero", func(c *Config) { c.Volume = 0.0 }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"empty log level", func(c *Config) { c.LogLevel = "" }, false},
		{"bad backend", func(c *Config) { c.AudioBackend = "pulseaudio" }, true},
		{"empty backend", func(c *Config) { c.AudioBackend = "" }, false},
		{"negative max size", func(c *Config) { c.FileLogging.MaxSizeMB = -1 }, true},
		{"negative max backups", func(c *Config) { c.FileLogging.MaxBackups = -2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cm.GetDefaultConfig()
			tt.mutate(cfg)

			err := cm.ValidateConfig(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestMergeConfigs(t *testing.T) {
	cm := NewConfigManager()

	base := cm.GetDefaultConfig()
	override := &Config{
		Volume:   0.2,
		LogLevel: "debug",
	}

	merged := cm.MergeConfigs(base, override)

	if merged.Volume != 0.2 {
		t.Errorf("expected merged volume 0.2, got %f", merged.Volume)
	}
	if merged.LogLevel != "debug" {
		t.Errorf("expected merged log level debug, got %s", merged.LogLevel)
	}
	// Fields not set in override keep base values
	if merged.AudioBackend != "auto" {
		t.Errorf("expected backend auto from base, got %s", merged.AudioBackend)
	}
	if merged.Journal == nil || !merged.Journal.Enabled {
		t.Error("expected journal config preserved from base")
	}
}

func TestApplyEnvironmentOverrides(t *testing.T) {
	cm := NewConfigManager()

	t.Setenv("VOXBRIDGE_VOLUME", "0.6")
	t.Setenv("VOXBRIDGE_ENABLED", "false")
	t.Setenv("VOXBRIDGE_LOG_LEVEL", "error")
	t.Setenv("VOXBRIDGE_AUDIO_BACKEND", "system_command")
	t.Setenv("VOXBRIDGE_JOURNAL", "false")

	result := cm.ApplyEnvironmentOverrides(cm.GetDefaultConfig())

	if result.Volume != 0.6 {
		t.Errorf("expected volume 0.6 from environment, got %f", result.Volume)
	}
	if result.Enabled {
		t.Error("expected disabled from environment")
	}
	if result.LogLevel != "error" {
		t.Errorf("expected log level error from environment, got %s", result.LogLevel)
	}
	if result.AudioBackend != "system_command" {
		t.Errorf("expected backend system_command from environment, got %s", result.AudioBackend)
	}
	if result.Journal == nil || result.Journal.Enabled {
		t.Error("expected journal disabled from environment")
	}
}

func TestApplyEnvironmentOverridesInvalidValues(t *testing.T) {
	cm := NewConfigManager()

	t.Setenv("VOXBRIDGE_VOLUME", "loud")
	t.Setenv("VOXBRIDGE_AUDIO_BACKEND", "jack")

	result := cm.ApplyEnvironmentOverrides(cm.GetDefaultConfig())

	// Invalid values are ignored, defaults kept
	if result.Volume != 0.8 {
		t.Errorf("expected default volume kept, got %f", result.Volume)
	}
	if result.AudioBackend != "auto" {
		t.Errorf("expected default backend kept, got %s", result.AudioBackend)
	}
}

func TestResolveLogFilePath(t *testing.T) {
	cm := NewConfigManager()

	explicit := cm.ResolveLogFilePath("/var/log/voxbridge.log")
	if explicit != "/var/log/voxbridge.log" {
		t.Errorf("expected explicit path preserved, got %s", explicit)
	}

	resolved := cm.ResolveLogFilePath("")
	if resolved == "" {
		t.Fatal("expected non-empty resolved path")
	}
	if !strings.Contains(resolved, "voxbridge") {
		t.Errorf("expected voxbridge in resolved path, got %s", resolved)
	}
	if filepath.Base(resolved) != "voxbridge.log" {
		t.Errorf("expected voxbridge.log filename, got %s", resolved)
	}
}

func TestResolveJournalPath(t *testing.T) {
	cm := NewConfigManager()

	explicit := cm.ResolveJournalPath("/data/journal.db")
	if explicit != "/data/journal.db" {
		t.Errorf("expected explicit path preserved, got %s", explicit)
	}

	resolved := cm.ResolveJournalPath("")
	if filepath.Base(resolved) != "journal.db" {
		t.Errorf("expected journal.db filename, got %s", resolved)
	}
	if !strings.Contains(resolved, "voxbridge") {
		t.Errorf("expected voxbridge in resolved path, got %s", resolved)
	}
}

func TestApplyLogLevel(t *testing.T) {
	cm := NewConfigManager()

	for _, level := range []string{"debug", "info", "warn", "error", "WARN", ""} {
		if err := cm.ApplyLogLevel(level); err != nil {
			t.Errorf("expected level %q to apply, got: %v", level, err)
		}
	}

	if err := cm.ApplyLogLevel("trace"); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestIsValidAudioBackend(t *testing.T) {
	cm := NewConfigManager()

	valid := []string{"", "auto", "system_command", "malgo"}
	for _, backend := range valid {
		if !cm.IsValidAudioBackend(backend) {
			t.Errorf("expected backend %q to be valid", backend)
		}
	}

	invalid := []string{"pulse", "alsa", "AUTO"}
	for _, backend := range invalid {
		if cm.IsValidAudioBackend(backend) {
			t.Errorf("expected backend %q to be invalid", backend)
		}
	}
}

func TestXDGConfigPaths(t *testing.T) {
	x := NewXDGDirs()

	paths := x.GetConfigPaths("config.json")
	if len(paths) == 0 {
		t.Fatal("expected at least one config path")
	}
	for _, p := range paths {
		if !strings.Contains(p, "voxbridge") {
			t.Errorf("expected voxbridge in config path %s", p)
		}
		if filepath.Base(p) != "config.json" {
			t.Errorf("expected config.json filename in %s", p)
		}
	}
}

func TestXDGCacheAndDataPaths(t *testing.T) {
	x := NewXDGDirs()

	cache := x.GetCachePath("logs")
	if !strings.HasSuffix(cache, filepath.Join("voxbridge", "logs")) {
		t.Errorf("unexpected cache path %s", cache)
	}

	data := x.GetDataPath("")
	if filepath.Base(data) != "voxbridge" {
		t.Errorf("unexpected data path %s", data)
	}
}

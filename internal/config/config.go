package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// JournalConfig represents playback journal configuration
type JournalConfig struct {
	Enabled      bool   `json:"enabled"`       // Whether activity journaling is enabled
	DatabasePath string `json:"database_path"` // SQLite path (empty = XDG data path)
}

// Config represents voxbridge configuration
type Config struct {
	Volume       float64            `json:"volume"`                 // Playback volume (0.0 to 1.0)
	AudioBackend string             `json:"audio_backend"`          // Audio backend (auto, system_command, malgo)
	Enabled      bool               `json:"enabled"`                // Whether audio rendering is enabled
	LogLevel     string             `json:"log_level"`              // Log level (debug, info, warn, error)
	FileLogging  *FileLoggingConfig `json:"file_logging,omitempty"` // File logging configuration
	Journal      *JournalConfig     `json:"journal,omitempty"`      // Activity journal configuration
}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetCachePath(purpose string) string
	GetDataPath(purpose string) string
	CreateCacheDir(purpose string) error
	CreateDataDir(purpose string) error
}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	xdg XDGInterface
	fs  afero.Fs
}

// NewConfigManager creates a new configuration manager backed by the OS filesystem
func NewConfigManager() *ConfigManager {
	slog.Debug("creating new config manager")
	return &ConfigManager{
		xdg: NewXDGDirs(),
		fs:  afero.NewOsFs(),
	}
}

// NewConfigManagerWithFilesystem creates a configuration manager using the given filesystem
func NewConfigManagerWithFilesystem(filesystem afero.Fs) *ConfigManager {
	slog.Debug("creating config manager with custom filesystem")
	return &ConfigManager{
		xdg: NewXDGDirs(),
		fs:  filesystem,
	}
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	defaultConfig := &Config{
		Volume:       0.8,
		AudioBackend: "auto",
		Enabled:      true,
		LogLevel:     "warn",
		FileLogging: &FileLoggingConfig{
			Enabled:    true,
			Filename:   "", // Empty = XDG cache path
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Journal: &JournalConfig{
			Enabled:      true,
			DatabasePath: "", // Empty = XDG data path
		},
	}

	slog.Debug("generated default config",
		"volume", defaultConfig.Volume,
		"audio_backend", defaultConfig.AudioBackend,
		"enabled", defaultConfig.Enabled,
		"log_level", defaultConfig.LogLevel,
		"file_logging_enabled", defaultConfig.FileLogging.Enabled,
		"journal_enabled", defaultConfig.Journal.Enabled)

	return defaultConfig
}

// LoadFromFile loads configuration from a specific file
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = json.Unmarshal(data, &config)
	if err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	err = cm.ValidateConfig(&config)
	if err != nil {
		slog.Error("config validation failed", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"volume", config.Volume,
		"audio_backend", config.AudioBackend,
		"enabled", config.Enabled)

	return &config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	err := cm.ValidateConfig(config)
	if err != nil {
		slog.Error("cannot save invalid config", "error", err)
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(filePath)
	err = cm.fs.MkdirAll(dir, 0755)
	if err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal with indentation for readability
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		slog.Error("failed to marshal config", "error", err)
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = afero.WriteFile(cm.fs, filePath, data, 0644)
	if err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// LoadConfig loads configuration using XDG path discovery
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	slog.Debug("loading config using XDG path discovery")

	configPaths := cm.xdg.GetConfigPaths("config.json")

	slog.Debug("searching for config file", "paths", configPaths)

	// Try to load from each path in priority order
	for i, configPath := range configPaths {
		slog.Debug("checking config path", "path_index", i, "path", configPath)

		exists, err := afero.Exists(cm.fs, configPath)
		if err == nil && exists {
			slog.Debug("found config file", "path", configPath)
			return cm.LoadFromFile(configPath)
		}
		slog.Debug("config file not found", "path", configPath)
	}

	slog.Debug("no config file found, using defaults")
	return cm.GetDefaultConfig(), nil
}

// ValidateConfig validates configuration values
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var errors []string

	// Validate volume
	if config.Volume < 0.0 || config.Volume > 1.0 {
		errors = append(errors, fmt.Sprintf("volume must be between 0.0 and 1.0, got %f", config.Volume))
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if config.LogLevel != "" {
		valid := false
		for _, level := range validLogLevels {
			if config.LogLevel == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level '%s', must be one of: %s",
				config.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Validate audio backend
	if !cm.IsValidAudioBackend(config.AudioBackend) {
		supportedBackends := cm.GetSupportedAudioBackends()
		errors = append(errors, fmt.Sprintf("invalid audio backend '%s', must be one of: %s",
			config.AudioBackend, strings.Join(supportedBackends, ", ")))
	}

	// Validate file logging configuration
	if config.FileLogging != nil {
		fileLogging := config.FileLogging

		if fileLogging.MaxSizeMB < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_size_mb must be >= 0, got %d", fileLogging.MaxSizeMB))
		}

		if fileLogging.MaxBackups < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_backups must be >= 0, got %d", fileLogging.MaxBackups))
		}

		if fileLogging.MaxAgeDays < 0 {
			errors = append(errors, fmt.Sprintf("file logging max_age_days must be >= 0, got %d", fileLogging.MaxAgeDays))
		}
	}

	if len(errors) > 0 {
		errMsg := strings.Join(errors, "; ")
		slog.Error("config validation failed", "errors", errMsg)
		return fmt.Errorf("config validation failed: %s", errMsg)
	}

	slog.Debug("config validation passed")
	return nil
}

// MergeConfigs merges two configurations, with override taking precedence
func (cm *ConfigManager) MergeConfigs(base, override *Config) *Config {
	slog.Debug("merging configurations")

	// Start with a copy of base
	merged := *base

	// Apply overrides (only non-zero values)
	if override.Volume != 0.0 {
		merged.Volume = override.Volume
		slog.Debug("merged volume override", "value", override.Volume)
	}

	if override.AudioBackend != "" {
		merged.AudioBackend = override.AudioBackend
		slog.Debug("merged audio backend override", "value", override.AudioBackend)
	}

	if override.LogLevel != "" {
		merged.LogLevel = override.LogLevel
		slog.Debug("merged log level override", "value", override.LogLevel)
	}

	if override.FileLogging != nil {
		merged.FileLogging = override.FileLogging
		slog.Debug("merged file logging override")
	}

	if override.Journal != nil {
		merged.Journal = override.Journal
		slog.Debug("merged journal override")
	}

	slog.Debug("configurations merged successfully")
	return &merged
}

// ApplyEnvironmentOverrides applies environment variable overrides to config
func (cm *ConfigManager) ApplyEnvironmentOverrides(config *Config) *Config {
	slog.Debug("applying environment variable overrides")

	// Create a copy to modify
	result := *config

	// VOXBRIDGE_VOLUME
	if volStr := os.Getenv("VOXBRIDGE_VOLUME"); volStr != "" {
		if vol, err := strconv.ParseFloat(volStr, 64); err == nil {
			result.Volume = vol
			slog.Debug("applied volume override from environment", "value", vol)
		} else {
			slog.Warn("invalid VOXBRIDGE_VOLUME environment variable", "value", volStr, "error", err)
		}
	}

	// VOXBRIDGE_ENABLED
	if enabledStr := os.Getenv("VOXBRIDGE_ENABLED"); enabledStr != "" {
		if enabled, err := strconv.ParseBool(enabledStr); err == nil {
			result.Enabled = enabled
			slog.Debug("applied enabled override from environment", "value", enabled)
		} else {
			slog.Warn("invalid VOXBRIDGE_ENABLED environment variable", "value", enabledStr, "error", err)
		}
	}

	// VOXBRIDGE_LOG_LEVEL
	if logLevel := os.Getenv("VOXBRIDGE_LOG_LEVEL"); logLevel != "" {
		result.LogLevel = logLevel
		slog.Debug("applied log level override from environment", "value", logLevel)
	}

	// VOXBRIDGE_AUDIO_BACKEND
	if audioBackend := os.Getenv("VOXBRIDGE_AUDIO_BACKEND"); audioBackend != "" {
		// Validate the backend before applying
		if cm.IsValidAudioBackend(audioBackend) {
			result.AudioBackend = audioBackend
			slog.Debug("applied audio backend override from environment", "value", audioBackend)
		} else {
			slog.Warn("invalid VOXBRIDGE_AUDIO_BACKEND environment variable", "value", audioBackend)
		}
	}

	// VOXBRIDGE_JOURNAL
	if journalStr := os.Getenv("VOXBRIDGE_JOURNAL"); journalStr != "" {
		if enabled, err := strconv.ParseBool(journalStr); err == nil {
			journal := JournalConfig{}
			if result.Journal != nil {
				journal = *result.Journal
			}
			journal.Enabled = enabled
			result.Journal = &journal
			slog.Debug("applied journal override from environment", "value", enabled)
		} else {
			slog.Warn("invalid VOXBRIDGE_JOURNAL environment variable", "value", journalStr, "error", err)
		}
	}

	slog.Debug("environment overrides applied")
	return &result
}

// ApplyLogLevel configures slog with the specified log level
func (cm *ConfigManager) ApplyLogLevel(logLevel string) error {
	return cm.ApplyLogLevelWithWriter(logLevel, os.Stderr)
}

// ApplyLogLevelWithWriter configures slog with the specified log level and custom writer
func (cm *ConfigManager) ApplyLogLevelWithWriter(logLevel string, writer io.Writer) error {
	if logLevel == "" {
		slog.Debug("no log level specified, keeping current slog configuration")
		return nil
	}

	slog.Debug("applying log level configuration", "log_level", logLevel)

	// Parse log level string to slog.Level
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		err := fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", logLevel)
		slog.Error("invalid log level for slog configuration", "log_level", logLevel, "error", err)
		return err
	}

	// Create new handler with the specified level and writer
	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	})

	// Set as default slog logger
	slog.SetDefault(slog.New(handler))

	slog.Debug("slog configured successfully", "log_level", logLevel, "slog_level", level)
	return nil
}

// ResolveLogFilePath resolves the log file path using XDG cache directory when filename is empty
func (cm *ConfigManager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}

	// Use XDG cache directory for log files
	return filepath.Join(cm.xdg.GetCachePath("logs"), "voxbridge.log")
}

// ResolveJournalPath resolves the journal database path using XDG data directory when empty
func (cm *ConfigManager) ResolveJournalPath(databasePath string) string {
	if databasePath != "" {
		return databasePath
	}

	// Use XDG data directory for the journal database
	return filepath.Join(cm.xdg.GetDataPath(""), "journal.db")
}

// GetSupportedAudioBackends returns a list of all supported audio backend types
func (cm *ConfigManager) GetSupportedAudioBackends() []string {
	return []string{"auto", "system_command", "malgo"}
}

// IsValidAudioBackend checks if an audio backend type is supported
func (cm *ConfigManager) IsValidAudioBackend(backend string) bool {
	// Empty string is valid (defaults to auto)
	if backend == "" {
		return true
	}

	supported := cm.GetSupportedAudioBackends()
	for _, supportedBackend := range supported {
		if backend == supportedBackend {
			return true
		}
	}
	return false
}

package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"voxbridge.dev/internal/audio"
	"voxbridge.dev/internal/audioplayer"
	"voxbridge.dev/internal/config"
	"voxbridge.dev/internal/directive"
	"voxbridge.dev/internal/engine"
	"voxbridge.dev/internal/journal"
	"voxbridge.dev/internal/platform"
)

const Version = "0.3.0"

// CLI represents the command-line interface
type CLI struct {
	rootCmd          *cobra.Command
	configManager    *config.ConfigManager
	backendFactory   audio.BackendFactory
	terminalDetector TerminalDetector
	journalDB        *sql.DB // Optional activity journal database
}

// NewCLI creates a new CLI instance
func NewCLI() *CLI {
	slog.Debug("creating new CLI instance")

	rootCmd := &cobra.Command{
		Use:   "voxbridge",
		Short: "Voice assistant audio bridge",
		Long:  "Voxbridge bridges voice assistant playback directives to the host audio device, tracking player activity and media position along the way.",
		RunE:  runStdinModeE, // Default behavior when no subcommand is provided
	}

	rootCmd.AddCommand(newAnalyzeCommand())

	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("volume", "", "Set volume (0.0 to 1.0)")
	rootCmd.PersistentFlags().String("backend", "", "Audio backend (auto, system_command, malgo)")
	rootCmd.PersistentFlags().Bool("silent", false, "Silent mode - no audio playback")

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	return &CLI{
		rootCmd:          rootCmd,
		configManager:    nil, // Lazy initialization - only create when needed
		backendFactory:   nil,
		terminalDetector: nil,
		journalDB:        nil,
	}
}

type cliContextKey struct{}

// contextWithCLI stores CLI instance in context for command handlers
func contextWithCLI(cli *CLI) context.Context {
	return context.WithValue(context.Background(), cliContextKey{}, cli)
}

// cliFromContext extracts CLI instance from context
func cliFromContext(ctx context.Context) *CLI {
	if cli, ok := ctx.Value(cliContextKey{}).(*CLI); ok {
		return cli
	}
	return nil
}

// handleVersionFlag checks and handles the version flag
// Returns true if version was handled and processing should stop
func handleVersionFlag(cmd *cobra.Command) bool {
	version, _ := cmd.Flags().GetBool("version")
	if version {
		cmd.Printf("voxbridge version %s\nVoice assistant audio bridge\n", Version)
		return true
	}
	return false
}

// loadAndValidateConfig loads configuration from flags and files, applies overrides, and validates
func loadAndValidateConfig(cmd *cobra.Command, cli *CLI) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	volumeStr, _ := cmd.Flags().GetString("volume")
	backendFlag, _ := cmd.Flags().GetString("backend")
	silent, _ := cmd.Flags().GetBool("silent")

	// Validate volume flag early
	if volumeStr != "" {
		vol, err := strconv.ParseFloat(volumeStr, 64)
		if err != nil {
			cmd.PrintErrf("Error: invalid volume value '%s': %v\n", volumeStr, err)
			slog.Error("invalid volume value", "value", volumeStr, "error", err)
			return nil, fmt.Errorf("invalid volume value '%s': %w", volumeStr, err)
		}
		if vol < 0.0 || vol > 1.0 {
			cmd.PrintErrf("Error: volume must be between 0.0 and 1.0, got %f\n", vol)
			slog.Error("volume out of range", "value", vol)
			return nil, fmt.Errorf("volume must be between 0.0 and 1.0, got %f", vol)
		}
	}

	// Load configuration
	var cfg *config.Config
	var err error
	if configFile != "" {
		cfg, err = cli.configManager.LoadFromFile(configFile)
		if err != nil {
			// If config file doesn't exist, use defaults
			slog.Warn("config file not found, using defaults", "file", configFile, "error", err)
			cfg = cli.configManager.GetDefaultConfig()
		}
	} else {
		cfg, err = cli.configManager.LoadConfig()
		if err != nil {
			cmd.PrintErrf("Error loading config: %v\n", err)
			slog.Error("config load failed", "error", err)
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	}

	// Apply environment overrides
	cfg = cli.configManager.ApplyEnvironmentOverrides(cfg)

	// Apply command line overrides
	if volumeStr != "" {
		// Volume already validated above, just parse and apply
		vol, _ := strconv.ParseFloat(volumeStr, 64)
		cfg.Volume = vol
		slog.Debug("volume override applied", "value", vol)
	}

	if backendFlag != "" {
		cfg.AudioBackend = backendFlag
		slog.Debug("backend override applied", "value", backendFlag)
	}

	if silent {
		cfg.Enabled = false
		slog.Debug("silent mode enabled")
	}

	// Validate final configuration
	err = cli.configManager.ValidateConfig(cfg)
	if err != nil {
		cmd.PrintErrf("Error: invalid configuration: %v\n", err)
		slog.Error("config validation failed", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupLogging configures slog with stderr and optional rotating file output.
// Stderr only sees warnings and above; the file receives everything at the
// configured level.
func setupLogging(cfg *config.Config, stderrWriter io.Writer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo // Default level if parsing fails
	}

	stderrLevel := level
	if stderrLevel < slog.LevelWarn {
		stderrLevel = slog.LevelWarn
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderrWriter, &slog.HandlerOptions{Level: stderrLevel}),
	}

	// Add file logging if enabled
	if cfg.FileLogging != nil && cfg.FileLogging.Enabled {
		configManager := config.NewConfigManager()
		logFilePath := configManager.ResolveLogFilePath(cfg.FileLogging.Filename)

		logDir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			slog.Error("failed to create log directory", "path", logDir, "error", err)
			// Continue without file logging rather than failing
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   logFilePath,
				MaxSize:    cfg.FileLogging.MaxSizeMB,
				MaxBackups: cfg.FileLogging.MaxBackups,
				MaxAge:     cfg.FileLogging.MaxAgeDays,
				Compress:   cfg.FileLogging.Compress,
			}
			handlers = append(handlers, slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: level}))
			slog.Debug("file logging enabled", "path", logFilePath)
		}
	}

	slog.SetDefault(slog.New(NewMultiLevelHandler(handlers...)))

	slog.Debug("logging setup completed", "level", level.String(), "handlers", len(handlers))
}

// initializeJournal opens the activity journal database if journaling is enabled
func (c *CLI) initializeJournal() {
	if c.journalDB != nil {
		return // Already initialized
	}

	cfg, err := c.configManager.LoadConfig()
	if err != nil {
		slog.Debug("failed to load config for journal initialization, using defaults", "error", err)
		cfg = c.configManager.GetDefaultConfig()
	}
	cfg = c.configManager.ApplyEnvironmentOverrides(cfg)

	if cfg.Journal == nil || !cfg.Journal.Enabled {
		slog.Debug("activity journal disabled, skipping database initialization")
		return
	}

	dbPath := c.configManager.ResolveJournalPath(cfg.Journal.DatabasePath)
	db, err := journal.NewDatabase(dbPath)
	if err != nil {
		slog.Warn("failed to open journal database, continuing without journaling",
			"path", dbPath, "error", err)
		return
	}

	c.journalDB = db
	slog.Debug("journal database initialized", "path", dbPath)
}

// processDirectiveInput reads directive JSON from stdin and processes it
func processDirectiveInput(cmd *cobra.Command, cli *CLI, cfg *config.Config) error {
	inputData, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		cmd.PrintErrf("Error reading from stdin: %v\n", err)
		slog.Error("stdin read failed", "error", err)
		return fmt.Errorf("error reading from stdin: %w", err)
	}

	// If no input and we're just testing flags/config, return success
	if len(inputData) == 0 {
		slog.Info("no input data received - configuration test mode")
		return nil
	}

	parser := directive.NewParser()
	event, err := parser.Parse(inputData)
	if err != nil {
		cmd.PrintErrf("Error parsing directive JSON: %v\n", err)
		slog.Error("directive parsing failed", "error", err)
		return fmt.Errorf("error parsing directive JSON: %w", err)
	}

	slog.Info("directive parsed",
		"directive", event.DirectiveName,
		"session_id", event.SessionID,
		"loads_media", event.LoadsMedia())

	return cli.processDirective(cmd, event, cfg)
}

// processDirective runs a single directive through the playback pipeline
func (c *CLI) processDirective(cmd *cobra.Command, event *directive.Event, cfg *config.Config) error {
	transport := engine.NewTransportState()
	defer transport.Close()

	var opts []engine.DispatcherOption
	if c.journalDB != nil {
		recorder := journal.NewRecorder(c.journalDB)
		opts = append(opts, engine.WithActivityHook(recorder.Hook()))
	}
	dispatcher := engine.NewDispatcher(transport, opts...)
	defer dispatcher.Close()

	var player *platform.SpeakerPlayer
	if cfg.Enabled {
		backend, err := c.backendFactory.CreateBackend(cfg.AudioBackend)
		if err != nil {
			cmd.PrintErrf("Error initializing audio backend: %v\n", err)
			slog.Error("audio backend initialization failed", "backend_type", cfg.AudioBackend, "error", err)
			return fmt.Errorf("error initializing audio backend: %w", err)
		}

		if err := backend.SetVolume(float32(cfg.Volume)); err != nil {
			slog.Warn("failed to set backend volume", "volume", cfg.Volume, "error", err)
		}

		player = platform.NewSpeakerPlayer(backend)
		defer player.Close()

		if event.LoadsMedia() && event.MediaURL != nil {
			registry := audio.NewDefaultRegistry()
			player.SetSource(audio.NewFileSource(*event.MediaURL, registry))
			slog.Debug("media source attached", "url", *event.MediaURL)
		}

		dispatcher.RegisterPlayer(player)
	} else {
		// Keep notifications and journaling flowing even without audio
		dispatcher.RegisterPlayer(&audioplayer.Base{})
		slog.Debug("audio disabled, using passive player")
	}

	if err := dispatcher.Dispatch(event); err != nil {
		cmd.PrintErrf("Error dispatching directive: %v\n", err)
		slog.Error("directive dispatch failed", "directive", event.DirectiveName, "error", err)
		return fmt.Errorf("error dispatching directive: %w", err)
	}

	// For Play directives, render the media to completion
	if cfg.Enabled && player != nil && event.LoadsMedia() {
		if err := player.Render(cmd.Context()); err != nil {
			// Playback failures are reported but never fail the directive
			cmd.PrintErrf("Error playing media: %v\n", err)
			slog.Error("media playback failed", "error", err)
			return nil
		}

		finished := &directive.Event{
			DirectiveName: directive.NamePlaybackFinished,
			SessionID:     event.SessionID,
		}
		if err := dispatcher.Dispatch(finished); err != nil {
			slog.Warn("failed to record playback completion", "error", err)
		}

		slog.Info("media playback completed",
			"session_id", event.SessionID,
			"position_ms", player.PlayerPosition(),
			"duration_ms", player.PlayerDuration())
	}

	return nil
}

// runStdinModeE handles the default behavior of reading directive JSON from stdin
func runStdinModeE(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		slog.Error("CLI instance not found in context")
		return fmt.Errorf("CLI instance not found in context")
	}

	if handleVersionFlag(cmd) {
		return nil
	}

	// Interactive terminal with no piped input gets help instead of a hang
	if stdinFile, ok := cmd.InOrStdin().(*os.File); ok {
		if cli.isInteractiveTerminal(int(stdinFile.Fd())) {
			slog.Debug("interactive terminal detected, showing help")
			return cmd.Help()
		}
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}

	setupLogging(cfg, cmd.ErrOrStderr())

	cli.initializeJournal()

	return processDirectiveInput(cmd, cli, cfg)
}

// Run executes the CLI with the given arguments and I/O streams
func (c *CLI) Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Debug("CLI run started", "args", args)

	// Show version without initializing any subsystems
	if len(args) > 1 && (args[1] == "--version" || args[1] == "-v") {
		fmt.Fprintf(stdout, "voxbridge version %s\nVoice assistant audio bridge\n", Version)
		return 0
	}

	c.initializeSystems()

	// Ensure resources are cleaned up on exit
	defer func() {
		if c.journalDB != nil {
			if err := c.journalDB.Close(); err != nil {
				slog.Error("error closing journal database", "error", err)
			}
		}
	}()

	c.rootCmd.SetArgs(args[1:]) // Skip program name
	c.rootCmd.SetIn(stdin)
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)

	c.rootCmd.SetContext(contextWithCLI(c))

	if err := c.rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		return 1
	}

	return 0
}

// initializeSystems lazily initializes CLI components when actually needed
func (c *CLI) initializeSystems() {
	if c.configManager == nil {
		c.configManager = config.NewConfigManager()
	}
	if c.backendFactory == nil {
		c.backendFactory = audio.NewBackendFactory()
	}
	if c.terminalDetector == nil {
		c.terminalDetector = &DefaultTerminalDetector{}
	}
}

package audio

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// IsWSL checks if the current environment is Windows Subsystem for Linux
func IsWSL() bool {
	return detectWSLFromData(readProcVersion(), os.Getenv("WSL_DISTRO_NAME"))
}

// detectWSLFromData checks for WSL indicators in the provided data (for testing)
func detectWSLFromData(procVersion, wslEnv string) bool {
	if wslEnv != "" {
		slog.Debug("WSL detected via environment variable", "distro", wslEnv)
		return true
	}

	procLower := strings.ToLower(procVersion)
	if strings.Contains(procLower, "microsoft") || strings.Contains(procLower, "wsl") {
		slog.Debug("WSL detected via /proc/version")
		return true
	}

	return false
}

// readProcVersion reads /proc/version file content
func readProcVersion() string {
	content, err := os.ReadFile("/proc/version")
	if err != nil {
		slog.Debug("failed to read /proc/version", "error", err)
		return ""
	}
	return string(content)
}

// CommandExists checks if a command is available in the system's PATH
func CommandExists(command string) bool {
	if command == "" {
		return false
	}
	_, err := exec.LookPath(command)
	return err == nil
}

// DetectOptimalBackend determines the best rendering backend for the
// current system.
func DetectOptimalBackend() string {
	return detectOptimalBackendWithChecker(IsWSL(), CommandExists)
}

// detectOptimalBackendWithChecker allows dependency injection for testing
func detectOptimalBackendWithChecker(isWSL bool, commandChecker func(string) bool) string {
	if isWSL {
		// In WSL, prefer system commands to avoid malgo crackling issues
		if cmd := preferredSystemCommandWithChecker(commandChecker); cmd != "" {
			slog.Debug("system command selected for WSL", "command", cmd)
			return "system_command"
		}

		slog.Warn("no system audio commands found in WSL, falling back to malgo")
		return "malgo"
	}

	// On native Linux/macOS, prefer malgo for better control
	return "malgo"
}

// preferredSystemCommand finds the best available system audio command
func preferredSystemCommand() string {
	return preferredSystemCommandWithChecker(CommandExists)
}

// preferredSystemCommandWithChecker allows dependency injection for testing
func preferredSystemCommandWithChecker(commandChecker func(string) bool) string {
	// Priority order: PulseAudio, FFmpeg, ALSA, macOS built-in
	candidates := []string{"paplay", "ffplay", "aplay", "afplay"}

	for _, cmd := range candidates {
		if commandChecker(cmd) {
			return cmd
		}
	}
	return ""
}

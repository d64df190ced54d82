package audio

import (
	"errors"
	"fmt"
	"log/slog"
)

// Factory errors
var (
	ErrInvalidBackendType    = errors.New("invalid backend type")
	ErrBackendCreationFailed = errors.New("backend creation failed")
)

// BackendFactory creates Backend instances based on configuration
type BackendFactory interface {
	CreateBackend(backendType string) (Backend, error)
	SupportedBackends() []string
	IsValidBackendType(backendType string) bool
}

// DefaultBackendFactory implements BackendFactory with platform detection
type DefaultBackendFactory struct {
	isWSLFunc     func() bool
	commandExists func(string) bool
}

var _ BackendFactory = (*DefaultBackendFactory)(nil)

// NewBackendFactory creates a factory with real platform detection
func NewBackendFactory() *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     IsWSL,
		commandExists: CommandExists,
	}
}

// NewBackendFactoryWithDependencies creates a factory with injected
// dependencies for testing
func NewBackendFactoryWithDependencies(isWSLFunc func() bool, commandExists func(string) bool) *DefaultBackendFactory {
	return &DefaultBackendFactory{
		isWSLFunc:     isWSLFunc,
		commandExists: commandExists,
	}
}

// CreateBackend creates a Backend instance of the specified type
func (f *DefaultBackendFactory) CreateBackend(backendType string) (Backend, error) {
	if backendType == "" {
		backendType = "auto"
	}

	slog.Debug("creating audio backend", "type", backendType)

	switch backendType {
	case "auto":
		return f.createAutoBackend()
	case "system_command":
		return f.createSystemCommandBackend()
	case "malgo":
		return NewMalgoBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidBackendType, backendType)
	}
}

// createAutoBackend picks the backend the platform detection recommends
func (f *DefaultBackendFactory) createAutoBackend() (Backend, error) {
	detected := detectOptimalBackendWithChecker(f.isWSLFunc(), f.commandExists)
	slog.Debug("auto backend detection", "detected", detected)

	if detected == "system_command" {
		return f.createSystemCommandBackend()
	}
	return NewMalgoBackend(), nil
}

// createSystemCommandBackend requires an available system audio command
func (f *DefaultBackendFactory) createSystemCommandBackend() (Backend, error) {
	command := preferredSystemCommandWithChecker(f.commandExists)
	if command == "" {
		return nil, fmt.Errorf("%w: no system audio command available", ErrBackendCreationFailed)
	}
	return NewSystemCommandBackend(command), nil
}

// SupportedBackends returns a list of all supported backend types
func (f *DefaultBackendFactory) SupportedBackends() []string {
	return []string{"auto", "system_command", "malgo"}
}

// IsValidBackendType checks whether the given type is supported
func (f *DefaultBackendFactory) IsValidBackendType(backendType string) bool {
	for _, supported := range f.SupportedBackends() {
		if backendType == supported {
			return true
		}
	}
	return false
}

package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	commandKey contextKey = "command"
	versionKey contextKey = "version"
)

// WithRunID annotates context with the invocation's run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCommand annotates context with the CLI command name.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(commandKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithVersion annotates context with the product version being processed.
func WithVersion(ctx context.Context, version string) context.Context {
	if version == "" {
		return ctx
	}
	return context.WithValue(ctx, versionKey, version)
}

// VersionFromContext returns the product version if present.
func VersionFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(versionKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

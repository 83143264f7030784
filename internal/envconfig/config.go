// Package envconfig reads graphbind settings from the environment.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Var returns the trimmed value of an environment variable, with surrounding
// quotes removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// LibraryPath returns the ONNX Runtime shared library path.
// Configurable via ONNXRUNTIME_LIB_PATH. Empty means not configured.
func LibraryPath() string {
	return Var("ONNXRUNTIME_LIB_PATH")
}

// Backend returns the default backend name used when a BackendConfig leaves
// it empty. Configurable via GRAPHBIND_BACKEND.
func Backend() string {
	return Var("GRAPHBIND_BACKEND")
}

// APIVersion returns the ORT C API version to request.
// Configurable via GRAPHBIND_ORT_API_VERSION. Default: 23.
func APIVersion() uint32 {
	const defaultVersion = 23
	s := Var("GRAPHBIND_ORT_API_VERSION")
	if s == "" {
		return defaultVersion
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		slog.Warn("invalid ORT API version, using default", "value", s, "default", defaultVersion)
		return defaultVersion
	}
	return uint32(n)
}

// LogLevel returns the log level. GRAPHBIND_DEBUG=1 (or any true value)
// enables debug logging.
func LogLevel() slog.Level {
	s := Var("GRAPHBIND_DEBUG")
	if s == "" {
		return slog.LevelInfo
	}
	if b, err := strconv.ParseBool(s); err == nil && b {
		return slog.LevelDebug
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

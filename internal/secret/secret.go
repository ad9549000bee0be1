// Package secret resolves credentials the way the bot's container
// deployment provides them: a docker secret file first, then an
// environment variable.
package secret

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// secretsDir is where docker mounts secrets. Replaceable for testing.
var secretsDir = "/var/run/secrets"

// Lookup returns the value for name, preferring the docker secret file
// (lowercase name) over the environment variable (uppercase name).
// Returns "" when neither source has it.
func Lookup(name string) string {
	path := filepath.Join(secretsDir, strings.ToLower(name))
	if data, err := os.ReadFile(path); err == nil {
		slog.Info("credential resolved from docker secret",
			"component", "secret",
			"operation", "lookup",
			"name", name,
		)
		return strings.TrimSpace(string(data))
	}

	if value := os.Getenv(strings.ToUpper(name)); value != "" {
		slog.Info("credential resolved from environment",
			"component", "secret",
			"operation", "lookup",
			"name", name,
		)
		return value
	}

	slog.Warn("credential not found",
		"component", "secret",
		"operation", "lookup",
		"name", name,
	)
	return ""
}

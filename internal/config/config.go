// Package config loads the bot's YAML configuration. Configuration
// problems are never fatal: a broken or missing file degrades to
// defaults with an empty task list, so the bot still answers chat.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultPollTimeout = 30

// DokuWiki points the /search command at a wiki instance. An empty URL
// disables search.
type DokuWiki struct {
	URL string `yaml:"url"`
}

// Task is one scheduled entry. Cron fields left empty mean "any".
type Task struct {
	Name    string `yaml:"name"`
	Minute  string `yaml:"minute"`
	Hour    string `yaml:"hour"`
	Day     string `yaml:"day"`
	Month   string `yaml:"month"`
	Weekday string `yaml:"weekday"`
	Type    string `yaml:"type"`
	Message string `yaml:"message"`
}

// Config holds the full application configuration.
type Config struct {
	BotName            string   `yaml:"bot_name"`
	PollTimeoutSeconds int      `yaml:"poll_timeout_seconds"`
	DokuWiki           DokuWiki `yaml:"dokuwiki"`
	ScheduledTasks     []Task   `yaml:"scheduled_tasks"`
}

// Default returns the configuration used when no file is available.
func Default() *Config {
	return &Config{
		BotName:            "exia",
		PollTimeoutSeconds: defaultPollTimeout,
	}
}

// Load reads the YAML file at path. It always returns a usable Config:
// read or schema errors are logged and yield Default().
func Load(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config unavailable, using defaults",
			"component", "config",
			"operation", "load",
			"path", path,
			"error", err,
		)
		return Default()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("config malformed, using defaults",
			"component", "config",
			"operation", "load",
			"path", path,
			"error", err,
		)
		return Default()
	}
	if cfg.PollTimeoutSeconds <= 0 {
		cfg.PollTimeoutSeconds = defaultPollTimeout
	}
	if err := validateTasks(cfg.ScheduledTasks); err != nil {
		slog.Warn("scheduled tasks invalid, dropping all",
			"component", "config",
			"operation", "load",
			"error", err,
		)
		cfg.ScheduledTasks = nil
	}

	slog.Info("config loaded",
		"component", "config",
		"operation", "load",
		"path", path,
		"tasks", len(cfg.ScheduledTasks),
	)
	return cfg
}

// validateTasks rejects task lists the scheduler cannot key reliably.
func validateTasks(tasks []Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, task := range tasks {
		if task.Name == "" {
			return fmt.Errorf("config: task %d has no name", i)
		}
		if seen[task.Name] {
			return fmt.Errorf("config: duplicate task name %q", task.Name)
		}
		seen[task.Name] = true
	}
	return nil
}

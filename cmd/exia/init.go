package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/daisukixci/telegram-bot/internal/platform"
)

const defaultConfigPath = "config.yaml"

// Replaceable for testing error paths.
var atomicWrite = platform.AtomicWrite

const defaultConfigYAML = `bot_name: exia

# Long-poll wait against the Telegram backend, in seconds.
poll_timeout_seconds: 30

# Point /search at a DokuWiki instance. Leave the URL empty to answer
# searches with "no engine available".
dokuwiki:
  url: ""

# Scheduled messages, one entry per rule. Cron fields left out mean
# "any". Each rule delivers at most once per matching minute.
scheduled_tasks: []
#  - name: standup
#    minute: "0"
#    hour: "9"
#    weekday: "1-5"
#    type: message
#    message: "Stand-up in 15 minutes"
`

// detectExisting checks whether instance files are already present.
func detectExisting(configPath, vaultPath string) []string {
	var found []string
	if _, err := os.Stat(configPath); err == nil {
		found = append(found, configPath)
	}
	if _, err := os.Stat(vaultPath); err == nil {
		found = append(found, vaultPath)
	}
	return found
}

// readPrompt prints prompt to w and reads one trimmed line.
func readPrompt(scanner *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("init: reading input: %w", err)
		}
		return "", fmt.Errorf("init: reading input: unexpected end of input")
	}
	val := strings.TrimSpace(scanner.Text())
	if val == "" {
		return "", fmt.Errorf("init: required value not provided")
	}
	return val, nil
}

// runInit writes the default config and creates the vault with the
// Telegram token stored in it.
func runInit(stdin io.Reader, stdout, stderr io.Writer) int {
	slog.Info("wizard started", "component", "init", "operation", "start")

	scanner := bufio.NewScanner(stdin)

	existing := detectExisting(defaultConfigPath, defaultVaultPath)
	if len(existing) > 0 {
		slog.Warn("existing instance detected",
			"component", "init",
			"operation", "overwrite_check",
			"files", strings.Join(existing, ", "),
		)
		fmt.Fprintln(stderr, "Warning: existing exia instance detected.")
		fmt.Fprintf(stderr, "  Found: %s\n", strings.Join(existing, ", "))
		fmt.Fprint(stderr, "Overwrite? This will destroy existing data. (y/N): ")
		if !scanner.Scan() {
			fmt.Fprintln(stderr, "Error: unexpected end of input")
			return 1
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer != "y" && answer != "Y" {
			slog.Info("overwrite declined", "component", "init", "operation", "overwrite_check")
			fmt.Fprintln(stderr, "Aborted.")
			return 1
		}
		slog.Info("overwrite confirmed", "component", "init", "operation", "overwrite_check")
	}

	telegramToken, err := readPrompt(scanner, "Telegram bot token: ", stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	passphrase, err := readPrompt(scanner, "Vault passphrase: ", stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	confirm, err := readPrompt(scanner, "Confirm passphrase: ", stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if passphrase != confirm {
		fmt.Fprintln(stderr, "Error: passphrases do not match")
		return 1
	}

	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Creating exia instance...")

	v, err := vaultCreate(defaultVaultPath, passphrase)
	if err != nil {
		fmt.Fprintf(stderr, "Error: init: create vault: %v\n", err)
		return 1
	}
	if err := v.Set("telegram_bot_token", telegramToken); err != nil {
		os.Remove(defaultVaultPath)
		fmt.Fprintf(stderr, "Error: init: store telegram token: %v\n", err)
		return 1
	}
	slog.Info("vault created", "component", "init", "operation", "vault_create")
	fmt.Fprintln(stderr, "  ✓ Vault created with the Telegram token")

	if err := atomicWrite(defaultConfigPath, []byte(defaultConfigYAML), 0644); err != nil {
		os.Remove(defaultVaultPath)
		fmt.Fprintf(stderr, "Error: init: write config: %v\n", err)
		return 1
	}
	slog.Info("config written", "component", "init", "operation", "config_write", "path", defaultConfigPath)
	fmt.Fprintln(stderr, "  ✓ Default configuration written")

	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "exia is ready! Run 'exia run' to start.")
	return 0
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/daisukixci/telegram-bot/internal/bot"
	"github.com/daisukixci/telegram-bot/internal/config"
	"github.com/daisukixci/telegram-bot/internal/schedule"
	"github.com/daisukixci/telegram-bot/internal/vault"
)

func TestRulesFromTasks(t *testing.T) {
	tasks := []config.Task{
		{Name: "standup", Minute: "0", Hour: "9", Weekday: "1-5", Type: "message", Message: "Stand-up"},
		{Name: "mystery", Type: "webhook", Message: "ignored"},
		{Name: "lunch", Minute: "30", Hour: "12", Type: "message", Message: "Lunch!"},
	}

	rules := rulesFromTasks(tasks)

	if len(rules) != 2 {
		t.Fatalf("rules = %d, want 2 (unknown type skipped)", len(rules))
	}
	want := schedule.Rule{
		Name: "standup", Minute: "0", Hour: "9", Weekday: "1-5",
		Kind: schedule.KindMessage, Payload: "Stand-up",
	}
	if rules[0] != want {
		t.Errorf("rules[0] = %+v, want %+v", rules[0], want)
	}
	if rules[1].Name != "lunch" || rules[1].Payload != "Lunch!" {
		t.Errorf("rules[1] = %+v", rules[1])
	}
}

func TestResolveCredentials_secretFallback(t *testing.T) {
	chdir(t, t.TempDir())

	orig := secretLookup
	t.Cleanup(func() { secretLookup = orig })
	secretLookup = func(name string) string {
		switch name {
		case "telegram_api_key":
			return "tok-from-secret"
		case "dokuwiki_user":
			return "wiki-user"
		}
		return ""
	}

	scanner := bufio.NewScanner(strings.NewReader(""))
	creds, err := resolveCredentials(scanner, io.Discard, defaultVaultPath)
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if creds.telegramToken != "tok-from-secret" {
		t.Errorf("token = %q", creds.telegramToken)
	}
	if creds.dokuwikiUser != "wiki-user" || creds.dokuwikiPassword != "" {
		t.Errorf("wiki creds = %q/%q", creds.dokuwikiUser, creds.dokuwikiPassword)
	}
}

func TestResolveCredentials_noSourceAtAll(t *testing.T) {
	chdir(t, t.TempDir())

	orig := secretLookup
	t.Cleanup(func() { secretLookup = orig })
	secretLookup = func(string) string { return "" }

	scanner := bufio.NewScanner(strings.NewReader(""))
	if _, err := resolveCredentials(scanner, io.Discard, defaultVaultPath); err == nil {
		t.Fatal("expected error when no credential source exists")
	}
}

func TestResolveCredentials_vault(t *testing.T) {
	chdir(t, t.TempDir())
	v, err := vault.Create(defaultVaultPath, "pw")
	if err != nil {
		t.Fatalf("create vault: %v", err)
	}
	for name, val := range map[string]string{
		"telegram_bot_token": "tok-from-vault",
		"dokuwiki_user":      "u",
		"dokuwiki_password":  "p",
	} {
		if err := v.Set(name, val); err != nil {
			t.Fatalf("set %q: %v", name, err)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader("pw\n"))
	creds, err := resolveCredentials(scanner, io.Discard, defaultVaultPath)
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if creds.telegramToken != "tok-from-vault" || creds.dokuwikiUser != "u" || creds.dokuwikiPassword != "p" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestResolveCredentials_vaultWrongPassphrase(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := vault.Create(defaultVaultPath, "right"); err != nil {
		t.Fatalf("create vault: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader("wrong\n"))
	_, err := resolveCredentials(scanner, io.Discard, defaultVaultPath)
	if err == nil || !strings.Contains(err.Error(), "wrong passphrase") {
		t.Fatalf("err = %v, want wrong passphrase", err)
	}
}

func TestResolveCredentials_vaultMissingToken(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := vault.Create(defaultVaultPath, "pw"); err != nil {
		t.Fatalf("create vault: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader("pw\n"))
	if _, err := resolveCredentials(scanner, io.Discard, defaultVaultPath); err == nil {
		t.Fatal("expected error for vault without a telegram token")
	}
}

func TestResolveCredentials_emptyPassphrase(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := vault.Create(defaultVaultPath, "pw"); err != nil {
		t.Fatalf("create vault: %v", err)
	}

	scanner := bufio.NewScanner(strings.NewReader("\n"))
	if _, err := resolveCredentials(scanner, io.Discard, defaultVaultPath); err == nil {
		t.Fatal("expected error for empty passphrase")
	}
}

// swapRunStubs replaces the wiring seams so runBot never touches the
// network, and restores them afterwards.
func swapRunStubs(t *testing.T, loopErr error) {
	t.Helper()

	origSecret := secretLookup
	origSignal := signalContext
	origLoop := runLoop
	t.Cleanup(func() {
		secretLookup = origSecret
		signalContext = origSignal
		runLoop = origLoop
	})

	secretLookup = func(name string) string {
		if name == "telegram_api_key" {
			return "tok"
		}
		return ""
	}
	signalContext = func() (context.Context, context.CancelFunc) {
		return context.WithCancel(context.Background())
	}
	runLoop = func(ctx context.Context, b *bot.Bot) error { return loopErr }
}

func TestRunBot_cleanExit(t *testing.T) {
	chdir(t, t.TempDir())
	swapRunStubs(t, nil)

	var stderr bytes.Buffer
	code := runBot(strings.NewReader(""), io.Discard, &stderr, defaultConfigPath, defaultVaultPath)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "Bot stopped.") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunBot_loopError(t *testing.T) {
	chdir(t, t.TempDir())
	swapRunStubs(t, errors.New("loop blew up"))

	var stderr bytes.Buffer
	code := runBot(strings.NewReader(""), io.Discard, &stderr, defaultConfigPath, defaultVaultPath)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "loop blew up") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestRunBot_noCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	swapRunStubs(t, nil)
	secretLookup = func(string) string { return "" }

	var stderr bytes.Buffer
	code := runBot(strings.NewReader(""), io.Discard, &stderr, defaultConfigPath, defaultVaultPath)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

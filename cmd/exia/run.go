package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/daisukixci/telegram-bot/internal/bot"
	"github.com/daisukixci/telegram-bot/internal/config"
	"github.com/daisukixci/telegram-bot/internal/dialogue"
	"github.com/daisukixci/telegram-bot/internal/dokuwiki"
	"github.com/daisukixci/telegram-bot/internal/schedule"
	"github.com/daisukixci/telegram-bot/internal/secret"
	"github.com/daisukixci/telegram-bot/internal/telegram"
)

// Replaceable for testing.
var (
	configLoad    = config.Load
	secretLookup  = secret.Lookup
	signalContext = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	}
	runLoop = func(ctx context.Context, b *bot.Bot) error { return b.Run(ctx) }
)

// credentials holds everything resolved before wiring.
type credentials struct {
	telegramToken    string
	dokuwikiUser     string
	dokuwikiPassword string
}

// resolveCredentials prefers the vault when one exists at vaultPath and
// falls back to docker secrets with environment override.
func resolveCredentials(scanner *bufio.Scanner, stderr io.Writer, vaultPath string) (credentials, error) {
	if _, err := os.Stat(vaultPath); err == nil {
		fmt.Fprint(stderr, "Vault passphrase: ")
		scanner.Scan()
		passphrase := strings.TrimSpace(scanner.Text())
		if passphrase == "" {
			return credentials{}, errors.New("run: passphrase cannot be empty")
		}
		v, err := vaultUnlock(vaultPath, passphrase)
		if err != nil {
			return credentials{}, fmt.Errorf("run: %s", vaultUserError(err))
		}
		var creds credentials
		creds.telegramToken, err = v.Get("telegram_bot_token")
		if err != nil {
			return credentials{}, fmt.Errorf("run: telegram token missing from vault: %w", err)
		}
		// Wiki credentials are optional; searching works anonymously.
		creds.dokuwikiUser, _ = v.Get("dokuwiki_user")
		creds.dokuwikiPassword, _ = v.Get("dokuwiki_password")
		return creds, nil
	}

	token := secretLookup("telegram_api_key")
	if token == "" {
		return credentials{}, errors.New("run: no vault found and no telegram_api_key secret or TELEGRAM_API_KEY environment variable")
	}
	return credentials{
		telegramToken:    token,
		dokuwikiUser:     secretLookup("dokuwiki_user"),
		dokuwikiPassword: secretLookup("dokuwiki_password"),
	}, nil
}

// rulesFromTasks maps configured tasks onto schedule rules. Tasks with
// an unknown type are logged and skipped.
func rulesFromTasks(tasks []config.Task) []schedule.Rule {
	rules := make([]schedule.Rule, 0, len(tasks))
	for _, task := range tasks {
		if task.Type != string(schedule.KindMessage) {
			slog.Warn("skipping task of unknown type",
				"component", "cmd",
				"operation", "run",
				"task", task.Name,
				"type", task.Type,
			)
			continue
		}
		rules = append(rules, schedule.Rule{
			Name:    task.Name,
			Minute:  task.Minute,
			Hour:    task.Hour,
			Day:     task.Day,
			Month:   task.Month,
			Weekday: task.Weekday,
			Kind:    schedule.KindMessage,
			Payload: task.Message,
		})
	}
	return rules
}

func runBot(stdin io.Reader, stdout, stderr io.Writer, configPath, vaultPath string) int {
	cfg := configLoad(configPath)

	scanner := bufio.NewScanner(stdin)
	creds, err := resolveCredentials(scanner, stderr, vaultPath)
	if err != nil {
		slog.Error("credential resolution failed",
			"component", "cmd",
			"operation", "run",
			"error", err,
		)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	transport := telegram.NewClient(creds.telegramToken)
	responder := dialogue.NewResponder(
		dialogue.DefaultTables(),
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	botCfg := bot.Config{
		Transport:   transport,
		Responder:   responder,
		Rules:       rulesFromTasks(cfg.ScheduledTasks),
		PollTimeout: cfg.PollTimeoutSeconds,
	}
	if cfg.DokuWiki.URL != "" {
		botCfg.Search = dokuwiki.NewClient(cfg.DokuWiki.URL, creds.dokuwikiUser, creds.dokuwikiPassword)
		slog.Info("search engine configured",
			"component", "cmd",
			"operation", "run",
			"url", cfg.DokuWiki.URL,
		)
	}

	ctx, stop := signalContext()
	defer stop()

	slog.Info("bot started",
		"component", "cmd",
		"operation", "run",
		"bot", cfg.BotName,
		"rules", len(botCfg.Rules),
	)
	fmt.Fprintln(stderr, "Bot started. Press Ctrl+C to stop.")
	if err := runLoop(ctx, bot.New(botCfg)); err != nil {
		slog.Error("bot exited with error",
			"component", "cmd",
			"operation", "run",
			"error", err,
		)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	slog.Info("bot stopped", "component", "cmd", "operation", "run")
	fmt.Fprintln(stderr, "Bot stopped.")
	return 0
}

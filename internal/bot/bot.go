// Package bot runs the session loop: it relays due scheduled messages,
// long-polls for updates, classifies each message and issues at most
// one transport call per message. Everything here is single-threaded;
// the offset and the schedule state are owned by the loop alone.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/daisukixci/telegram-bot/internal/router"
	"github.com/daisukixci/telegram-bot/internal/schedule"
	"github.com/daisukixci/telegram-bot/internal/telegram"
)

// Transport is the messaging-backend boundary.
type Transport interface {
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendPoll(ctx context.Context, chatID int64, question string, options []string, multiSelect bool) error
}

// SearchProvider answers search queries with result links.
type SearchProvider interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Responder produces a casual reply for unrouted text, or "" for none.
type Responder interface {
	Respond(text string) string
}

// Search reply strings, matching the bot's established chat voice.
const (
	searchReplyPrefix = "Here the results I found:\n"
	noResultsReply    = "No results, sorry"
	noEngineReply     = "No search engine available"
)

// Config holds the session loop dependencies and tuning.
type Config struct {
	Transport Transport
	Responder Responder

	// Search is optional; without it /search answers with a fixed
	// "no engine" reply.
	Search SearchProvider

	Rules []schedule.Rule

	// PollTimeout is the long-poll wait in seconds (default 30).
	PollTimeout int

	// Sleep is the pause between iterations (default 1s). It is a
	// cooperative rate limit against the backend, not a correctness
	// requirement.
	Sleep time.Duration
}

// Bot drives the session loop.
type Bot struct {
	transport   Transport
	responder   Responder
	search      SearchProvider
	rules       []schedule.Rule
	state       schedule.State
	pollTimeout int
	sleep       time.Duration

	// offset and chatID live for the process only; scheduled messages
	// go to the chat most recently heard from.
	offset int64
	chatID int64

	// Replaceable for testing.
	now func() time.Time
}

// New creates a Bot from cfg, applying defaults for unset tuning.
func New(cfg Config) *Bot {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30
	}
	if cfg.Sleep <= 0 {
		cfg.Sleep = time.Second
	}
	return &Bot{
		transport:   cfg.Transport,
		responder:   cfg.Responder,
		search:      cfg.Search,
		rules:       cfg.Rules,
		state:       make(schedule.State),
		pollTimeout: cfg.PollTimeout,
		sleep:       cfg.Sleep,
		now:         time.Now,
	}
}

// Run executes the session loop until ctx is cancelled. Failures
// inside an iteration are logged and absorbed; only cancellation ends
// the loop.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("session loop started",
		"component", "bot",
		"operation", "run",
		"rules", len(b.rules),
	)
	for {
		select {
		case <-ctx.Done():
			slog.Info("session loop stopped", "component", "bot", "operation", "run")
			return nil
		default:
		}

		b.iterate(ctx)

		timer := time.NewTimer(b.sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("session loop stopped", "component", "bot", "operation", "run")
			return nil
		case <-timer.C:
		}
	}
}

// iterate runs one cycle: due schedules first, then one update batch.
// Scheduled messages for this minute go out before any inbound message
// from the same cycle is answered.
func (b *Bot) iterate(ctx context.Context) {
	if b.chatID != 0 {
		for _, payload := range schedule.Evaluate(b.now(), b.rules, b.state) {
			if err := b.transport.SendMessage(ctx, b.chatID, payload); err != nil {
				slog.Error("scheduled message send failed",
					"component", "bot",
					"operation", "schedule",
					"chat_id", b.chatID,
					"error", err,
				)
			}
		}
	}

	updates, err := b.transport.GetUpdates(ctx, b.offset, b.pollTimeout)
	if err != nil {
		// Treated as "no updates this cycle"; the next iteration retries.
		slog.Error("update fetch failed",
			"component", "bot",
			"operation", "fetch",
			"offset", b.offset,
			"error", err,
		)
		return
	}

	for _, update := range updates {
		if update.Message != nil && update.Message.Text != "" {
			b.chatID = update.Message.Chat.ID
			b.handle(ctx, update.Message.Chat.ID, update.Message.Text)
		}
		b.offset = Advance(b.offset, update.UpdateID)
	}
}

// handle translates one message into at most one transport call.
func (b *Bot) handle(ctx context.Context, chatID int64, text string) {
	slog.Info("processing message",
		"component", "bot",
		"operation", "handle",
		"chat_id", chatID,
	)

	intent := router.Route(text)
	switch intent.Kind {
	case router.Reply:
		b.send(ctx, chatID, intent.Text)
	case router.CreatePoll:
		if err := b.transport.SendPoll(ctx, chatID, intent.Question, intent.Options, intent.MultiSelect); err != nil {
			slog.Error("poll send failed",
				"component", "bot",
				"operation", "handle",
				"chat_id", chatID,
				"error", err,
			)
		}
	case router.Search:
		b.send(ctx, chatID, b.searchReply(ctx, intent.Query))
	case router.None:
		if reply := b.responder.Respond(text); reply != "" {
			b.send(ctx, chatID, reply)
		}
	}
}

// send delivers text, logging failures. Lost replies are not recovered.
func (b *Bot) send(ctx context.Context, chatID int64, text string) {
	if err := b.transport.SendMessage(ctx, chatID, text); err != nil {
		slog.Error("message send failed",
			"component", "bot",
			"operation", "send",
			"chat_id", chatID,
			"error", err,
		)
	}
}

// searchReply resolves a search query into the reply text.
func (b *Bot) searchReply(ctx context.Context, query string) string {
	if b.search == nil {
		return searchReplyPrefix + noEngineReply
	}
	links, err := b.search.Search(ctx, query)
	if err != nil {
		slog.Error("search failed",
			"component", "bot",
			"operation", "search",
			"query", query,
			"error", err,
		)
		return searchReplyPrefix + noResultsReply
	}
	if len(links) == 0 {
		return searchReplyPrefix + noResultsReply
	}
	return searchReplyPrefix + strings.Join(links, "\n")
}

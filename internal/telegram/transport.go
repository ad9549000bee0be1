package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

// defaultPollOptions replaces a poll's option list when fewer than two
// options are supplied.
var defaultPollOptions = []string{"Yes", "No"}

// GetUpdates long-polls for updates past offset, waiting up to timeout
// seconds server-side. An unparseable body is not an error: it is
// logged and yields an empty batch, so one bad response cannot stall
// the caller's loop.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	params := url.Values{}
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}
	params.Set("timeout", strconv.Itoa(timeout))

	// Give the HTTP layer a margin past the server-side long-poll wait.
	pollCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second+5*time.Second)
	defer cancel()

	body, err := c.invoke(pollCtx, "getUpdates", params)
	if err != nil {
		return nil, fmt.Errorf("telegram: get updates: %w", err)
	}

	var resp response[[]Update]
	if err := json.Unmarshal(body, &resp); err != nil {
		slog.Warn("discarding unparseable update batch",
			"component", "telegram",
			"operation", "getUpdates",
			"error", err,
		)
		return nil, nil
	}
	if !resp.Ok {
		return nil, fmt.Errorf("telegram: get updates: %s", resp.Description)
	}
	return resp.Result, nil
}

// SendMessage sends text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)

	body, err := c.invoke(ctx, "sendMessage", params)
	if err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}

	var resp response[Message]
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("telegram: send message: unmarshal: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram: send message: %s", resp.Description)
	}

	slog.Debug("message sent",
		"component", "telegram",
		"operation", "sendMessage",
		"chat_id", chatID,
	)
	return nil
}

// SendPoll creates a poll. Options are rendered as an ordered JSON
// array; fewer than two options substitutes the Yes/No pair.
func (c *Client) SendPoll(ctx context.Context, chatID int64, question string, options []string, multiSelect bool) error {
	if len(options) <= 1 {
		slog.Debug("substituting default poll options",
			"component", "telegram",
			"operation", "sendPoll",
			"given", len(options),
		)
		options = defaultPollOptions
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("telegram: send poll: marshal options: %w", err)
	}

	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("question", question)
	params.Set("options", string(encoded))
	params.Set("is_anonymous", "false")
	params.Set("allows_multiple_answers", strconv.FormatBool(multiSelect))

	body, err := c.invoke(ctx, "sendPoll", params)
	if err != nil {
		return fmt.Errorf("telegram: send poll: %w", err)
	}

	var resp response[Message]
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("telegram: send poll: unmarshal: %w", err)
	}
	if !resp.Ok {
		return fmt.Errorf("telegram: send poll: %s", resp.Description)
	}

	slog.Debug("poll sent",
		"component", "telegram",
		"operation", "sendPoll",
		"chat_id", chatID,
		"options", len(options),
	)
	return nil
}

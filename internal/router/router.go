// Package router classifies inbound chat text into an Intent. It is a
// pure function over the text: no I/O, no state.
package router

import "strings"

// Kind identifies which Intent variant is active.
type Kind int

const (
	// None means no actionable intent; the caller should fall through
	// to the reactive responder.
	None Kind = iota
	Reply
	CreatePoll
	Search
)

// Intent is the structured result of classifying one message.
// Exactly one variant is active, selected by Kind.
type Intent struct {
	Kind Kind

	// Reply
	Text string

	// CreatePoll
	Question    string
	Options     []string
	MultiSelect bool

	// Search
	Query string
}

// User-facing reply strings.
const (
	WelcomeText  = "Hi, I am Exia. How can I help you?\nUse /? to get more information"
	GreetingText = "Hello, You"
	HelpText     = "Let me help you:\n" +
		"/start\n" +
		"/hi\n" +
		"/mpoll,<question>,<answer1>,<answers2>,...\n" +
		"/poll,<question>,<answer1>,<answers2>,...\n" +
		"/search,<search>"
)

// Route maps text to an Intent. Checks run in a fixed priority order:
// the greeting wins over every command prefix, so "hi" embedded in a
// command line is still intercepted.
func Route(text string) Intent {
	lower := strings.ToLower(text)

	if strings.Contains(lower, "hi") {
		return Intent{Kind: Reply, Text: GreetingText}
	}

	switch {
	case strings.HasPrefix(lower, "/start"):
		return Intent{Kind: Reply, Text: WelcomeText}
	case strings.HasPrefix(lower, "/?"):
		return Intent{Kind: Reply, Text: HelpText}
	case strings.HasPrefix(lower, "/mpoll"):
		return pollIntent(text, true)
	case strings.HasPrefix(lower, "/poll"):
		return pollIntent(text, false)
	case strings.HasPrefix(lower, "/search"):
		return searchIntent(text)
	}

	return Intent{}
}

// pollIntent parses "/poll,<question>,<opt>,..." command lines. The
// separator is a literal comma with no escaping, so a comma inside an
// option is indistinguishable from a field separator.
func pollIntent(text string, multiSelect bool) Intent {
	fields := strings.Split(text, ",")
	if len(fields) < 2 {
		return Intent{Kind: Reply, Text: HelpText}
	}
	return Intent{
		Kind:        CreatePoll,
		Question:    fields[1],
		Options:     fields[2:],
		MultiSelect: multiSelect,
	}
}

// searchIntent parses "/search,<terms>,..." command lines; the terms
// are rejoined with spaces.
func searchIntent(text string) Intent {
	fields := strings.Split(text, ",")
	if len(fields) < 2 {
		return Intent{Kind: Reply, Text: HelpText}
	}
	return Intent{Kind: Search, Query: strings.Join(fields[1:], " ")}
}

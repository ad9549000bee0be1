// Package dialogue produces casual replies for free text the command
// router did not claim. The behavior is deliberately probabilistic;
// randomness is injected so tests can pin every branch.
package dialogue

import "strings"

// Rand supplies uniform random integers in [0,n). *math/rand.Rand
// satisfies it.
type Rand interface {
	Intn(n int) int
}

// Emoji replies are raw code points so Telegram renders them natively.
const (
	emojiGrinning        = "\U0001F600"
	emojiJoy             = "\U0001F602"
	emojiRollingLaughing = "\U0001F923"
	emojiWink            = "\U0001F609"
	emojiZanyFace        = "\U0001F92A"
)

// chattiness is the percentage of otherwise-silent messages that get a
// random proposal anyway.
const chattiness = 5

// Tables holds the fixed reply sets the responder draws from. Build
// once and pass by value; nothing mutates it.
type Tables struct {
	// Trigger is the bot's own name; seeing it yields TriggerReply.
	Trigger      string
	TriggerReply string

	ArticleOpinion []string
	PartyOpinion   []string

	// LaughterMarkers are substrings that count as laughing;
	// LaughterReplies is the emoji set answered with.
	LaughterMarkers []string
	LaughterReplies []string

	RandomProposal []string
}

// DefaultTables returns the stock reply sets.
func DefaultTables() Tables {
	return Tables{
		Trigger:      "exia",
		TriggerReply: "Let me help you: use /?",
		ArticleOpinion: []string{
			"So cool!",
			"Nice!",
			"Interesting! keep me in touch if you get more details on it",
			"Cool! but I've already read it",
		},
		PartyOpinion: []string{
			"I'm in!",
			"Party!",
			"Go! I bring the beers",
			"Let's go for a party",
		},
		LaughterMarkers: []string{"mdr", "lol", emojiGrinning, emojiJoy},
		LaughterReplies: []string{emojiGrinning, emojiJoy, emojiRollingLaughing},
		RandomProposal: []string{
			"Enjoy your day!",
			"Who is ready for a party?",
			"I'm playing CS guys! join me",
			"How are you guys?",
			"The weather is really bad!",
		},
	}
}

// Responder answers free text from its reply tables.
type Responder struct {
	tables Tables
	rng    Rand
}

// NewResponder creates a Responder over the given tables and
// randomness source.
func NewResponder(tables Tables, rng Rand) *Responder {
	return &Responder{tables: tables, rng: rng}
}

// Respond returns a casual reply for text, or "" for no reply. Checks
// run in a fixed priority order; only the final branch is random: a
// draw in [1,100] at or below the chattiness threshold yields a random
// proposal, everything else stays silent.
func (r *Responder) Respond(text string) string {
	lower := strings.ToLower(text)

	if r.tables.Trigger != "" && strings.Contains(lower, r.tables.Trigger) {
		return r.tables.TriggerReply
	}
	if strings.Contains(lower, "http") {
		return r.pick(r.tables.ArticleOpinion)
	}
	if strings.Contains(lower, "party") {
		return r.pick(r.tables.PartyOpinion)
	}
	for _, marker := range r.tables.LaughterMarkers {
		if strings.Contains(lower, marker) {
			return r.pick(r.tables.LaughterReplies)
		}
	}

	if r.rng.Intn(100)+1 <= chattiness {
		return r.pick(r.tables.RandomProposal)
	}
	return ""
}

// pick draws one entry uniformly.
func (r *Responder) pick(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[r.rng.Intn(len(set))]
}

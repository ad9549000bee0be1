// Package schedule evaluates cron-style rules with edge detection: a
// rule fires at most once per matching minute and must observe a
// non-matching minute before it may fire again. Evaluation is a pure
// function over an explicit armed-state map, so the session loop can
// call it every cycle without double-firing.
package schedule

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Kind selects what a fired rule does.
type Kind string

// KindMessage relays the rule payload as a chat message.
const KindMessage Kind = "message"

// Rule is one scheduled entry with standard five-field cron semantics.
// Empty cron fields mean "*".
type Rule struct {
	Name    string
	Minute  string
	Hour    string
	Day     string
	Month   string
	Weekday string
	Kind    Kind
	Payload string
}

// State maps rule names to their armed flag. A fresh rule starts
// not armed: it has to see one non-matching minute before its first
// fire. This is a property of the edge-detection design, kept as is.
type State map[string]bool

// Evaluate returns the payloads due at now and updates state in place.
// Rules are considered in input order. Only rules of KindMessage
// contribute payloads, but every rule's armed flag is maintained.
func Evaluate(now time.Time, rules []Rule, state State) []string {
	minute := now.Truncate(time.Minute)

	var due []string
	for _, rule := range rules {
		switch {
		case rule.matches(minute) && state[rule.Name]:
			state[rule.Name] = false
			slog.Info("scheduled rule fired",
				"component", "schedule",
				"operation", "evaluate",
				"rule", rule.Name,
			)
			if rule.Kind == KindMessage {
				due = append(due, rule.Payload)
			}
		case !rule.matches(minute):
			// Re-arm for the next matching window.
			state[rule.Name] = true
		}
	}
	return due
}

// matches reports whether t's minute satisfies the rule's cron
// pattern. Day-of-month and weekday follow the standard cron rule:
// when both are restricted, either one matching suffices.
func (r Rule) matches(t time.Time) bool {
	if !fieldMatches(r.Minute, t.Minute(), 0, 59) {
		return false
	}
	if !fieldMatches(r.Hour, t.Hour(), 0, 23) {
		return false
	}
	if !fieldMatches(r.Month, int(t.Month()), 1, 12) {
		return false
	}

	domOK := fieldMatches(r.Day, t.Day(), 1, 31)
	dowOK := weekdayMatches(r.Weekday, t.Weekday())
	if restricted(r.Day) && restricted(r.Weekday) {
		return domOK || dowOK
	}
	return domOK && dowOK
}

// restricted reports whether a cron field constrains anything.
func restricted(field string) bool {
	field = strings.TrimSpace(field)
	return field != "" && field != "*"
}

// weekdayMatches handles the 0-7 weekday field, where both 0 and 7
// mean Sunday.
func weekdayMatches(field string, day time.Weekday) bool {
	if fieldMatches(field, int(day), 0, 7) {
		return true
	}
	return day == time.Sunday && fieldMatches(field, 7, 0, 7)
}

// fieldMatches reports whether v satisfies one cron field with the
// given value range. Supported syntax: "*", single values, comma
// lists, ranges (a-b) and steps (*/n, a-b/n). An unparseable part
// never matches; it cannot fail the whole evaluation.
func fieldMatches(field string, v, lo, hi int) bool {
	field = strings.TrimSpace(field)
	if field == "" || field == "*" {
		return true
	}
	for _, part := range strings.Split(field, ",") {
		if partMatches(strings.TrimSpace(part), v, lo, hi) {
			return true
		}
	}
	return false
}

func partMatches(part string, v, lo, hi int) bool {
	step := 1
	if base, stepStr, found := strings.Cut(part, "/"); found {
		n, err := strconv.Atoi(stepStr)
		if err != nil || n <= 0 {
			return false
		}
		part, step = base, n
	}

	start, end := lo, hi
	switch {
	case part == "*":
	case strings.Contains(part, "-"):
		a, b, _ := strings.Cut(part, "-")
		var err error
		if start, err = strconv.Atoi(a); err != nil {
			return false
		}
		if end, err = strconv.Atoi(b); err != nil {
			return false
		}
	default:
		n, err := strconv.Atoi(part)
		if err != nil {
			return false
		}
		start = n
		if step == 1 {
			end = n
		}
	}

	return v >= start && v <= end && (v-start)%step == 0
}

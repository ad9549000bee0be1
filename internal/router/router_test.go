package router

import (
	"reflect"
	"testing"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{
			name: "start command",
			text: "/start",
			want: Intent{Kind: Reply, Text: WelcomeText},
		},
		{
			name: "start command uppercase",
			text: "/START",
			want: Intent{Kind: Reply, Text: WelcomeText},
		},
		{
			name: "help command",
			text: "/?",
			want: Intent{Kind: Reply, Text: HelpText},
		},
		{
			name: "greeting anywhere in text",
			text: "hi there",
			want: Intent{Kind: Reply, Text: GreetingText},
		},
		{
			name: "greeting case-insensitive",
			text: "well HI everyone",
			want: Intent{Kind: Reply, Text: GreetingText},
		},
		{
			name: "greeting embedded in a word",
			text: "this weather",
			want: Intent{Kind: Reply, Text: GreetingText},
		},
		{
			name: "greeting wins over poll command",
			text: "/poll,lunch,sushi,pizza",
			want: Intent{Kind: Reply, Text: GreetingText},
		},
		{
			name: "poll with two options",
			text: "/poll,Q,A,B",
			want: Intent{Kind: CreatePoll, Question: "Q", Options: []string{"A", "B"}},
		},
		{
			name: "poll question only",
			text: "/poll,Lunch?",
			want: Intent{Kind: CreatePoll, Question: "Lunch?", Options: []string{}},
		},
		{
			name: "poll without fields degrades to help",
			text: "/poll",
			want: Intent{Kind: Reply, Text: HelpText},
		},
		{
			name: "mpoll single option keeps multi-select flag",
			text: "/mpoll,Q,A",
			want: Intent{Kind: CreatePoll, Question: "Q", Options: []string{"A"}, MultiSelect: true},
		},
		{
			name: "mpoll without fields degrades to help",
			text: "/mpoll",
			want: Intent{Kind: Reply, Text: HelpText},
		},
		{
			name: "poll command prefix is case-insensitive",
			text: "/Poll,Q,A,B",
			want: Intent{Kind: CreatePoll, Question: "Q", Options: []string{"A", "B"}},
		},
		{
			name: "search joins terms with spaces",
			text: "/search,foo,bar",
			want: Intent{Kind: Search, Query: "foo bar"},
		},
		{
			name: "search single term",
			text: "/search,backup",
			want: Intent{Kind: Search, Query: "backup"},
		},
		{
			name: "search without terms degrades to help",
			text: "/search",
			want: Intent{Kind: Reply, Text: HelpText},
		},
		{
			name: "unknown command falls through",
			text: "/unknown",
			want: Intent{},
		},
		{
			name: "free text falls through",
			text: "what a lovely day",
			want: Intent{},
		},
		{
			name: "empty text falls through",
			text: "",
			want: Intent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Route(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRoute_OptionCasePreserved(t *testing.T) {
	got := Route("/poll,Lunch,Sushi Place,PIZZA")
	if got.Question != "Lunch" {
		t.Errorf("Question = %q, want Lunch", got.Question)
	}
	want := []string{"Sushi Place", "PIZZA"}
	if !reflect.DeepEqual(got.Options, want) {
		t.Errorf("Options = %v, want %v", got.Options, want)
	}
}

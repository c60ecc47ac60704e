// Package reply produces the assistant's canned answer for a user turn.
package reply

import (
	"fmt"
	"strings"

	"github.com/xiaot623/chatbot/internal/domain"
)

const (
	greetingReply = "Hi! I'm your AI helper. Ask me anything, and I'll do my best to assist."
	helpReply     = "You can ask me general questions. I'll store our conversation so you can come back later."
	questionLead  = "That's a great question! Here's a simple take: "
	thanksReply   = "You're welcome!"
	understoodPre = "Here's what I understood: "
	understoodSuf = "\nIf you want, I can also summarize or clarify specific parts."
)

// Turn is one prior message of the conversation.
type Turn struct {
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// Func computes a reply for the latest user text.
type Func func(userText string, history []Turn) string

// rule pairs a check on the normalized text with a reply builder that sees
// the original text.
type rule struct {
	name    string
	matches func(normalized, original string) bool
	respond func(original string) string
}

var rules = []rule{
	{
		name:    "greeting",
		matches: containsAny("hello", "hi", "hey"),
		respond: fixed(greetingReply),
	},
	{
		name:    "help",
		matches: containsAny("help"),
		respond: fixed(helpReply),
	},
	{
		name: "question",
		matches: func(normalized, _ string) bool {
			return strings.HasSuffix(normalized, "?")
		},
		respond: func(original string) string {
			return questionLead + strings.TrimRight(original, " ?!")
		},
	},
	{
		name:    "thanks",
		matches: containsAny("thank"),
		respond: fixed(thanksReply),
	},
	{
		name: "short",
		matches: func(_, original string) bool {
			return len(strings.Fields(original)) <= 3
		},
		respond: func(original string) string {
			return fmt.Sprintf("You said: '%s'. Could you share a bit more detail?", original)
		},
	},
}

// Reply returns the assistant text for userText. history is accepted for
// future use and currently ignored.
func Reply(userText string, history []Turn) string {
	_ = history
	normalized := strings.ToLower(strings.TrimSpace(userText))
	for _, r := range rules {
		if r.matches(normalized, userText) {
			return r.respond(userText)
		}
	}
	return understoodPre + userText + understoodSuf
}

// Rule returns the name of the rule that answers userText, or "fallback".
func Rule(userText string) string {
	normalized := strings.ToLower(strings.TrimSpace(userText))
	for _, r := range rules {
		if r.matches(normalized, userText) {
			return r.name
		}
	}
	return "fallback"
}

func containsAny(needles ...string) func(string, string) bool {
	return func(normalized, _ string) bool {
		for _, n := range needles {
			if strings.Contains(normalized, n) {
				return true
			}
		}
		return false
	}
}

func fixed(text string) func(string) string {
	return func(string) string { return text }
}

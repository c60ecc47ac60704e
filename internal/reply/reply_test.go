package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"greeting hello", "Hello", greetingReply},
		{"greeting uppercase hey", "HEY you", greetingReply},
		{"greeting inside word", "this is something", greetingReply},
		{"greeting beats thanks", "Hello there, thanks!", greetingReply},
		{"greeting beats question", "hi, how are you?", greetingReply},
		{"help", "I need HELP with my order", helpReply},
		{"help beats question", "can you help?", helpReply},
		{"question", "What is the weather?", "That's a great question! Here's a simple take: What is the weather"},
		{"question strips trailing marks", "Are you sure?!? ", "That's a great question! Here's a simple take: Are you sure"},
		{"question keeps case", "Is Go FAST?", "That's a great question! Here's a simple take: Is Go FAST"},
		{"thanks", "Many thanks for the lovely dinner", thanksReply},
		{"short one token", "ok", "You said: 'ok'. Could you share a bit more detail?"},
		{"short three tokens", "good to know", "You said: 'good to know'. Could you share a bit more detail?"},
		{"short keeps surrounding space", "  fine  ", "You said: '  fine  '. Could you share a bit more detail?"},
		{"empty", "", "You said: ''. Could you share a bit more detail?"},
		{
			"fallback",
			"Please explain the plan in more detail for me",
			"Here's what I understood: Please explain the plan in more detail for me\nIf you want, I can also summarize or clarify specific parts.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reply(tt.in, nil))
		})
	}
}

func TestReplySubstringSemantics(t *testing.T) {
	// "chill" contains "hi" literally, so the greeting fires.
	assert.Equal(t, greetingReply, Reply("chill", nil))
	assert.Equal(t, "greeting", Rule("chill"))
	// "they" contains "hey".
	assert.Equal(t, "greeting", Rule("they went out"))
	assert.Equal(t, "short", Rule("ok"))
	// "this" contains "hi" too.
	assert.Equal(t, "greeting", Rule("Please explain this in more detail for me"))
	assert.Equal(t, "fallback", Rule("Please explain the plan in more detail for me"))
}

func TestReplyQuestionCheckUsesTrimmedText(t *testing.T) {
	// Trailing newline is trimmed for the check but kept by the right-strip.
	assert.Equal(t, "That's a great question! Here's a simple take: Why not?\n", Reply("Why not?\n", nil))
}

func TestReplyIgnoresHistory(t *testing.T) {
	history := []Turn{{Role: "user", Content: "hello"}, {Role: "assistant", Content: greetingReply}}
	assert.Equal(t, Reply("ok", nil), Reply("ok", history))
}

package history

import (
	"fmt"
	"strings"

	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/llm"
	"ai-knowledge-router-be/pkg/store"
)

const answerExcerptLength = 400

// Last returns the newest turn, or nil when there is none
func Last(turns []store.Turn) *store.Turn {
	if len(turns) == 0 {
		return nil
	}
	return &turns[len(turns)-1]
}

// Tail returns at most n of the newest turns, oldest first
func Tail(turns []store.Turn, n int) []store.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

// Transcript renders the newest n turns for a prompt. Answers are truncated.
func Transcript(turns []store.Turn, n int) string {
	var b strings.Builder
	for _, t := range Tail(turns, n) {
		fmt.Fprintf(&b, "User: %s\n", t.Question)
		fmt.Fprintf(&b, "Assistant: %s\n", lexical.Truncate(t.Answer, answerExcerptLength))
	}
	if b.Len() == 0 {
		return "(none)"
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToMessages converts turns to chat history, oldest first.
// Prompt turns are skipped so the model does not echo them.
func ToMessages(turns []store.Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)*2)
	for _, t := range turns {
		if t.DialogueState == store.DialogueStateConfirmation || t.DialogueState == store.DialogueStateClarification {
			continue
		}
		messages = append(messages,
			llm.Message{Role: "user", Content: t.Question},
			llm.Message{Role: "assistant", Content: t.Answer},
		)
	}
	return messages
}

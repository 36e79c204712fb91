package dialogue

import (
	"regexp"
	"strings"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/pkg/lexical"
	"ai-knowledge-router-be/pkg/store"
)

var (
	proposedPattern = regexp.MustCompile(`(?i)maksud:\s*"([^"]+)"`)
	quotedPattern   = regexp.MustCompile(`"([^"]+)"`)
	optionPattern   = regexp.MustCompile(`(?m)^\s*([A-D])\.\s+(.+?)\s*$`)
)

// replyWords are quoted inside confirmation prompts but are never the proposed question
var replyWords = map[string]bool{"benar": true, "tidak": true, "yes": true, "no": true}

// signalOf reads what turn left pending. Turns written with a dialogue state
// are read directly; older turns are recognized by their marker phrases.
// ok is false when the text carries both marker families.
func signalOf(turn store.Turn) (signal store.DialogueSignal, ok bool) {
	switch turn.DialogueState {
	case store.DialogueStateNone:
		return store.DialogueSignal{Kind: store.DialogueStateNone}, true
	case store.DialogueStateConfirmation:
		proposed := turn.ProposedQuestion
		if proposed == "" {
			proposed = extractProposed(turn.Answer)
		}
		if proposed == "" {
			return store.DialogueSignal{Kind: store.DialogueStateNone}, true
		}
		return store.DialogueSignal{Kind: store.DialogueStateConfirmation, ProposedQuestion: proposed}, true
	case store.DialogueStateClarification:
		return clarificationSignal(turn), true
	}

	confirmation := lexical.ContainsAnyFold(turn.Answer, constant.ConfirmationMarkers)
	clarification := lexical.ContainsAnyFold(turn.Answer, constant.ClarificationMarkers)
	switch {
	case confirmation && clarification:
		return store.DialogueSignal{Kind: store.DialogueStateNone}, false
	case confirmation:
		if proposed := extractProposed(turn.Answer); proposed != "" {
			return store.DialogueSignal{Kind: store.DialogueStateConfirmation, ProposedQuestion: proposed}, true
		}
	case clarification:
		return clarificationSignal(turn), true
	}
	return store.DialogueSignal{Kind: store.DialogueStateNone}, true
}

func clarificationSignal(turn store.Turn) store.DialogueSignal {
	base := turn.BaseQuestion
	if base == "" {
		base = turn.Question
	}
	options := turn.Options
	if len(options) == 0 {
		options = extractOptions(turn.Answer)
	}
	return store.DialogueSignal{
		Kind:         store.DialogueStateClarification,
		BaseQuestion: base,
		Options:      options,
	}
}

// extractProposed returns the quoted question of a confirmation prompt
func extractProposed(answer string) string {
	if m := proposedPattern.FindStringSubmatch(answer); len(m) == 2 {
		return strings.TrimSpace(m[1])
	}
	for _, m := range quotedPattern.FindAllStringSubmatch(answer, -1) {
		candidate := strings.TrimSpace(m[1])
		if !replyWords[strings.ToLower(candidate)] && candidate != "" {
			return candidate
		}
	}
	return ""
}

func extractOptions(answer string) []string {
	var options []string
	for _, m := range optionPattern.FindAllStringSubmatch(answer, -1) {
		options = append(options, m[2])
	}
	return options
}

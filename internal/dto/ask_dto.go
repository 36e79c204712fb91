package dto

import (
	"time"

	"github.com/google/uuid"
)

type ModeFlagsDTO struct {
	Company bool `json:"company"`
	General bool `json:"general"`
	Browse  bool `json:"browse"`
}

type AskRequest struct {
	// TurnId makes retries idempotent; a fresh id is generated when omitted
	TurnId         *uuid.UUID   `json:"turn_id,omitempty"`
	ConversationId uuid.UUID    `json:"conversation_id" validate:"required"`
	Question       string       `json:"question" validate:"max=4000"`
	Modes          ModeFlagsDTO `json:"modes"`
}

type CitationDTO struct {
	ContentSnippet string `json:"content_snippet"`
	Title          string `json:"title"`
	Url            string `json:"url,omitempty"`
	SourceType     string `json:"source_type"`
	DocumentId     string `json:"document_id,omitempty"`
}

type TurnResponse struct {
	TurnId           uuid.UUID     `json:"turn_id"`
	ConversationId   uuid.UUID     `json:"conversation_id"`
	Question         string        `json:"question"`
	Answer           string        `json:"answer"`
	Citations        []CitationDTO `json:"citations"`
	Confidence       float64       `json:"confidence"`
	Source           string        `json:"source,omitempty"`
	Modes            ModeFlagsDTO  `json:"modes"`
	DialogueState    string        `json:"dialogue_state"`
	ProposedQuestion string        `json:"proposed_question,omitempty"`
	Options          []string      `json:"options,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

type AskResponse struct {
	TurnResponse
	Intent            string `json:"intent,omitempty"`
	EffectiveQuestion string `json:"effective_question,omitempty"`
	// Replayed is set when the turn id was already recorded and the stored turn is returned
	Replayed bool `json:"replayed"`
}

type GetTurnsResponse struct {
	ConversationId uuid.UUID       `json:"conversation_id"`
	Turns          []*TurnResponse `json:"turns"`
}

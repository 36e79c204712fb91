package entity

import (
	"time"

	"github.com/google/uuid"
)

type TurnCitation struct {
	ContentSnippet string `json:"content_snippet"`
	Title          string `json:"title"`
	URL            string `json:"url,omitempty"`
	SourceType     string `json:"source_type"`
	DocumentID     string `json:"document_id,omitempty"`
}

type Turn struct {
	Id               uuid.UUID
	ConversationId   uuid.UUID
	UserId           uuid.UUID
	Question         string
	Answer           string
	ModeCompany      bool
	ModeGeneral      bool
	ModeBrowse       bool
	Citations        []TurnCitation
	Confidence       float64
	Source           string
	DialogueState    string
	ProposedQuestion string
	BaseQuestion     string
	DialogueOptions  []string
	CreatedAt        time.Time
}

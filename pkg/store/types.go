package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ModeFlags selects which source families are eligible for a turn.
// Families are always tried in the order company → general → browse.
type ModeFlags struct {
	Company bool `json:"company"`
	General bool `json:"general"`
	Browse  bool `json:"browse"`
}

// Any reports whether at least one family is enabled
func (m ModeFlags) Any() bool {
	return m.Company || m.General || m.Browse
}

// Source types attached to retrieved documents
const (
	SourceTypePortal  = "portal"
	SourceTypeWebsite = "website"
	SourceTypeAdmin   = "admin"
	SourceTypeUser    = "user"
	SourceTypeWeb     = "web"
	SourceTypeTable   = "table"
)

// DocumentMetadata describes where a document came from
type DocumentMetadata struct {
	SourceType string `json:"source_type"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// ScoredDocument is the single normalized shape every retrieval backend returns.
// Score is nil when the backend does not rank (web snippets, crawled pages).
type ScoredDocument struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
	Score    *float64         `json:"score,omitempty"`
}

// ScoreValue returns the score or 0 when the document is unscored
func (d ScoredDocument) ScoreValue() float64 {
	if d.Score == nil {
		return 0
	}
	return *d.Score
}

// StableKey identifies a document across backends: document_id when present,
// otherwise a hash of the whitespace-normalized content.
func (d ScoredDocument) StableKey() string {
	if id := strings.TrimSpace(d.Metadata.DocumentID); id != "" {
		return "id:" + id
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(d.Content), " "))
	sum := sha256.Sum256([]byte(normalized))
	return "hash:" + hex.EncodeToString(sum[:])
}

// Score is a small helper to build a *float64 inline
func Score(v float64) *float64 {
	return &v
}

// Citation is the public projection of a selected document
type Citation struct {
	ContentSnippet string `json:"content_snippet"`
	Title          string `json:"title"`
	URL            string `json:"url,omitempty"`
	SourceType     string `json:"source_type"`
	DocumentID     string `json:"document_id,omitempty"`
}

// DialogueState is persisted with every outbound turn so the next turn can
// recover what the assistant was waiting for without re-parsing text.
type DialogueState string

const (
	DialogueStateNone          DialogueState = "none"
	DialogueStateConfirmation  DialogueState = "confirmation"
	DialogueStateClarification DialogueState = "clarification"
)

// Turn is one question/answer exchange. Immutable once written.
type Turn struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Question       string        `json:"question"`
	Answer         string        `json:"answer"`
	ModeFlags      ModeFlags     `json:"mode_flags"`
	Citations      []Citation    `json:"citations"`
	Confidence     float64       `json:"confidence"`
	DialogueState  DialogueState `json:"dialogue_state,omitempty"`
	// ProposedQuestion is set on confirmation turns, BaseQuestion and Options on clarification turns
	ProposedQuestion string    `json:"proposed_question,omitempty"`
	BaseQuestion     string    `json:"base_question,omitempty"`
	Options          []string  `json:"options,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Intent values produced by the digester
const (
	IntentSmallTalk = "small_talk"
	IntentAmbiguous = "ambiguous"
	IntentQuestion  = "question"
)

// Intent subtypes
const (
	SubtypeGreeting    = "greeting"
	SubtypeThanks      = "thanks"
	SubtypeBye         = "bye"
	SubtypeAffirmation = "affirmation"
	SubtypeNone        = "none"
)

// Digest sources
const (
	DigestSourceLLM       = "llm"
	DigestSourceFallback  = "fallback"
	DigestSourceEmpty     = "empty"
	DigestSourceHeuristic = "heuristic"
)

// IntentDigest is the per-turn classification of the raw user message
type IntentDigest struct {
	Intent             string  `json:"intent"`
	Subtype            string  `json:"subtype"`
	NormalizedQuestion string  `json:"normalized_question"`
	Confidence         float64 `json:"confidence"`
	Source             string  `json:"source"`
}

// DialogueSignal is what the previous turn left pending
type DialogueSignal struct {
	Kind             DialogueState
	ProposedQuestion string
	BaseQuestion     string
	Options          []string
}

// Pending reports whether the previous turn asked the user something
func (s DialogueSignal) Pending() bool {
	return s.Kind == DialogueStateConfirmation || s.Kind == DialogueStateClarification
}

// Source families a probe can belong to
type Source string

const (
	SourceAttachments   Source = "attachments"
	SourceKnowledgeBase Source = "knowledge_base"
	SourceTabularAgent  Source = "tabular_agent"
	SourceCorporateSite Source = "corporate_site"
	SourceGeneralLLM    Source = "general_llm"
	SourceWebSearch     Source = "web_search"
)

// ComposedPrompt is a confirmation or clarification message for the next turn
type ComposedPrompt struct {
	Text             string
	State            DialogueState
	ProposedQuestion string
	BaseQuestion     string
	Options          []string
	Confidence       float64
}

// RetrievalAttempt records one probe run. Transient.
type RetrievalAttempt struct {
	Source         Source
	Documents      []ScoredDocument
	TopScore       *float64
	Answer         string
	GroundingScore float64
	Relevant       bool
	Accepted       bool
	// DocumentBacked marks probes whose answers must be grounded in Documents
	DocumentBacked bool
	// ExplicitEvidence marks probes that returned evidence without needing a grounding score
	ExplicitEvidence bool
	// Prompt short-circuits routing with a confirmation prompt
	Prompt *ComposedPrompt
}

// FinalAnswer is the pipeline's response contract
type FinalAnswer struct {
	Answer     string
	Citations  []Citation
	Confidence float64
	// Source is empty when no probe produced the answer
	Source Source
	Intent string
	Prompt *ComposedPrompt
	// EffectiveQuestion is the question actually routed after dialogue resolution
	EffectiveQuestion string
	ModeFlags         ModeFlags
}

// Attachment is a file the user uploaded to a conversation
type Attachment struct {
	ID             string
	ConversationID string
	FileName       string
	Description    string
	StoragePath    string
	IsSpreadsheet  bool
}

// Spreadsheet is an indexed tabular file available to the tabular agent
type Spreadsheet struct {
	ID          string
	Title       string
	Description string
	StoragePath string
	SourceType  string
	URL         string
}

// SearchFilter narrows a vector search. Empty fields do not filter.
type SearchFilter struct {
	SourceTypes    []string
	ConversationID string
	TopK           int
}

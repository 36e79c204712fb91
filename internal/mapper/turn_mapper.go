package mapper

import (
	"encoding/json"

	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/model"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

func (m *TurnMapper) ToEntity(t *model.Turn) *entity.Turn {
	if t == nil {
		return nil
	}

	var citations []entity.TurnCitation
	if len(t.Citations) > 0 {
		// A corrupt citations column must not hide the turn itself
		_ = json.Unmarshal(t.Citations, &citations)
	}

	return &entity.Turn{
		Id:               t.Id,
		ConversationId:   t.ConversationId,
		UserId:           t.UserId,
		Question:         t.Question,
		Answer:           t.Answer,
		ModeCompany:      t.ModeCompany,
		ModeGeneral:      t.ModeGeneral,
		ModeBrowse:       t.ModeBrowse,
		Citations:        citations,
		Confidence:       t.Confidence,
		Source:           t.Source,
		DialogueState:    t.DialogueState,
		ProposedQuestion: t.ProposedQuestion,
		BaseQuestion:     t.BaseQuestion,
		DialogueOptions:  []string(t.DialogueOptions),
		CreatedAt:        t.CreatedAt,
	}
}

func (m *TurnMapper) ToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	citations := t.Citations
	if citations == nil {
		citations = []entity.TurnCitation{}
	}
	raw, _ := json.Marshal(citations)

	return &model.Turn{
		Id:               t.Id,
		ConversationId:   t.ConversationId,
		UserId:           t.UserId,
		Question:         t.Question,
		Answer:           t.Answer,
		ModeCompany:      t.ModeCompany,
		ModeGeneral:      t.ModeGeneral,
		ModeBrowse:       t.ModeBrowse,
		Citations:        datatypes.JSON(raw),
		Confidence:       t.Confidence,
		Source:           t.Source,
		DialogueState:    t.DialogueState,
		ProposedQuestion: t.ProposedQuestion,
		BaseQuestion:     t.BaseQuestion,
		DialogueOptions:  datatypes.JSONSlice[string](t.DialogueOptions),
		CreatedAt:        t.CreatedAt,
	}
}

func (m *TurnMapper) ToEntities(turns []*model.Turn) []*entity.Turn {
	entities := make([]*entity.Turn, len(turns))
	for i, t := range turns {
		entities[i] = m.ToEntity(t)
	}
	return entities
}

// ToStore projects a persisted turn into the pipeline's view of history
func (m *TurnMapper) ToStore(t *entity.Turn) store.Turn {
	citations := make([]store.Citation, len(t.Citations))
	for i, c := range t.Citations {
		citations[i] = store.Citation{
			ContentSnippet: c.ContentSnippet,
			Title:          c.Title,
			URL:            c.URL,
			SourceType:     c.SourceType,
			DocumentID:     c.DocumentID,
		}
	}
	return store.Turn{
		ID:             t.Id.String(),
		ConversationID: t.ConversationId.String(),
		Question:       t.Question,
		Answer:         t.Answer,
		ModeFlags: store.ModeFlags{
			Company: t.ModeCompany,
			General: t.ModeGeneral,
			Browse:  t.ModeBrowse,
		},
		Citations:        citations,
		Confidence:       t.Confidence,
		DialogueState:    store.DialogueState(t.DialogueState),
		ProposedQuestion: t.ProposedQuestion,
		BaseQuestion:     t.BaseQuestion,
		Options:          t.DialogueOptions,
		CreatedAt:        t.CreatedAt,
	}
}

// FromAnswer builds the turn to append for a finished pipeline run
func (m *TurnMapper) FromAnswer(id, conversationId, userId uuid.UUID, question string, answer store.FinalAnswer) *entity.Turn {
	t := &entity.Turn{
		Id:             id,
		ConversationId: conversationId,
		UserId:         userId,
		Question:       question,
		Answer:         answer.Answer,
		ModeCompany:    answer.ModeFlags.Company,
		ModeGeneral:    answer.ModeFlags.General,
		ModeBrowse:     answer.ModeFlags.Browse,
		Confidence:     answer.Confidence,
		Source:         string(answer.Source),
		DialogueState:  string(store.DialogueStateNone),
		Citations:      make([]entity.TurnCitation, len(answer.Citations)),
	}
	for i, c := range answer.Citations {
		t.Citations[i] = entity.TurnCitation{
			ContentSnippet: c.ContentSnippet,
			Title:          c.Title,
			URL:            c.URL,
			SourceType:     c.SourceType,
			DocumentID:     c.DocumentID,
		}
	}
	if p := answer.Prompt; p != nil {
		t.DialogueState = string(p.State)
		t.ProposedQuestion = p.ProposedQuestion
		t.BaseQuestion = p.BaseQuestion
		t.DialogueOptions = p.Options
	}
	return t
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/dto"
	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/pkg/serverutils"
	"ai-knowledge-router-be/internal/repository/contract"
	"ai-knowledge-router-be/internal/repository/specification"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/events"
	"ai-knowledge-router-be/pkg/rag/executor"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryTurnRepo struct {
	contract.TurnRepository
	mu    sync.Mutex
	turns map[uuid.UUID]*entity.Turn
}

func newMemoryTurnRepo() *memoryTurnRepo {
	return &memoryTurnRepo{turns: make(map[uuid.UUID]*entity.Turn)}
}

func (r *memoryTurnRepo) Append(ctx context.Context, turn *entity.Turn) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.turns[turn.Id]; ok {
		return false, nil
	}
	copied := *turn
	r.turns[turn.Id] = &copied
	return true, nil
}

func (r *memoryTurnRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range specs {
		if byID, ok := s.(specification.ByID); ok {
			return r.turns[byID.ID], nil
		}
	}
	return nil, nil
}

func (r *memoryTurnRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Turn
	for _, t := range r.turns {
		out = append(out, t)
	}
	return out, nil
}

type turnUow struct {
	unitofwork.UnitOfWork
	turns *memoryTurnRepo
}

func (u *turnUow) TurnRepository() contract.TurnRepository { return u.turns }

type turnFactory struct{ uow *turnUow }

func (f *turnFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePipeline struct {
	calls  int
	inputs []executor.Input
	answer store.FinalAnswer
	panics bool
}

func (p *fakePipeline) Execute(ctx context.Context, in executor.Input) store.FinalAnswer {
	p.calls++
	p.inputs = append(p.inputs, in)
	if p.panics {
		panic("nil map")
	}
	return p.answer
}

type fakeHistory struct {
	turns []store.Turn
	err   error
}

func (h fakeHistory) Recent(ctx context.Context, conversationId uuid.UUID) ([]store.Turn, error) {
	return h.turns, h.err
}

type fakePublisher struct {
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	service   IAskService
	repo      *memoryTurnRepo
	pipeline  *fakePipeline
	publisher *fakePublisher
}

func newFixture(answer store.FinalAnswer, history fakeHistory) *fixture {
	repo := newMemoryTurnRepo()
	pipeline := &fakePipeline{answer: answer}
	publisher := &fakePublisher{}
	svc := NewAskService(&turnFactory{uow: &turnUow{turns: repo}}, pipeline, history, publisher, false, logger.NewNopLogger())
	return &fixture{service: svc, repo: repo, pipeline: pipeline, publisher: publisher}
}

func kbAnswer() store.FinalAnswer {
	return store.FinalAnswer{
		Answer:     "Cuti tahunan adalah 12 hari kerja.",
		Citations:  []store.Citation{{Title: "Kebijakan Cuti", SourceType: store.SourceTypeAdmin, DocumentID: "d1"}},
		Confidence: 0.82,
		Source:     store.SourceKnowledgeBase,
		Intent:     store.IntentQuestion,
		ModeFlags:  store.ModeFlags{Company: true},
	}
}

func TestAsk_RecordsTurnAndPublishes(t *testing.T) {
	f := newFixture(kbAnswer(), fakeHistory{turns: []store.Turn{{ID: "prev", Question: "halo", Answer: "Halo!"}}})
	userId, conversationId := uuid.New(), uuid.New()

	res, err := f.service.Ask(context.Background(), userId, true, &dto.AskRequest{
		ConversationId: conversationId,
		Question:       "Berapa hari cuti tahunan?",
		Modes:          dto.ModeFlagsDTO{Company: true},
	})

	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, "Cuti tahunan adalah 12 hari kerja.", res.Answer)
	assert.Equal(t, "knowledge_base", res.Source)
	assert.Equal(t, "none", res.DialogueState)
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "d1", res.Citations[0].DocumentId)

	require.Len(t, f.pipeline.inputs, 1)
	in := f.pipeline.inputs[0]
	assert.True(t, in.CuratedMode)
	assert.True(t, in.Flags.Company)
	assert.Len(t, in.Recent, 1)
	assert.Equal(t, conversationId.String(), in.ConversationID)

	stored := f.repo.turns[res.TurnId]
	require.NotNil(t, stored)
	assert.Equal(t, userId, stored.UserId)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.TypeTurnRecorded, f.publisher.events[0].EventType())
	assert.Equal(t, 1, f.publisher.events[0].Payload()["citation_count"])
}

func TestAsk_RetryReturnsStoredTurn(t *testing.T) {
	f := newFixture(kbAnswer(), fakeHistory{})
	userId, turnId := uuid.New(), uuid.New()
	req := &dto.AskRequest{TurnId: &turnId, ConversationId: uuid.New(), Question: "Berapa hari cuti tahunan?"}

	first, err := f.service.Ask(context.Background(), userId, false, req)
	require.NoError(t, err)
	second, err := f.service.Ask(context.Background(), userId, false, req)
	require.NoError(t, err)

	assert.Equal(t, 1, f.pipeline.calls)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.TurnId, second.TurnId)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Len(t, f.repo.turns, 1)
	assert.Len(t, f.publisher.events, 1)

	_, err = f.service.Ask(context.Background(), uuid.New(), false, req)
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestAsk_PersistsDialogueState(t *testing.T) {
	answer := store.FinalAnswer{
		Answer:    "Apakah maksud Anda ...?",
		Citations: []store.Citation{},
		Prompt: &store.ComposedPrompt{
			State:            store.DialogueStateConfirmation,
			ProposedQuestion: "Apa kebijakan cuti tahunan?",
		},
	}
	f := newFixture(answer, fakeHistory{})

	res, err := f.service.Ask(context.Background(), uuid.New(), false, &dto.AskRequest{ConversationId: uuid.New(), Question: "cuti"})

	require.NoError(t, err)
	assert.Equal(t, "confirmation", res.DialogueState)
	assert.Equal(t, "Apa kebijakan cuti tahunan?", res.ProposedQuestion)
	assert.Equal(t, "confirmation", f.repo.turns[res.TurnId].DialogueState)
}

func TestAsk_PipelinePanicBecomesGenericError(t *testing.T) {
	f := newFixture(store.FinalAnswer{}, fakeHistory{})
	f.pipeline.panics = true

	res, err := f.service.Ask(context.Background(), uuid.New(), false, &dto.AskRequest{ConversationId: uuid.New(), Question: "x"})

	require.NoError(t, err)
	assert.Equal(t, constant.MessageGenericProcessingError, res.Answer)
	assert.Empty(t, res.Citations)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestAsk_DegradedCollaborators(t *testing.T) {
	f := newFixture(kbAnswer(), fakeHistory{err: errors.New("db timeout")})
	f.publisher.err = errors.New("nats down")

	res, err := f.service.Ask(context.Background(), uuid.New(), false, &dto.AskRequest{ConversationId: uuid.New(), Question: "cuti"})

	require.NoError(t, err)
	assert.NotEmpty(t, res.Answer)
	assert.Empty(t, f.pipeline.inputs[0].Recent)
}

func TestGetTurns(t *testing.T) {
	f := newFixture(kbAnswer(), fakeHistory{})
	userId, conversationId := uuid.New(), uuid.New()
	_, err := f.service.Ask(context.Background(), userId, false, &dto.AskRequest{ConversationId: conversationId, Question: "cuti"})
	require.NoError(t, err)

	res, err := f.service.GetTurns(context.Background(), userId, conversationId)

	require.NoError(t, err)
	assert.Equal(t, conversationId, res.ConversationId)
	require.Len(t, res.Turns, 1)
	assert.Equal(t, "cuti", res.Turns[0].Question)
}

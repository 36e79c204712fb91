package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"ai-knowledge-router-be/internal/constant"
	"ai-knowledge-router-be/internal/dto"
	"ai-knowledge-router-be/internal/entity"
	"ai-knowledge-router-be/internal/mapper"
	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/internal/pkg/serverutils"
	"ai-knowledge-router-be/internal/repository/specification"
	"ai-knowledge-router-be/internal/repository/unitofwork"
	"ai-knowledge-router-be/pkg/events"
	"ai-knowledge-router-be/pkg/rag/executor"
	"ai-knowledge-router-be/pkg/store"

	"github.com/google/uuid"
)

const module = "ASK"

const publishTimeout = 3 * time.Second

// IAskService is the question answering boundary
type IAskService interface {
	Ask(ctx context.Context, userId uuid.UUID, curatedMode bool, request *dto.AskRequest) (*dto.AskResponse, error)
	GetTurns(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetTurnsResponse, error)
}

// Pipeline runs one turn through routing and grounding
type Pipeline interface {
	Execute(ctx context.Context, in executor.Input) store.FinalAnswer
}

// HistoryLoader returns the recent turns of a conversation, oldest first
type HistoryLoader interface {
	Recent(ctx context.Context, conversationId uuid.UUID) ([]store.Turn, error)
}

// EventPublisher delivers domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type askService struct {
	uowFactory  unitofwork.RepositoryFactory
	pipeline    Pipeline
	history     HistoryLoader
	publisher   EventPublisher
	mapper      *mapper.TurnMapper
	curatedMode bool
	logger      logger.ILogger
}

func NewAskService(
	uowFactory unitofwork.RepositoryFactory,
	pipeline Pipeline,
	history HistoryLoader,
	publisher EventPublisher,
	curatedModeDefault bool,
	logger logger.ILogger,
) IAskService {
	return &askService{
		uowFactory:  uowFactory,
		pipeline:    pipeline,
		history:     history,
		publisher:   publisher,
		mapper:      mapper.NewTurnMapper(),
		curatedMode: curatedModeDefault,
		logger:      logger,
	}
}

func (s *askService) Ask(ctx context.Context, userId uuid.UUID, curatedMode bool, request *dto.AskRequest) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	turnId := uuid.New()
	if request.TurnId != nil && *request.TurnId != uuid.Nil {
		turnId = *request.TurnId

		// Retried request: answer from the stored turn without re-running the pipeline
		existing, err := uow.TurnRepository().FindOne(ctx, specification.ByID{ID: turnId})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(existing, userId)
		}
	}

	recent, err := s.history.Recent(ctx, request.ConversationId)
	if err != nil {
		s.logger.Warn(module, "History unavailable, answering without it", map[string]interface{}{
			"conversation_id": request.ConversationId.String(),
			"error":           err.Error(),
		})
		recent = nil
	}

	final := s.execute(ctx, executor.Input{
		ConversationID: request.ConversationId.String(),
		Question:       request.Question,
		Flags: store.ModeFlags{
			Company: request.Modes.Company,
			General: request.Modes.General,
			Browse:  request.Modes.Browse,
		},
		Recent:      recent,
		CuratedMode: curatedMode || s.curatedMode,
	})

	turn := s.mapper.FromAnswer(turnId, request.ConversationId, userId, request.Question, final)
	turn.CreatedAt = time.Now()

	inserted, err := uow.TurnRepository().Append(ctx, turn)
	if err != nil {
		return nil, fmt.Errorf("record turn: %w", err)
	}
	if !inserted {
		// A concurrent retry recorded the turn first
		existing, err := uow.TurnRepository().FindOne(ctx, specification.ByID{ID: turnId})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("turn %s vanished after conflicting insert", turnId)
		}
		return s.replay(existing, userId)
	}

	s.publishRecorded(ctx, turn, final)

	return &dto.AskResponse{
		TurnResponse:      *toTurnResponse(turn),
		Intent:            final.Intent,
		EffectiveQuestion: final.EffectiveQuestion,
	}, nil
}

// execute converts a pipeline panic into the generic processing message
func (s *askService) execute(ctx context.Context, in executor.Input) (final store.FinalAnswer) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(module, "Pipeline panicked", map[string]interface{}{
				"error":           fmt.Sprint(r),
				"conversation_id": in.ConversationID,
				"stack":           string(debug.Stack()),
			})
			final = store.FinalAnswer{
				Answer:    constant.MessageGenericProcessingError,
				Citations: []store.Citation{},
				ModeFlags: in.Flags,
			}
		}
	}()
	return s.pipeline.Execute(ctx, in)
}

func (s *askService) replay(existing *entity.Turn, userId uuid.UUID) (*dto.AskResponse, error) {
	if existing.UserId != userId {
		return nil, serverutils.NewForbiddenError("Turn belongs to another user")
	}
	s.logger.Info(module, "Replaying recorded turn", map[string]interface{}{
		"turn_id": existing.Id.String(),
	})
	return &dto.AskResponse{
		TurnResponse: *toTurnResponse(existing),
		Replayed:     true,
	}, nil
}

func (s *askService) publishRecorded(ctx context.Context, turn *entity.Turn, final store.FinalAnswer) {
	if s.publisher == nil {
		return
	}

	// Detached from the request so a finished response does not cancel the publish
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.publisher.Publish(pubCtx, events.TurnRecorded{
		TurnID:         turn.Id.String(),
		ConversationID: turn.ConversationId.String(),
		UserID:         turn.UserId.String(),
		Source:         turn.Source,
		Intent:         final.Intent,
		DialogueState:  turn.DialogueState,
		Confidence:     turn.Confidence,
		CitationCount:  len(turn.Citations),
		ModeCompany:    turn.ModeCompany,
		ModeGeneral:    turn.ModeGeneral,
		ModeBrowse:     turn.ModeBrowse,
		OccurredAt:     turn.CreatedAt,
	})
	if err != nil {
		s.logger.Warn(module, "Failed to publish turn event", map[string]interface{}{
			"turn_id": turn.Id.String(),
			"error":   err.Error(),
		})
	}
}

func (s *askService) GetTurns(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.GetTurnsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	turns, err := uow.TurnRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.GetTurnsResponse{
		ConversationId: conversationId,
		Turns:          make([]*dto.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		res.Turns = append(res.Turns, toTurnResponse(t))
	}
	return res, nil
}

func toTurnResponse(t *entity.Turn) *dto.TurnResponse {
	citations := make([]dto.CitationDTO, 0, len(t.Citations))
	for _, c := range t.Citations {
		citations = append(citations, dto.CitationDTO{
			ContentSnippet: c.ContentSnippet,
			Title:          c.Title,
			Url:            c.URL,
			SourceType:     c.SourceType,
			DocumentId:     c.DocumentID,
		})
	}
	return &dto.TurnResponse{
		TurnId:         t.Id,
		ConversationId: t.ConversationId,
		Question:       t.Question,
		Answer:         t.Answer,
		Citations:      citations,
		Confidence:     t.Confidence,
		Source:         t.Source,
		Modes: dto.ModeFlagsDTO{
			Company: t.ModeCompany,
			General: t.ModeGeneral,
			Browse:  t.ModeBrowse,
		},
		DialogueState:    t.DialogueState,
		ProposedQuestion: t.ProposedQuestion,
		Options:          t.DialogueOptions,
		CreatedAt:        t.CreatedAt,
	}
}

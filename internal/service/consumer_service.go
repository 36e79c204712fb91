package service

import (
	"context"
	"fmt"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/events"
)

const auditModule = "ROUTING_AUDIT"

// Subscriber registers durable handlers for one event type
type Subscriber interface {
	Subscribe(ctx context.Context, eventType string, durableName string, handler func(ctx context.Context, event events.Event) error) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService writes every recorded turn's routing outcome to the audit log
type consumerService struct {
	subscriber Subscriber
	audit      logger.ILogger
}

func NewConsumerService(subscriber Subscriber, audit logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		audit:      audit,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	if cs.subscriber == nil {
		return fmt.Errorf("no event subscriber configured")
	}
	return cs.subscriber.Subscribe(ctx, events.TypeTurnRecorded, "routing-audit", cs.handle)
}

func (cs *consumerService) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	if _, ok := payload["turn_id"]; !ok {
		return fmt.Errorf("turn event without turn_id")
	}
	cs.audit.Info(auditModule, "Turn routed", payload)
	return nil
}

package service

import (
	"context"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "event_consumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process topic, logs every event and, when
// a forwarder is set, relays it to the external bus.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	forward    events.Publisher
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	forward events.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		forward:    forward,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal event", map[string]interface{}{"message_id": msg.UUID, "error": err.Error()})
		msg.Ack()
		return
	}

	cs.logger.Info(consumerModule, "Event received", map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
		"data":        event.Payload(),
	})

	if cs.forward != nil {
		// Forwarding is best effort: the message is acked either way.
		if err := cs.forward.Publish(ctx, event); err != nil {
			cs.logger.Warn(consumerModule, "Failed to forward event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
		}
	}

	msg.Ack()
}

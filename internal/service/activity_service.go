package service

import (
	"context"
	"fmt"

	"pdf-rag-be/internal/pkg/logger"
	"pdf-rag-be/pkg/events"
	pktNats "pdf-rag-be/pkg/nats"
)

const activityDurable = "pdf-rag-activity-log"

// EventSubscriber is the part of the NATS subscriber the activity log needs.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

// ActivityService keeps an audit trail of everything published on the
// external bus in its own log file.
type ActivityService struct {
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewActivityService(sub EventSubscriber, log logger.ILogger) *ActivityService {
	return &ActivityService{subscriber: sub, logger: log}
}

func (s *ActivityService) Start(ctx context.Context) error {
	subject := pktNats.SubjectPrefix + ">"
	if err := s.subscriber.Subscribe(ctx, subject, activityDurable, s.handleEvent); err != nil {
		s.logger.Error("ActivityService", "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ActivityService", fmt.Sprintf("Activity log started, listening to %s", subject), nil)
	return nil
}

func (s *ActivityService) handleEvent(_ context.Context, event events.Event) error {
	details := map[string]interface{}{
		"type":        event.EventType(),
		"occurred_at": event.Timestamp(),
	}
	for k, v := range event.Payload() {
		details[k] = v
	}
	s.logger.Info("ActivityService", event.EventType(), details)
	return nil
}

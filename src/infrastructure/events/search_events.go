package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// SearchCompletedTopic carries one event per served search request. The
// analytics/history layer consumes it; this service only publishes.
const SearchCompletedTopic = "search.completed"

// SearchCompletedEvent is the audit record of one search request.
type SearchCompletedEvent struct {
	EventID       string    `json:"event_id"`
	QueryID       string    `json:"query_id"`
	UserID        int64     `json:"user_id"`
	CriteriaCount int       `json:"criteria_count"`
	ResultCount   int       `json:"result_count"`
	DurationMs    int64     `json:"duration_ms"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type SearchEventService struct {
	publisher message.Publisher
}

func NewSearchEventService(publisher message.Publisher) *SearchEventService {
	return &SearchEventService{
		publisher: publisher,
	}
}

// PublishSearchCompleted emits one audit event. Callers treat failures as
// log-only; a broken broker must never fail a search request.
func (s *SearchEventService) PublishSearchCompleted(event SearchCompletedEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal search event: %v", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(SearchCompletedTopic, msg); err != nil {
		return fmt.Errorf("failed to publish search event: %v", err)
	}

	return nil
}

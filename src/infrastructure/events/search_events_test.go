package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"okchat/src/infrastructure/events"
)

func TestPublishSearchCompleted(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, events.SearchCompletedTopic)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	svc := events.NewSearchEventService(pubSub)
	sent := events.SearchCompletedEvent{
		QueryID:       "1234567890",
		UserID:        42,
		CriteriaCount: 2,
		ResultCount:   7,
		DurationMs:    31,
	}
	if err := svc.PublishSearchCompleted(sent); err != nil {
		t.Fatalf("PublishSearchCompleted() error = %v", err)
	}

	select {
	case msg := <-messages:
		msg.Ack()

		var got events.SearchCompletedEvent
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("payload is not valid JSON: %v", err)
		}
		if got.QueryID != sent.QueryID || got.UserID != sent.UserID {
			t.Errorf("round-tripped event = %+v, want query %q for user %d", got, sent.QueryID, sent.UserID)
		}
		if got.CriteriaCount != 2 || got.ResultCount != 7 {
			t.Errorf("counts = (%d, %d), want (2, 7)", got.CriteriaCount, got.ResultCount)
		}
		if got.EventID == "" {
			t.Error("event id was not assigned on publish")
		}
		if got.OccurredAt.IsZero() {
			t.Error("occurred-at was not assigned on publish")
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

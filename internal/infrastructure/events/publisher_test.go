package events

import (
	"testing"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
)

func TestPublishReachesSubscribers(t *testing.T) {
	publisher := NewPublisher()
	defer publisher.Close()

	sub := publisher.Subscribe()
	publisher.Publish(domain.EvaluationEvent{EntryID: "e1", Verdict: domain.VerdictAllow})

	select {
	case event := <-sub:
		if event.EntryID != "e1" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("event never arrived")
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	publisher := NewPublisher()
	defer publisher.Close()

	publisher.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			publisher.Publish(domain.EvaluationEvent{EntryID: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	publisher := NewPublisher()
	sub := publisher.Subscribe()
	publisher.Close()

	if _, open := <-sub; open {
		t.Fatal("subscriber channel should be closed")
	}

	// Publishing after close is a no-op, not a panic.
	publisher.Publish(domain.EvaluationEvent{EntryID: "late"})

	late := publisher.Subscribe()
	if _, open := <-late; open {
		t.Fatal("post-close subscription should be closed immediately")
	}
}

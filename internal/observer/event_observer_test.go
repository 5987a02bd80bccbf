package observer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type channelObserver struct {
	name   string
	events chan ClassificationEvent
}

func (o *channelObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	o.events <- event
}

func (o *channelObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, ClassificationEvent) { panic("boom") }

func (panickingObserver) GetObserverName() string { return "panicking" }

func waitEvent(t *testing.T, ch <-chan ClassificationEvent) ClassificationEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
		return ClassificationEvent{}
	}
}

func TestEventPublisher_NotifiesSubscribers(t *testing.T) {
	pub := NewEventPublisher()
	obs := &channelObserver{name: "chan", events: make(chan ClassificationEvent, 1)}
	pub.Subscribe(panickingObserver{})
	pub.Subscribe(obs)

	pub.NotifyObservers(context.Background(), ClassificationEvent{EventType: ClassificationCompleted, Backend: "simulated"})

	ev := waitEvent(t, obs.events)
	if ev.EventType != ClassificationCompleted {
		t.Errorf("Expected completed event, got %s", ev.EventType)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Expected publisher to stamp the event")
	}
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	pub := NewEventPublisher()
	obs := &channelObserver{name: "chan", events: make(chan ClassificationEvent, 1)}
	pub.Subscribe(obs)
	pub.Unsubscribe(obs)

	pub.NotifyObservers(context.Background(), ClassificationEvent{EventType: ClassificationStarted})

	select {
	case ev := <-obs.events:
		t.Errorf("Did not expect an event after unsubscribe, got %s", ev.EventType)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventPublisher_DetachesCancellation(t *testing.T) {
	pub := NewEventPublisher()
	obs := &channelObserver{name: "chan", events: make(chan ClassificationEvent, 1)}
	pub.Subscribe(obs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub.NotifyObservers(ctx, ClassificationEvent{EventType: FallbackUsed})

	if ev := waitEvent(t, obs.events); ev.EventType != FallbackUsed {
		t.Errorf("Expected fallback event, got %s", ev.EventType)
	}
}

func TestMetricsObserver_Counts(t *testing.T) {
	obs := NewMetricsObserver()
	ctx := context.Background()

	obs.OnEvent(ctx, ClassificationEvent{EventType: ClassificationStarted, Backend: "simulated"})
	obs.OnEvent(ctx, ClassificationEvent{EventType: ClassificationCompleted, Backend: "simulated", ProcessingTime: 2 * time.Second})
	obs.OnEvent(ctx, ClassificationEvent{EventType: ClassificationStarted, Backend: "simulated"})
	obs.OnEvent(ctx, ClassificationEvent{EventType: ClassificationCompleted, Backend: "simulated", ProcessingTime: 4 * time.Second})
	obs.OnEvent(ctx, ClassificationEvent{EventType: ClassificationFailed, Backend: "simulated"})
	obs.OnEvent(ctx, ClassificationEvent{EventType: FallbackUsed, Metadata: map[string]interface{}{"reason": "transport"}})

	snap := obs.GetMetrics()
	if snap.TotalClassifications != 2 || snap.Successful != 2 || snap.Failed != 1 || snap.Fallbacks != 1 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if snap.AvgProcessingTime != 3*time.Second {
		t.Errorf("Expected 3s average, got %s", snap.AvgProcessingTime)
	}
}

func TestLoggingObserver_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	obs := NewLoggingObserver(logger)
	obs.OnEvent(context.Background(), ClassificationEvent{
		EventType:  ClassificationCompleted,
		RequestID:  "req-1",
		Backend:    "simulated",
		Success:    true,
		ItemID:     "glass-bottle",
		Confidence: 0.91,
	})

	line := buf.String()
	for _, want := range []string{`"item_id":"glass-bottle"`, `"request_id":"req-1"`, "Classification completed"} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected log line to contain %s, got %s", want, line)
		}
	}
}

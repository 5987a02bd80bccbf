package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anime-shed/recycling-guide-go/internal/metrics"
)

// ClassificationEvent represents a classification lifecycle event
type ClassificationEvent struct {
	EventType        EventType              `json:"event_type"`
	Timestamp        time.Time              `json:"timestamp"`
	RequestID        string                 `json:"request_id,omitempty"`
	Backend          string                 `json:"backend"`
	ProcessingTime   time.Duration          `json:"processing_time"`
	Success          bool                   `json:"success"`
	ItemID           string                 `json:"item_id,omitempty"`
	Confidence       float64                `json:"confidence,omitempty"`
	WithAlternatives bool                   `json:"with_alternatives,omitempty"`
	ErrorMessage     string                 `json:"error_message,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of classification event
type EventType string

const (
	// ClassificationStarted when a classification begins
	ClassificationStarted EventType = "classification_started"
	// ClassificationCompleted when a classification produced a result
	ClassificationCompleted EventType = "classification_completed"
	// ClassificationFailed when no result could be produced
	ClassificationFailed EventType = "classification_failed"
	// RemoteFailed when the remote backend call failed
	RemoteFailed EventType = "remote_failed"
	// FallbackUsed when a remote failure was answered by the local classifier
	FallbackUsed EventType = "fallback_used"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ClassificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ClassificationEvent)
}

// LoggingObserver logs classification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles classification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"backend":         event.Backend,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.RequestID != "" {
		fields["request_id"] = event.RequestID
	}
	if event.ItemID != "" {
		fields["item_id"] = event.ItemID
		fields["confidence"] = event.Confidence
		fields["with_alternatives"] = event.WithAlternatives
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ClassificationStarted:
		o.logger.WithFields(fields).Debug("Classification started")
	case ClassificationCompleted:
		o.logger.WithFields(fields).Info("Classification completed")
	case ClassificationFailed:
		o.logger.WithFields(fields).Error("Classification failed")
	case RemoteFailed:
		o.logger.WithFields(fields).Warn("Remote classification failed")
	case FallbackUsed:
		o.logger.WithFields(fields).Info("Answered with local fallback classification")
	default:
		o.logger.WithFields(fields).Info("Classification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver exports events to Prometheus and keeps an in-process summary
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalClassified     int64
	successful          int64
	failed              int64
	fallbacks           int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles classification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event ClassificationEvent) {
	switch event.EventType {
	case ClassificationCompleted:
		metrics.RecordClassification(event.Backend, "success", event.ProcessingTime, event.WithAlternatives)
	case ClassificationFailed:
		metrics.RecordClassification(event.Backend, "failure", event.ProcessingTime, false)
	case FallbackUsed:
		reason, _ := event.Metadata["reason"].(string)
		if reason == "" {
			reason = "unknown"
		}
		metrics.RecordFallback(reason)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ClassificationStarted:
		o.totalClassified++
	case ClassificationCompleted:
		o.successful++
		o.totalProcessingTime += event.ProcessingTime
	case ClassificationFailed:
		o.failed++
	case FallbackUsed:
		o.fallbacks++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// Snapshot is a point-in-time copy of the collected counters
type Snapshot struct {
	TotalClassifications int64         `json:"total_classifications"`
	Successful           int64         `json:"successful"`
	Failed               int64         `json:"failed"`
	Fallbacks            int64         `json:"fallbacks"`
	AvgProcessingTime    time.Duration `json:"avg_processing_time"`
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := time.Duration(0)
	if o.successful > 0 {
		avg = o.totalProcessingTime / time.Duration(o.successful)
	}

	return Snapshot{
		TotalClassifications: o.totalClassified,
		Successful:           o.successful,
		Failed:               o.failed,
		Fallbacks:            o.fallbacks,
		AvgProcessingTime:    avg,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event.
// Observers run concurrently and must not assume ordering between events.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ClassificationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Detach from request cancellation; events outlive the request
	ctx = context.WithoutCancel(ctx)

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

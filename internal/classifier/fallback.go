package classifier

import (
	"context"
	"time"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/observer"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// FallbackClassifier tries a remote backend first and answers with the local
// backend whenever the remote call fails. Remote failures are published as
// events and never returned to the caller.
type FallbackClassifier struct {
	remote        Classifier
	local         Classifier
	remoteTimeout time.Duration
	events        observer.Subject
}

// NewFallbackClassifier creates a fallback classifier. remote may be nil, in which
// case every call goes straight to local. A nil events subject logs through the
// package logger.
func NewFallbackClassifier(remote, local Classifier, remoteTimeout time.Duration, events observer.Subject) *FallbackClassifier {
	if events == nil {
		publisher := observer.NewEventPublisher()
		publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
		events = publisher
	}
	return &FallbackClassifier{
		remote:        remote,
		local:         local,
		remoteTimeout: remoteTimeout,
		events:        events,
	}
}

// Name returns the backend name
func (f *FallbackClassifier) Name() string {
	return NameFallback
}

// Classify returns the remote result, or the local result if the remote call failed
func (f *FallbackClassifier) Classify(ctx context.Context, payload string) (*models.ClassificationResult, error) {
	if err := requirePayload(payload); err != nil {
		return nil, err
	}

	start := time.Now()
	requestID := logger.RequestID(ctx)
	f.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType: observer.ClassificationStarted,
		RequestID: requestID,
		Backend:   f.Name(),
	})

	result, backend, err := f.classify(ctx, payload)
	elapsed := time.Since(start)

	if err != nil {
		f.events.NotifyObservers(ctx, observer.ClassificationEvent{
			EventType:      observer.ClassificationFailed,
			RequestID:      requestID,
			Backend:        backend,
			ProcessingTime: elapsed,
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	f.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType:        observer.ClassificationCompleted,
		RequestID:        requestID,
		Backend:          backend,
		ProcessingTime:   elapsed,
		Success:          true,
		ItemID:           result.Item.ID,
		Confidence:       result.Item.Confidence,
		WithAlternatives: result.HasAlternatives(),
	})
	return result, nil
}

func (f *FallbackClassifier) classify(ctx context.Context, payload string) (*models.ClassificationResult, string, error) {
	if f.remote == nil {
		return f.classifyLocal(ctx, payload)
	}

	remoteCtx := ctx
	cancel := context.CancelFunc(func() {})
	if f.remoteTimeout > 0 {
		remoteCtx, cancel = context.WithTimeout(ctx, f.remoteTimeout)
	}
	result, err := f.remote.Classify(remoteCtx, payload)
	cancel()
	if err == nil && result == nil {
		err = apperrors.NewTransportError("remote classifier returned no result", nil)
	}
	if err == nil {
		return result, f.remote.Name(), nil
	}

	// The caller gave up; there is nobody to fall back for
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, f.remote.Name(), apperrors.FromContext(ctxErr, "classification canceled")
	}

	reason := fallbackReason(err)
	requestID := logger.RequestID(ctx)
	f.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType:    observer.RemoteFailed,
		RequestID:    requestID,
		Backend:      f.remote.Name(),
		ErrorMessage: err.Error(),
		Metadata:     map[string]interface{}{"reason": reason},
	})
	f.events.NotifyObservers(ctx, observer.ClassificationEvent{
		EventType: observer.FallbackUsed,
		RequestID: requestID,
		Backend:   f.local.Name(),
		Metadata:  map[string]interface{}{"reason": reason},
	})

	return f.classifyLocal(ctx, payload)
}

func (f *FallbackClassifier) classifyLocal(ctx context.Context, payload string) (*models.ClassificationResult, string, error) {
	result, err := f.local.Classify(ctx, payload)
	if err == nil && result == nil {
		err = apperrors.NewInternalAnalysisError("local classifier returned no result", nil)
	}
	if err != nil {
		return nil, f.local.Name(), err
	}
	return result, f.local.Name(), nil
}

func fallbackReason(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Type)
	}
	if ctxErr := apperrors.FromContext(err, ""); ctxErr != nil {
		return string(ctxErr.Type)
	}
	return "unknown"
}

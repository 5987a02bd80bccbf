package remote

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/metrics"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// BreakerSettings tunes the circuit breaker in front of the remote endpoint
type BreakerSettings struct {
	Name string
	// MaxRequests allowed through while half-open
	MaxRequests uint32
	// Interval after which failure counts reset while closed
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
	// ConsecutiveFailures that trip the breaker
	ConsecutiveFailures uint32
}

// DefaultBreakerSettings returns the production breaker tuning
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:                "remote-classifier",
		MaxRequests:         1,
		Interval:            time.Minute,
		OpenTimeout:         30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[*models.ClassificationResult] {
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	return gobreaker.NewCircuitBreaker[*models.ClassificationResult](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= s.ConsecutiveFailures
			if trip {
				logger.WithField("consecutive_failures", counts.ConsecutiveFailures).
					Warn("Opening remote classifier circuit")
			}
			return trip
		},
		// A caller walking away says nothing about the remote's health
		IsSuccessful: func(err error) bool {
			return err == nil || isCallerCancellation(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})
}

// stateToFloat maps breaker state to the gauge value
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

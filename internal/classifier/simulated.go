package classifier

import (
	"context"
	"fmt"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/repository"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// SimulatedClassifier picks a random catalog record after a fixed delay.
// It does not look at the image content at all.
type SimulatedClassifier struct {
	opts Options
}

// NewSimulatedClassifier creates a simulated classifier
func NewSimulatedClassifier(opts Options) *SimulatedClassifier {
	defaults := DefaultOptions()
	if opts.Source == nil {
		opts.Source = defaults.Source
	}
	if opts.Records == nil {
		opts.Records = defaults.Records
	}
	if opts.Latency < 0 {
		opts.Latency = 0
	}
	return &SimulatedClassifier{opts: opts}
}

// Name returns the backend name
func (c *SimulatedClassifier) Name() string {
	return NameSimulated
}

// Classify validates the payload, waits the configured latency and selects a result
func (c *SimulatedClassifier) Classify(ctx context.Context, payload string) (*models.ClassificationResult, error) {
	if err := requirePayload(payload); err != nil {
		return nil, err
	}
	if err := wait(ctx, c.opts.Latency); err != nil {
		return nil, err
	}
	return c.selectResult()
}

func (c *SimulatedClassifier) selectResult() (result *models.ClassificationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewInternalAnalysisError("classification failed", fmt.Errorf("panic: %v", r))
		}
	}()

	records := c.opts.Records()
	if len(records) == 0 {
		return nil, apperrors.NewInternalAnalysisError("no classification records available", repository.ErrCatalogEmpty)
	}
	return Select(records, c.opts.Source), nil
}

// Package classifier turns an encoded image into a recycling classification.
//
// Backends implement Classifier. The simulated backend is the reference
// behavior; the ONNX backend runs a real model against the same catalog.
// FallbackClassifier composes a remote backend with a local one.
package classifier

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// Classifier defines the capability every classification backend provides
type Classifier interface {
	// Classify returns a fresh result for one encoded image payload
	Classify(ctx context.Context, payload string) (*models.ClassificationResult, error)

	// Name identifies the backend in logs and metrics
	Name() string
}

// Backend names
const (
	NameSimulated = "simulated"
	NameONNX      = "onnx"
	NameFallback  = "fallback"
)

const (
	// AlternativeThreshold is the primary confidence at or above which no alternatives are offered
	AlternativeThreshold = 0.80
	// MaxAlternatives caps the number of alternative candidates
	MaxAlternatives = 2

	primaryFloor      = 0.7
	primarySpread     = 0.3
	alternativeFloor  = 0.5
	alternativeSpread = 0.3
)

// OffersAlternatives reports whether a primary with this confidence gets alternatives
func OffersAlternatives(confidence float64) bool {
	return confidence < AlternativeThreshold
}

// Select runs the simulated decision rule over records, which must be non-empty.
//
// One record is picked uniformly as primary with confidence in [0.70, 1.00].
// The first two other records in catalog order become candidates with
// confidence in [0.50, 0.80) and are attached only when the primary is
// below AlternativeThreshold.
func Select(records []models.ClassificationRecord, src RandomSource) *models.ClassificationResult {
	idx := src.IntN(len(records))
	primary := score(records[idx], primaryFloor+src.Float64()*primarySpread)

	candidates := make([]models.ScoredRecord, 0, MaxAlternatives)
	for i, rec := range records {
		if len(candidates) == MaxAlternatives {
			break
		}
		if i == idx || rec.ID == primary.ID {
			continue
		}
		candidates = append(candidates, score(rec, alternativeFloor+src.Float64()*alternativeSpread))
	}

	result := &models.ClassificationResult{Item: primary}
	if OffersAlternatives(primary.Confidence) {
		result.Alternatives = candidates
	}
	return result
}

func score(rec models.ClassificationRecord, confidence float64) models.ScoredRecord {
	return models.ScoredRecord{
		ClassificationRecord: rec.Clone(),
		Confidence:           confidence,
	}
}

func requirePayload(payload string) error {
	if strings.TrimSpace(payload) == "" {
		return apperrors.NewInvalidInputError("image payload is empty", nil)
	}
	return nil
}

// wait blocks for d or until ctx is done, whichever comes first
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return apperrors.FromContext(err, "classification canceled")
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return apperrors.FromContext(ctx.Err(), "classification canceled")
	}
}

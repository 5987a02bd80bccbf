package classifier

import (
	"fmt"

	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// Reselect promotes one of result's alternatives to primary.
//
// The chosen alternative keeps the confidence it was offered with and is
// removed from the remaining alternatives, whose order is preserved. The
// previous primary is not re-inserted. result itself is not modified.
func Reselect(result *models.ClassificationResult, alternativeID string) (*models.ClassificationResult, error) {
	if result == nil {
		return nil, apperrors.NewInvalidInputError("no result to reselect from", nil)
	}

	chosen := -1
	for i, alt := range result.Alternatives {
		if alt.ID == alternativeID {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return nil, apperrors.NewInvalidInputError(
			fmt.Sprintf("alternative %q is not offered by this result", alternativeID), nil)
	}

	next := &models.ClassificationResult{
		Item: cloneScored(result.Alternatives[chosen]),
	}
	for i, alt := range result.Alternatives {
		if i == chosen || alt.ID == alternativeID {
			continue
		}
		next.Alternatives = append(next.Alternatives, cloneScored(alt))
	}
	return next, nil
}

func cloneScored(s models.ScoredRecord) models.ScoredRecord {
	return models.ScoredRecord{
		ClassificationRecord: s.ClassificationRecord.Clone(),
		Confidence:           s.Confidence,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/repository"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
	"github.com/anime-shed/recycling-guide-go/pkg/validation"
)

// RecyclingService defines the operations behind the HTTP API
type RecyclingService interface {
	// Analyze classifies one image data URL
	Analyze(ctx context.Context, image string) (*models.ClassificationResult, error)

	// Reselect promotes one alternative of a previous result
	Reselect(result *models.ClassificationResult, alternativeID string) (*models.ClassificationResult, error)

	// Catalog lists every classification record
	Catalog() models.CatalogResponse

	// CatalogItem returns a single record
	CatalogItem(id string) (models.ClassificationRecord, error)

	// Guide searches the recycling guide
	Guide(query string, fuzzy bool) models.GuideResponse

	// CheckRecyclable reports whether a free-text item can be recycled
	CheckRecyclable(item string) (models.RecyclabilityCheck, error)
}

// recyclingService implements RecyclingService
type recyclingService struct {
	repo       repository.CatalogRepository
	classifier classifier.Classifier
}

// NewRecyclingService creates a new recycling service. c is normally a
// classifier.FallbackClassifier.
func NewRecyclingService(repo repository.CatalogRepository, c classifier.Classifier) RecyclingService {
	return &recyclingService{
		repo:       repo,
		classifier: c,
	}
}

// Analyze validates the payload at the boundary and runs the classifier
func (s *recyclingService) Analyze(ctx context.Context, image string) (*models.ClassificationResult, error) {
	if err := validation.ValidateImagePayload(image); err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, image)
	if err != nil {
		if _, ok := apperrors.AsAppError(err); ok {
			return nil, err
		}
		if ctxErr := apperrors.FromContext(err, "classification interrupted"); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.NewInternalAnalysisError("classification failed", err)
	}

	logger.WithContext(ctx).WithFields(map[string]interface{}{
		"item_id":      result.Item.ID,
		"confidence":   result.Item.Confidence,
		"alternatives": len(result.Alternatives),
	}).Debug("Image classified")
	return result, nil
}

// Reselect delegates to classifier.Reselect
func (s *recyclingService) Reselect(result *models.ClassificationResult, alternativeID string) (*models.ClassificationResult, error) {
	return classifier.Reselect(result, alternativeID)
}

// Catalog lists every record
func (s *recyclingService) Catalog() models.CatalogResponse {
	items := s.repo.All()
	return models.CatalogResponse{
		Items:      items,
		TotalCount: len(items),
	}
}

// CatalogItem returns one record or a not-found error
func (s *recyclingService) CatalogItem(id string) (models.ClassificationRecord, error) {
	rec, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return models.ClassificationRecord{}, apperrors.NewNotFoundError(
				fmt.Sprintf("no catalog item with id %q", id), err)
		}
		return models.ClassificationRecord{}, err
	}
	return rec, nil
}

// Guide returns the guide categories matching query
func (s *recyclingService) Guide(query string, fuzzy bool) models.GuideResponse {
	query = strings.TrimSpace(query)
	var categories []models.RecyclingCategory
	if query == "" {
		categories = s.repo.Guide()
	} else {
		categories = s.repo.SearchGuide(query, fuzzy)
	}
	return models.GuideResponse{
		Query:      query,
		Categories: categories,
		TotalCount: len(categories),
	}
}

// CheckRecyclable rejects an empty item name
func (s *recyclingService) CheckRecyclable(item string) (models.RecyclabilityCheck, error) {
	if strings.TrimSpace(item) == "" {
		return models.RecyclabilityCheck{}, apperrors.NewValidationError("item is required", nil)
	}
	return s.repo.CheckRecyclable(item), nil
}

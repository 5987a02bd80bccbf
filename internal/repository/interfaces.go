package repository

import "github.com/anime-shed/recycling-guide-go/pkg/models"

// CatalogRepository defines read-only access to the recycling reference data.
// Implementations must be safe for concurrent readers.
type CatalogRepository interface {
	// All returns every classification record in catalog order
	All() []models.ClassificationRecord

	// FindByID looks up a single record
	FindByID(id string) (models.ClassificationRecord, error)

	// Guide returns the informational recycling categories
	Guide() []models.RecyclingCategory

	// SearchGuide filters guide categories by name or item substring.
	// With fuzzy set, near misses within a small edit distance also match.
	SearchGuide(query string, fuzzy bool) []models.RecyclingCategory

	// CheckRecyclable reports whether a free-text item is recyclable
	CheckRecyclable(item string) models.RecyclabilityCheck
}

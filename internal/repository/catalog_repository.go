package repository

import (
	"strings"
	"unicode/utf8"

	"github.com/arbovm/levenshtein"

	"github.com/anime-shed/recycling-guide-go/internal/catalog"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// StaticCatalogRepository implements CatalogRepository over the built-in tables
type StaticCatalogRepository struct {
	records    []models.ClassificationRecord
	categories []models.RecyclingCategory
	byID       map[string]int
}

// NewStaticCatalogRepository snapshots the catalog once; it is never mutated afterwards
func NewStaticCatalogRepository() CatalogRepository {
	return newCatalogRepository(catalog.GetAll(), catalog.Categories())
}

func newCatalogRepository(records []models.ClassificationRecord, categories []models.RecyclingCategory) *StaticCatalogRepository {
	byID := make(map[string]int, len(records))
	for i, r := range records {
		byID[r.ID] = i
	}
	return &StaticCatalogRepository{
		records:    records,
		categories: categories,
		byID:       byID,
	}
}

// All returns every classification record in catalog order
func (r *StaticCatalogRepository) All() []models.ClassificationRecord {
	out := make([]models.ClassificationRecord, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

// FindByID looks up a single record
func (r *StaticCatalogRepository) FindByID(id string) (models.ClassificationRecord, error) {
	i, ok := r.byID[id]
	if !ok {
		return models.ClassificationRecord{}, ErrRecordNotFound
	}
	return r.records[i].Clone(), nil
}

// Guide returns the informational recycling categories
func (r *StaticCatalogRepository) Guide() []models.RecyclingCategory {
	return r.SearchGuide("", false)
}

// SearchGuide filters guide categories, case-insensitively, by category name
// or by any listed item. An empty query matches everything.
func (r *StaticCatalogRepository) SearchGuide(query string, fuzzy bool) []models.RecyclingCategory {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.RecyclingCategory, 0, len(r.categories))
	for _, c := range r.categories {
		if q == "" || categoryContains(c, q) || (fuzzy && categoryNear(c, q)) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// CheckRecyclable reports whether a free-text item is recyclable and which
// guide category it belongs to. Non-recyclable items go to general waste.
func (r *StaticCatalogRepository) CheckRecyclable(item string) models.RecyclabilityCheck {
	check := models.RecyclabilityCheck{
		Item:       item,
		Recyclable: !catalog.IsNonRecyclable(item),
	}
	if !check.Recyclable {
		check.Category = catalog.GeneralWaste
		check.Color, _ = catalog.CategoryColor(catalog.GeneralWaste)
		return check
	}

	q := strings.ToLower(strings.TrimSpace(item))
	for _, c := range r.categories {
		if categoryContains(c, q) || categoryMentioned(c, q) {
			check.Category = c.Name
			check.Color = c.Color
			break
		}
	}
	return check
}

func categoryContains(c models.RecyclingCategory, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) {
		return true
	}
	for _, item := range c.Items {
		if strings.Contains(strings.ToLower(item), q) {
			return true
		}
	}
	return false
}

// categoryMentioned reports whether q names the category or one of its items
func categoryMentioned(c models.RecyclingCategory, q string) bool {
	if strings.Contains(q, strings.ToLower(c.Name)) {
		return true
	}
	for _, item := range c.Items {
		if strings.Contains(q, strings.ToLower(item)) {
			return true
		}
	}
	return false
}

// maxEditDistance scales tolerance with query length; short queries never fuzz
func maxEditDistance(q string) int {
	switch n := utf8.RuneCountInString(q); {
	case n < 4:
		return 0
	case n < 6:
		return 1
	default:
		return 2
	}
}

func categoryNear(c models.RecyclingCategory, q string) bool {
	limit := maxEditDistance(q)
	if limit == 0 {
		return false
	}

	candidates := []string{c.Name}
	for _, item := range c.Items {
		candidates = append(candidates, item)
		candidates = append(candidates, strings.Fields(item)...)
	}
	for _, cand := range candidates {
		if levenshtein.Distance(q, strings.ToLower(cand)) <= limit {
			return true
		}
	}
	return false
}

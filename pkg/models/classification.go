package models

// ClassificationRecord is one known disposal category in the item catalog
type ClassificationRecord struct {
	ID             string   `json:"id" validate:"required"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Material       string   `json:"material"`
	Instructions   []string `json:"instructions"`
	Tips           []string `json:"tips"`
	Color          string   `json:"color"`
	BaseConfidence float64  `json:"base_confidence"`
}

// Clone returns a deep copy so callers can never mutate catalog slices
func (r ClassificationRecord) Clone() ClassificationRecord {
	out := r
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Tips = append([]string(nil), r.Tips...)
	return out
}

// ScoredRecord is a catalog record annotated with a confidence computed for one request
type ScoredRecord struct {
	ClassificationRecord
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// ClassificationResult is produced fresh for every classification call
type ClassificationResult struct {
	Item         ScoredRecord   `json:"item"`
	Alternatives []ScoredRecord `json:"alternatives,omitempty" validate:"max=2,dive"`
}

// HasAlternatives reports whether any alternative candidates were attached
func (r *ClassificationResult) HasAlternatives() bool {
	return r != nil && len(r.Alternatives) > 0
}

// RecyclingCategory is an informational guide entry for browsing by material
type RecyclingCategory struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Items       []string `json:"items"`
	Tips        []string `json:"tips"`
}

// Clone returns a deep copy of the category
func (c RecyclingCategory) Clone() RecyclingCategory {
	out := c
	out.Items = append([]string(nil), c.Items...)
	out.Tips = append([]string(nil), c.Tips...)
	return out
}

// RecyclabilityCheck answers whether a free-text item name is recyclable at all
type RecyclabilityCheck struct {
	Item       string `json:"item"`
	Recyclable bool   `json:"recyclable"`
	Category   string `json:"category,omitempty"`
	Color      string `json:"color,omitempty"`
}

package repository

import (
	"errors"
	"testing"

	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

func categoryIDs(cats []models.RecyclingCategory) []string {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStaticCatalogRepository_FindByID(t *testing.T) {
	repo := NewStaticCatalogRepository()

	rec, err := repo.FindByID("aluminum-can")
	if err != nil {
		t.Fatalf("Expected record, got %v", err)
	}
	if rec.Material != "Aluminum" {
		t.Errorf("Expected Aluminum, got %s", rec.Material)
	}

	_, err = repo.FindByID("banana-peel")
	if !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestStaticCatalogRepository_AllIsIsolated(t *testing.T) {
	repo := NewStaticCatalogRepository()

	all := repo.All()
	all[0].Tips[0] = "mutated"

	again, _ := repo.FindByID(all[0].ID)
	if again.Tips[0] == "mutated" {
		t.Error("Repository records were mutated through All()")
	}
}

func TestSearchGuide(t *testing.T) {
	repo := NewStaticCatalogRepository()

	tests := []struct {
		name  string
		query string
		fuzzy bool
		want  []string
	}{
		{"empty query returns all", "", false, []string{"plastic", "glass", "metal", "paper"}},
		{"category name", "glass", false, []string{"glass"}},
		{"case insensitive", "METAL", false, []string{"metal"}},
		{"item substring", "can", false, []string{"metal"}},
		{"item shared by categories", "bottle", false, []string{"plastic", "glass"}},
		{"paper item", "carton", false, []string{"paper"}},
		{"no match", "banana", false, []string{}},
		{"typo without fuzzy", "bottel", false, []string{}},
		{"typo with fuzzy", "bottel", true, []string{"plastic", "glass"}},
		{"fuzzy category name", "metl", true, []string{"metal"}},
		{"short query never fuzzes", "cap", true, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categoryIDs(repo.SearchGuide(tt.query, tt.fuzzy))
			if !equalIDs(got, tt.want) {
				t.Errorf("SearchGuide(%q, %v) = %v, want %v", tt.query, tt.fuzzy, got, tt.want)
			}
		})
	}
}

func TestCheckRecyclable(t *testing.T) {
	repo := NewStaticCatalogRepository()

	if check := repo.CheckRecyclable("Glass bottle"); !check.Recyclable {
		t.Error("Expected glass bottle to be recyclable")
	}
	check := repo.CheckRecyclable("used battery")
	if check.Recyclable {
		t.Error("Expected battery to be non-recyclable")
	}
	if check.Item != "used battery" {
		t.Errorf("Expected item echoed back, got %q", check.Item)
	}
}

func TestMaxEditDistance(t *testing.T) {
	tests := map[string]int{"cap": 0, "metl": 1, "glas": 1, "bottel": 2, "newspapr": 2}
	for q, want := range tests {
		if got := maxEditDistance(q); got != want {
			t.Errorf("maxEditDistance(%q) = %d, want %d", q, got, want)
		}
	}
}

func TestCheckRecyclable_CategoryAndColor(t *testing.T) {
	repo := NewStaticCatalogRepository()

	tests := []struct {
		item     string
		category string
		color    string
	}{
		{"Glass jar", "Glass", "bg-green-500"},
		{"crushed aluminum can", "Metal", "bg-gray-500"},
		{"newspaper", "Paper", "bg-yellow-500"},
		{"Styrofoam tray", "General waste", "bg-red-500"},
		{"old battery", "General waste", "bg-red-500"},
		{"ceramic mug", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			check := repo.CheckRecyclable(tt.item)
			if check.Category != tt.category || check.Color != tt.color {
				t.Errorf("CheckRecyclable(%q) = %+v, want category %q color %q", tt.item, check, tt.category, tt.color)
			}
		})
	}
}

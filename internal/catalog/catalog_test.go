package catalog

import "testing"

func TestGetAll_FixedItemSet(t *testing.T) {
	all := GetAll()

	wantIDs := []string{"pet-bottle", "glass-bottle", "aluminum-can", "paper-box", "plastic-container"}
	if len(all) != len(wantIDs) {
		t.Fatalf("Expected %d records, got %d", len(wantIDs), len(all))
	}
	for i, id := range wantIDs {
		if all[i].ID != id {
			t.Errorf("Record %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	seen := make(map[string]bool)
	for _, r := range all {
		if seen[r.ID] {
			t.Errorf("Duplicate id %s", r.ID)
		}
		seen[r.ID] = true
		if r.BaseConfidence < 0 || r.BaseConfidence > 1 {
			t.Errorf("%s: base confidence %f out of range", r.ID, r.BaseConfidence)
		}
		if len(r.Instructions) == 0 || len(r.Tips) == 0 {
			t.Errorf("%s: expected instructions and tips", r.ID)
		}
	}
}

func TestGetAll_ReturnsCopies(t *testing.T) {
	first := GetAll()
	first[0].Name = "mutated"
	first[0].Instructions[0] = "mutated"

	second := GetAll()
	if second[0].Name != "PET bottle" {
		t.Errorf("Catalog name was mutated: %s", second[0].Name)
	}
	if second[0].Instructions[0] == "mutated" {
		t.Error("Catalog instructions were mutated through a returned slice")
	}
	if len(second) != 5 {
		t.Errorf("Expected 5 records, got %d", len(second))
	}
}

func TestCategoryColor(t *testing.T) {
	if c, ok := CategoryColor("Glass"); !ok || c != "bg-green-500" {
		t.Errorf("Expected bg-green-500, got %q (%v)", c, ok)
	}
	if c, ok := CategoryColor("General waste"); !ok || c != "bg-red-500" {
		t.Errorf("Expected bg-red-500, got %q (%v)", c, ok)
	}
	if _, ok := CategoryColor("Textiles"); ok {
		t.Error("Expected unknown category")
	}
	for _, r := range GetAll() {
		if c, ok := CategoryColor(r.Category); !ok || c != r.Color {
			t.Errorf("%s: category color %q does not match record color %q", r.ID, c, r.Color)
		}
	}
}

func TestIsNonRecyclable(t *testing.T) {
	tests := map[string]bool{
		"Styrofoam tray":        true,
		"old CLOTHING":          true,
		"AA Battery":            true,
		"plastic bag from mart": true,
		"PET bottle":            false,
		"Aluminum can":          false,
		"":                      false,
	}
	for name, want := range tests {
		if got := IsNonRecyclable(name); got != want {
			t.Errorf("IsNonRecyclable(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) != 4 {
		t.Fatalf("Expected 4 guide categories, got %d", len(cats))
	}
	cats[0].Items[0] = "mutated"
	if Categories()[0].Items[0] != "PET bottle" {
		t.Error("Guide categories were mutated through a returned slice")
	}
}

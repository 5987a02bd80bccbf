package catalog

import (
	"strings"

	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

var categories = []models.RecyclingCategory{
	{
		ID:          "plastic",
		Name:        "Plastic",
		Description: "PET, PP, PE, PS and other plastic materials",
		Color:       "bg-blue-500",
		Items:       []string{"PET bottle", "Plastic container", "Disposable cup", "Plastic bag"},
		Tips: []string{
			"Remove labels and caps",
			"Empty completely and rinse",
			"Check the material mark",
			"Contaminated plastic goes in general waste",
		},
	},
	{
		ID:          "glass",
		Name:        "Glass",
		Description: "Clear glass bottles and jars",
		Color:       "bg-green-500",
		Items:       []string{"Glass bottle", "Glass jar", "Medicine bottle"},
		Tips: []string{
			"Remove caps and labels",
			"Broken glass goes in general waste",
			"Colored glass may be hard to recycle",
			"Return medicine bottles to a pharmacy",
		},
	},
	{
		ID:          "metal",
		Name:        "Metal",
		Description: "Aluminum, steel and other metals",
		Color:       "bg-gray-500",
		Items:       []string{"Aluminum can", "Steel can", "Spray can"},
		Tips: []string{
			"Empty completely and rinse",
			"Spray cans must be fully depressurised",
			"Crush to reduce volume",
			"Aluminum can be recycled indefinitely",
		},
	},
	{
		ID:          "paper",
		Name:        "Paper",
		Description: "Newspaper, paper boxes, cartons and more",
		Color:       "bg-yellow-500",
		Items:       []string{"Newspaper", "Paper box", "Paper carton", "Booklet"},
		Tips: []string{
			"Remove tape and stickers",
			"Flatten before disposal",
			"Plastic-coated paper is hard to recycle",
			"Keep paper dry, moisture ruins it",
		},
	},
}

// Categories returns the recycling guide in display order
func Categories() []models.RecyclingCategory {
	out := make([]models.RecyclingCategory, len(categories))
	for i, c := range categories {
		out[i] = c.Clone()
	}
	return out
}

var nonRecyclableKeywords = []string{
	"vinyl",
	"styrofoam",
	"disposable cup",
	"plastic bag",
	"food waste",
	"clothing",
	"electronics",
	"battery",
	"fluorescent lamp",
}

// IsNonRecyclable reports whether an item name contains a known non-recyclable keyword
func IsNonRecyclable(itemName string) bool {
	name := strings.ToLower(itemName)
	for _, keyword := range nonRecyclableKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

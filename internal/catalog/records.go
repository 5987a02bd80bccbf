// Package catalog holds the static recycling reference data. Everything here is
// read-only after init; accessors hand out deep copies.
package catalog

import "github.com/anime-shed/recycling-guide-go/pkg/models"

var records = []models.ClassificationRecord{
	{
		ID:       "pet-bottle",
		Name:     "PET bottle",
		Category: "Plastic (PET)",
		Material: "PET",
		Instructions: []string{
			"Remove the label and the cap",
			"Empty the bottle completely and rinse it",
			"Crush it to reduce its volume",
			"Put it in the clear recycling bin",
		},
		Tips: []string{
			"Bottles with labels left on may not be recyclable",
			"Contaminated plastic goes in general waste",
			"Check for the PET mark",
		},
		Color:          "bg-blue-500",
		BaseConfidence: 0.95,
	},
	{
		ID:       "glass-bottle",
		Name:     "Glass bottle",
		Category: "Glass",
		Material: "Glass",
		Instructions: []string{
			"Remove the cap and the label",
			"Empty the bottle completely and rinse it",
			"Broken glass goes in general waste",
			"Put it in the glass collection bin",
		},
		Tips: []string{
			"Wrap broken glass in newspaper before throwing it away",
			"Colored glass may be hard to recycle",
			"Return medicine bottles to a pharmacy",
		},
		Color:          "bg-green-500",
		BaseConfidence: 0.92,
	},
	{
		ID:       "aluminum-can",
		Name:     "Aluminum can",
		Category: "Metal",
		Material: "Aluminum",
		Instructions: []string{
			"Empty the can completely and rinse it",
			"Crush it to reduce its volume",
			"Put it in the metal collection bin",
		},
		Tips: []string{
			"Spray cans must be fully depressurised",
			"Contaminated cans go in general waste",
			"Aluminum can be recycled indefinitely",
		},
		Color:          "bg-gray-500",
		BaseConfidence: 0.88,
	},
	{
		ID:       "paper-box",
		Name:     "Paper box",
		Category: "Paper",
		Material: "Paper",
		Instructions: []string{
			"Remove tape and stickers",
			"Flatten the box",
			"Put it in the paper collection bin",
		},
		Tips: []string{
			"Plastic-coated paper is hard to recycle",
			"Contaminated paper goes in general waste",
			"Keep paper dry, moisture ruins it",
		},
		Color:          "bg-yellow-500",
		BaseConfidence: 0.85,
	},
	{
		ID:       "plastic-container",
		Name:     "Plastic container",
		Category: "Plastic (Other)",
		Material: "PP/PE",
		Instructions: []string{
			"Remove the label and the lid",
			"Empty the container completely and rinse it",
			"Put it in the plastic collection bin",
		},
		Tips: []string{
			"Check the material mark (PP, PE, PS, ...)",
			"Contaminated plastic goes in general waste",
			"Clear plastic recycles better",
		},
		Color:          "bg-blue-400",
		BaseConfidence: 0.82,
	},
}

// GetAll returns every classification record in catalog order
func GetAll() []models.ClassificationRecord {
	out := make([]models.ClassificationRecord, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// GeneralWaste is the display category of anything that cannot be recycled
const GeneralWaste = "General waste"

var categoryColors = map[string]string{
	"Plastic (PET)":   "bg-blue-500",
	"Plastic (Other)": "bg-blue-400",
	"Glass":           "bg-green-500",
	"Metal":           "bg-gray-500",
	"Paper":           "bg-yellow-500",
	GeneralWaste:      "bg-red-500",
}

// CategoryColor returns the color tag for a display category and whether it is known
func CategoryColor(category string) (string, bool) {
	c, ok := categoryColors[category]
	return c, ok
}

package classifier

import (
	"image"
	"math"
	"sort"

	"github.com/nfnt/resize"

	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// Preprocess resizes img to size x size and lays it out as normalised CHW float32 (RGB)
func Preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	bounds := resized.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	data := make([]float32, 3*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			i := y*width + x
			data[i] = float32(r) / 65535.0
			data[plane+i] = float32(g) / 65535.0
			data[2*plane+i] = float32(b) / 65535.0
		}
	}
	return data
}

// Softmax converts raw model scores into probabilities
func Softmax(scores []float32) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}

	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, float64(s))
	}

	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(float64(s) - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Rank orders the known classes by probability and shapes them like a simulated result:
// the best class is primary and the next ones become alternatives when it is unsure.
// Classes with no catalog record are skipped. Returns nil if nothing is known.
func Rank(probs []float64, classes []string, records []models.ClassificationRecord) *models.ClassificationResult {
	byID := make(map[string]models.ClassificationRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	var ranked []models.ScoredRecord
	seen := make(map[string]bool, len(classes))
	for i, class := range classes {
		if i >= len(probs) || seen[class] {
			continue
		}
		rec, ok := byID[class]
		if !ok {
			continue
		}
		seen[class] = true
		ranked = append(ranked, score(rec, probs[i]))
	}
	if len(ranked) == 0 {
		return nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	result := &models.ClassificationResult{Item: ranked[0]}
	if OffersAlternatives(ranked[0].Confidence) {
		rest := ranked[1:]
		if len(rest) > MaxAlternatives {
			rest = rest[:MaxAlternatives]
		}
		if len(rest) > 0 {
			result.Alternatives = rest
		}
	}
	return result
}

package service

import (
	"sort"
	"strings"

	"core/internal/model"
)

// Quick preset names.
const (
	PresetBalanced  = "balanced"
	PresetStyle     = "style"
	PresetSize      = "size"
	PresetAmenities = "amenities"
	PresetType      = "type"
)

// quickPresets are fixed constant weight tuples, pre-validated to sum
// to 100. They are substituted wholesale, never merged.
var quickPresets = map[string]model.SimilarityWeights{
	PresetBalanced:  {PropertyType: 20, Style: 20, Architecture: 20, Bedrooms: 20, Amenities: 20},
	PresetStyle:     {PropertyType: 10, Style: 50, Architecture: 25, Bedrooms: 5, Amenities: 10},
	PresetSize:      {PropertyType: 15, Style: 10, Architecture: 10, Bedrooms: 50, Amenities: 15},
	PresetAmenities: {PropertyType: 15, Style: 10, Architecture: 10, Bedrooms: 15, Amenities: 50},
	PresetType:      {PropertyType: 50, Style: 15, Architecture: 15, Bedrooms: 10, Amenities: 10},
}

// QuickPreset returns a named constant weight tuple.
func QuickPreset(name string) (model.SimilarityWeights, bool) {
	w, ok := quickPresets[strings.ToLower(name)]
	return w, ok
}

// Ranker aggregates per-candidate similarity scores over the currently
// loaded page: ranking, per-feature ranking and threshold filtering. The
// per-feature comparison in Score mirrors what the remote analyzer
// computes, so breakdowns can be re-derived locally without a network
// call.
type Ranker struct{}

// NewRanker creates a ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Score compares a reference feature vector against a candidate and
// returns a weighted score in [0,100] with its per-feature breakdown.
// Each sub-scorer contributes points in [0, weight] for its feature.
func (r *Ranker) Score(ref, cand model.FeatureVector, w model.SimilarityWeights) model.SimilarityScore {
	breakdown := model.Breakdown{
		model.FeaturePropertyType: scoreExact(ref.PropertyType, cand.PropertyType, w.PropertyType),
		model.FeatureStyle:        scoreExact(ref.Style, cand.Style, w.Style),
		model.FeatureArchitecture: scoreExact(ref.Architecture, cand.Architecture, w.Architecture),
		model.FeatureBedrooms:     scoreBedrooms(ref.Bedrooms, cand.Bedrooms, w.Bedrooms),
		model.FeatureAmenities:    scoreAmenityFlags(ref, cand, w.Amenities),
	}

	total := 0
	for _, points := range breakdown {
		total += points
	}
	// With weights summing to 100 the total is already in range; the
	// clamp holds the invariant for arbitrary tuples.
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return model.SimilarityScore{Total: total, Breakdown: breakdown}
}

// scoreExact awards the full weight on a case-insensitive match, nothing
// otherwise. Empty reference descriptors are treated as "no preference".
func scoreExact(ref, cand string, weight int) int {
	if ref == "" {
		return weight
	}
	if strings.EqualFold(strings.TrimSpace(ref), strings.TrimSpace(cand)) {
		return weight
	}
	return 0
}

// scoreBedrooms decays linearly with the bedroom count difference,
// reaching zero at a difference of four.
func scoreBedrooms(ref, cand, weight int) int {
	if ref <= 0 {
		return weight
	}
	diff := ref - cand
	if diff < 0 {
		diff = -diff
	}
	if diff >= 4 {
		return 0
	}
	return weight * (4 - diff) / 4
}

// scoreAmenityFlags awards the fraction of the reference's amenity flags
// the candidate shares. A reference with no flags set scores full weight.
func scoreAmenityFlags(ref, cand model.FeatureVector, weight int) int {
	type pair struct{ ref, cand bool }
	pairs := []pair{
		{ref.HasPool, cand.HasPool},
		{ref.HasGarden, cand.HasGarden},
		{ref.HasBalcony, cand.HasBalcony},
	}

	wanted, matched := 0, 0
	for _, p := range pairs {
		if p.ref {
			wanted++
			if p.cand {
				matched++
			}
		}
	}
	if wanted == 0 {
		return weight
	}
	return weight * matched / wanted
}

// Rank sorts results by total score descending. The sort is stable: ties
// keep the original fetch order, and candidates without a score sink to
// the end in their original order.
func (r *Ranker) Rank(results []model.Property, scores map[int64]model.SimilarityScore) []model.Property {
	out := make([]model.Property, len(results))
	copy(out, results)

	sort.SliceStable(out, func(i, j int) bool {
		return totalOf(scores, out[i].ID) > totalOf(scores, out[j].ID)
	})
	return out
}

// RankByFeature sorts results by one feature's breakdown points
// descending, with the same stable tie-break as Rank.
func (r *Ranker) RankByFeature(results []model.Property, breakdowns map[int64]model.Breakdown, feature model.Feature) []model.Property {
	out := make([]model.Property, len(results))
	copy(out, results)

	points := func(id int64) int {
		b, ok := breakdowns[id]
		if !ok {
			return -1
		}
		return b[feature]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return points(out[i].ID) > points(out[j].ID)
	})
	return out
}

// FilterByThresholds keeps a candidate iff, for every feature with a
// non-zero threshold, its breakdown percentage meets the threshold.
// Candidates with no breakdown are retained unconditionally (fail-open),
// as are checks against zero-weight features. This is a client-side
// post-filter: it never refetches and never changes the total count.
func (r *Ranker) FilterByThresholds(
	results []model.Property,
	breakdowns map[int64]model.Breakdown,
	thresholds model.Thresholds,
	weights model.SimilarityWeights,
) []model.Property {
	if len(thresholds) == 0 {
		return results
	}

	out := make([]model.Property, 0, len(results))
	for _, p := range results {
		breakdown, scored := breakdowns[p.ID]
		if !scored {
			out = append(out, p)
			continue
		}
		if meetsThresholds(breakdown, thresholds, weights) {
			out = append(out, p)
		}
	}
	return out
}

func meetsThresholds(breakdown model.Breakdown, thresholds model.Thresholds, weights model.SimilarityWeights) bool {
	for _, feature := range model.Features {
		threshold := thresholds[feature]
		if threshold <= 0 {
			continue
		}
		weight := weights.Weight(feature)
		if weight <= 0 {
			continue
		}
		pct := breakdown[feature] * 100 / weight
		if pct < threshold {
			return false
		}
	}
	return true
}

func totalOf(scores map[int64]model.SimilarityScore, id int64) int {
	s, ok := scores[id]
	if !ok {
		return -1
	}
	return s.Total
}

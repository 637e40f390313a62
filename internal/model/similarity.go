package model

import "time"

// Feature identifies one of the five scored feature categories.
type Feature string

const (
	FeaturePropertyType Feature = "property_type"
	FeatureStyle        Feature = "style"
	FeatureArchitecture Feature = "architecture"
	FeatureBedrooms     Feature = "bedrooms"
	FeatureAmenities    Feature = "amenities"
)

// Features lists the scored categories in presentation order.
var Features = []Feature{
	FeaturePropertyType,
	FeatureStyle,
	FeatureArchitecture,
	FeatureBedrooms,
	FeatureAmenities,
}

// FeatureVector holds the descriptors extracted from one property image.
type FeatureVector struct {
	PropertyType string `json:"property_type"`
	Style        string `json:"style"`
	Architecture string `json:"architecture"`
	Bedrooms     int    `json:"bedrooms"`
	HasPool      bool   `json:"has_pool"`
	HasGarden    bool   `json:"has_garden"`
	HasBalcony   bool   `json:"has_balcony"`
}

// SimilarityWeights assigns importance to each feature category.
// By convention the five values sum to 100; this is enforced only when
// persisting a named preset, never on recompute.
type SimilarityWeights struct {
	PropertyType int `json:"property_type"`
	Style        int `json:"style"`
	Architecture int `json:"architecture"`
	Bedrooms     int `json:"bedrooms"`
	Amenities    int `json:"amenities"`
}

// Sum returns the total of the five weights.
func (w SimilarityWeights) Sum() int {
	return w.PropertyType + w.Style + w.Architecture + w.Bedrooms + w.Amenities
}

// Weight returns the weight assigned to one feature.
func (w SimilarityWeights) Weight(f Feature) int {
	switch f {
	case FeaturePropertyType:
		return w.PropertyType
	case FeatureStyle:
		return w.Style
	case FeatureArchitecture:
		return w.Architecture
	case FeatureBedrooms:
		return w.Bedrooms
	case FeatureAmenities:
		return w.Amenities
	}
	return 0
}

// Breakdown maps a feature to the raw points it contributed, each in
// [0, weight] for that feature.
type Breakdown map[Feature]int

// SimilarityScore is an aggregate score with its per-feature breakdown.
type SimilarityScore struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// Thresholds maps a feature to a minimum percentage (0 disables the
// filter for that feature; otherwise 10..100 in steps of 10).
type Thresholds map[Feature]int

// RankedProperty is a property with its similarity score attached.
type RankedProperty struct {
	Property
	Score *SimilarityScore `json:"score,omitempty"`
}

// WeightPreset is a user-saved, named weight tuple.
type WeightPreset struct {
	Name      string            `json:"name" db:"name"`
	Weights   SimilarityWeights `json:"weights"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

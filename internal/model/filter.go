package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// PropertyType enumerates the supported property categories.
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeLand       PropertyType = "land"
)

// ListingType enumerates how a property is offered.
type ListingType string

const (
	ListingTypeSale  ListingType = "sale"
	ListingTypeRent  ListingType = "rent"
	ListingTypeLease ListingType = "lease"
)

// SortOrder enumerates server-side sort options.
type SortOrder string

const (
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNewest    SortOrder = "newest"
	SortAreaAsc   SortOrder = "area_asc"
	SortAreaDesc  SortOrder = "area_desc"
)

// FilterState is the canonical set of search parameters driving one query.
// The zero value is a valid "no filters, page 1" state after Normalized.
// Field order is fixed: the canonical cache key is the JSON serialization
// of the normalized state, so two states are cache-equivalent iff their
// keys are byte-equal.
type FilterState struct {
	SearchText   string       `json:"search_text,omitempty"`
	PropertyType PropertyType `json:"property_type,omitempty"`
	ListingType  ListingType  `json:"listing_type,omitempty"`
	MinPrice     *float64     `json:"min_price,omitempty"`
	MaxPrice     *float64     `json:"max_price,omitempty"`
	MinArea      *float64     `json:"min_area,omitempty"`
	MaxArea      *float64     `json:"max_area,omitempty"`
	MinBedrooms  *int         `json:"min_bedrooms,omitempty"`
	MinBathrooms *int         `json:"min_bathrooms,omitempty"`
	Amenities    []string     `json:"amenities,omitempty"`
	SortBy       SortOrder    `json:"sort_by,omitempty"`
	Page         int          `json:"page"`
}

// Normalized returns a copy suitable for cache keying and querying:
// page floored at 1, amenities sorted and de-duplicated, and inverted
// price/area ranges dropped entirely (an inconsistent pair is treated as
// unbounded rather than as an error).
func (f FilterState) Normalized() FilterState {
	out := f
	if out.Page < 1 {
		out.Page = 1
	}
	if len(f.Amenities) > 0 {
		seen := make(map[string]struct{}, len(f.Amenities))
		amenities := make([]string, 0, len(f.Amenities))
		for _, a := range f.Amenities {
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			amenities = append(amenities, a)
		}
		sort.Strings(amenities)
		if len(amenities) == 0 {
			amenities = nil
		}
		out.Amenities = amenities
	}
	if out.MinPrice != nil && out.MaxPrice != nil && *out.MinPrice > *out.MaxPrice {
		out.MinPrice = nil
		out.MaxPrice = nil
	}
	if out.MinArea != nil && out.MaxArea != nil && *out.MinArea > *out.MaxArea {
		out.MinArea = nil
		out.MaxArea = nil
	}
	return out
}

// CacheKey returns the canonical key for this filter state. Page is part
// of the key: every page is its own cache entry.
func (f FilterState) CacheKey() string {
	b, err := json.Marshal(f.Normalized())
	if err != nil {
		// FilterState has a fixed, marshalable shape; failing here is a
		// programming error, not a runtime condition.
		panic(fmt.Sprintf("filter state not serializable: %v", err))
	}
	return string(b)
}

// WithPage returns a copy pointing at the given page.
func (f FilterState) WithPage(page int) FilterState {
	f.Page = page
	return f
}

// IsZero reports whether no filter field is set (page is ignored).
func (f FilterState) IsZero() bool {
	return f.SearchText == "" &&
		f.PropertyType == "" &&
		f.ListingType == "" &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinArea == nil && f.MaxArea == nil &&
		f.MinBedrooms == nil && f.MinBathrooms == nil &&
		len(f.Amenities) == 0 &&
		f.SortBy == ""
}

// Merge overlays the set fields of other onto f and returns the result.
// Used to fold a parsed voice command into the active filter state.
func (f FilterState) Merge(other FilterState) FilterState {
	out := f
	if other.SearchText != "" {
		out.SearchText = other.SearchText
	}
	if other.PropertyType != "" {
		out.PropertyType = other.PropertyType
	}
	if other.ListingType != "" {
		out.ListingType = other.ListingType
	}
	if other.MinPrice != nil {
		out.MinPrice = other.MinPrice
	}
	if other.MaxPrice != nil {
		out.MaxPrice = other.MaxPrice
	}
	if other.MinArea != nil {
		out.MinArea = other.MinArea
	}
	if other.MaxArea != nil {
		out.MaxArea = other.MaxArea
	}
	if other.MinBedrooms != nil {
		out.MinBedrooms = other.MinBedrooms
	}
	if other.MinBathrooms != nil {
		out.MinBathrooms = other.MinBathrooms
	}
	if len(other.Amenities) > 0 {
		merged := append([]string{}, out.Amenities...)
		for _, a := range other.Amenities {
			found := false
			for _, existing := range merged {
				if existing == a {
					found = true
					break
				}
			}
			if !found {
				merged = append(merged, a)
			}
		}
		out.Amenities = merged
	}
	if other.SortBy != "" {
		out.SortBy = other.SortBy
	}
	return out
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestFilterState_Normalized(t *testing.T) {
	t.Run("page floored at one", func(t *testing.T) {
		assert.Equal(t, 1, FilterState{Page: 0}.Normalized().Page)
		assert.Equal(t, 1, FilterState{Page: -2}.Normalized().Page)
		assert.Equal(t, 3, FilterState{Page: 3}.Normalized().Page)
	})

	t.Run("amenities sorted and de-duplicated", func(t *testing.T) {
		f := FilterState{Amenities: []string{"Pool", "Gym", "Pool", "", "Balcony"}}
		assert.Equal(t, []string{"Balcony", "Gym", "Pool"}, f.Normalized().Amenities)
	})

	t.Run("all-empty amenities collapse to nil", func(t *testing.T) {
		f := FilterState{Amenities: []string{"", ""}}
		assert.Nil(t, f.Normalized().Amenities)
	})

	t.Run("inverted price range dropped", func(t *testing.T) {
		f := FilterState{MinPrice: fptr(900000), MaxPrice: fptr(500000)}
		got := f.Normalized()
		assert.Nil(t, got.MinPrice)
		assert.Nil(t, got.MaxPrice)
	})

	t.Run("valid range kept", func(t *testing.T) {
		f := FilterState{MinArea: fptr(50), MaxArea: fptr(120)}
		got := f.Normalized()
		require.NotNil(t, got.MinArea)
		assert.Equal(t, float64(50), *got.MinArea)
	})
}

func TestFilterState_CacheKey(t *testing.T) {
	t.Run("order-insensitive amenities", func(t *testing.T) {
		a := FilterState{Amenities: []string{"Pool", "Gym"}, Page: 1}
		b := FilterState{Amenities: []string{"Gym", "Pool", "Gym"}}
		assert.Equal(t, a.CacheKey(), b.CacheKey())
	})

	t.Run("page is part of the key", func(t *testing.T) {
		a := FilterState{SearchText: "villa", Page: 1}
		b := FilterState{SearchText: "villa", Page: 2}
		assert.NotEqual(t, a.CacheKey(), b.CacheKey())
	})

	t.Run("any field change changes the key", func(t *testing.T) {
		base := FilterState{PropertyType: PropertyTypeVilla, Page: 1}
		changed := base
		changed.MinBedrooms = iptr(2)
		assert.NotEqual(t, base.CacheKey(), changed.CacheKey())
	})
}

func TestFilterState_Merge(t *testing.T) {
	base := FilterState{
		SearchText: "city center",
		MaxPrice:   fptr(800000),
		Amenities:  []string{"Pool"},
		Page:       4,
	}

	merged := base.Merge(FilterState{
		PropertyType: PropertyTypeApartment,
		MinBedrooms:  iptr(2),
		Amenities:    []string{"Gym", "Pool"},
	})

	assert.Equal(t, "city center", merged.SearchText, "unset fields never clear existing ones")
	require.NotNil(t, merged.MaxPrice)
	assert.Equal(t, float64(800000), *merged.MaxPrice)
	assert.Equal(t, PropertyTypeApartment, merged.PropertyType)
	require.NotNil(t, merged.MinBedrooms)
	assert.Equal(t, 2, *merged.MinBedrooms)
	assert.ElementsMatch(t, []string{"Pool", "Gym"}, merged.Amenities)
}

func TestFilterState_IsZero(t *testing.T) {
	assert.True(t, FilterState{Page: 7}.IsZero(), "page alone is not a filter")
	assert.False(t, FilterState{SearchText: "x"}.IsZero())
	assert.False(t, FilterState{MinBedrooms: iptr(1)}.IsZero())
}

package utils

import (
	"strings"
	"unicode"
)

// Canonical amenity names used across filters, voice parsing and storage.
const (
	AmenityPool     = "Pool"
	AmenityGym      = "Gym"
	AmenityParking  = "Parking"
	AmenitySecurity = "Security"
	AmenityGarden   = "Garden"
	AmenityBalcony  = "Balcony"
	AmenityAircon   = "Air Conditioning"
	AmenityElevator = "Elevator"
)

// amenityAliases maps a canonical amenity to the spoken/stored variants
// that should resolve to it.
var amenityAliases = map[string][]string{
	AmenityPool:     {"pool", "swimming"},
	AmenityGym:      {"gym", "fitness"},
	AmenityParking:  {"parking", "garage"},
	AmenitySecurity: {"security", "guard"},
	AmenityGarden:   {"garden", "yard"},
	AmenityBalcony:  {"balcony", "terrace"},
	AmenityAircon:   {"air conditioning", "aircon", "ac"},
	AmenityElevator: {"elevator", "lift"},
}

// amenityOrder keeps extraction output deterministic.
var amenityOrder = []string{
	AmenityPool, AmenityGym, AmenityParking, AmenitySecurity,
	AmenityGarden, AmenityBalcony, AmenityAircon, AmenityElevator,
}

// NormalizeAmenity maps a free-form amenity term to its canonical name.
// Unknown terms are returned title-cased.
func NormalizeAmenity(term string) string {
	lower := strings.ToLower(strings.TrimSpace(term))
	if lower == "" {
		return ""
	}
	for _, canonical := range amenityOrder {
		if strings.EqualFold(canonical, lower) {
			return canonical
		}
		for _, alias := range amenityAliases[canonical] {
			if lower == alias {
				return canonical
			}
		}
	}
	return titleCase(lower)
}

// titleCase capitalizes the first rune of each word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ExtractAmenities collects every canonical amenity whose alias appears as
// a word in the text. Matching is disjunctive: all hits are returned, in
// canonical order.
func ExtractAmenities(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, canonical := range amenityOrder {
		for _, alias := range amenityAliases[canonical] {
			if containsWord(lower, alias) {
				out = append(out, canonical)
				break
			}
		}
	}
	return out
}

// AmenityPatterns returns the ILIKE patterns the store should match for a
// filter term, covering known aliases.
func AmenityPatterns(term string) []string {
	canonical := NormalizeAmenity(term)
	aliases, ok := amenityAliases[canonical]
	if !ok {
		return []string{"%" + canonical + "%"}
	}
	patterns := make([]string, 0, len(aliases)+1)
	patterns = append(patterns, "%"+canonical+"%")
	for _, alias := range aliases {
		patterns = append(patterns, "%"+alias+"%")
	}
	return patterns
}

// containsWord reports whether phrase occurs in text on word boundaries.
// "ac" must not match inside "space".
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

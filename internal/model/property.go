package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Property is a single listing record as returned by the remote store.
type Property struct {
	ID               int64           `json:"id" db:"id"`
	Title            string          `json:"title" db:"title"`
	Description      *string         `json:"description,omitempty" db:"description"`
	PropertyType     PropertyType    `json:"property_type" db:"property_type"`
	ListingType      ListingType     `json:"listing_type" db:"listing_type"`
	Price            *float64        `json:"price,omitempty" db:"price"`
	AreaSqm          *float64        `json:"area_sqm,omitempty" db:"area_sqm"`
	Bedrooms         *int            `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms        *int            `json:"bathrooms,omitempty" db:"bathrooms"`
	Location         *string         `json:"location,omitempty" db:"location"`
	Amenities        JSONArray       `json:"amenities,omitempty" db:"amenities"`
	ThumbnailURL     *string         `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Images           JSONArray       `json:"images,omitempty" db:"images"`
	FeatureEmbedding pgvector.Vector `json:"-" db:"feature_embedding"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}

// ImageURL returns the best available image for feature extraction:
// the thumbnail if present, else the first gallery image.
func (p *Property) ImageURL() string {
	if p.ThumbnailURL != nil && *p.ThumbnailURL != "" {
		return *p.ThumbnailURL
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// SearchPage is one page of query results plus pagination metadata.
type SearchPage struct {
	Results    []Property `json:"results"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	HasMore    bool       `json:"has_more"`
}

// SearchResponse is a resolved page with cache metadata attached.
type SearchResponse struct {
	*SearchPage
	CacheHit bool  `json:"cache_hit"`
	Took     int64 `json:"took_ms"`
}

// FeatureEmbeddingItem carries one embedding update for the batch endpoint.
type FeatureEmbeddingItem struct {
	PropertyID int64     `json:"property_id" binding:"required"`
	Embedding  []float32 `json:"embedding" binding:"required"`
}

// JSONArray is a JSONB array-of-strings column.
type JSONArray []string

// Value implements driver.Valuer.
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONArray", value)
	}
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"core/internal/model"
	"core/internal/utils"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations. It implements the
// service layer's PropertyAPI, PreferenceStore, SearchLogger and
// VectorSearcher boundaries.
type PostgresRepository struct {
	db       *sqlx.DB
	pageSize int
}

// NewPostgresRepository creates a new PostgreSQL repository. pageSize is
// the fixed page size every query uses; it is not configurable per call.
func NewPostgresRepository(dsn string, maxConn, maxIdleConn, pageSize int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db, pageSize: pageSize}, nil
}

// Close closes the database connection.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

const propertyColumns = `
	id, title, description, property_type, listing_type, price, area_sqm,
	bedrooms, bathrooms, location, amenities, thumbnail_url, images,
	created_at, updated_at`

// Query performs a filtered, sorted, paginated property search.
func (r *PostgresRepository) Query(ctx context.Context, filters model.FilterState) (*model.SearchPage, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	addClause := func(clause string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf(clause, argIndex))
		args = append(args, value)
		argIndex++
	}

	if filters.SearchText != "" {
		pattern := "%" + filters.SearchText + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, pattern)
		argIndex++
	}
	if filters.PropertyType != "" {
		addClause("property_type = $%d", string(filters.PropertyType))
	}
	if filters.ListingType != "" {
		addClause("listing_type = $%d", string(filters.ListingType))
	}
	if filters.MinPrice != nil {
		addClause("price >= $%d", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		addClause("price <= $%d", *filters.MaxPrice)
	}
	if filters.MinArea != nil {
		addClause("area_sqm >= $%d", *filters.MinArea)
	}
	if filters.MaxArea != nil {
		addClause("area_sqm <= $%d", *filters.MaxArea)
	}
	if filters.MinBedrooms != nil {
		addClause("bedrooms >= $%d", *filters.MinBedrooms)
	}
	if filters.MinBathrooms != nil {
		addClause("bathrooms >= $%d", *filters.MinBathrooms)
	}

	// Each requested amenity must match at least one stored entry; known
	// aliases widen the match.
	for _, amenity := range filters.Amenities {
		patterns := utils.AmenityPatterns(amenity)
		orConds := make([]string, 0, len(patterns))
		for _, p := range patterns {
			orConds = append(orConds, fmt.Sprintf("elem::text ILIKE $%d", argIndex))
			args = append(args, p)
			argIndex++
		}
		whereClauses = append(whereClauses,
			"EXISTS (SELECT 1 FROM jsonb_array_elements_text(amenities) elem WHERE "+
				strings.Join(orConds, " OR ")+")")
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * r.pageSize

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, propertyColumns, whereClause, orderBy(filters.SortBy), argIndex, argIndex+1)
	args = append(args, r.pageSize, offset)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, selectQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch properties: %w", err)
	}

	totalPages := (total + r.pageSize - 1) / r.pageSize
	return &model.SearchPage{
		Results:    properties,
		TotalCount: total,
		Page:       page,
		PageSize:   r.pageSize,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, nil
}

func orderBy(sortBy model.SortOrder) string {
	switch sortBy {
	case model.SortPriceAsc:
		return "price ASC NULLS LAST, id ASC"
	case model.SortPriceDesc:
		return "price DESC NULLS LAST, id ASC"
	case model.SortAreaAsc:
		return "area_sqm ASC NULLS LAST, id ASC"
	case model.SortAreaDesc:
		return "area_sqm DESC NULLS LAST, id ASC"
	case model.SortNewest:
		return "created_at DESC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

// Suggest returns completion strings for partial search text, matching
// against property titles and locations.
func (r *PostgresRepository) Suggest(ctx context.Context, partialText string, limit int) ([]string, error) {
	query := `
		SELECT DISTINCT title FROM properties
		WHERE title ILIKE $1 OR location ILIKE $1
		ORDER BY title ASC
		LIMIT $2
	`
	var suggestions []string
	err := r.db.SelectContext(ctx, &suggestions, query, "%"+partialText+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	return suggestions, nil
}

// GetPropertyByID retrieves a single property, nil when not found.
func (r *PostgresRepository) GetPropertyByID(ctx context.Context, id int64) (*model.Property, error) {
	var property model.Property
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = $1", propertyColumns)
	err := r.db.GetContext(ctx, &property, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

// NearestByFeatures returns the properties closest to the given feature
// embedding by L2 distance.
func (r *PostgresRepository) NearestByFeatures(ctx context.Context, embedding []float32, limit int) ([]model.Property, error) {
	vec := pgvector.NewVector(embedding)
	query := fmt.Sprintf(`
		SELECT %s
		FROM properties
		WHERE feature_embedding IS NOT NULL
		ORDER BY feature_embedding <-> $1
		LIMIT $2
	`, propertyColumns)

	var properties []model.Property
	if err := r.db.SelectContext(ctx, &properties, query, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	return properties, nil
}

// BatchUpdateFeatureEmbeddings writes feature embeddings for multiple
// properties in one transaction. Returns the success count and
// per-property errors.
func (r *PostgresRepository) BatchUpdateFeatureEmbeddings(ctx context.Context, items []model.FeatureEmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE properties SET feature_embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.PropertyID); err != nil {
			errors = append(errors, fmt.Sprintf("property %d: %v", item.PropertyID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// ListWeightPresets returns saved weight presets, oldest first.
func (r *PostgresRepository) ListWeightPresets(ctx context.Context) ([]model.WeightPreset, error) {
	type presetRow struct {
		Name         string    `db:"name"`
		PropertyType int       `db:"weight_property_type"`
		Style        int       `db:"weight_style"`
		Architecture int       `db:"weight_architecture"`
		Bedrooms     int       `db:"weight_bedrooms"`
		Amenities    int       `db:"weight_amenities"`
		CreatedAt    time.Time `db:"created_at"`
	}

	query := `
		SELECT name, weight_property_type, weight_style, weight_architecture,
		       weight_bedrooms, weight_amenities, created_at
		FROM weight_presets
		ORDER BY created_at ASC
	`
	var rows []presetRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	presets := make([]model.WeightPreset, 0, len(rows))
	for _, row := range rows {
		presets = append(presets, model.WeightPreset{
			Name: row.Name,
			Weights: model.SimilarityWeights{
				PropertyType: row.PropertyType,
				Style:        row.Style,
				Architecture: row.Architecture,
				Bedrooms:     row.Bedrooms,
				Amenities:    row.Amenities,
			},
			CreatedAt: row.CreatedAt,
		})
	}
	return presets, nil
}

// InsertWeightPreset stores a new named preset.
func (r *PostgresRepository) InsertWeightPreset(ctx context.Context, preset model.WeightPreset) error {
	query := `
		INSERT INTO weight_presets (name, weight_property_type, weight_style,
			weight_architecture, weight_bedrooms, weight_amenities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		preset.Name,
		preset.Weights.PropertyType,
		preset.Weights.Style,
		preset.Weights.Architecture,
		preset.Weights.Bedrooms,
		preset.Weights.Amenities,
		preset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert preset: %w", err)
	}
	return nil
}

// DeleteWeightPreset removes a preset by name (case-insensitive).
func (r *PostgresRepository) DeleteWeightPreset(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM weight_presets WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

// GetPreference returns a stored preference value, empty when unset.
func (r *PostgresRepository) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM preferences WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get preference: %w", err)
	}
	return value, nil
}

// SetPreference writes a preference value, last writer wins.
func (r *PostgresRepository) SetPreference(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

// LogSearch logs an executed search.
func (r *PostgresRepository) LogSearch(ctx context.Context, searchID, filterKey string, resultCount int, propertyIDs []int64, tookMs int64) error {
	query := `
		INSERT INTO search_logs (search_id, filter_key, result_count, returned_property_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, searchID, filterKey, resultCount, pq.Array(propertyIDs), tookMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback records a user action against a logged search.
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID string, propertyID int64, action string) error {
	query := `
		UPDATE search_logs
		SET clicked_property_id = $2, action = $3
		WHERE search_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, searchID, propertyID, action)
	if err != nil {
		return fmt.Errorf("failed to log feedback: %w", err)
	}
	return nil
}

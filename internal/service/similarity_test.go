package service

import (
	"context"
	"testing"

	"core/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRanker_Score(t *testing.T) {
	ranker := NewRanker()
	weights := model.SimilarityWeights{
		PropertyType: 30, Style: 25, Architecture: 20, Bedrooms: 15, Amenities: 10,
	}

	t.Run("identical vectors score 100", func(t *testing.T) {
		ref := model.FeatureVector{
			PropertyType: "villa", Style: "modern", Architecture: "mediterranean",
			Bedrooms: 4, HasPool: true, HasGarden: true,
		}
		score := ranker.Score(ref, ref, weights)

		assert.Equal(t, 100, score.Total)
		assert.Equal(t, 30, score.Breakdown[model.FeaturePropertyType])
		assert.Equal(t, 25, score.Breakdown[model.FeatureStyle])
		assert.Equal(t, 20, score.Breakdown[model.FeatureArchitecture])
		assert.Equal(t, 15, score.Breakdown[model.FeatureBedrooms])
		assert.Equal(t, 10, score.Breakdown[model.FeatureAmenities])
	})

	t.Run("disjoint vectors score 0", func(t *testing.T) {
		ref := model.FeatureVector{
			PropertyType: "villa", Style: "modern", Architecture: "mediterranean",
			Bedrooms: 8, HasPool: true,
		}
		cand := model.FeatureVector{
			PropertyType: "apartment", Style: "industrial", Architecture: "brutalist",
			Bedrooms: 1,
		}
		score := ranker.Score(ref, cand, weights)
		assert.Equal(t, 0, score.Total)
	})

	t.Run("bedroom closeness decays", func(t *testing.T) {
		ref := model.FeatureVector{Bedrooms: 4}
		cand := model.FeatureVector{Bedrooms: 3}
		score := ranker.Score(ref, cand, model.SimilarityWeights{Bedrooms: 20})
		// one off: 3/4 of the weight
		assert.Equal(t, 15, score.Breakdown[model.FeatureBedrooms])
	})

	t.Run("partial amenity overlap", func(t *testing.T) {
		ref := model.FeatureVector{HasPool: true, HasGarden: true}
		cand := model.FeatureVector{HasPool: true}
		score := ranker.Score(ref, cand, model.SimilarityWeights{Amenities: 10})
		assert.Equal(t, 5, score.Breakdown[model.FeatureAmenities])
	})

	t.Run("empty reference descriptor is no preference", func(t *testing.T) {
		ref := model.FeatureVector{}
		cand := model.FeatureVector{PropertyType: "house", Style: "rustic", Bedrooms: 2}
		score := ranker.Score(ref, cand, weights)
		assert.Equal(t, 100, score.Total)
	})

	t.Run("total clamped for overweight tuples", func(t *testing.T) {
		ref := model.FeatureVector{PropertyType: "house"}
		score := ranker.Score(ref, ref, model.SimilarityWeights{
			PropertyType: 90, Style: 90, Architecture: 0, Bedrooms: 0, Amenities: 0,
		})
		assert.Equal(t, 100, score.Total)
	})
}

func TestRanker_RankStability(t *testing.T) {
	ranker := NewRanker()
	results := makeProperties(5)
	scores := map[int64]model.SimilarityScore{
		1: {Total: 40},
		2: {Total: 80},
		3: {Total: 40},
		4: {Total: 80},
		// 5 has no score and sinks to the end
	}

	first := ranker.Rank(results, scores)
	second := ranker.Rank(results, scores)

	ids := func(ps []model.Property) []int64 {
		out := make([]int64, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	// Ties keep original fetch order: 2 before 4, 1 before 3
	assert.Equal(t, []int64{2, 4, 1, 3, 5}, ids(first))
	assert.Equal(t, ids(first), ids(second), "re-running rank must not reorder")

	// Input order preserved
	assert.Equal(t, int64(1), results[0].ID)
}

func TestRanker_RankByFeature(t *testing.T) {
	ranker := NewRanker()
	results := makeProperties(3)
	breakdowns := map[int64]model.Breakdown{
		1: {model.FeatureStyle: 5},
		2: {model.FeatureStyle: 25},
		3: {model.FeatureStyle: 5},
	}

	ranked := ranker.RankByFeature(results, breakdowns, model.FeatureStyle)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.Equal(t, int64(1), ranked[1].ID)
	assert.Equal(t, int64(3), ranked[2].ID)
}

func TestRanker_FilterByThresholds(t *testing.T) {
	ranker := NewRanker()
	weights := model.SimilarityWeights{
		PropertyType: 30, Style: 25, Architecture: 20, Bedrooms: 15, Amenities: 10,
	}
	results := makeProperties(3)
	breakdowns := map[int64]model.Breakdown{
		1: {model.FeatureStyle: 25}, // 100% style
		2: {model.FeatureStyle: 5},  // 20% style
		// 3 has no breakdown at all
	}

	t.Run("threshold excludes low scorers", func(t *testing.T) {
		kept := ranker.FilterByThresholds(results, breakdowns, model.Thresholds{model.FeatureStyle: 50}, weights)
		ids := []int64{}
		for _, p := range kept {
			ids = append(ids, p.ID)
		}
		assert.Equal(t, []int64{1, 3}, ids)
	})

	t.Run("missing breakdown is fail-open", func(t *testing.T) {
		kept := ranker.FilterByThresholds(results, breakdowns, model.Thresholds{
			model.FeatureStyle:        100,
			model.FeaturePropertyType: 100,
		}, weights)
		require.Len(t, kept, 2)
		assert.Equal(t, int64(3), kept[1].ID, "unscored candidate is never excluded")
	})

	t.Run("zero thresholds keep everything", func(t *testing.T) {
		kept := ranker.FilterByThresholds(results, breakdowns, model.Thresholds{}, weights)
		assert.Len(t, kept, 3)
	})

	t.Run("zero-weight feature is skipped", func(t *testing.T) {
		kept := ranker.FilterByThresholds(results, breakdowns, model.Thresholds{model.FeatureAmenities: 50},
			model.SimilarityWeights{Style: 100})
		assert.Len(t, kept, 3)
	})
}

func TestQuickPresets(t *testing.T) {
	for _, name := range []string{PresetBalanced, PresetStyle, PresetSize, PresetAmenities, PresetType} {
		t.Run(name, func(t *testing.T) {
			w, ok := QuickPreset(name)
			require.True(t, ok)
			assert.Equal(t, 100, w.Sum())
		})
	}

	_, ok := QuickPreset("nope")
	assert.False(t, ok)
}

func TestPresetService_Save(t *testing.T) {
	ctx := context.Background()

	valid := model.SimilarityWeights{PropertyType: 40, Style: 20, Architecture: 20, Bedrooms: 10, Amenities: 10}

	t.Run("sum not 100 rejected", func(t *testing.T) {
		svc := NewPresetService(newFakePreferenceStore())
		bad := valid
		bad.Amenities = 7 // sums to 97
		_, err := svc.Save(ctx, "my preset", bad)

		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)

		presets, _ := svc.List(ctx)
		assert.Empty(t, presets, "no partial save on validation failure")
	})

	t.Run("sum exactly 100 saved", func(t *testing.T) {
		svc := NewPresetService(newFakePreferenceStore())
		preset, err := svc.Save(ctx, "My Preset", valid)
		require.NoError(t, err)
		assert.Equal(t, "My Preset", preset.Name)

		presets, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, presets, 1)
	})

	t.Run("case-insensitive duplicate rejected", func(t *testing.T) {
		svc := NewPresetService(newFakePreferenceStore())
		_, err := svc.Save(ctx, "Cozy", valid)
		require.NoError(t, err)

		_, err = svc.Save(ctx, "cozy", valid)
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		svc := NewPresetService(newFakePreferenceStore())
		_, err := svc.Save(ctx, "   ", valid)
		var validationErr *model.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestPresetService_VoiceLanguage(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(newFakePreferenceStore())

	lang, err := svc.VoiceLanguage(ctx)
	require.NoError(t, err)
	assert.Empty(t, lang)

	require.NoError(t, svc.SetVoiceLanguage(ctx, "en-US"))
	lang, err = svc.VoiceLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "en-US", lang)
}

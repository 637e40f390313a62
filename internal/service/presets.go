package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"core/internal/model"
)

// Preference keys persisted in the durable store.
const prefVoiceLanguage = "voice_language"

// PreferenceStore is the durable key-value persistence boundary for
// named weight presets and small user preferences.
type PreferenceStore interface {
	ListWeightPresets(ctx context.Context) ([]model.WeightPreset, error)
	InsertWeightPreset(ctx context.Context, preset model.WeightPreset) error
	DeleteWeightPreset(ctx context.Context, name string) error
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// PresetService validates and persists named weight presets.
type PresetService struct {
	store PreferenceStore
	now   func() time.Time
}

// NewPresetService creates a preset service over the given store.
func NewPresetService(store PreferenceStore) *PresetService {
	return &PresetService{store: store, now: time.Now}
}

// Save persists a named preset. The five weights must sum to exactly 100
// and the name must be unique case-insensitively among existing presets;
// violations reject the save before any write occurs.
func (s *PresetService) Save(ctx context.Context, name string, weights model.SimilarityWeights) (*model.WeightPreset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if sum := weights.Sum(); sum != 100 {
		return nil, &model.ValidationError{
			Field:  "weights",
			Reason: fmt.Sprintf("must sum to 100, got %d", sum),
		}
	}

	existing, err := s.store.ListWeightPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, &model.ValidationError{
				Field:  "name",
				Reason: fmt.Sprintf("preset %q already exists", p.Name),
			}
		}
	}

	preset := model.WeightPreset{
		Name:      name,
		Weights:   weights,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertWeightPreset(ctx, preset); err != nil {
		return nil, fmt.Errorf("insert preset: %w", err)
	}
	return &preset, nil
}

// List returns the saved presets.
func (s *PresetService) List(ctx context.Context) ([]model.WeightPreset, error) {
	return s.store.ListWeightPresets(ctx)
}

// Delete removes a saved preset by name.
func (s *PresetService) Delete(ctx context.Context, name string) error {
	return s.store.DeleteWeightPreset(ctx, name)
}

// VoiceLanguage returns the last used voice language, empty when unset.
func (s *PresetService) VoiceLanguage(ctx context.Context) (string, error) {
	return s.store.GetPreference(ctx, prefVoiceLanguage)
}

// SetVoiceLanguage persists the last used voice language.
func (s *PresetService) SetVoiceLanguage(ctx context.Context, lang string) error {
	return s.store.SetPreference(ctx, prefVoiceLanguage, lang)
}

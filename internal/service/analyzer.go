package service

import (
	"context"

	"core/internal/model"
)

// AnalyzerCandidate identifies one property image submitted for scoring.
type AnalyzerCandidate struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"`
}

// AnalysisResult is the analyzer's response: the reference image's
// extracted features plus pre-scored candidates. Scores are computed with
// the weights active at analysis time; changing weights afterwards does
// not rescore them.
type AnalysisResult struct {
	ReferenceFeatures  model.FeatureVector             `json:"reference_features"`
	ReferenceEmbedding []float32                       `json:"reference_embedding,omitempty"`
	Scores             map[int64]model.SimilarityScore `json:"scores"`
}

// AnalyzerClient is the remote vision-analysis boundary.
type AnalyzerClient interface {
	// Analyze extracts features from the reference image and scores each
	// candidate against it using the given weights.
	Analyze(ctx context.Context, imageURL string, candidates []AnalyzerCandidate, weights model.SimilarityWeights) (*AnalysisResult, error)

	// IsEnabled returns whether the client is configured and ready.
	IsEnabled() bool
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"core/internal/config"
	"core/internal/model"
	"core/internal/utils"
)

// VisionClient calls the hosted vision-analysis API over HTTP.
type VisionClient struct {
	cfg        *config.AnalyzerConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewVisionClient creates a client from analyzer configuration.
func NewVisionClient(cfg *config.AnalyzerConfig, logger *slog.Logger) *VisionClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisionClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
	}
}

// IsEnabled implements AnalyzerClient.
func (c *VisionClient) IsEnabled() bool {
	return c.cfg != nil && c.cfg.Enabled
}

type visionRequest struct {
	Model      string                  `json:"model,omitempty"`
	ImageURL   string                  `json:"image_url"`
	Candidates []AnalyzerCandidate     `json:"candidates"`
	Weights    model.SimilarityWeights `json:"weights"`
}

type visionCandidateScore struct {
	ID         int64           `json:"id"`
	TotalScore int             `json:"total_score"`
	Breakdown  model.Breakdown `json:"breakdown"`
}

type visionResponse struct {
	ReferenceFeatures  model.FeatureVector    `json:"reference_features"`
	ReferenceEmbedding []float32              `json:"reference_embedding,omitempty"`
	PerCandidate       []visionCandidateScore `json:"per_candidate"`
}

// Analyze implements AnalyzerClient. Rate-limit and billing failures are
// distinguished from generic failures so the caller can surface them
// separately.
func (c *VisionClient) Analyze(
	ctx context.Context,
	imageURL string,
	candidates []AnalyzerCandidate,
	weights model.SimilarityWeights,
) (*AnalysisResult, error) {
	if !c.IsEnabled() {
		return nil, &model.AnalysisError{Err: fmt.Errorf("analyzer not configured")}
	}

	body, err := json.Marshal(visionRequest{
		Model:      c.cfg.Model,
		ImageURL:   imageURL,
		Candidates: candidates,
		Weights:    weights,
	})
	if err != nil {
		return nil, &model.AnalysisError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBase+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, &model.AnalysisError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.AnalysisError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.AnalysisError{Err: fmt.Errorf("read response: %w", err)}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, &model.AnalysisError{Err: model.ErrRateLimited}
	case http.StatusPaymentRequired:
		return nil, &model.AnalysisError{Err: model.ErrPaymentRequired}
	default:
		return nil, &model.AnalysisError{Err: fmt.Errorf("analyzer returned status %d", resp.StatusCode)}
	}

	// Providers sometimes wrap the JSON payload in prose or code fences.
	var parsed visionResponse
	if err := utils.ParseAnalyzerJSON(string(respBody), &parsed); err != nil {
		return nil, &model.AnalysisError{Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &AnalysisResult{
		ReferenceFeatures:  parsed.ReferenceFeatures,
		ReferenceEmbedding: parsed.ReferenceEmbedding,
		Scores:             make(map[int64]model.SimilarityScore, len(parsed.PerCandidate)),
	}
	for _, cand := range parsed.PerCandidate {
		result.Scores[cand.ID] = model.SimilarityScore{
			Total:     cand.TotalScore,
			Breakdown: cand.Breakdown,
		}
	}

	c.logger.Debug("image analysis complete",
		"candidates", len(candidates),
		"scored", len(result.Scores),
		"took_ms", time.Since(start).Milliseconds())

	return result, nil
}

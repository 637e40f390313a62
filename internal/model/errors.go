package model

import (
	"errors"
	"fmt"
)

// Sentinel error conditions.
var (
	// ErrRateLimited marks an analysis failure caused by provider rate limiting.
	ErrRateLimited = errors.New("analysis rate limited")
	// ErrPaymentRequired marks an analysis failure caused by provider billing.
	ErrPaymentRequired = errors.New("analysis payment required")
	// ErrSuperseded marks a response that arrived after a newer request was
	// issued; callers discard the result silently.
	ErrSuperseded = errors.New("request superseded")
)

// FetchError wraps a query or suggestion network failure. The cache entry
// for the affected key is left unchanged.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AnalysisError wraps an image-analysis failure. Use errors.Is with
// ErrRateLimited / ErrPaymentRequired to distinguish the sub-cases.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("image analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ValidationError rejects a mutation before any write occurs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

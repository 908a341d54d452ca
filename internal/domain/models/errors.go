package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by stores when no run matches.
var ErrRunNotFound = errors.New("run not found")

// ErrArtifactNotFound means no exported workbook exists for a company.
var ErrArtifactNotFound = errors.New("artifact not found")

// ValidationError is a user-correctable request problem (400).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AdmissionDenied means the caller exhausted its rate budget (429).
type AdmissionDenied struct {
	CallerID   string
	RetryAfter time.Duration
}

func (e *AdmissionDenied) Error() string {
	return fmt.Sprintf("admission denied for %s, retry after %s", e.CallerID, e.RetryAfter)
}

// RetryAfterSeconds rounds the retry hint up to whole seconds, minimum 1.
func (e *AdmissionDenied) RetryAfterSeconds() int {
	s := int((e.RetryAfter + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

// UpstreamProviderError wraps a failure of a news, candle or reasoning provider.
type UpstreamProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *UpstreamProviderError) Error() string {
	return fmt.Sprintf("upstream %s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamProviderError) Unwrap() error { return e.Err }

// NewUpstreamError builds an UpstreamProviderError.
func NewUpstreamError(provider, op string, err error) *UpstreamProviderError {
	return &UpstreamProviderError{Provider: provider, Op: op, Err: err}
}

// SynthesisError means the reasoning output could not be decoded. It is
// carried inside a degraded Analysis, not returned to the caller as a failure.
type SynthesisError struct {
	Raw string
	Err error
}

func (e *SynthesisError) Error() string { return fmt.Sprintf("decode reasoning output: %v", e.Err) }

func (e *SynthesisError) Unwrap() error { return e.Err }

// PersistenceError wraps a run store write failure (500).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persist %s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// EvictionError is a best-effort cleanup failure. Logged only.
type EvictionError struct {
	RunID string
	Path  string
	Err   error
}

func (e *EvictionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("evict run %s (%s): %v", e.RunID, e.Path, e.Err)
	}
	return fmt.Sprintf("evict run %s: %v", e.RunID, e.Err)
}

func (e *EvictionError) Unwrap() error { return e.Err }

// IsUpstream reports whether err is (or wraps) an UpstreamProviderError.
func IsUpstream(err error) bool {
	var ue *UpstreamProviderError
	return errors.As(err, &ue)
}

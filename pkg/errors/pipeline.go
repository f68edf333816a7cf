package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents a classified pipeline error.
type ErrorCode string

const (
	ErrTimeout            ErrorCode = "timeout"
	ErrContextCancelled   ErrorCode = "context_cancelled"
	ErrRateLimit          ErrorCode = "rate_limit"
	ErrBackendUnavailable ErrorCode = "backend_unavailable"
	ErrUnauthenticated    ErrorCode = "unauthenticated"
	ErrParseError         ErrorCode = "parse_error"
	ErrEmptyContent       ErrorCode = "empty_content"
	ErrContentTooLarge    ErrorCode = "content_too_large"
	ErrProcessingError    ErrorCode = "processing_error"
)

// Pipeline stage names used in PipelineError.Stage.
const (
	StageParse     = "parse"
	StageAlign     = "align"
	StageChunk     = "chunk"
	StageSummarize = "summarize"
	StageExtract   = "extract"
	StageBuild     = "build"
	StageSanitize  = "sanitize"
)

// PipelineError is a structured error for pipeline failures.
type PipelineError struct {
	Code     ErrorCode
	Stage    string
	Message  string
	Duration time.Duration
	Cause    error
}

func (e *PipelineError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// ClassifyError inspects an error and returns a *PipelineError with the appropriate code.
// Errors that match no known pattern are classified as ErrProcessingError.
func ClassifyError(err error, stage string) *PipelineError {
	if err == nil {
		return nil
	}

	var existing *PipelineError
	if errors.As(err, &existing) {
		if existing.Stage == "" {
			existing.Stage = stage
		}
		return existing
	}

	pe := &PipelineError{
		Stage:   stage,
		Cause:   err,
		Message: err.Error(),
	}

	if errors.Is(err, context.DeadlineExceeded) {
		pe.Code = ErrTimeout
		pe.Message = "operation timed out"
		return pe
	}
	if errors.Is(err, context.Canceled) {
		pe.Code = ErrContextCancelled
		pe.Message = "operation cancelled"
		return pe
	}

	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "empty transcript") || strings.Contains(lower, "no content") || strings.Contains(lower, "content is empty"):
		pe.Code = ErrEmptyContent
	case strings.Contains(lower, "too large") || strings.Contains(lower, "exceeds maximum") || strings.Contains(lower, "context length"):
		pe.Code = ErrContentTooLarge
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "api key"):
		pe.Code = ErrUnauthenticated
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") || strings.Contains(lower, "too many requests") || strings.Contains(lower, "quota"):
		pe.Code = ErrRateLimit
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "unavailable") || strings.Contains(lower, "503") || strings.Contains(lower, "no such host") || strings.Contains(lower, "no such file"):
		pe.Code = ErrBackendUnavailable
	case strings.Contains(lower, "parse") || strings.Contains(lower, "unmarshal") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "malformed"):
		pe.Code = ErrParseError
	default:
		pe.Code = ErrProcessingError
	}
	return pe
}

// CodeOf returns the classified code for err, or "" for a nil error.
func CodeOf(err error, stage string) ErrorCode {
	pe := ClassifyError(err, stage)
	if pe == nil {
		return ""
	}
	return pe.Code
}

// IsTimeout returns true if the error is a timeout error.
func IsTimeout(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == ErrTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Package summarize turns chunked transcript text into per-chunk summaries
// and one global meeting summary.
//
// An abstractive Backend is optional. Backends are loaded through an
// injected PipelineCache; when none is configured, loading fails, or a call
// errors, the Summarizer falls back to an extractive summary and never
// retries.
package summarize

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/minutes-cli/pkg/chunker"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

// Default model identity used as the cache key when none is configured.
const (
	DefaultModel  = "gpt-4o-mini"
	DefaultDevice = "cpu"
)

const (
	chunkFallbackChars  = 600
	minGlobalInput      = 40
	extractiveSentences = 3
)

// ChunkSummary is the summary of one chunk.
type ChunkSummary struct {
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end"`
	Summary string  `json:"summary" yaml:"summary"`
}

// FallbackRecorder is notified each time a backend failure routes a call to
// the extractive path.
type FallbackRecorder interface {
	RecordFallback(stage string, code mnerrors.ErrorCode)
}

// Summarizer produces chunk and global summaries.
type Summarizer struct {
	cache         *PipelineCache
	model         string
	device        string
	maxInputChars int
	logger        logging.Logger
	fallbacks     FallbackRecorder
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithCache sets the backend cache. Without one, summaries are extractive.
func WithCache(c *PipelineCache) Option {
	return func(s *Summarizer) {
		s.cache = c
	}
}

// WithModel sets the model and device used to look up the backend.
func WithModel(model, device string) Option {
	return func(s *Summarizer) {
		if model != "" {
			s.model = model
		}
		if device != "" {
			s.device = device
		}
	}
}

// WithMaxInputChars caps the text sent to the global summary call.
// Non-positive values keep DefaultMaxInputChars.
func WithMaxInputChars(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxInputChars = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Summarizer) {
		s.logger = l
	}
}

// WithFallbackRecorder sets the recorder notified on backend fallbacks.
func WithFallbackRecorder(r FallbackRecorder) Option {
	return func(s *Summarizer) {
		s.fallbacks = r
	}
}

// New creates a Summarizer.
func New(opts ...Option) *Summarizer {
	s := &Summarizer{
		model:         DefaultModel,
		device:        DefaultDevice,
		maxInputChars: DefaultMaxInputChars,
		logger:        logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Model returns the configured model name.
func (s *Summarizer) Model() string {
	return s.model
}

// SummarizeChunks summarizes each chunk in order. The output has one entry
// per chunk carrying the chunk's start and end.
func (s *Summarizer) SummarizeChunks(ctx context.Context, chunks []chunker.Chunk) []ChunkSummary {
	log := s.logger.WithContext(ctx)
	backend := s.backend(ctx)

	out := make([]ChunkSummary, 0, len(chunks))
	for i, c := range chunks {
		summary := Extractive(c.Text)
		if backend != nil {
			maxTokens, minTokens := LengthBounds(c.Text)
			text, err := backend.Summarize(ctx, Request{
				Text:      c.Text,
				MaxTokens: maxTokens,
				MinTokens: minTokens,
				Beams:     DefaultBeams,
			})
			switch {
			case err != nil:
				s.fallback(log, err, logging.F("chunk", i))
				summary = truncate(c.Text, chunkFallbackChars)
			case strings.TrimSpace(text) == "":
				summary = truncate(c.Text, chunkFallbackChars)
			default:
				summary = strings.TrimSpace(text)
			}
		}
		out = append(out, ChunkSummary{Start: c.Start, End: c.End, Summary: summary})
	}

	log.Debug("summarized chunks", logging.F("chunks", len(out)), logging.F("abstractive", backend != nil))
	return out
}

// Merge joins the non-empty chunk summaries with blank lines.
func Merge(summaries []ChunkSummary) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if s.Summary != "" {
			parts = append(parts, s.Summary)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Global produces the final meeting summary from merged chunk summaries.
// Input shorter than 40 characters is returned unchanged.
func (s *Summarizer) Global(ctx context.Context, text string) string {
	if utf8.RuneCountInString(text) < minGlobalInput {
		return text
	}
	cleaned := truncate(CleanForGlobal(text), s.maxInputChars)

	if backend := s.backend(ctx); backend != nil {
		out, err := backend.Summarize(ctx, Request{
			Prompt:    globalPrompt,
			Text:      cleaned,
			MaxTokens: GlobalMaxTokens,
			MinTokens: GlobalMinTokens,
			Beams:     DefaultBeams,
		})
		if err == nil && strings.TrimSpace(out) != "" {
			return FormatSummary(out)
		}
		if err != nil {
			s.fallback(s.logger.WithContext(ctx), err, logging.F("scope", "global"))
		}
	}
	return FormatSummary(truncate(cleaned, globalFallbackChars))
}

// Extractive returns the first three period-separated sentences of text.
func Extractive(text string) string {
	flat := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	var parts []string
	for _, p := range strings.Split(flat, ".") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
			if len(parts) == extractiveSentences {
				break
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

func (s *Summarizer) backend(ctx context.Context) Backend {
	if s.cache == nil {
		return nil
	}
	b, err := s.cache.Get(s.model, s.device)
	if err != nil {
		if errors.Is(err, ErrNoBackend) {
			return nil
		}
		s.fallback(s.logger.WithContext(ctx), err, logging.F("model", s.model))
		return nil
	}
	return b
}

func (s *Summarizer) fallback(log logging.Logger, err error, fields ...logging.Field) {
	code := mnerrors.CodeOf(err, mnerrors.StageSummarize)
	fields = append(fields, logging.F("code", string(code)), logging.Err(err))
	log.Warn("summarizer backend failed, using extractive summary", fields...)
	if s.fallbacks != nil {
		s.fallbacks.RecordFallback(mnerrors.StageSummarize, code)
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

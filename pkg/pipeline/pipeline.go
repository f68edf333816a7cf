// Package pipeline runs a transcript through every stage that turns it
// into sanitized meeting minutes: parse or align, chunk, summarize,
// extract, build and sanitize.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/otherjamesbrown/minutes-cli/pkg/chunker"
	"github.com/otherjamesbrown/minutes-cli/pkg/diarize"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/extract"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
	"github.com/otherjamesbrown/minutes-cli/pkg/observability"
	"github.com/otherjamesbrown/minutes-cli/pkg/summarize"
	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// Input is one transcript to process. Exactly one of Text and
// Transcription is used: a Transcription selects the audio path, where
// speakers come from the aligner.
type Input struct {
	// Source names the input in logs and spans, usually a file name.
	Source string

	Text string

	Transcription *transcript.Transcription
	AudioPath     string
	Diarize       bool
}

// Result carries the record and every intermediate product of a run.
type Result struct {
	RunID          string                   `json:"run_id"`
	Segments       []transcript.Segment     `json:"segments"`
	Chunks         []chunker.Chunk          `json:"chunks"`
	ChunkSummaries []summarize.ChunkSummary `json:"chunk_summaries"`
	MergedSummary  string                   `json:"merged_summary"`
	Summary        string                   `json:"summary"`
	Extraction     minutes.Extraction       `json:"extraction"`
	Record         *minutes.Record          `json:"record"`
}

// Pipeline wires the stages together. It is safe to reuse across runs.
type Pipeline struct {
	aligner    *diarize.Aligner
	summarizer *summarize.Summarizer
	extractor  *extract.Extractor
	maxChars   int
	debugDir   string

	metrics *observability.PipelineMetrics
	tracer  *observability.Tracer
	logger  logging.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAligner sets the aligner used for transcription input.
func WithAligner(a *diarize.Aligner) Option {
	return func(p *Pipeline) { p.aligner = a }
}

// WithSummarizer sets the summarizer.
func WithSummarizer(s *summarize.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithExtractor sets the extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithMaxChars sets the chunk budget.
func WithMaxChars(n int) Option {
	return func(p *Pipeline) { p.maxChars = n }
}

// WithDebugDir makes every run write its intermediate products as JSON
// under dir/<run id>/.
func WithDebugDir(dir string) Option {
	return func(p *Pipeline) { p.debugDir = dir }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTracer sets the tracer.
func WithTracer(t *observability.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline. Unset stages get their defaults: the text
// heuristic aligner, the extractive summarizer and the pattern extractor.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		maxChars: chunker.DefaultMaxChars,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.aligner == nil {
		p.aligner = diarize.NewAligner(nil, p.logger)
	}
	if p.summarizer == nil {
		p.summarizer = summarize.New(summarize.WithLogger(p.logger))
	}
	if p.extractor == nil {
		p.extractor = extract.NewExtractor(extract.WithLogger(p.logger))
	}
	if p.tracer == nil {
		p.tracer = observability.NewTracer(nil)
	}
	return p
}

// Run processes one transcript. Backend failures never fail a run; the
// returned error is a *mnerrors.PipelineError for empty input or a
// cancelled context.
func (p *Pipeline) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.New().String()}

	ctx = logging.ContextWithRunID(ctx, res.RunID)
	ctx, span := p.tracer.StartRunSpan(ctx, res.RunID, in.Source)
	defer span.End()
	log := p.logger.WithContext(ctx)
	log.Info("processing transcript", logging.F("source", in.Source))

	err := p.run(ctx, in, res)

	elapsed := time.Since(start)
	helper := observability.NewSpanHelper(span)
	if err != nil {
		pe := mnerrors.ClassifyError(err, "")
		pe.Duration = elapsed
		helper.SetError(pe, pe.Stage)
		p.recordRun(observability.RunStatusFailed, elapsed)
		log.Error("processing failed", logging.F("code", string(pe.Code)), logging.F("stage", pe.Stage), logging.Err(err))
		return nil, pe
	}

	helper.SetSuccess()
	p.recordRun(observability.RunStatusOK, elapsed)
	log.Info("minutes ready",
		logging.F("elapsed", elapsed),
		logging.F("attendees", len(res.Record.Attendees)),
		logging.F("decisions", len(res.Record.Decisions)),
		logging.F("action_items", len(res.Record.ActionItems)),
	)
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, in Input, res *Result) error {
	rawText := in.Text

	if in.Transcription != nil {
		err := p.stage(ctx, mnerrors.StageAlign, func(ctx context.Context, h *observability.SpanHelper) error {
			if len(in.Transcription.Segments) == 0 {
				return emptyInput(mnerrors.StageAlign)
			}
			res.Segments = p.aligner.Align(ctx, in.AudioPath, in.Transcription.Segments, in.Diarize)
			rawText = transcript.FullText(res.Segments)
			h.SetCount(observability.AttrSegments, len(res.Segments))
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		err := p.stage(ctx, mnerrors.StageParse, func(ctx context.Context, h *observability.SpanHelper) error {
			if strings.TrimSpace(in.Text) == "" {
				return emptyInput(mnerrors.StageParse)
			}
			parsed, err := transcript.Parse(in.Source, strings.NewReader(in.Text))
			if err != nil {
				return &mnerrors.PipelineError{
					Code:    mnerrors.ErrParseError,
					Stage:   mnerrors.StageParse,
					Message: "unreadable transcript",
					Cause:   err,
				}
			}
			if parsed.Text == "" {
				parsed.Text = in.Text
			}
			res.Segments = parsed.SegmentsOrFallback()
			// Cue and Teams markup is not prose; extract from the segments instead.
			if parsed.Format == transcript.FormatVTT || parsed.Format == transcript.FormatTeams {
				rawText = transcript.FullText(res.Segments)
			}
			h.SetCount(observability.AttrSegments, len(res.Segments))
			h.SetCount(observability.AttrInputChars, len(in.Text))
			return nil
		})
		if err != nil {
			return err
		}
	}

	if err := p.stage(ctx, mnerrors.StageChunk, func(ctx context.Context, h *observability.SpanHelper) error {
		res.Chunks = chunker.Split(res.Segments, p.maxChars)
		h.SetCount(observability.AttrChunks, len(res.Chunks))
		if p.metrics != nil {
			p.metrics.RecordChunks(len(res.Chunks))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, mnerrors.StageSummarize, func(ctx context.Context, h *observability.SpanHelper) error {
		h.SetModel(p.summarizer.Model())
		res.ChunkSummaries = p.summarizer.SummarizeChunks(ctx, res.Chunks)
		res.MergedSummary = summarize.Merge(res.ChunkSummaries)
		res.Summary = p.summarizer.Global(ctx, res.MergedSummary)
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, mnerrors.StageExtract, func(ctx context.Context, h *observability.SpanHelper) error {
		res.Extraction = p.extractor.Extract(ctx, rawText)
		return nil
	}); err != nil {
		return err
	}

	var built *minutes.Record
	if err := p.stage(ctx, mnerrors.StageBuild, func(ctx context.Context, h *observability.SpanHelper) error {
		built = minutes.NewBuilder(p.extractor.KeyTopics).Build(res.Segments, res.Summary, res.Extraction)
		return nil
	}); err != nil {
		return err
	}

	if err := p.stage(ctx, mnerrors.StageSanitize, func(ctx context.Context, h *observability.SpanHelper) error {
		res.Record = minutes.Sanitize(built)
		return nil
	}); err != nil {
		return err
	}

	p.recordItems(res.Record)
	p.writeDebug(ctx, res)
	return nil
}

// stage runs fn inside a span, timing it. A context that is already done
// stops the run before fn starts.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context, *observability.SpanHelper) error) error {
	if err := ctx.Err(); err != nil {
		return mnerrors.ClassifyError(err, name)
	}

	ctx, span := p.tracer.StartStageSpan(ctx, name)
	defer span.End()
	h := observability.NewSpanHelper(span)

	start := time.Now()
	err := fn(ctx, h)
	if p.metrics != nil {
		p.metrics.RecordStage(name, time.Since(start).Seconds())
	}
	if err != nil {
		h.SetError(err, name)
		return mnerrors.ClassifyError(err, name)
	}
	h.SetSuccess()
	p.logger.WithContext(ctx).Debug("stage complete", logging.F("stage", name), logging.F("elapsed", time.Since(start)))
	return nil
}

func (p *Pipeline) recordRun(status string, elapsed time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordRun(status, elapsed.Seconds())
	}
}

func (p *Pipeline) recordItems(r *minutes.Record) {
	if p.metrics == nil {
		return
	}
	p.metrics.SetRecordItems("attendees", len(r.Attendees))
	p.metrics.SetRecordItems("agenda", len(r.Agenda))
	p.metrics.SetRecordItems("decisions", len(r.Decisions))
	p.metrics.SetRecordItems("action_items", len(r.ActionItems))
}

func emptyInput(stage string) error {
	return &mnerrors.PipelineError{
		Code:    mnerrors.ErrEmptyContent,
		Stage:   stage,
		Message: "empty transcript",
	}
}

// DebugPath returns the directory a run's debug artifacts are written to.
func (p *Pipeline) DebugPath(runID string) string {
	if p.debugDir == "" {
		return ""
	}
	return filepath.Join(p.debugDir, runID)
}

func (p *Pipeline) writeDebug(ctx context.Context, res *Result) {
	dir := p.DebugPath(res.RunID)
	if dir == "" {
		return
	}
	log := p.logger.WithContext(ctx)
	artifacts := map[string]interface{}{
		"segments.json":        res.Segments,
		"chunks.json":          res.Chunks,
		"chunk_summaries.json": res.ChunkSummaries,
		"summary.json":         map[string]string{"merged": res.MergedSummary, "final": res.Summary},
		"extraction.json":      res.Extraction,
		"record.json":          res.Record,
	}
	for name, v := range artifacts {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			log.Warn("failed to write debug artifact", logging.F("file", name), logging.Err(err))
		}
	}
	log.Debug("debug artifacts written", logging.F("dir", dir))
}

package cmd

import (
	"context"
	"path/filepath"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/diarize"
	"github.com/otherjamesbrown/minutes-cli/pkg/extract"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/observability"
	"github.com/otherjamesbrown/minutes-cli/pkg/pipeline"
	"github.com/otherjamesbrown/minutes-cli/pkg/summarize"
)

const spansFile = "spans.json"

// stages holds the configured stage components of one command invocation.
type stages struct {
	aligner    *diarize.Aligner
	summarizer *summarize.Summarizer
	extractor  *extract.Extractor
}

// newStages builds the aligner, summarizer and extractor from cfg. A
// missing API key downgrades the openai backend to extractive with a
// warning; it never fails the command.
func newStages(ctx context.Context, deps *CommandDeps, cfg *config.CLIConfig) *stages {
	log := deps.logger()
	metrics := deps.metrics()

	aligner := diarize.NewAligner(diarize.TurnsFileBackend{Path: cfg.Diarization.TurnsFile}, log)
	aligner.MergeThreshold = cfg.Diarization.MergeThreshold
	aligner.Fallbacks = metrics

	sumOpts := []summarize.Option{
		summarize.WithModel(cfg.Summarizer.Model, cfg.Summarizer.Device),
		summarize.WithMaxInputChars(cfg.Summarizer.MaxInputChars),
		summarize.WithLogger(log),
		summarize.WithFallbackRecorder(metrics),
	}
	extOpts := []extract.Option{
		extract.WithLogger(log),
		extract.WithFallbackRecorder(metrics),
	}
	if deps.Now != nil {
		extOpts = append(extOpts, extract.WithClock(deps.Now))
	}

	if cfg.Summarizer.Backend == config.SummarizerOpenAI {
		if cache := openAICache(deps, cfg); cache != nil {
			sumOpts = append(sumOpts, summarize.WithCache(cache))
			if b, err := cache.Get(cfg.Summarizer.Model, cfg.Summarizer.Device); err == nil {
				if ner, ok := b.(extract.PersonRecognizer); ok {
					extOpts = append(extOpts, extract.WithRecognizer(ner))
				}
			} else {
				log.WithContext(ctx).Warn("summarizer backend unavailable", logging.Err(err))
			}
		}
	}

	return &stages{
		aligner:    aligner,
		summarizer: summarize.New(sumOpts...),
		extractor:  extract.NewExtractor(extOpts...),
	}
}

func openAICache(deps *CommandDeps, cfg *config.CLIConfig) *summarize.PipelineCache {
	if deps.APIKey == nil {
		return nil
	}
	key, err := deps.APIKey()
	if err != nil || key == "" {
		deps.logger().Warn("no summarizer API key, using extractive summaries",
			logging.F("hint", "run 'minutes auth login' or set MINUTES_API_KEY"))
		return nil
	}
	return summarize.NewPipelineCache(func(model, device string) (summarize.Backend, error) {
		opts := []summarize.OpenAIOption{summarize.WithTimeout(cfg.Timeout)}
		if cfg.Summarizer.BaseURL != "" {
			opts = append(opts, summarize.WithBaseURL(cfg.Summarizer.BaseURL))
		}
		return summarize.NewOpenAIBackend(key, model, opts...)
	})
}

// runTracing is the span dump of one run, present only with a debug dir.
type runTracing struct {
	tracer   *observability.Tracer
	shutdown func(ctx context.Context, runDir string) error
}

func newRunTracing(debugDir string) *runTracing {
	if debugDir == "" {
		return &runTracing{
			tracer:   observability.NewTracer(nil),
			shutdown: func(context.Context, string) error { return nil },
		}
	}
	tp, exp := observability.NewFileTracerProvider(filepath.Join(debugDir, spansFile))
	return &runTracing{
		tracer: observability.NewTracer(tp),
		shutdown: func(ctx context.Context, runDir string) error {
			if runDir != "" {
				exp.SetPath(filepath.Join(runDir, spansFile))
			}
			return tp.Shutdown(ctx)
		},
	}
}

// newPipeline wires the stages into a pipeline.
func newPipeline(deps *CommandDeps, cfg *config.CLIConfig, st *stages, tracing *runTracing) *pipeline.Pipeline {
	return pipeline.New(
		pipeline.WithAligner(st.aligner),
		pipeline.WithSummarizer(st.summarizer),
		pipeline.WithExtractor(st.extractor),
		pipeline.WithMaxChars(cfg.ChunkMaxChars),
		pipeline.WithDebugDir(cfg.DebugDir),
		pipeline.WithMetrics(deps.metrics()),
		pipeline.WithTracer(tracing.tracer),
		pipeline.WithLogger(deps.logger()),
	)
}

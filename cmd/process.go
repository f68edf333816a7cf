package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
	"github.com/otherjamesbrown/minutes-cli/pkg/pipeline"
	"github.com/otherjamesbrown/minutes-cli/pkg/session"
	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// processOptions holds the flags shared by process and review.
type processOptions struct {
	audio       string
	diarize     bool
	segments    string
	charset     string
	turns       string
	maxChars    int
	summarizer  string
	model       string
	keepSession bool
	debugDir    string
	metricsFile string
	output      string
}

func (o *processOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.audio, "audio", "", "Audio file the --segments transcription came from")
	f.BoolVar(&o.diarize, "diarize", false, "Assign speakers from diarization turns (<audio>.turns.json)")
	f.StringVar(&o.segments, "segments", "", "Transcription JSON ({text, segments}) instead of a text transcript")
	f.StringVar(&o.charset, "charset", "", "Transcript encoding, e.g. utf-16, cp1252 (detected when empty)")
	f.StringVar(&o.turns, "turns", "", "Diarization turns file (default <audio>.turns.json)")
	f.IntVar(&o.maxChars, "max-chars", 0, "Maximum characters per chunk")
	f.StringVar(&o.summarizer, "summarizer", "", "Summarizer backend: extractive, openai")
	f.StringVar(&o.model, "model", "", "Summarizer model")
	f.StringVar(&o.debugDir, "debug-dir", "", "Write intermediate artifacts under this directory")
	f.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	f.StringVarP(&o.output, "output", "o", "", "Output format: text, json, yaml")
}

// apply overlays flags on a copy of cfg and validates the result.
func (o *processOptions) apply(cfg *config.CLIConfig) (*config.CLIConfig, error) {
	c := *cfg
	if o.diarize {
		c.Diarization.Enabled = true
	}
	if o.turns != "" {
		c.Diarization.TurnsFile = o.turns
	}
	if o.maxChars != 0 {
		c.ChunkMaxChars = o.maxChars
	}
	if o.summarizer != "" {
		c.Summarizer.Backend = o.summarizer
	}
	if o.model != "" {
		c.Summarizer.Model = o.model
	}
	if o.debugDir != "" {
		c.DebugDir = o.debugDir
	}
	if o.metricsFile != "" {
		c.MetricsFile = o.metricsFile
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// input reads the transcript named by args, or the --segments file.
func (o *processOptions) input(stdin io.Reader, args []string, diarize bool) (pipeline.Input, error) {
	if o.segments != "" {
		data, err := readInput(stdin, o.segments)
		if err != nil {
			return pipeline.Input{}, err
		}
		tr, err := transcript.LoadTranscription(bytes.NewReader(data))
		if err != nil {
			return pipeline.Input{}, fmt.Errorf("loading transcription: %w", err)
		}
		return pipeline.Input{
			Source:        o.segments,
			Transcription: tr,
			AudioPath:     o.audio,
			Diarize:       diarize,
		}, nil
	}

	if len(args) != 1 {
		return pipeline.Input{}, fmt.Errorf("a transcript file (or - for stdin) is required unless --segments is set")
	}
	data, err := readInput(stdin, args[0])
	if err != nil {
		return pipeline.Input{}, err
	}
	if data, err = transcript.Decode(data, o.charset); err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{Source: args[0], Text: string(data)}, nil
}

// processOutput is the json and yaml form of a processed transcript.
type processOutput struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	SessionID string          `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Record    *minutes.Record `json:"record" yaml:"record"`
}

// NewProcessCommand creates the 'process' command.
func NewProcessCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process [transcript]",
		Short: "Turn a meeting transcript into structured minutes",
		Long: `Run the full pipeline over a transcript: parse (or align), chunk,
summarize, extract, build and sanitize.

Input is a plain-text, Teams-style or WebVTT transcript file, or - for stdin.
With --segments, input is a speech-to-text transcription JSON instead, and
speakers are assigned by the aligner (diarization turns with --diarize, or
cues in the text).

Summarizer and diarization backends never fail a run: when one is missing or
errors, the pipeline logs a warning and uses the extractive summary or the
text heuristic.

Examples:
  minutes process meeting.txt
  minutes process meeting.vtt -o json
  minutes process --segments call.json --audio call.wav --diarize
  minutes process notes.txt --summarizer openai --model gpt-4o-mini
  minutes process notes.txt --session        # keep the record for 'minutes session'
  minutes process notes.txt --debug-dir ./runs --metrics-file ./minutes.prom`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), deps, opts, args)
		},
	}
	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.keepSession, "session", false, "Store the record in the session store for review")
	return cmd
}

// processTranscript runs the pipeline once with the effective configuration.
func processTranscript(ctx context.Context, deps *CommandDeps, opts *processOptions, args []string) (*config.CLIConfig, *pipeline.Input, *pipeline.Result, error) {
	base, err := deps.config()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := opts.apply(base)
	if err != nil {
		return nil, nil, nil, err
	}
	in, err := opts.input(deps.Stdin, args, cfg.Diarization.Enabled)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	tracing := newRunTracing(cfg.DebugDir)
	p := newPipeline(deps, cfg, newStages(ctx, deps, cfg), tracing)

	res, runErr := p.Run(ctx, in)

	runDir := ""
	if res != nil {
		runDir = p.DebugPath(res.RunID)
	}
	if err := tracing.shutdown(context.Background(), runDir); err != nil {
		deps.logger().Warn("failed to write spans", logging.Err(err))
	}
	deps.writeMetrics(cfg.MetricsFile)

	if runErr != nil {
		return nil, nil, nil, runErr
	}
	return cfg, &in, res, nil
}

func runProcess(ctx context.Context, deps *CommandDeps, opts *processOptions, args []string) error {
	cfg, in, res, err := processTranscript(ctx, deps, opts, args)
	if err != nil {
		return err
	}
	format, err := resolveFormat(opts.output, cfg)
	if err != nil {
		return err
	}

	out := processOutput{RunID: res.RunID, Record: res.Record}
	if opts.keepSession {
		if cfg.Session.Backend == config.SessionMemory {
			deps.logger().Warn("memory sessions end with this process; set session.backend to redis to review later")
		}
		s, err := saveSession(ctx, deps, res.Record, in.Source, res.RunID)
		if err != nil {
			return err
		}
		out.SessionID = s.ID
		fmt.Fprintf(deps.Stderr, "Session: %s (review with 'minutes session show %s')\n", s.ID, s.ID)
	}

	return writeOutput(deps.Stdout, format, out, func(w io.Writer) error {
		return minutes.RenderText(w, res.Record, deps.now())
	})
}

func saveSession(ctx context.Context, deps *CommandDeps, rec *minutes.Record, source, runID string) (*session.Session, error) {
	store, err := deps.sessionStore(ctx)
	if err != nil {
		return nil, err
	}
	s := session.New(rec, source)
	s.RunID = runID
	err = store.Save(ctx, s)
	deps.metrics().RecordSessionOp("save", err)
	if err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return s, nil
}

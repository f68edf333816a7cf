package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/minutes-cli/pkg/chunker"
	"github.com/otherjamesbrown/minutes-cli/pkg/diarize"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// The commands in this file run a single pipeline stage, for inspecting
// what the parser, aligner, chunker and extractor make of an input.

func parseFile(deps *CommandDeps, path, charset string) (*transcript.Result, error) {
	data, err := readInput(deps.Stdin, path)
	if err != nil {
		return nil, err
	}
	if data, err = transcript.Decode(data, charset); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%s: empty transcript", path)
	}
	res, err := transcript.Parse(path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if res.Text == "" {
		res.Text = string(data)
	}
	return res, nil
}

func writeSegmentsText(w io.Writer, segs []transcript.Segment) error {
	for _, s := range segs {
		if _, err := fmt.Fprintf(w, "[%s - %s] %s: %s\n", formatClock(s.Start), formatClock(s.End), s.Speaker, s.Text); err != nil {
			return err
		}
	}
	return nil
}

// NewParseCommand creates the 'parse' command.
func NewParseCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var output, charset string

	cmd := &cobra.Command{
		Use:   "parse <transcript>",
		Short: "Split a transcript into speaker segments",
		Long: `Parse a transcript into speaker-attributed, time-bounded segments.

Recognized layouts: "[hh:mm:ss] Name: text" and "mm:ss Name: text" lines,
Teams exports ("M:SS : Name : text"), WebVTT, and named lines without
timestamps. Text with no recognizable structure becomes one segment.

Examples:
  minutes parse meeting.txt
  minutes parse call.vtt -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			res, err := parseFile(deps, args[0], charset)
			if err != nil {
				return err
			}
			segs := res.SegmentsOrFallback()
			out := struct {
				Format   transcript.Format    `json:"format" yaml:"format"`
				Speakers []string             `json:"speakers" yaml:"speakers"`
				Segments []transcript.Segment `json:"segments" yaml:"segments"`
			}{res.Format, transcript.Speakers(segs), segs}
			return writeOutput(deps.Stdout, format, out, func(w io.Writer) error {
				return writeSegmentsText(w, segs)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&charset, "charset", "", "Transcript encoding (detected when empty)")
	return cmd
}

// NewChunkCommand creates the 'chunk' command.
func NewChunkCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var (
		output   string
		maxChars int
	)

	cmd := &cobra.Command{
		Use:   "chunk <transcript>",
		Short: "Group transcript segments into bounded-size chunks",
		Long: `Parse a transcript and group its segments into chunks of at most
--max-chars characters. Segments are never split, so one long turn can
produce an oversized chunk.

Examples:
  minutes chunk meeting.txt --max-chars 800`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			if maxChars == 0 {
				maxChars = cfg.ChunkMaxChars
			}
			if maxChars <= 0 {
				return fmt.Errorf("--max-chars must be positive")
			}
			res, err := parseFile(deps, args[0], "")
			if err != nil {
				return err
			}
			chunks := chunker.Split(res.SegmentsOrFallback(), maxChars)
			return writeOutput(deps.Stdout, format, chunks, func(w io.Writer) error {
				for i, c := range chunks {
					fmt.Fprintf(w, "--- chunk %d [%s - %s] %d chars\n%s\n", i+1, formatClock(c.Start), formatClock(c.End), c.Len(), c.Text)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Maximum characters per chunk")
	return cmd
}

// NewExtractCommand creates the 'extract' command.
func NewExtractCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var output string

	cmd := &cobra.Command{
		Use:   "extract <transcript>",
		Short: "Extract attendees, decisions, action items and topics",
		Long: `Run only the entity and pattern extractor over a transcript: metadata,
attendees, decisions, action items, key topics and the next meeting.

Examples:
  minutes extract meeting.txt -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := deps.config()
			if err != nil {
				return err
			}
			format, err := resolveFormat(output, cfg)
			if err != nil {
				return err
			}
			res, err := parseFile(deps, args[0], "")
			if err != nil {
				return err
			}
			text := res.Text
			if res.Format == transcript.FormatVTT || res.Format == transcript.FormatTeams {
				text = transcript.FullText(res.Segments)
			}
			ex := newStages(cmd.Context(), deps, cfg).extractor.Extract(cmd.Context(), text)
			return writeOutput(deps.Stdout, format, ex, func(w io.Writer) error {
				return writeExtractionText(w, ex)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	return cmd
}

func writeExtractionText(w io.Writer, ex minutes.Extraction) error {
	fmt.Fprintf(w, "Title: %s\nDate: %s\n", ex.Metadata.Title, ex.Metadata.Date)
	fmt.Fprintln(w, "\nAttendees:")
	for _, a := range ex.Attendees {
		if a.Role != "" {
			fmt.Fprintf(w, "- %s (%s)\n", a.Name, a.Role)
		} else {
			fmt.Fprintf(w, "- %s\n", a.Name)
		}
	}
	fmt.Fprintln(w, "\nDecisions:")
	for _, d := range ex.Decisions {
		fmt.Fprintf(w, "- %s\n", d)
	}
	fmt.Fprintln(w, "\nAction Items:")
	for _, a := range ex.ActionItems {
		fmt.Fprintf(w, "- %s | %s | %s | %s\n", a.Task, a.Responsible, a.Deadline, a.Status)
	}
	fmt.Fprintln(w, "\nKey Topics:")
	for _, t := range ex.KeyTopics {
		fmt.Fprintf(w, "- %s\n", t)
	}
	if ex.NextMeeting != (minutes.NextMeeting{}) {
		fmt.Fprintf(w, "\nNext Meeting: %s %s %s\n", ex.NextMeeting.Date, ex.NextMeeting.Time, ex.NextMeeting.Venue)
	}
	return nil
}

// NewAlignCommand creates the 'align' command.
func NewAlignCommand(deps *CommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDeps()
	}
	var (
		output  string
		audio   string
		turns   string
		outPath string
		useDiar bool
	)

	cmd := &cobra.Command{
		Use:   "align <transcription.json>",
		Short: "Assign speakers to transcription segments",
		Long: `Attach a speaker to every segment of a speech-to-text transcription.

With --diarize, speakers come from diarization turns (a JSON array of
{start, end, speaker}) read from --turns or <audio>.turns.json; each segment
gets the speaker whose turn contains its midpoint. Without turns, or when
they cannot be read, speakers are taken from cues in the text ("Alice:",
"[Bob]", "Carol said") and carried forward between cues.

Examples:
  minutes align call.json
  minutes align call.json --audio call.wav --diarize --out segments.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(cmd.Context(), deps, args[0], alignOptions{
				output: output, audio: audio, turns: turns, outPath: outPath, diarize: useDiar,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&audio, "audio", "", "Audio file the transcription came from")
	cmd.Flags().StringVar(&turns, "turns", "", "Diarization turns file (default <audio>.turns.json)")
	cmd.Flags().StringVar(&outPath, "out", "", "Also write the aligned segments as JSON to this file")
	cmd.Flags().BoolVar(&useDiar, "diarize", false, "Use diarization turns")
	return cmd
}

type alignOptions struct {
	output, audio, turns, outPath string
	diarize                       bool
}

func runAlign(ctx context.Context, deps *CommandDeps, path string, opts alignOptions) error {
	cfg, err := deps.config()
	if err != nil {
		return err
	}
	format, err := resolveFormat(opts.output, cfg)
	if err != nil {
		return err
	}
	data, err := readInput(deps.Stdin, path)
	if err != nil {
		return err
	}
	tr, err := transcript.LoadTranscription(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("loading transcription: %w", err)
	}

	turnsFile := cfg.Diarization.TurnsFile
	if opts.turns != "" {
		turnsFile = opts.turns
	}
	aligner := diarize.NewAligner(diarize.TurnsFileBackend{Path: turnsFile}, deps.logger())
	aligner.MergeThreshold = cfg.Diarization.MergeThreshold
	aligner.Fallbacks = deps.metrics()
	aligner.DebugPath = opts.outPath

	segs := aligner.Align(ctx, opts.audio, tr.Segments, opts.diarize || cfg.Diarization.Enabled)
	return writeOutput(deps.Stdout, format, segs, func(w io.Writer) error {
		return writeSegmentsText(w, segs)
	})
}

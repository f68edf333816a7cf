package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// Aligner attaches speakers to transcription segments.
type Aligner struct {
	// Backend supplies speaker turns. When nil, or when it fails, the
	// text heuristic is used instead.
	Backend Backend

	// MergeThreshold enables MergeSimilarSpeakers when greater than zero.
	MergeThreshold float64

	// DebugPath, when set, receives the aligned segments as JSON.
	DebugPath string

	Logger logging.Logger

	// Fallbacks, when set, is told about every backend failure.
	Fallbacks FallbackRecorder
}

// FallbackRecorder is notified when a backend failure routes alignment to
// the text heuristic.
type FallbackRecorder interface {
	RecordFallback(stage string, code mnerrors.ErrorCode)
}

// NewAligner creates an Aligner with the given backend.
func NewAligner(backend Backend, logger logging.Logger) *Aligner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Aligner{Backend: backend, Logger: logger}
}

// Align returns one speaker-attributed segment per input segment, in order.
// It never fails: backend errors are logged and the heuristic takes over.
func (a *Aligner) Align(ctx context.Context, audioPath string, segs []transcript.TimedText, useBackend bool) []transcript.Segment {
	log := a.logger().WithContext(ctx)

	var out []transcript.Segment
	if useBackend && a.Backend != nil {
		turns, err := a.Backend.Turns(ctx, audioPath)
		if err != nil {
			pe := mnerrors.ClassifyError(err, mnerrors.StageAlign)
			log.Warn("diarization backend failed, using text heuristic",
				logging.F("code", string(pe.Code)),
				logging.Err(err),
			)
			if a.Fallbacks != nil {
				a.Fallbacks.RecordFallback(mnerrors.StageAlign, pe.Code)
			}
		} else {
			log.Debug("diarization turns loaded", logging.F("turns", len(turns)))
			out = AssignByMidpoint(segs, turns)
		}
	}
	if out == nil {
		out = AssignByText(segs)
	}

	if a.MergeThreshold > 0 {
		out = MergeSimilarSpeakers(out, a.MergeThreshold)
	}

	if a.DebugPath != "" {
		if err := WriteSegments(a.DebugPath, out); err != nil {
			log.Warn("failed to write aligned segments", logging.F("path", a.DebugPath), logging.Err(err))
		}
	}
	return out
}

func (a *Aligner) logger() logging.Logger {
	if a.Logger == nil {
		return logging.NewNopLogger()
	}
	return a.Logger
}

// AssignByMidpoint gives each segment the speaker of the first turn whose
// closed interval contains the segment midpoint, or DefaultSpeaker.
func AssignByMidpoint(segs []transcript.TimedText, turns []Turn) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segs))
	for _, s := range segs {
		mid := (s.Start + s.End) / 2.0
		speaker := transcript.DefaultSpeaker
		for _, t := range turns {
			if t.Start <= mid && mid <= t.End {
				speaker = t.Speaker
				break
			}
		}
		out = append(out, transcript.Segment{
			Speaker: speaker,
			Start:   s.Start,
			End:     s.End,
			Text:    s.Text,
		})
	}
	return out
}

// WriteSegments stores segs as indented UTF-8 JSON, creating parent
// directories as needed.
func WriteSegments(path string, segs []transcript.Segment) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating debug directory: %w", err)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(segs); err != nil {
		return fmt.Errorf("encoding segments: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

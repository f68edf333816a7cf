// Package diarize assigns speakers to time-bounded transcription segments,
// either from an external diarization backend or from cues in the text.
package diarize

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Turn is one contiguous stretch of speech by a single speaker.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Backend produces speaker turns for an audio file.
type Backend interface {
	Turns(ctx context.Context, audioPath string) ([]Turn, error)
}

// TurnsFileSuffix is appended to the audio path when TurnsFileBackend has no
// explicit path.
const TurnsFileSuffix = ".turns.json"

// TurnsFileBackend reads turns precomputed by an external diarization tool
// and stored as a JSON array of {start, end, speaker} objects.
type TurnsFileBackend struct {
	// Path overrides the default <audio>.turns.json location.
	Path string
}

// Turns implements Backend.
func (b TurnsFileBackend) Turns(ctx context.Context, audioPath string) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := b.Path
	if path == "" {
		path = audioPath + TurnsFileSuffix
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading diarization turns: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse diarization turns %s: %w", path, err)
	}
	return turns, nil
}

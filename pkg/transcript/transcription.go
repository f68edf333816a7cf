package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

// TimedText is one speech-to-text segment before speaker assignment.
type TimedText struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription is the contract produced by the speech-to-text backend.
// A non-empty Error marks a failed transcription.
type Transcription struct {
	Text     string      `json:"text"`
	Segments []TimedText `json:"segments"`
	Error    string      `json:"error,omitempty"`
}

// LoadTranscription decodes a transcription result. A result that carries
// an error message is returned as ErrBackendFailed.
func LoadTranscription(r io.Reader) (*Transcription, error) {
	var t Transcription
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}
	if strings.TrimSpace(t.Error) != "" {
		return nil, fmt.Errorf("%w: transcription: %s", mnerrors.ErrBackendFailed, t.Error)
	}
	if t.Text == "" {
		parts := make([]string, 0, len(t.Segments))
		for _, s := range t.Segments {
			if s.Text = strings.TrimSpace(s.Text); s.Text != "" {
				parts = append(parts, s.Text)
			}
		}
		t.Text = strings.Join(parts, " ")
	}
	return &t, nil
}

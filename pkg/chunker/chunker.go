// Package chunker groups speaker segments into bounded-size text chunks for
// summarization.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// DefaultMaxChars is the chunk budget used when none is configured.
const DefaultMaxChars = 1600

// Chunk is a run of consecutive segments rendered as "speaker: text" lines.
type Chunk struct {
	Start    float64              `json:"start" yaml:"start"`
	End      float64              `json:"end" yaml:"end"`
	Text     string               `json:"text" yaml:"text"`
	Segments []transcript.Segment `json:"segments" yaml:"segments"`
}

// Len returns the length of the chunk text in characters.
func (c Chunk) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Line formats a segment the way it appears in chunk text. Segments without
// a speaker contribute their text alone.
func Line(s transcript.Segment) string {
	text := strings.TrimSpace(s.Text)
	if s.Speaker == "" {
		return text
	}
	return s.Speaker + ": " + text
}

// Split accumulates segments greedily into chunks of at most maxChars
// characters, counting the newline between lines. A segment is never split:
// one whose own line exceeds maxChars becomes an oversized chunk.
//
// Segments with empty text add no line but stay in the Segments list of the
// chunk they fall in, so concatenating every chunk's Segments reproduces the
// input. Input with no text at all yields no chunks. A non-positive maxChars
// selects DefaultMaxChars.
func Split(segs []transcript.Segment, maxChars int) []Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	chunks := make([]Chunk, 0)
	var cur Chunk
	var text strings.Builder
	curLen := 0
	var pending []transcript.Segment

	flush := func() {
		cur.Text = text.String()
		chunks = append(chunks, cur)
		cur = Chunk{}
		text.Reset()
		curLen = 0
	}

	for _, s := range segs {
		if strings.TrimSpace(s.Text) == "" {
			pending = append(pending, s)
			continue
		}

		line := Line(s)
		lineLen := utf8.RuneCountInString(line)

		if curLen > 0 && curLen+1+lineLen > maxChars {
			flush()
		}

		if curLen == 0 {
			cur.Start, cur.End = s.Start, s.End
		} else {
			text.WriteByte('\n')
			curLen++
			cur.Start = min(cur.Start, s.Start)
			cur.End = max(cur.End, s.End)
		}
		text.WriteString(line)
		curLen += lineLen

		cur.Segments = append(cur.Segments, pending...)
		cur.Segments = append(cur.Segments, s)
		pending = nil
	}

	if curLen > 0 {
		cur.Segments = append(cur.Segments, pending...)
		flush()
	}
	return chunks
}

// Segments concatenates the segment lists of chunks in order.
func Segments(chunks []Chunk) []transcript.Segment {
	out := make([]transcript.Segment, 0)
	for _, c := range chunks {
		out = append(out, c.Segments...)
	}
	return out
}

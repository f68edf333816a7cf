package transcript

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parse reads a transcript, decodes it to UTF-8 and picks a parser by file
// extension and content:
// .vtt files use ParseVTT, "M:SS : Name : text" files use ParseTeams, text
// with a timestamp signature uses ParseTimestamped. Anything else is plain
// prose and comes back with no segments; callers wrap it with SingleSegment.
func Parse(name string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}
	if data, err = Decode(data, ""); err != nil {
		return nil, err
	}
	text := string(data)

	if strings.EqualFold(filepath.Ext(name), ".vtt") || strings.HasPrefix(strings.TrimSpace(text), "WEBVTT") {
		return ParseVTT(strings.NewReader(text))
	}
	if LooksLikeTeams(text) {
		return ParseTeams(strings.NewReader(text))
	}
	return ParseText(text), nil
}

// ParseText applies the timestamp gate to plain transcript text.
func ParseText(text string) *Result {
	result := &Result{
		Segments: make([]Segment, 0),
		Speakers: make([]string, 0),
		Format:   FormatPlain,
		Text:     text,
	}
	if !HasTimestampFormat(text) {
		return result
	}
	result.Format = FormatTimestamped
	result.Segments = ParseTimestamped(text)
	result.Speakers = Speakers(result.Segments)
	return result
}

// SingleSegment wraps the whole text verbatim in one default-speaker segment.
func SingleSegment(text string) []Segment {
	return []Segment{{Speaker: DefaultSpeaker, Start: 0, End: 0, Text: text}}
}

// SegmentsOrFallback returns the parsed segments, or SingleSegment(text)
// when parsing found no structure.
func (r *Result) SegmentsOrFallback() []Segment {
	if len(r.Segments) > 0 {
		return r.Segments
	}
	return SingleSegment(r.Text)
}

// FullText rebuilds "speaker: text" lines from segments. Segments without a
// speaker contribute their text alone.
func FullText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if s.Speaker != "" {
			b.WriteString(s.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(text)
	}
	return b.String()
}

package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Signature checks run against the whole text before committing to
	// timestamp-mode parsing.
	bracketedTimestampRegex = regexp.MustCompile(`\[\d{1,2}:\d{2}(?::\d{2})?\]`)
	leadingTimestampRegex   = regexp.MustCompile(`(?m)^\d{1,2}:\d{2}(?::\d{2})?\s+`)

	// [H]H:MM[:SS], optionally bracketed, then name, ':' or '-', text.
	// Names are letters, periods, hyphens and spaces; digits only appear in
	// "Speaker N" labels.
	timestampedLineRegex = regexp.MustCompile(`^\[?(\d{1,2}):(\d{2})(?::(\d{2}))?\]?\s*([Ss]peaker\s+\d+|[A-Z][A-Za-z.\-\s]{1,40}?)\s*[:\-]\s*(.*)$`)
	// Name, ':' or '-', text.
	namedLineRegex = regexp.MustCompile(`^([Ss]peaker\s+\d+|[A-Z][A-Za-z.\-\s]{1,40}?)\s*[:\-]\s*(.*)$`)
	// Looser last-resort form that requires whitespace after the separator.
	looseNamedLineRegex = regexp.MustCompile(`^([A-Z][A-Za-z.\-\s]{2,40}?)[:\-]\s+(.+)$`)
)

// HasTimestampFormat reports whether text carries a timestamp signature: a
// bracketed [H:MM] or [H:MM:SS] anywhere, or a bare H:MM[:SS] at the start
// of some line.
func HasTimestampFormat(text string) bool {
	if text == "" {
		return false
	}
	return bracketedTimestampRegex.MatchString(text) || leadingTimestampRegex.MatchString(text)
}

// LineMatch is the typed result of a line matcher.
type LineMatch struct {
	Speaker string
	Text    string
	Start   float64
}

// LineMatcher recognizes one transcript line layout. prev is the start time
// of the previous accepted segment.
type LineMatcher struct {
	Name  string
	Match func(line string, prev float64) (LineMatch, bool)
}

// LineMatchers is the ordered list of line layouts tried per line; the first
// match wins.
var LineMatchers = []LineMatcher{
	{Name: "timestamp_speaker_text", Match: matchTimestampedLine},
	{Name: "speaker_text", Match: matchNamedLine},
}

func matchTimestampedLine(line string, _ float64) (LineMatch, bool) {
	m := timestampedLineRegex.FindStringSubmatch(line)
	if m == nil {
		return LineMatch{}, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds := 0
	if m[3] != "" {
		seconds, _ = strconv.Atoi(m[3])
	}

	var start float64
	if hours > 59 {
		// MM:SS shorthand with a large minute count.
		start = float64(hours*60 + minutes)
	} else {
		start = float64(hours*3600 + minutes*60 + seconds)
	}
	return LineMatch{
		Speaker: strings.TrimSpace(m[4]),
		Text:    strings.TrimSpace(m[5]),
		Start:   start,
	}, true
}

func matchNamedLine(line string, prev float64) (LineMatch, bool) {
	m := namedLineRegex.FindStringSubmatch(line)
	if m == nil {
		return LineMatch{}, false
	}
	return LineMatch{
		Speaker: strings.TrimSpace(m[1]),
		Text:    strings.TrimSpace(m[2]),
		Start:   prev + 1.0,
	}, true
}

// ParseTimestamped converts line-oriented transcript text into segments.
//
// Each non-empty line is tried against LineMatchers in order; lines that
// match none, or whose speaker or text is empty, contribute nothing. Every
// segment lasts a fixed five seconds. When no line yields a segment a looser
// "Name: text" scan runs with synthetic speaker labels and evenly spaced
// times. The result is never nil; an empty slice means no structure was found.
func ParseTimestamped(text string) []Segment {
	segments := make([]Segment, 0)
	if strings.TrimSpace(text) == "" {
		return segments
	}

	lines := splitTranscriptLines(text)
	labeler := newSpeakerLabeler()
	last := 0.0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var lm LineMatch
		matched := false
		for _, m := range LineMatchers {
			if lm, matched = m.Match(line, last); matched {
				break
			}
		}
		if !matched || lm.Speaker == "" || lm.Text == "" {
			continue
		}

		speaker, ok := labeler.label(lm.Speaker)
		if !ok {
			continue
		}

		segments = append(segments, Segment{
			Speaker: speaker,
			Start:   lm.Start,
			End:     lm.Start + syntheticDuration,
			Text:    lm.Text,
		})
		last = lm.Start
	}

	if len(segments) == 0 {
		segments = parseLooseNamedLines(lines, labeler)
	}
	return segments
}

func parseLooseNamedLines(lines []string, labeler *speakerLabeler) []Segment {
	segments := make([]Segment, 0)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := looseNamedLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n := float64(len(segments))
		segments = append(segments, Segment{
			Speaker: labeler.synthetic(strings.TrimSpace(m[1])),
			Start:   n * syntheticDuration,
			End:     (n + 1) * syntheticDuration,
			Text:    strings.TrimSpace(m[2]),
		})
	}
	return segments
}

// splitTranscriptLines splits text into lines and additionally breaks a line
// before every bracketed timestamp that does not start it, so pasted
// transcripts with several turns on one line parse as separate turns.
func splitTranscriptLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		locs := bracketedTimestampRegex.FindAllStringIndex(trimmed, -1)
		prev := 0
		for _, loc := range locs {
			if loc[0] == 0 {
				continue
			}
			lines = append(lines, trimmed[prev:loc[0]])
			prev = loc[0]
		}
		lines = append(lines, trimmed[prev:])
	}
	return lines
}

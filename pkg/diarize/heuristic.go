package diarize

import (
	"regexp"
	"strings"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

var (
	// "Name: rest" at the start of the text.
	prefixLabelRegex = regexp.MustCompile(`^\s*([A-Z][A-Za-z0-9.'\-\s]{1,40}?)\s*:\s*(.*)$`)
	// "[Name]" or "[Speaker N]" anywhere.
	bracketLabelRegex = regexp.MustCompile(`\[([A-Za-z][A-Za-z0-9.'\-\s]{1,40})\]`)
	// One or two capitalized words followed by a colon, anywhere.
	inlineLabelRegex = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)?):\s`)

	nameLikeRegex = regexp.MustCompile(`^[A-Z][A-Za-z.'\-]*(?:\s[A-Z][A-Za-z.'\-]*){0,3}$`)
)

const maxLabelLength = 40

// labelWords are section headings that look like "Name:" but never name a
// speaker.
var labelWords = map[string]bool{
	"action": true, "action item": true, "action items": true, "actions": true,
	"agenda": true, "attendees": true, "date": true, "deadline": true,
	"decision": true, "decisions": true, "minutes": true, "next meeting": true,
	"note": true, "notes": true, "organizer": true, "owner": true,
	"participants": true, "present": true, "recorder": true, "status": true,
	"summary": true, "task": true, "time": true, "title": true,
	"topic": true, "venue": true,
}

// speakerMap maps first-seen raw names to canonical labels. Keys are the
// normalized name, compared case-sensitively.
type speakerMap map[string]string

func (m speakerMap) canonical(raw string) string {
	name := transcript.NormalizeName(raw)
	if label, ok := m[name]; ok {
		return label
	}
	m[name] = name
	return name
}

// isSpeakerName applies the capitalization and length checks a label must
// pass before it is treated as a speaker.
func isSpeakerName(name string) bool {
	name = transcript.NormalizeName(name)
	if len(name) < 2 || len(name) > maxLabelLength {
		return false
	}
	if labelWords[strings.ToLower(name)] {
		return false
	}
	return transcript.IsGenericSpeaker(name) || nameLikeRegex.MatchString(name)
}

// AssignByText derives speakers from cues inside each segment's text. For
// every segment it tries a leading "Name:" prefix, then a bracketed "[Name]"
// anywhere, then any inline "Name:"; the matched label is removed from the
// stored text. Segments with no cue inherit the previous speaker, and the
// first one defaults to DefaultSpeaker.
func AssignByText(segs []transcript.TimedText) []transcript.Segment {
	out := make([]transcript.Segment, 0, len(segs))
	names := make(speakerMap)
	prev := transcript.DefaultSpeaker

	for _, s := range segs {
		speaker, text, ok := matchTextLabel(s.Text)
		if ok {
			speaker = names.canonical(speaker)
		} else {
			speaker = prev
			text = strings.TrimSpace(s.Text)
		}
		prev = speaker

		out = append(out, transcript.Segment{
			Speaker: speaker,
			Start:   s.Start,
			End:     s.End,
			Text:    text,
		})
	}
	return out
}

// TextMatcher finds a speaker cue in segment text and returns the speaker
// and the text with the cue removed.
type TextMatcher struct {
	Name  string
	Match func(text string) (speaker, rest string, ok bool)
}

// TextMatchers are tried in order; the first match wins.
var TextMatchers = []TextMatcher{
	{Name: "prefix", Match: matchPrefixLabel},
	{Name: "bracket", Match: matchBracketLabel},
	{Name: "inline", Match: matchInlineLabel},
}

func matchTextLabel(text string) (string, string, bool) {
	for _, m := range TextMatchers {
		if speaker, rest, ok := m.Match(text); ok {
			return speaker, rest, true
		}
	}
	return "", "", false
}

func matchPrefixLabel(text string) (string, string, bool) {
	m := prefixLabelRegex.FindStringSubmatch(text)
	if m == nil || !isSpeakerName(m[1]) {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

func matchBracketLabel(text string) (string, string, bool) {
	for _, loc := range bracketLabelRegex.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if !isSpeakerName(name) {
			continue
		}
		return name, removeSpan(text, loc[0], loc[1]), true
	}
	return "", "", false
}

func matchInlineLabel(text string) (string, string, bool) {
	for _, loc := range inlineLabelRegex.FindAllStringSubmatchIndex(text, -1) {
		name := text[loc[2]:loc[3]]
		if !isSpeakerName(name) {
			continue
		}
		// Drop the label and its colon, keep the following whitespace.
		return name, removeSpan(text, loc[0], loc[3]+1), true
	}
	return "", "", false
}

func removeSpan(text string, start, end int) string {
	return strings.Join(strings.Fields(text[:start]+" "+text[end:]), " ")
}
